// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bplist

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValueAccessors(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"null", Null(), KindNull},
		{"fill", Fill(), KindFill},
		{"true", Bool(true), KindTrue},
		{"false", Bool(false), KindFalse},
		{"int", Int(42), KindInt},
		{"real", Real(3.5), KindReal},
		{"date", Date(time.Unix(0, 0)), KindDate},
		{"data", Data([]byte("hi")), KindData},
		{"ascii", String("hello"), KindAsciiString},
		{"unicode", String("héllo"), KindUnicodeString},
		{"uid", Uid(7), KindUid},
		{"array", Array(Int(1), Int(2)), KindArray},
		{"dict", Dict(DictEntry{Key: String("k"), Value: Int(1)}), KindDict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.v.Kind())
		})
	}
}

func TestValueEqualIsVariantAware(t *testing.T) {
	// An Int and a True must never compare equal even though some
	// languages would coerce 1 == true (spec.md §9).
	assert.False(t, Int(1).Equal(Bool(true)))
	assert.False(t, Int(0).Equal(Bool(false)))

	// An Int and a Uid holding the same magnitude are different variants.
	assert.False(t, Int(7).Equal(Uid(7)))

	assert.True(t, Int(7).Equal(Int(7)))
	assert.False(t, Int(7).Equal(Int(8)))

	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(Fill()))

	assert.True(t, Real(1.5).Equal(Real(1.5)))
	// Bitwise float equality: -0.0 and +0.0 are distinct (spec.md §9).
	assert.False(t, Real(0.0).Equal(Real(math.Copysign(0, -1))))
}

func TestStringPicksNarrowestEncoding(t *testing.T) {
	ascii := String("plain ascii")
	assert.Equal(t, KindAsciiString, ascii.Kind())

	wide := String("café") // "café"
	assert.Equal(t, KindUnicodeString, wide.Kind())

	s, ok := wide.Text()
	assert.True(t, ok)
	assert.Equal(t, "café", s)
}

func TestArrayAndDictRoundThroughAccessors(t *testing.T) {
	arr := Array(Int(1), String("a"), Bool(true))
	elems, ok := arr.Array()
	assert.True(t, ok)
	assert.Len(t, elems, 3)

	d := Dict(
		DictEntry{Key: String("one"), Value: Int(1)},
		DictEntry{Key: String("two"), Value: Int(2)},
	)
	entries, ok := d.Dict()
	assert.True(t, ok)
	assert.Len(t, entries, 2)
	assert.Equal(t, "one", mustText(t, entries[0].Key))
	assert.Equal(t, "two", mustText(t, entries[1].Key))
}

func mustText(t *testing.T, v Value) string {
	t.Helper()
	s, ok := v.Text()
	assert.True(t, ok)
	return s
}
