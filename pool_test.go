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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPoolDedupesLeaves(t *testing.T) {
	// [1,2,3,4] -> one array + four distinct ints (spec.md §8, scenario 2).
	root := Array(Int(1), Int(2), Int(3), Int(4))
	objs, rootIdx, err := buildPool(root)
	require.NoError(t, err)
	assert.Equal(t, 0, rootIdx)
	assert.Len(t, objs, 5)
}

func TestBuildPoolDedupesRepeatedLeaf(t *testing.T) {
	// Three occurrences of the same string should collapse to one entry.
	s := String("repeat")
	root := Array(s, s, s)
	objs, _, err := buildPool(root)
	require.NoError(t, err)
	// array + one deduplicated string = 2 entries.
	assert.Len(t, objs, 2)
}

func TestBuildPoolNeverDedupesContainers(t *testing.T) {
	// Two structurally identical (but distinct) arrays are never merged,
	// matching the teacher's Builder (builder.go) and
	// other_examples/DHowett-go-plist's isUniquedBplistValue, neither of
	// which uniques collections.
	inner1 := Array(Int(1))
	inner2 := Array(Int(1))
	root := Array(inner1, inner2)
	objs, _, err := buildPool(root)
	require.NoError(t, err)
	// outer array + inner array 1 + inner array 2 + one shared Int(1) = 4.
	assert.Len(t, objs, 4)
}

func TestBuildPoolRejectsNonStringDictKey(t *testing.T) {
	root := Dict(DictEntry{Key: Int(1), Value: Int(2)})
	_, _, err := buildPool(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestBuildPoolRejectsNonAsciiAsciiString(t *testing.T) {
	bad := Value{kind: KindAsciiString, data: []byte{0xFF}}
	_, _, err := buildPool(Array(bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAsciiRange)
}

func TestUnflattenRoundTripsSharedReferences(t *testing.T) {
	shared := Int(99)
	root := Array(shared, shared)
	objs, rootIdx, err := buildPool(root)
	require.NoError(t, err)

	v, err := unflattenPool(objs, rootIdx)
	require.NoError(t, err)
	elems, ok := v.Array()
	require.True(t, ok)
	require.Len(t, elems, 2)
	assert.True(t, elems[0].Equal(elems[1]))
}

func TestUnflattenBadReferenceFails(t *testing.T) {
	objs := []flatObject{{kind: KindArray, refs: []int{5}}}
	_, err := unflattenPool(objs, 0)
	assert.ErrorIs(t, err, ErrBadReference)
}
