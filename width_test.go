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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimumUnsignedWidth(t *testing.T) {
	tests := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{255, 1},
		{256, 2},
		{65535, 2},
		{65536, 3},
		{1<<24 - 1, 3},
		{1 << 24, 4},
	}
	for _, tc := range tests {
		got, err := minimumUnsignedWidth(tc.v, 4)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "value %d", tc.v)
	}

	_, err := minimumUnsignedWidth(1<<32, 4)
	assert.ErrorIs(t, err, ErrNumericOverflow)
}

func TestMinimumIntExponent(t *testing.T) {
	tests := []struct {
		v    int64
		want int
	}{
		{0, 0},
		{127, 0},
		{-128, 0},
		{128, 1},
		{-129, 1},
		{32767, 1},
		{32768, 2},
		{math.MinInt32, 2},
		{math.MaxInt32, 2},
		{math.MaxInt32 + 1, 3},
		{math.MinInt64, 3},
		{math.MaxInt64, 3},
	}
	for _, tc := range tests {
		got, err := minimumIntExponent(tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "value %d", tc.v)
	}
}

func TestPack3Unpack3(t *testing.T) {
	for _, v := range []uint64{0, 1, 255, 256, 65535, 65536, 1<<24 - 1} {
		packed := pack3(v)
		assert.Equal(t, v, unpack3(packed[:]))
	}
}

func TestPutGetUint(t *testing.T) {
	for _, width := range []int{1, 2, 4, 8} {
		buf := make([]byte, width)
		var v uint64 = 0x0102030405060708 & (1<<(8*uint(width)) - 1)
		if width == 8 {
			v = 0x0102030405060708
		}
		putUint(buf, width, v)
		assert.Equal(t, v, getUint(buf, width))
	}
}

func TestGetIntSignExtends(t *testing.T) {
	buf := []byte{0xFF}
	assert.Equal(t, int64(-1), getInt(buf, 1))

	buf2 := []byte{0x80, 0x00}
	assert.Equal(t, int64(-32768), getInt(buf2, 2))

	buf4 := []byte{0x7F, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, int64(math.MaxInt32), getInt(buf4, 4))
}
