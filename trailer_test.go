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

func TestTrailerMarshalUnmarshalRoundTrip(t *testing.T) {
	t1 := trailer{
		OffsetSize:  1,
		RefSize:     2,
		NumObjects:  17,
		RootObject:  0,
		OffsetTable: 9001,
	}
	buf := t1.marshal()
	assert.Len(t, buf, trailerSize)

	t2, err := unmarshalTrailer(buf[:])
	require.NoError(t, err)
	assert.Equal(t, t1.OffsetSize, t2.OffsetSize)
	assert.Equal(t, t1.RefSize, t2.RefSize)
	assert.Equal(t, t1.NumObjects, t2.NumObjects)
	assert.Equal(t, t1.RootObject, t2.RootObject)
	assert.Equal(t, t1.OffsetTable, t2.OffsetTable)
}

func TestUnmarshalTrailerRejectsWrongSize(t *testing.T) {
	_, err := unmarshalTrailer(make([]byte, 31))
	assert.ErrorIs(t, err, ErrTruncatedTrailer)
}

func TestOffsetTableRoundTrip(t *testing.T) {
	offsets := []int64{0, 1, 255, 256, 65535, 65536, 1<<24 - 1}
	for _, width := range []int{3, 4} {
		buf := writeOffsetTable(offsets, width)
		got := readOffsetTable(buf, len(offsets), width)
		assert.Equal(t, offsets, got, "width %d", width)
	}
}
