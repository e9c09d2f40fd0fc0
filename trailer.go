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

import "encoding/binary"

// trailerSize is the fixed size of the bplist00 trailer (spec.md §4.4).
const trailerSize = 32

// trailer is the last 32 bytes of a bplist00 file. Per spec.md's Open
// Question (c), NumObjects, RootObject and OffsetTable are all
// 8-byte big-endian fields (the "widely-deployed layout"), matching
// other_examples/DHowett-go-plist's bplistTrailer struct shape.
type trailer struct {
	Unused      [5]uint8
	SortVersion uint8
	OffsetSize  uint8 // bytes per offset-table entry, in {1,2,3,4}
	RefSize     uint8 // bytes per object reference, in {1,2}
	NumObjects  uint64
	RootObject  uint64
	OffsetTable uint64
}

// marshal writes t into a 32-byte big-endian buffer.
func (t trailer) marshal() [trailerSize]byte {
	var buf [trailerSize]byte
	buf[6] = t.OffsetSize
	buf[7] = t.RefSize
	binary.BigEndian.PutUint64(buf[8:], t.NumObjects)
	binary.BigEndian.PutUint64(buf[16:], t.RootObject)
	binary.BigEndian.PutUint64(buf[24:], t.OffsetTable)
	return buf
}

// unmarshalTrailer parses exactly trailerSize bytes into a trailer.
func unmarshalTrailer(buf []byte) (trailer, error) {
	if len(buf) != trailerSize {
		return trailer{}, ErrTruncatedTrailer
	}
	return trailer{
		OffsetSize:  buf[6],
		RefSize:     buf[7],
		NumObjects:  binary.BigEndian.Uint64(buf[8:]),
		RootObject:  binary.BigEndian.Uint64(buf[16:]),
		OffsetTable: binary.BigEndian.Uint64(buf[24:]),
	}, nil
}

// writeOffsetTable encodes offsets (one file offset per pool entry, in
// pool order) using width bytes each, per spec.md §4.4. width==3 uses
// the packed 3-byte form from width.go.
func writeOffsetTable(offsets []int64, width int) []byte {
	buf := make([]byte, len(offsets)*width)
	for i, off := range offsets {
		if width == 3 {
			packed := pack3(uint64(off))
			copy(buf[i*3:], packed[:])
		} else {
			putUint(buf[i*width:], width, uint64(off))
		}
	}
	return buf
}

// readOffsetTable decodes numObjects offsets of the given width from
// buf, which must be exactly numObjects*width bytes.
func readOffsetTable(buf []byte, numObjects, width int) []int64 {
	offsets := make([]int64, numObjects)
	for i := range offsets {
		chunk := buf[i*width : i*width+width]
		if width == 3 {
			offsets[i] = int64(unpack3(chunk))
		} else {
			offsets[i] = int64(getUint(chunk, width))
		}
	}
	return offsets
}
