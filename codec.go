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
	"bytes"
	"fmt"
	"io"
)

// magic is the 8-byte header every bplist00 file begins with.
const magic = "bplist00"

// isSingletonKind reports whether k is encoded under type marker 0
// (Null, False, True, Fill).
func isSingletonKind(k Kind) bool {
	switch k {
	case KindNull, KindFalse, KindTrue, KindFill:
		return true
	}
	return false
}

// Encode serializes v to a new byte slice in bplist00 form.
func Encode(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo serializes v and writes it to w. On failure, w receives no
// output: the file is assembled in memory first and written in one
// pass, so a failure never emits a partial file (spec.md §7).
func EncodeTo(w io.Writer, v Value) error {
	objs, rootIdx, err := buildPool(v)
	if err != nil {
		return err
	}

	n := len(objs)
	refSize := 1
	if n >= 256 {
		refSize = 2
	}

	var body bytes.Buffer
	offsets := make([]int64, n)
	for i := range objs {
		o := objs[i]
		offsets[i] = int64(body.Len())
		if err := encodeOneObject(&body, &o, refSize); err != nil {
			return newEncodeError(err, o.kind, i)
		}
	}

	for i := range offsets {
		offsets[i] += int64(len(magic))
	}

	var out bytes.Buffer
	out.WriteString(magic)
	out.Write(body.Bytes())

	tableOffset := out.Len()
	offsetSize, err := minimumUnsignedWidth(uint64(tableOffset), 4)
	if err != nil {
		return newEncodeError(err, KindNull, -1)
	}
	out.Write(writeOffsetTable(offsets, offsetSize))

	t := trailer{
		OffsetSize:  uint8(offsetSize),
		RefSize:     uint8(refSize),
		NumObjects:  uint64(n),
		RootObject:  uint64(rootIdx),
		OffsetTable: uint64(tableOffset),
	}
	tb := t.marshal()
	out.Write(tb[:])

	_, err = w.Write(out.Bytes())
	return err
}

// encodeOneObject appends the first byte, optional extended-length Int,
// and body of o to dst.
func encodeOneObject(dst *bytes.Buffer, o *flatObject, refSize int) error {
	if isSingletonKind(o.kind) {
		dst.WriteByte(firstByte(markerSingleton, int(singletonNibble(o.kind))))
		return nil
	}

	objLen, err := objectLength(o)
	if err != nil {
		return err
	}
	marker := typeMarker(o.kind)
	dst.WriteByte(firstByte(marker, objLen))
	if objLen >= 15 {
		extLen := flatObject{kind: KindInt, i: int64(objLen)}
		extExp, err := objectLength(&extLen)
		if err != nil {
			return err
		}
		dst.WriteByte(firstByte(markerInt, extExp))
		extBody := make([]byte, 1<<uint(extExp))
		if err := encodeBody(&extLen, extExp, refSize, extBody); err != nil {
			return err
		}
		dst.Write(extBody)
	}

	bl := bodyByteLength(o, objLen, refSize)
	buf := make([]byte, bl)
	if err := encodeBody(o, objLen, refSize, buf); err != nil {
		return err
	}
	dst.Write(buf)
	return nil
}

// Decode parses a bplist00-encoded byte slice and returns its root
// value.
func Decode(data []byte) (Value, error) {
	return DecodeFrom(bytes.NewReader(data))
}

// DecodeFrom parses a bplist00 stream from r, which must support
// seeking: the trailer lives at the end of the stream and the offset
// table is addressed from there (spec.md §5).
func DecodeFrom(r io.ReadSeeker) (Value, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return Value{}, newDecodeError(err, -1)
	}
	if size < int64(len(magic))+trailerSize {
		return Value{}, newDecodeError(ErrBadMagic, 0)
	}

	hdr := make([]byte, len(magic))
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Value{}, newDecodeError(err, 0)
	}
	if _, err := io.ReadFull(r, hdr); err != nil {
		return Value{}, newDecodeError(ErrShortRead, 0)
	}
	if string(hdr) != magic {
		return Value{}, newDecodeError(ErrBadMagic, 0)
	}

	tb := make([]byte, trailerSize)
	if _, err := r.Seek(size-trailerSize, io.SeekStart); err != nil {
		return Value{}, newDecodeError(err, size-trailerSize)
	}
	if _, err := io.ReadFull(r, tb); err != nil {
		return Value{}, newDecodeError(ErrTruncatedTrailer, size-trailerSize)
	}
	t, err := unmarshalTrailer(tb)
	if err != nil {
		return Value{}, newDecodeError(err, size-trailerSize)
	}
	if t.NumObjects == 0 || t.RefSize == 0 || t.OffsetSize == 0 {
		return Value{}, newDecodeError(ErrTruncatedTrailer, size-trailerSize)
	}

	// Read the whole stream (magic, objects, offset table and trailer)
	// into memory; random
	// access within it is then plain slice indexing. This mirrors the
	// teacher's in-memory []byte model while still accepting any
	// io.ReadSeeker on the way in.
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Value{}, newDecodeError(err, 0)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return Value{}, newDecodeError(ErrShortRead, 0)
	}

	offSize := int(t.OffsetSize)
	refSize := int(t.RefSize)
	numObjects := int(t.NumObjects)
	tableOffset := int64(t.OffsetTable)

	need := tableOffset + int64(numObjects*offSize)
	if tableOffset < 0 || need > size-trailerSize {
		return Value{}, newDecodeError(ErrTruncatedTrailer, tableOffset)
	}
	offsets := readOffsetTable(data[tableOffset:need], numObjects, offSize)

	objs := make([]flatObject, numObjects)
	for i, off := range offsets {
		o, err := decodeObjectAt(data, off, refSize)
		if err != nil {
			return Value{}, newDecodeError(err, off)
		}
		objs[i] = o
	}

	rootIndex := int(t.RootObject)
	if rootIndex < 0 || rootIndex >= numObjects {
		return Value{}, newDecodeError(ErrBadReference, int64(rootIndex))
	}
	v, err := unflattenPool(objs, rootIndex)
	if err != nil {
		return Value{}, newDecodeError(err, -1)
	}
	return v, nil
}

// decodeObjectAt decodes the single object beginning at byte offset off
// in data, following the ReadMarker -> ReadExtendedLength -> ReadBody
// state machine from spec.md §4.5.
func decodeObjectAt(data []byte, off int64, refSize int) (flatObject, error) {
	if off < 0 || off >= int64(len(data)) {
		return flatObject{}, ErrShortRead
	}
	marker := data[off]
	T := marker >> 4
	nibble := int(marker & 0x0f)
	pos := off + 1

	if T == markerSingleton {
		return decodeLeaf(markerSingleton, nibble, 0, nil)
	}

	objLen := nibble
	if nibble == extendedLengthNibble {
		n, consumed, err := readExtendedLength(data, pos)
		if err != nil {
			return flatObject{}, err
		}
		objLen = n
		pos += int64(consumed)
	}

	switch T {
	case markerArray, markerDict:
		return decodeContainerAt(data, T, objLen, pos, refSize)
	}

	bl, err := leafBodyLength(T, objLen)
	if err != nil {
		return flatObject{}, err
	}
	if pos+int64(bl) > int64(len(data)) {
		return flatObject{}, ErrShortRead
	}
	return decodeLeaf(T, nibble, objLen, data[pos:pos+int64(bl)])
}

// readExtendedLength reads a nested Int object at pos and returns its
// value plus the number of bytes it occupied.
func readExtendedLength(data []byte, pos int64) (int, int, error) {
	if pos >= int64(len(data)) {
		return 0, 0, ErrShortRead
	}
	tag := data[pos]
	if tag>>4 != markerInt {
		return 0, 0, fmt.Errorf("%w: expected extended-length Int, got marker %x", ErrUnknownMarker, tag>>4)
	}
	exp := int(tag & 0x0f)
	size := 1 << uint(exp)
	start := pos + 1
	if start+int64(size) > int64(len(data)) {
		return 0, 0, ErrShortRead
	}
	v := getUint(data[start:start+int64(size)], size)
	if v > 1<<62 {
		return 0, 0, fmt.Errorf("%w: extended length overflow", ErrShortRead)
	}
	return int(v), 1 + size, nil
}

// leafBodyLength computes the body byte length for non-container
// markers, mirroring bodyByteLength's per-kind formulas (handlers.go)
// without needing a materialized flatObject.
func leafBodyLength(marker byte, objLen int) (int, error) {
	switch marker {
	case markerInt, markerReal:
		return 1 << uint(objLen), nil
	case markerDate:
		return 8, nil
	case markerData, markerAscii, markerUTF8:
		return objLen, nil
	case markerUnicode:
		return 2 * objLen, nil
	case markerUid:
		return objLen + 1, nil
	}
	return 0, fmt.Errorf("%w: %x", ErrUnknownMarker, marker)
}

// decodeContainerAt decodes an Array or Dict body: objLen references
// (Array), or objLen key-references followed by objLen value-references
// (Dict), each refSize bytes (spec.md §4.2).
func decodeContainerAt(data []byte, marker byte, objLen int, pos int64, refSize int) (flatObject, error) {
	readRef := func(at int64) (int, error) {
		if at+int64(refSize) > int64(len(data)) {
			return 0, ErrShortRead
		}
		return int(getUint(data[at:at+int64(refSize)], refSize)), nil
	}

	if marker == markerArray {
		refs := make([]int, objLen)
		cur := pos
		for i := range refs {
			r, err := readRef(cur)
			if err != nil {
				return flatObject{}, err
			}
			refs[i] = r
			cur += int64(refSize)
		}
		return flatObject{kind: KindArray, refs: refs}, nil
	}

	keyRefs := make([]int, objLen)
	valRefs := make([]int, objLen)
	cur := pos
	for i := range keyRefs {
		r, err := readRef(cur)
		if err != nil {
			return flatObject{}, err
		}
		keyRefs[i] = r
		cur += int64(refSize)
	}
	for i := range valRefs {
		r, err := readRef(cur)
		if err != nil {
			return flatObject{}, err
		}
		valRefs[i] = r
		cur += int64(refSize)
	}
	return flatObject{kind: KindDict, keyRefs: keyRefs, valRefs: valRefs}, nil
}
