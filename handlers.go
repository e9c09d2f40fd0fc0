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
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf16"
)

// flatObject is one entry of a flattened object pool: a leaf value or a
// container whose children have already been resolved to pool indices.
// This is the "FlatObject" two-layer design spec.md's design notes
// recommend in place of the source's in-place type-punning (§9,
// "Pool and 'flatten' in-place mutation").
type flatObject struct {
	kind Kind

	i     int64     // Int, Uid
	f     float64   // Real
	date  time.Time // Date
	bytes []byte    // Data, AsciiString
	units []uint16  // UnicodeString, as UTF-16 code units

	refs    []int // Array: element indices
	keyRefs []int // Dict: key indices
	valRefs []int // Dict: value indices, parallel to keyRefs
}

// objectLength computes the nibble-bearing "object length" for o, per
// spec.md §3: a width exponent for numeric/uid types, an element count
// for strings/data/containers, or 0 for singletons (unused there).
func objectLength(o *flatObject) (int, error) {
	switch o.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return 0, nil
	case KindInt:
		return minimumIntExponent(o.i)
	case KindReal:
		return 3, nil // Open Question (a): always emit 8-byte doubles
	case KindDate:
		return 3, nil // date body is always 8 bytes
	case KindData, KindAsciiString:
		return len(o.bytes), nil
	case KindUnicodeString:
		return len(o.units), nil
	case KindUid:
		w, err := minimumUnsignedWidth(uint64(o.i), 8)
		if err != nil {
			return 0, err
		}
		return w - 1, nil
	case KindArray:
		return len(o.refs), nil
	case KindDict:
		return len(o.keyRefs), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrUnsupportedType, o.kind)
}

// typeMarker returns the high-nibble type marker for o's kind.
func typeMarker(k Kind) byte {
	switch k {
	case KindNull, KindFalse, KindTrue, KindFill:
		return markerSingleton
	case KindInt:
		return markerInt
	case KindReal:
		return markerReal
	case KindDate:
		return markerDate
	case KindData:
		return markerData
	case KindAsciiString:
		return markerAscii
	case KindUnicodeString:
		return markerUnicode
	case KindUid:
		return markerUid
	case KindArray:
		return markerArray
	case KindDict:
		return markerDict
	}
	return 0xFF
}

// singletonNibble returns the low nibble for a T=0 object.
func singletonNibble(k Kind) byte {
	switch k {
	case KindNull:
		return singletonNull
	case KindFalse:
		return singletonFalse
	case KindTrue:
		return singletonTrue
	case KindFill:
		return singletonFill
	}
	return 0
}

// bodyByteLength returns the number of bytes the body of o occupies,
// given its already-computed object length (spec.md §4.2).
func bodyByteLength(o *flatObject, objLen, refSize int) int {
	switch o.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return 0
	case KindInt:
		return 1 << uint(objLen)
	case KindReal:
		return 1 << uint(objLen)
	case KindDate:
		return 8
	case KindData, KindAsciiString:
		return objLen
	case KindUnicodeString:
		return 2 * objLen
	case KindUid:
		return objLen + 1
	case KindArray:
		return objLen * refSize
	case KindDict:
		return 2 * objLen * refSize
	}
	return 0
}

// encodeBody writes the body bytes for o (not including the first byte
// or any extended-length Int) into dst, which must be exactly
// bodyByteLength(o, objLen, refSize) bytes.
func encodeBody(o *flatObject, objLen, refSize int, dst []byte) error {
	switch o.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return nil
	case KindInt:
		putUint(dst, len(dst), uint64(o.i))
		return nil
	case KindReal:
		putUint(dst, len(dst), math.Float64bits(o.f))
		return nil
	case KindDate:
		sec := float64(o.date.Unix() - macEpoch)
		binary.BigEndian.PutUint64(dst, math.Float64bits(sec))
		return nil
	case KindData, KindAsciiString:
		copy(dst, o.bytes)
		return nil
	case KindUnicodeString:
		for i, u := range o.units {
			binary.BigEndian.PutUint16(dst[2*i:], u)
		}
		return nil
	case KindUid:
		putUint(dst, len(dst), uint64(o.i))
		return nil
	case KindArray:
		for i, ref := range o.refs {
			putUint(dst[i*refSize:], refSize, uint64(ref))
		}
		return nil
	case KindDict:
		n := len(o.keyRefs)
		for i, ref := range o.keyRefs {
			putUint(dst[i*refSize:], refSize, uint64(ref))
		}
		for i, ref := range o.valRefs {
			putUint(dst[(n+i)*refSize:], refSize, uint64(ref))
		}
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedType, o.kind)
}

// decodeLeaf reconstructs a non-container flatObject from its marker,
// object length, and raw body bytes. Containers are decoded separately
// in codec.go, since resolving references requires the full offset
// table.
func decodeLeaf(marker byte, nibble, objLen int, body []byte) (flatObject, error) {
	switch marker {
	case markerSingleton:
		switch byte(nibble) {
		case singletonNull:
			return flatObject{kind: KindNull}, nil
		case singletonFalse:
			return flatObject{kind: KindFalse}, nil
		case singletonTrue:
			return flatObject{kind: KindTrue}, nil
		case singletonFill:
			return flatObject{kind: KindFill}, nil
		}
		return flatObject{}, ErrInvalidSingleton

	case markerInt:
		return flatObject{kind: KindInt, i: getInt(body, len(body))}, nil

	case markerReal:
		bits := getUint(body, len(body))
		var f float64
		if len(body) == 4 {
			f = float64(math.Float32frombits(uint32(bits)))
		} else {
			f = math.Float64frombits(bits)
		}
		return flatObject{kind: KindReal, f: f}, nil

	case markerDate:
		sec := math.Float64frombits(getUint(body, len(body)))
		return flatObject{kind: KindDate, date: time.Unix(int64(sec)+macEpoch, 0).UTC()}, nil

	case markerData:
		cp := make([]byte, len(body))
		copy(cp, body)
		return flatObject{kind: KindData, bytes: cp}, nil

	case markerAscii, markerUTF8:
		cp := make([]byte, len(body))
		copy(cp, body)
		return flatObject{kind: KindAsciiString, bytes: cp}, nil

	case markerUnicode:
		units := make([]uint16, objLen)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(body[2*i:])
		}
		if _, err := validUTF16(units); err != nil {
			return flatObject{}, err
		}
		return flatObject{kind: KindUnicodeString, units: units}, nil

	case markerUid:
		return flatObject{kind: KindUid, i: int64(getUint(body, len(body)))}, nil
	}
	return flatObject{}, fmt.Errorf("%w: marker %x", ErrUnknownMarker, marker)
}

// validUTF16 decodes units to confirm they form a valid UTF-16 sequence
// (no unpaired surrogates), returning the decoded runes.
func validUTF16(units []uint16) ([]rune, error) {
	runes := utf16.Decode(units)
	// utf16.Decode replaces invalid sequences with the replacement
	// character instead of failing; detect that explicitly so short or
	// malformed surrogate pairs are reported as errors (spec.md §4.5,
	// "Failure semantics").
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u <= 0xDBFF: // high surrogate
			if i+1 >= len(units) {
				return nil, ErrBadUTF16
			}
			lo := units[i+1]
			if lo < 0xDC00 || lo > 0xDFFF {
				return nil, ErrBadUTF16
			}
			i++
		case u >= 0xDC00 && u <= 0xDFFF: // unpaired low surrogate
			return nil, ErrBadUTF16
		}
	}
	return runes, nil
}
