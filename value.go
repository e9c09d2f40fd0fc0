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
	"time"
	"unicode"
)

// Kind enumerates the variants a Value may hold. Each Kind maps to
// exactly one bplist00 type marker.
type Kind int

const (
	KindNull Kind = iota
	KindFalse
	KindTrue
	KindFill
	KindInt
	KindReal
	KindDate
	KindData
	KindAsciiString
	KindUnicodeString
	KindUid
	KindArray
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindFill:
		return "fill"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindDate:
		return "date"
	case KindData:
		return "data"
	case KindAsciiString:
		return "ascii-string"
	case KindUnicodeString:
		return "unicode-string"
	case KindUid:
		return "uid"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	}
	return "unknown"
}

// DictEntry is one key/value pair of a Dict, kept in insertion order
// (see SPEC_FULL.md, "Supplemented features").
type DictEntry struct {
	Key   Value
	Value Value
}

// Value is a tagged union over every type the bplist00 format can
// encode. The zero Value is Null.
type Value struct {
	kind Kind

	i    int64   // KindInt, KindUid (unsigned, stored widened)
	f    float64 // KindReal
	t    time.Time
	data []byte      // KindData, KindAsciiString (raw bytes)
	str  []rune      // KindUnicodeString
	arr  []Value     // KindArray
	dict []DictEntry // KindDict
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Null is the singleton null value.
func Null() Value { return Value{kind: KindNull} }

// Fill is the singleton "fill" value (see spec glossary).
func Fill() Value { return Value{kind: KindFill} }

// Bool wraps a Go bool as True or False.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindTrue}
	}
	return Value{kind: KindFalse}
}

// Bool reports the boolean held by v and whether v is KindTrue/KindFalse.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindTrue:
		return true, true
	case KindFalse:
		return false, true
	}
	return false, false
}

// Int wraps a signed integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Int returns the integer held by v and whether v is KindInt.
func (v Value) Int() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Real wraps a floating-point value.
func Real(f float64) Value { return Value{kind: KindReal, f: f} }

// Real returns the float held by v and whether v is KindReal.
func (v Value) Real() (float64, bool) {
	if v.kind != KindReal {
		return 0, false
	}
	return v.f, true
}

// macEpoch is the Apple reference epoch, 2001-01-01T00:00:00Z, expressed
// as a Unix timestamp.
const macEpoch = 978307200

// Date wraps a timestamp. Only whole-second precision round-trips (the
// format stores seconds since the Apple epoch as a double).
func Date(t time.Time) Value { return Value{kind: KindDate, t: t.UTC()} }

// Date returns the timestamp held by v and whether v is KindDate.
func (v Value) Date() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return v.t, true
}

// Data wraps an opaque byte string.
func Data(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindData, data: cp}
}

// Data returns the bytes held by v and whether v is KindData.
func (v Value) Data() ([]byte, bool) {
	if v.kind != KindData {
		return nil, false
	}
	return v.data, true
}

// isASCII reports whether every rune in s fits in 7 bits.
func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// String builds a string Value, choosing the narrow AsciiString marker
// when every character is 7-bit clean and UnicodeString otherwise — the
// same choice original_source/bplistlib makes (see SPEC_FULL.md).
func String(s string) Value {
	if isASCII(s) {
		return NewAsciiString(s)
	}
	return NewUnicodeString(s)
}

// NewAsciiString builds an AsciiString Value directly. It is the
// caller's responsibility to ensure s is 7-bit clean; Encode rejects it
// otherwise.
func NewAsciiString(s string) Value {
	return Value{kind: KindAsciiString, data: []byte(s)}
}

// NewUnicodeString builds a UnicodeString Value directly.
func NewUnicodeString(s string) Value {
	return Value{kind: KindUnicodeString, str: []rune(s)}
}

// Text returns the text held by v (AsciiString or UnicodeString) and
// whether v holds one of those kinds.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindAsciiString:
		return string(v.data), true
	case KindUnicodeString:
		return string(v.str), true
	}
	return "", false
}

// Uid wraps an unsigned unique identifier. Encode picks the minimum
// width that represents id.
func Uid(id uint64) Value { return Value{kind: KindUid, i: int64(id)} }

// Uid returns the identifier held by v and whether v is KindUid.
func (v Value) Uid() (uint64, bool) {
	if v.kind != KindUid {
		return 0, false
	}
	return uint64(v.i), true
}

// Array wraps an ordered sequence of values.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// Array returns the elements held by v and whether v is KindArray.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Dict wraps a keyed mapping, preserving the order entries are given in.
func Dict(entries ...DictEntry) Value {
	cp := make([]DictEntry, len(entries))
	copy(cp, entries)
	return Value{kind: KindDict, dict: cp}
}

// Dict returns the entries held by v and whether v is KindDict.
func (v Value) Dict() ([]DictEntry, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.dict, true
}

// Equal reports whether v and w hold the same variant and compare
// equal under that variant's equality (spec.md §3, "Invariants").
// Equality is never cross-variant: an Int and a Uid holding the same
// numeric value are never Equal.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return true
	case KindInt, KindUid:
		return v.i == w.i
	case KindReal:
		return math.Float64bits(v.f) == math.Float64bits(w.f)
	case KindDate:
		return v.t.Unix() == w.t.Unix()
	case KindData:
		return bytesEqual(v.data, w.data)
	case KindAsciiString:
		return bytesEqual(v.data, w.data)
	case KindUnicodeString:
		return runesEqual(v.str, w.str)
	case KindArray:
		if len(v.arr) != len(w.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(w.arr[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.dict) != len(w.dict) {
			return false
		}
		for i := range v.dict {
			if !v.dict[i].Key.Equal(w.dict[i].Key) || !v.dict[i].Value.Equal(w.dict[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
