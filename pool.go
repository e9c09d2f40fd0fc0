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
	"fmt"
	"math"
	"unicode/utf16"

	"github.com/gobplist/bplist/internal/dedup"
)

// maxPoolObjects is the largest pool this core supports: spec.md §4.4
// requires num_objects < 65536 so that reference_size fits in 2 bytes.
const maxPoolObjects = 1 << 16

// poolBuilder runs the collect pass of spec.md §4.3: a depth-first walk
// of the root value that deduplicates leaves and assigns each distinct
// object an index in insertion order, with the root at index 0.
//
// Only leaf kinds are deduplicated, matching both the teacher
// (Builder.encodeDatum's cache, builder.go) and
// other_examples/DHowett-go-plist (isUniquedBplistValue): arrays and
// dicts are never merged even when structurally identical, since
// neither grounded implementation treats containers as uniquable.
type poolBuilder struct {
	objs  []flatObject
	orig  []Value          // parallel to objs; valid for leaf entries only
	cache map[uint64][]int // leaf dedup key -> candidate indices
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{cache: make(map[uint64][]int)}
}

// buildPool flattens root into an ordered, deduplicated object pool and
// returns it along with root's index (always 0).
func buildPool(root Value) ([]flatObject, int, error) {
	b := newPoolBuilder()
	idx, err := b.collect(root)
	if err != nil {
		return nil, 0, err
	}
	if len(b.objs) >= maxPoolObjects {
		return nil, 0, newEncodeError(ErrPoolOverflow, root.Kind(), -1)
	}
	return b.objs, idx, nil
}

func isLeafKind(k Kind) bool {
	switch k {
	case KindArray, KindDict:
		return false
	default:
		return true
	}
}

func (b *poolBuilder) collect(v Value) (int, error) {
	if isLeafKind(v.kind) {
		if v.kind == KindAsciiString {
			for _, by := range v.data {
				if by > 0x7f {
					return 0, newEncodeError(ErrAsciiRange, v.kind, len(b.objs))
				}
			}
		}
		key := leafKey(v)
		for _, idx := range b.cache[key] {
			if b.orig[idx].Equal(v) {
				return idx, nil
			}
		}
		idx := len(b.objs)
		b.objs = append(b.objs, toFlatLeaf(v))
		b.orig = append(b.orig, v)
		b.cache[key] = append(b.cache[key], idx)
		return idx, nil
	}

	idx := len(b.objs)
	b.objs = append(b.objs, flatObject{}) // placeholder; root must land at index 0
	b.orig = append(b.orig, Value{})

	switch v.kind {
	case KindArray:
		elems, _ := v.Array()
		refs := make([]int, len(elems))
		for i, e := range elems {
			r, err := b.collect(e)
			if err != nil {
				return 0, err
			}
			refs[i] = r
		}
		b.objs[idx] = flatObject{kind: KindArray, refs: refs}

	case KindDict:
		entries, _ := v.Dict()
		keyRefs := make([]int, len(entries))
		valRefs := make([]int, len(entries))
		for i, e := range entries {
			if e.Key.kind != KindAsciiString && e.Key.kind != KindUnicodeString {
				return 0, newEncodeError(ErrUnsupportedType, e.Key.kind, idx)
			}
			kr, err := b.collect(e.Key)
			if err != nil {
				return 0, err
			}
			vr, err := b.collect(e.Value)
			if err != nil {
				return 0, err
			}
			keyRefs[i] = kr
			valRefs[i] = vr
		}
		b.objs[idx] = flatObject{kind: KindDict, keyRefs: keyRefs, valRefs: valRefs}

	default:
		return 0, newEncodeError(fmt.Errorf("%w: %v", ErrUnsupportedType, v.kind), v.kind, idx)
	}
	return idx, nil
}

// toFlatLeaf copies a leaf Value's payload into a flatObject.
func toFlatLeaf(v Value) flatObject {
	switch v.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return flatObject{kind: v.kind}
	case KindInt:
		return flatObject{kind: KindInt, i: v.i}
	case KindUid:
		return flatObject{kind: KindUid, i: v.i}
	case KindReal:
		return flatObject{kind: KindReal, f: v.f}
	case KindDate:
		return flatObject{kind: KindDate, date: v.t}
	case KindData:
		return flatObject{kind: KindData, bytes: v.data}
	case KindAsciiString:
		return flatObject{kind: KindAsciiString, bytes: v.data}
	case KindUnicodeString:
		return flatObject{kind: KindUnicodeString, units: utf16.Encode(v.str)}
	}
	return flatObject{kind: v.kind}
}

// leafKey computes the dedup key for a leaf value, folding its kind
// into the hash so distinct kinds never collide (spec.md §9, "Equality
// for deduplication").
func leafKey(v Value) uint64 {
	switch v.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return dedup.Key(int(v.kind), nil)
	case KindInt, KindUid:
		var buf [8]byte
		putUint(buf[:], 8, uint64(v.i))
		return dedup.Key(int(v.kind), buf[:])
	case KindReal:
		var buf [8]byte
		putUint(buf[:], 8, math.Float64bits(v.f))
		return dedup.Key(int(v.kind), buf[:])
	case KindDate:
		var buf [8]byte
		putUint(buf[:], 8, uint64(v.t.Unix()))
		return dedup.Key(int(v.kind), buf[:])
	case KindData, KindAsciiString:
		return dedup.Key(int(v.kind), v.data)
	case KindUnicodeString:
		return dedup.KeyString(int(v.kind), string(v.str))
	}
	return dedup.Key(int(v.kind), nil)
}

// unflattenPool rematerializes a Value graph from a fully-decoded flat
// pool, starting at rootIndex. References may point forward or backward
// in the pool; already-resolved indices are memoized so shared (but
// non-cyclic) references are only built once. Cycles are undefined
// behavior (spec.md §9, "Cycles").
func unflattenPool(objs []flatObject, rootIndex int) (Value, error) {
	memo := make(map[int]Value, len(objs))
	return unflattenAt(objs, rootIndex, memo)
}

func unflattenAt(objs []flatObject, idx int, memo map[int]Value) (Value, error) {
	if v, ok := memo[idx]; ok {
		return v, nil
	}
	if idx < 0 || idx >= len(objs) {
		return Value{}, ErrBadReference
	}
	o := objs[idx]
	switch o.kind {
	case KindArray:
		elems := make([]Value, len(o.refs))
		for i, ref := range o.refs {
			e, err := unflattenAt(objs, ref, memo)
			if err != nil {
				return Value{}, err
			}
			elems[i] = e
		}
		v := Value{kind: KindArray, arr: elems}
		memo[idx] = v
		return v, nil

	case KindDict:
		entries := make([]DictEntry, len(o.keyRefs))
		for i := range o.keyRefs {
			k, err := unflattenAt(objs, o.keyRefs[i], memo)
			if err != nil {
				return Value{}, err
			}
			val, err := unflattenAt(objs, o.valRefs[i], memo)
			if err != nil {
				return Value{}, err
			}
			entries[i] = DictEntry{Key: k, Value: val}
		}
		v := Value{kind: KindDict, dict: entries}
		memo[idx] = v
		return v, nil

	default:
		v := fromFlatLeaf(o)
		memo[idx] = v
		return v, nil
	}
}

// fromFlatLeaf converts a decoded leaf flatObject back into a Value.
func fromFlatLeaf(o flatObject) Value {
	switch o.kind {
	case KindNull, KindFalse, KindTrue, KindFill:
		return Value{kind: o.kind}
	case KindInt:
		return Value{kind: KindInt, i: o.i}
	case KindUid:
		return Value{kind: KindUid, i: o.i}
	case KindReal:
		return Value{kind: KindReal, f: o.f}
	case KindDate:
		return Value{kind: KindDate, t: o.date}
	case KindData:
		return Value{kind: KindData, data: o.bytes}
	case KindAsciiString:
		return Value{kind: KindAsciiString, data: o.bytes}
	case KindUnicodeString:
		return Value{kind: KindUnicodeString, str: utf16.Decode(o.units)}
	}
	return Value{kind: o.kind}
}
