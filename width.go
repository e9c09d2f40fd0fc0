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

import "fmt"

// minimumUnsignedWidth returns the smallest w in 1..maxWidth such that
// v < 2^(8w). It fails if no such w exists within the cap (spec.md
// §4.1).
func minimumUnsignedWidth(v uint64, maxWidth int) (int, error) {
	for w := 1; w <= maxWidth; w++ {
		if w >= 8 || v < uint64(1)<<(8*uint(w)) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: value %d does not fit in %d bytes", ErrNumericOverflow, v, maxWidth)
}

// minimumIntExponent returns the smallest e in {0,1,2,3} such that i
// fits in a signed big-endian integer of width 1<<e (spec.md §4.1).
func minimumIntExponent(i int64) (int, error) {
	for e := 0; e <= 3; e++ {
		bits := uint(8 * (1 << uint(e)))
		lo := -(int64(1) << (bits - 1))
		var hi int64
		if bits == 64 {
			hi = int64(1)<<63 - 1
		} else {
			hi = int64(1)<<(bits-1) - 1
		}
		if i >= lo && i <= hi {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: integer %d does not fit in 64 bits", ErrNumericOverflow, i)
}

// minimumRealExponent returns 2 if f fits losslessly in an IEEE-754
// single, else 3. Per spec.md's Open Question (a), this module always
// returns 3 on encode to avoid precision loss; the function remains
// available for callers and tests that want the narrower check.
func minimumRealExponent(f float64) int {
	if float64(float32(f)) == f {
		return 2
	}
	return 3
}

// pack3 writes v as a 3-byte big-endian integer (used only by the
// offset table; spec.md §4.1).
func pack3(v uint64) [3]byte {
	return [3]byte{
		byte(v / 65536),
		byte((v / 256) % 256),
		byte(v % 256),
	}
}

// unpack3 reads a 3-byte big-endian integer.
func unpack3(b []byte) uint64 {
	return uint64(b[0])*65536 + uint64(b[1])*256 + uint64(b[2])
}

// putUint writes v as a big-endian unsigned integer of the given width
// (1..8 bytes) into buf, which must have len(buf) >= width.
func putUint(buf []byte, width int, v uint64) {
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v & 0xff)
		v >>= 8
	}
}

// getUint reads a big-endian unsigned integer from the first width
// bytes of buf.
func getUint(buf []byte, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		v = (v << 8) | uint64(buf[i])
	}
	return v
}

// getInt reads a big-endian two's-complement signed integer from the
// first width bytes of buf, sign-extending from that width.
func getInt(buf []byte, width int) int64 {
	v := getUint(buf, width)
	bits := uint(8 * width)
	if bits < 64 && v&(1<<(bits-1)) != 0 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}
