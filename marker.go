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

// Type markers (the high nibble of an object's first byte), spec.md §3.
const (
	markerSingleton byte = 0x0
	markerInt       byte = 0x1
	markerReal      byte = 0x2
	markerDate      byte = 0x3
	markerData      byte = 0x4
	markerAscii     byte = 0x5
	markerUnicode   byte = 0x6
	markerUTF8      byte = 0x7 // read-only tolerance, see SPEC_FULL.md
	markerUid       byte = 0x8
	markerArray     byte = 0xA
	markerDict      byte = 0xD
)

// Singleton nibbles under T=0 (spec.md §3).
const (
	singletonNull  byte = 0x0
	singletonFalse byte = 0x8
	singletonTrue  byte = 0x9
	singletonFill  byte = 0xF
)

// extendedLengthNibble is the sentinel low nibble indicating the true
// object length follows as a nested Int object (spec.md §4.2, "First-byte
// framing").
const extendedLengthNibble = 0xF

// firstByte composes an object's leading byte: high nibble is the type
// marker, low nibble is min(n, 15) — except for the singleton marker,
// whose low nibble is the literal singleton code and is never clamped.
func firstByte(marker byte, n int) byte {
	if marker == markerSingleton {
		return marker<<4 | byte(n)
	}
	low := n
	if low > 15 {
		low = extendedLengthNibble
	}
	return marker<<4 | byte(low)
}
