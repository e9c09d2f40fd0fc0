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

// Package bplist reads and writes Apple's binary property list format
// (bplist00): a self-contained, random-access, type-tagged object graph
// serialization.
//
// A Value is a tagged union of the types the format supports: booleans,
// a null and a "fill" singleton, signed integers, floating-point reals,
// timestamps, opaque byte strings, ASCII and UTF-16 text, unique
// identifiers (UID), ordered arrays, and keyed dictionaries. Encode
// deduplicates structurally equal leaves into a single object pool and
// writes the bplist00 object table, offset table, and trailer that
// describe it. Decode is the exact inverse.
//
// References:
//
//	https://opensource.apple.com/source/CF/CF-550/CFBinaryPList.c
package bplist
