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
	"errors"
	"fmt"
)

// Sentinel errors for EncodeError (spec.md §6/§7). Compare with
// errors.Is, the way blacktop/go-macho's ErrSwiftSectionError and
// similar sentinels are checked in that repo's tests.
var (
	ErrUnsupportedType = errors.New("bplist: unsupported value type")
	ErrAsciiRange      = errors.New("bplist: ascii string contains non-ASCII code point")
	ErrNumericOverflow = errors.New("bplist: numeric value out of range")
	ErrPoolOverflow    = errors.New("bplist: object pool exceeds 65535 entries")
)

// Sentinel errors for DecodeError.
var (
	ErrBadMagic         = errors.New("bplist: bad magic number")
	ErrTruncatedTrailer = errors.New("bplist: truncated trailer")
	ErrUnknownMarker    = errors.New("bplist: unknown type marker")
	ErrInvalidSingleton = errors.New("bplist: invalid singleton nibble")
	ErrShortRead        = errors.New("bplist: short read")
	ErrBadReference     = errors.New("bplist: object reference out of range")
	ErrBadUTF16         = errors.New("bplist: invalid UTF-16 code unit sequence")
)

// EncodeError wraps an encoding failure with the offending value's
// position in the input graph, where available.
type EncodeError struct {
	Err   error // one of the Err* sentinels above
	Kind  Kind  // variant of the offending value, if applicable
	Index int   // pool index being encoded when the error occurred, or -1
}

func (e *EncodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("encode: object %d (%v): %v", e.Index, e.Kind, e.Err)
	}
	return fmt.Sprintf("encode: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func newEncodeError(err error, kind Kind, index int) *EncodeError {
	return &EncodeError{Err: err, Kind: kind, Index: index}
}

// DecodeError wraps a decoding failure with the byte offset into the
// stream where the failure was detected.
type DecodeError struct {
	Err    error // one of the Err* sentinels above
	Offset int64 // byte offset into the stream, or -1 if not applicable
}

func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("decode: offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newDecodeError(err error, offset int64) *DecodeError {
	return &DecodeError{Err: err, Offset: offset}
}
