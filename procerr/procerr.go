// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package procerr defines the kind-tagged error values shared by every
// layer of the memory-scanning core. Rather than one error type per
// family, failures are a single sum type (a Kind plus a message) so that
// callers branch on Kind with errors.As instead of string-matching.
package procerr

import (
	"errors"
	"fmt"
)

// Kind identifies the failure category of an Error. Kinds are grouped by
// the family named in the design: map/address, read, write, pattern
// format, and pattern match.
type Kind int

const (
	// Map/address family.
	KindAddressInvalid Kind = iota
	KindAddressOutOfBounds
	KindAddressNotReadable
	KindInvalidPid
	KindParseError
	KindNoPermission

	// Read family.
	KindFailedToRead
	KindReadOutOfBounds

	// Write family.
	KindFailedToWrite
	KindWriteOutOfBounds

	// Shared between read and write families: T's size doesn't match
	// the bytes available at addr.
	KindBadDataType

	// Pattern-format family.
	KindContainsInvalidCharacters
	KindIsNonValidPattern

	// Pattern-match family.
	KindPatternNotFound
	KindPatternIsEmpty
	KindPatternLargerThanBuffer
)

var kindMessages = map[Kind]string{
	KindAddressInvalid:           "address is invalid",
	KindAddressOutOfBounds:       "address is out of bounds of process memory",
	KindAddressNotReadable:       "unreadable memory region",
	KindInvalidPid:               "invalid pid",
	KindParseError:               "error while parsing /proc maps",
	KindNoPermission:             "wrong permissions for region",
	KindFailedToRead:             "failed to read",
	KindReadOutOfBounds:          "read out of bounds",
	KindFailedToWrite:            "failed to write",
	KindWriteOutOfBounds:         "write out of bounds",
	KindBadDataType:              "bad data type",
	KindContainsInvalidCharacters: "pattern contains invalid characters",
	KindIsNonValidPattern:        "not a valid pattern",
	KindPatternNotFound:          "pattern not found",
	KindPatternIsEmpty:           "pattern is empty",
	KindPatternLargerThanBuffer:  "pattern is larger than the buffer",
}

// String implements fmt.Stringer for Kind, independent of any particular
// Error's detail text.
func (k Kind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return "unknown error"
}

// Error is the single error type surfaced by every public operation in
// the core. It always carries a Kind and a human-readable detail; it may
// wrap an underlying cause (e.g. an os.PathError from opening /proc).
type Error struct {
	kind   Kind
	detail string
	cause  error
}

// New constructs an Error of the given kind with a formatted detail
// message and no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, detail: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind, formatted detail message,
// and an underlying cause that Unwrap will expose.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, detail: fmt.Sprintf(format, args...), cause: cause}
}

// Kind reports the failure category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.detail, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.detail)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf returns the Kind of err if it is (or wraps) a *procerr.Error,
// and ok=false otherwise. This is the usual way callers branch on
// failure category without string-matching.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return 0, false
}

