// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pattern parses and matches the human-readable hex-and-wildcard
// byte patterns used to locate signatures in a target's memory.
//
// Accepted token grammar, whitespace-separated:
//
//	DE AD ? DE 0A ??
//	0xDE 0xAD 0x? 0xDE 0x0A 0x??
//
// A "0x"/"0X" prefix is stripped per-token before interpretation. After
// stripping, a token is "?", "??", or exactly two hex nibbles.
package pattern

import (
	"strings"

	"github.com/progauge/procmem/procerr"
)

// Pattern is an ordered, immutable sequence of (byte, significant) pairs.
// A non-significant position is a wildcard: it matches any byte.
type Pattern struct {
	bytes       []byte
	significant []bool
}

// Parse converts a whitespace-separated token string into a Pattern.
// An empty or all-whitespace input yields a valid, zero-length Pattern —
// it is only an error to hand that to a scan operation.
func Parse(text string) (Pattern, error) {
	fields := strings.Fields(text)
	bytes := make([]byte, 0, len(fields))
	significant := make([]bool, 0, len(fields))

	for _, raw := range fields {
		token := raw
		if strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X") {
			token = token[2:]
		}

		if token == "?" || token == "??" {
			bytes = append(bytes, 0x00)
			significant = append(significant, false)
			continue
		}

		if len(token) != 2 {
			return Pattern{}, procerr.New(procerr.KindIsNonValidPattern, "token %q", raw)
		}

		b, ok := parseHexByte(token)
		if !ok {
			return Pattern{}, procerr.New(procerr.KindContainsInvalidCharacters, "token %q", raw)
		}
		bytes = append(bytes, b)
		significant = append(significant, true)
	}

	return Pattern{bytes: bytes, significant: significant}, nil
}

func parseHexByte(s string) (byte, bool) {
	hi, ok := hexNibble(s[0])
	if !ok {
		return 0, false
	}
	lo, ok := hexNibble(s[1])
	if !ok {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Len returns the number of positions in the pattern.
func (p Pattern) Len() int {
	return len(p.bytes)
}

// Bytes returns the significant-or-not byte values, for diagnostics and
// formatting. Wildcard positions report 0x00.
func (p Pattern) Bytes() []byte {
	out := make([]byte, len(p.bytes))
	copy(out, p.bytes)
	return out
}

// Significant reports, per position, whether the byte at that position
// must match exactly.
func (p Pattern) Significant() []bool {
	out := make([]bool, len(p.significant))
	copy(out, p.significant)
	return out
}

// Matches reports whether slice starts with a run of bytes consistent
// with the pattern: slice must be at least as long as the pattern, and
// every significant position must match exactly. Wildcard positions are
// unconditionally satisfied.
func (p Pattern) Matches(slice []byte) bool {
	if len(slice) < len(p.bytes) {
		return false
	}
	for i, b := range p.bytes {
		if p.significant[i] && slice[i] != b {
			return false
		}
	}
	return true
}
