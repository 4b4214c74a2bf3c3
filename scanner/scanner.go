// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner locates pattern matches in an in-memory buffer or
// across an arbitrarily large remote address range, by chunked,
// overlapped reads through a memaccess.Reader. The scanner never sees a
// memory region — only a half-open address range and a reader — so it
// has no dependency on mapmodel or procmem.
package scanner

import (
	"slices"

	"github.com/progauge/procmem/memaccess"
	"github.com/progauge/procmem/pattern"
	"github.com/progauge/procmem/procerr"
)

// DefaultChunkSize is the number of bytes fetched per remote read in
// ScanRange when the Scanner was built with NewScanner.
const DefaultChunkSize = 1 << 20 // 1 MiB

// Scanner holds no mutable state between calls and is safe to share
// across concurrent scans (each scan only reads through the caller's own
// memaccess.Reader).
type Scanner struct {
	ChunkSize int
}

// NewScanner returns a Scanner with the default chunk size.
func NewScanner() Scanner {
	return Scanner{ChunkSize: DefaultChunkSize}
}

// ScanBuffer returns every offset in buf at which p matches, in
// ascending order. An empty pattern or a buffer shorter than the pattern
// is an error; no matches is also an error (PatternNotFound), per the
// all-or-nothing match-error contract used throughout the core.
func ScanBuffer(buf []byte, p pattern.Pattern) ([]uint64, error) {
	if p.Len() == 0 {
		return nil, procerr.New(procerr.KindPatternIsEmpty, "scan buffer")
	}
	if len(buf) < p.Len() {
		return nil, procerr.New(procerr.KindPatternLargerThanBuffer, "buffer %d bytes, pattern %d bytes", len(buf), p.Len())
	}

	var hits []uint64
	for i := 0; i <= len(buf)-p.Len(); i++ {
		if p.Matches(buf[i : i+p.Len()]) {
			hits = append(hits, uint64(i))
		}
	}

	if len(hits) == 0 {
		return nil, procerr.New(procerr.KindPatternNotFound, "pattern not found in buffer")
	}
	return hits, nil
}

// ScanRange searches the half-open range [start, end) of r's address
// space for p, returning absolute match addresses in ascending order
// with adjacent duplicates removed. Duplicates arise naturally from the
// overlap between consecutive chunks and are not an error.
//
// ScanRange reads only addresses within [start, end): each chunk is
// capped to min(ChunkSize, end-cursor), and the loop stops as soon as
// the remaining window is smaller than the pattern (no match can start
// there). A chunk whose underlying reads fail partway through is
// truncated, not aborted — the bytes collected so far are still
// scanned.
func (s Scanner) ScanRange(r memaccess.Reader, start, end uint64, p pattern.Pattern) ([]uint64, error) {
	if p.Len() == 0 {
		return nil, procerr.New(procerr.KindPatternIsEmpty, "scan range")
	}
	if start >= end {
		return nil, procerr.New(procerr.KindAddressOutOfBounds, "start 0x%x >= end 0x%x", start, end)
	}

	chunkSize := s.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	overlap := uint64(p.Len() - 1)

	var results []uint64
	cursor := start
	for cursor < end {
		remaining := end - cursor
		readSize := uint64(chunkSize)
		if remaining < readSize {
			readSize = remaining
		}
		if readSize < uint64(p.Len()) {
			break
		}

		buf := make([]byte, 0, readSize)
		for i := uint64(0); i < readSize; i++ {
			b, err := r.ReadByte(cursor + i)
			if err != nil {
				break
			}
			buf = append(buf, b)
		}

		if uint64(len(buf)) >= uint64(p.Len()) {
			hits, err := ScanBuffer(buf, p)
			if err != nil {
				if kind, ok := procerr.KindOf(err); !ok || kind != procerr.KindPatternNotFound {
					return nil, err
				}
			} else {
				for _, rel := range hits {
					results = append(results, cursor+rel)
				}
			}
		}

		cursor += readSize
		if cursor-start > overlap {
			cursor -= overlap
		} else {
			cursor = start
		}
	}

	slices.Sort(results)
	return slices.Compact(results), nil
}
