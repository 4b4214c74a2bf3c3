// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mapmodel parses a process's kernel-published virtual memory
// map (/proc/<pid>/maps) into a queryable model: region containment,
// permission checks, and named-module/heap/stack lookups.
package mapmodel

// Region describes one contiguous virtual address range of a process,
// as published by the kernel. The range is half-open: [Start, End).
type Region struct {
	Start       uint64
	End         uint64
	Permissions string // 4 chars, e.g. "r-xp"
	Offset      uint64
	Device      string // "MAJOR:MINOR", opaque
	Inode       uint64
	Pathname    string // "" if anonymous; may be "[heap]", "[stack]", "[stack:TID]", ...
}

// Size returns the number of bytes spanned by the region.
func (r Region) Size() uint64 {
	return r.End - r.Start
}

// Contains reports whether addr falls within the region under half-open
// semantics: Start <= addr < End. The kernel documents /proc maps ranges
// as half-open; a reference implementation that used an inclusive upper
// bound would misattribute the End byte to this region instead of the
// next one.
func (r Region) Contains(addr uint64) bool {
	return r.Start <= addr && addr < r.End
}

// Readable reports whether the region's permission string marks it
// readable.
func (r Region) Readable() bool {
	return r.hasPerm(0, 'r')
}

// Writable reports whether the region's permission string marks it
// writable.
func (r Region) Writable() bool {
	return r.hasPerm(1, 'w')
}

// Executable reports whether the region's permission string marks it
// executable.
func (r Region) Executable() bool {
	return r.hasPerm(2, 'x')
}

func (r Region) hasPerm(pos int, want byte) bool {
	return len(r.Permissions) > pos && r.Permissions[pos] == want
}

// HasPathname reports whether the region has a non-empty pathname.
func (r Region) HasPathname() bool {
	return r.Pathname != ""
}

// pathnameHas is a small helper shared by the Map lookup predicates.
func pathnameHas(r Region, pred func(string) bool) bool {
	return r.HasPathname() && pred(r.Pathname)
}
