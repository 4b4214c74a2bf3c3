// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mapmodel

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/progauge/procmem/procerr"
)

// Map is an ordered, immutable snapshot of one process's virtual memory
// regions, in the order the kernel published them (ascending Start). A
// Map never tracks live changes in the target; callers racing against a
// mutating target must take a new Snapshot.
type Map []Region

// Snapshot reads and parses /proc/<pid>/maps. Lines with fewer than five
// whitespace-separated tokens, or whose address range does not split
// into exactly two '-'-joined halves, are silently skipped (this keeps
// the parser forward-compatible with kernel versions that add columns).
// A structurally well-formed line with unparsable hex/decimal fields is
// fatal to the whole snapshot.
func Snapshot(pid int) (Map, error) {
	path := fmt.Sprintf("/proc/%d/maps", pid)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, procerr.Wrap(procerr.KindInvalidPid, err, "reading %s", path)
	}

	var regions Map
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		region, ok, err := parseMapsLine(line)
		if err != nil {
			return nil, err
		}
		if ok {
			regions = append(regions, region)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, procerr.Wrap(procerr.KindInvalidPid, err, "reading %s", path)
	}
	return regions, nil
}

func parseMapsLine(line string) (Region, bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, false, nil
	}

	addrParts := strings.Split(fields[0], "-")
	if len(addrParts) != 2 {
		return Region{}, false, nil
	}

	start, err := strconv.ParseUint(addrParts[0], 16, 64)
	if err != nil {
		return Region{}, false, procerr.Wrap(procerr.KindParseError, err, "start address %q", addrParts[0])
	}
	end, err := strconv.ParseUint(addrParts[1], 16, 64)
	if err != nil {
		return Region{}, false, procerr.Wrap(procerr.KindParseError, err, "end address %q", addrParts[1])
	}

	offset, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return Region{}, false, procerr.Wrap(procerr.KindParseError, err, "offset %q", fields[2])
	}
	inode, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return Region{}, false, procerr.Wrap(procerr.KindParseError, err, "inode %q", fields[4])
	}

	var pathname string
	if len(fields) > 5 {
		pathname = strings.Join(fields[5:], " ")
	}

	return Region{
		Start:       start,
		End:         end,
		Permissions: fields[1],
		Offset:      offset,
		Device:      fields[3],
		Inode:       inode,
		Pathname:    pathname,
	}, true, nil
}

// FindByAddress returns the first region containing addr, if any.
func (m Map) FindByAddress(addr uint64) (Region, bool) {
	for _, r := range m {
		if r.Contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

// FindByNameSubstring returns every region whose pathname contains s.
func (m Map) FindByNameSubstring(s string) []Region {
	return m.filterByName(func(p string) bool { return strings.Contains(p, s) })
}

// FindByNameExact returns every region whose pathname equals s exactly.
func (m Map) FindByNameExact(s string) []Region {
	return m.filterByName(func(p string) bool { return p == s })
}

// FindByNamePrefix returns every region whose pathname starts with s.
func (m Map) FindByNamePrefix(s string) []Region {
	return m.filterByName(func(p string) bool { return strings.HasPrefix(p, s) })
}

// FindByNameSuffix returns every region whose pathname ends with s.
func (m Map) FindByNameSuffix(s string) []Region {
	return m.filterByName(func(p string) bool { return strings.HasSuffix(p, s) })
}

func (m Map) filterByName(pred func(string) bool) []Region {
	var out []Region
	for _, r := range m {
		if pathnameHas(r, pred) {
			out = append(out, r)
		}
	}
	return out
}

// HeapRegions returns the process's heap region(s), typically just
// "[heap]".
func (m Map) HeapRegions() []Region {
	return m.FindByNameExact("[heap]")
}

// StackRegions returns the process's stack region(s): the main thread's
// "[stack]" and any per-thread "[stack:TID]".
func (m Map) StackRegions() []Region {
	return m.FindByNamePrefix("[stack")
}

// ModuleBase returns the lowest start address among executable regions
// whose pathname contains name, and whether any such region exists.
func (m Map) ModuleBase(name string) (uint64, bool) {
	var base uint64
	found := false
	for _, r := range m.FindByNameSubstring(name) {
		if !r.Executable() {
			continue
		}
		if !found || r.Start < base {
			base = r.Start
			found = true
		}
	}
	return base, found
}

// ModuleLoadBase returns the probable image load address: the minimum of
// Start-Offset among executable regions whose pathname contains name.
// This accounts for an executable segment mapped at a non-zero file
// offset.
func (m Map) ModuleLoadBase(name string) (uint64, bool) {
	var base uint64
	found := false
	for _, r := range m.FindByNameSubstring(name) {
		if !r.Executable() {
			continue
		}
		candidate := r.Start - r.Offset
		if !found || candidate < base {
			base = candidate
			found = true
		}
	}
	return base, found
}

// CanRead reports whether a read of size bytes starting at addr is
// permitted: addr must fall in a readable region, and addr+size-1 must
// fall in that SAME region (a read spanning two adjacent regions is
// rejected even if both are readable, keeping the check cheap and
// deterministic).
func (m Map) CanRead(addr uint64, size uint64) error {
	return m.canAccess(addr, size, Region.Readable, procerr.KindNoPermission, "read")
}

// CanWrite is the write-path analog of CanRead.
func (m Map) CanWrite(addr uint64, size uint64) error {
	return m.canAccess(addr, size, Region.Writable, procerr.KindNoPermission, "write")
}

// CanExecute reports whether the region containing addr is executable.
func (m Map) CanExecute(addr uint64) error {
	r, ok := m.FindByAddress(addr)
	if !ok {
		return procerr.New(procerr.KindAddressOutOfBounds, "0x%x", addr)
	}
	if !r.Executable() {
		return procerr.New(procerr.KindNoPermission, "region 0x%x-0x%x is not executable", r.Start, r.End)
	}
	return nil
}

func (m Map) canAccess(addr, size uint64, allowed func(Region) bool, permKind procerr.Kind, verb string) error {
	r, ok := m.FindByAddress(addr)
	if !ok {
		return procerr.New(procerr.KindAddressOutOfBounds, "0x%x", addr)
	}
	if !allowed(r) {
		return procerr.New(permKind, "region 0x%x-0x%x is not %sable", r.Start, r.End, verb)
	}
	if size == 0 {
		return nil
	}
	end := addr + size - 1
	if !r.Contains(end) {
		return procerr.New(procerr.KindAddressOutOfBounds,
			"%s of 0x%x (size %d) extends beyond region boundary 0x%x-0x%x", verb, addr, size, r.Start, r.End)
	}
	return nil
}

// Clone returns a value copy of the region list, safe to iterate while a
// handle mutably drives its own stream.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	copy(out, m)
	return out
}
