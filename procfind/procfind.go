// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package procfind locates candidate process ids by the name the kernel
// recorded for them, so a caller does not need the pid up front to open
// a procmem.Handle.
package procfind

import (
	"os"
	"strconv"
	"strings"

	"github.com/progauge/procmem/procerr"
)

// ByExactName returns every pid under /proc whose comm equals name
// exactly.
func ByExactName(name string) ([]int, error) {
	return scan(func(comm string) bool { return comm == name })
}

// ByNameContains returns every pid under /proc whose comm contains
// needle as a substring.
func ByNameContains(needle string) ([]int, error) {
	return scan(func(comm string) bool { return strings.Contains(comm, needle) })
}

// scan walks /proc once, reading each numeric entry's comm file and
// keeping the pid when pred matches. A pid that disappears, or whose
// comm is unreadable, mid-walk (the process exited) is silently
// skipped rather than failing the whole scan.
func scan(pred func(comm string) bool) ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, procerr.Wrap(procerr.KindInvalidPid, err, "reading /proc")
	}

	var pids []int
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		comm, err := os.ReadFile("/proc/" + entry.Name() + "/comm")
		if err != nil {
			continue
		}

		if pred(strings.TrimSpace(string(comm))) {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}
