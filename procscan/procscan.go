// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package procscan combines the memory map model, the process memory
// handle, and the offset scanner into heap/module/region/all-region
// pattern scans.
package procscan

import (
	"context"
	"sort"

	"github.com/progauge/procmem/mapmodel"
	"github.com/progauge/procmem/pattern"
	"github.com/progauge/procmem/procmem"
	"github.com/progauge/procmem/scanner"
)

// Facade binds a scan API to a single process memory handle and the
// default scanner built by New. Each scan method parses its pattern
// string and dispatches into scanner.ScanRange per region; the
// multi-region methods first clone the handle's current map (so iteration
// never aliases the handle's own mutably-driven stream).
type Facade struct {
	handle  *procmem.Handle
	scanner scanner.Scanner
}

// New returns a Facade bound to handle, using the default scanner chunk
// size.
func New(handle *procmem.Handle) *Facade {
	return &Facade{handle: handle, scanner: scanner.NewScanner()}
}

// ScanRegion scans exactly one region for patternText.
func (f *Facade) ScanRegion(region mapmodel.Region, patternText string) ([]uint64, error) {
	p, err := pattern.Parse(patternText)
	if err != nil {
		return nil, err
	}
	return f.scanner.ScanRange(f.handle, region.Start, region.End, p)
}

// ScanModule scans every readable region whose pathname contains name,
// concatenating hits in region order (regions are disjoint, so no
// cross-region dedup is needed) and then sorting ascending.
func (f *Facade) ScanModule(ctx context.Context, name, patternText string) ([]uint64, error) {
	p, err := pattern.Parse(patternText)
	if err != nil {
		return nil, err
	}
	regions := f.handle.Maps().Clone().FindByNameSubstring(name)
	return f.scanRegions(ctx, regions, p)
}

// ScanHeap scans every heap region.
func (f *Facade) ScanHeap(ctx context.Context, patternText string) ([]uint64, error) {
	p, err := pattern.Parse(patternText)
	if err != nil {
		return nil, err
	}
	regions := f.handle.Maps().Clone().HeapRegions()
	return f.scanRegions(ctx, regions, p)
}

// ScanAll scans every readable region in the map. Absence of matches is
// reported as an empty, error-free result, not as an error kind — a
// multi-region scan aggregates zero or more per-region results, and
// "none anywhere" is a normal outcome. ScanRange already absorbs the
// PatternNotFound of its in-buffer scans and returns an empty list for a
// region without matches.
func (f *Facade) ScanAll(ctx context.Context, patternText string) ([]uint64, error) {
	p, err := pattern.Parse(patternText)
	if err != nil {
		return nil, err
	}
	return f.scanRegions(ctx, f.handle.Maps().Clone(), p)
}

func (f *Facade) scanRegions(ctx context.Context, regions mapmodel.Map, p pattern.Pattern) ([]uint64, error) {
	var results []uint64
	for _, region := range regions {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if !region.Readable() {
			continue
		}
		hits, err := f.scanner.ScanRange(f.handle, region.Start, region.End, p)
		if err != nil {
			return nil, err
		}
		results = append(results, hits...)
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	return results, nil
}
