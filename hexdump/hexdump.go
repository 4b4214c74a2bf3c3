// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hexdump renders a byte slice read from a target process as a
// canonical offset/hex/ASCII dump, for CLI output and debugging.
package hexdump

import (
	"fmt"
	"strings"
)

const bytesPerLine = 16

// Dump renders data as a hexdump whose left column is base+offset. highlight,
// if non-nil, is a set of absolute addresses to mark with brackets instead
// of spaces around their hex byte, typically the hit addresses from a scan.
func Dump(data []byte, base uint64, highlight map[uint64]bool) string {
	var b strings.Builder
	for off := 0; off < len(data); off += bytesPerLine {
		end := off + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		fmt.Fprintf(&b, "%016x  ", base+uint64(off))
		for i := 0; i < bytesPerLine; i++ {
			if i == bytesPerLine/2 {
				b.WriteByte(' ')
			}
			if i >= len(line) {
				b.WriteString("   ")
				continue
			}
			addr := base + uint64(off+i)
			if highlight[addr] {
				fmt.Fprintf(&b, "[%02x]", line[i])
			} else {
				fmt.Fprintf(&b, " %02x ", line[i])
			}
		}
		b.WriteString(" |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
