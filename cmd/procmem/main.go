// Copyright 2026 The procmem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command procmem is a one-shot command-line front end over the
// mapmodel/procmem/scanner/procscan packages: attach to a pid, list its
// memory map, read or write a typed value, or scan for a byte pattern.
// Every subcommand runs once and exits; there is no interactive prompt.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/progauge/procmem/hexdump"
	"github.com/progauge/procmem/internal/xlog"
	"github.com/progauge/procmem/mapmodel"
	"github.com/progauge/procmem/procerr"
	"github.com/progauge/procmem/procfind"
	"github.com/progauge/procmem/procmem"
	"github.com/progauge/procmem/procscan"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "procmem",
		Short:        "Inspect and pattern-scan a running process's memory",
		SilenceUsage: true,
	}
	root.AddCommand(newMapsCmd(), newReadCmd(), newWriteCmd(), newScanCmd(), newFindCmd())
	return root
}

func newFindCmd() *cobra.Command {
	var contains bool
	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "List pids whose /proc/<pid>/comm matches name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var pids []int
			var err error
			if contains {
				pids, err = procfind.ByNameContains(name)
			} else {
				pids, err = procfind.ByExactName(name)
			}
			if err != nil {
				return err
			}
			for _, pid := range pids {
				fmt.Fprintln(cmd.OutOrStdout(), pid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&contains, "contains", false, "substring match instead of exact match")
	return cmd
}

func newMapsCmd() *cobra.Command {
	var pid int
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Print the virtual memory map of a process",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(pid)
			m, err := mapmodel.Snapshot(pid)
			if err != nil {
				log.WithError(err).Error("failed to snapshot memory map")
				return err
			}
			for _, r := range m {
				fmt.Fprintf(cmd.OutOrStdout(), "%016x-%016x %s %08x %s %d %s\n",
					r.Start, r.End, r.Permissions, r.Offset, r.Device, r.Inode, r.Pathname)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pid, "pid", 0, "target process id")
	cmd.MarkFlagRequired("pid")
	return cmd
}

func newReadCmd() *cobra.Command {
	var pid int
	var addrStr, typeName string
	var length int
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a typed value, or a raw byte range, at an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(pid)
			addr, err := parseAddr(addrStr)
			if err != nil {
				return err
			}

			h, err := procmem.Open(pid, false)
			if err != nil {
				log.WithError(err).Error("failed to attach")
				return err
			}
			defer h.Close()

			if typeName == "" {
				return readDump(cmd, h, addr, length)
			}
			return readTyped(cmd, h, addr, typeName)
		},
	}
	cmd.Flags().IntVar(&pid, "pid", 0, "target process id")
	cmd.Flags().StringVar(&addrStr, "addr", "", "address, hex with 0x prefix or decimal")
	cmd.Flags().StringVar(&typeName, "type", "", "uint8|uint16|uint32|uint64|int8|int16|int32|int64 (omit for raw dump)")
	cmd.Flags().IntVar(&length, "length", 64, "bytes to dump when --type is omitted")
	cmd.MarkFlagRequired("pid")
	cmd.MarkFlagRequired("addr")
	return cmd
}

func readTyped(cmd *cobra.Command, h *procmem.Handle, addr uint64, typeName string) error {
	switch typeName {
	case "uint8":
		v, err := procmem.ReadValue[uint8](h, addr)
		return printOrErr(cmd, v, err)
	case "uint16":
		v, err := procmem.ReadValue[uint16](h, addr)
		return printOrErr(cmd, v, err)
	case "uint32":
		v, err := procmem.ReadValue[uint32](h, addr)
		return printOrErr(cmd, v, err)
	case "uint64":
		v, err := procmem.ReadValue[uint64](h, addr)
		return printOrErr(cmd, v, err)
	case "int8":
		v, err := procmem.ReadValue[int8](h, addr)
		return printOrErr(cmd, v, err)
	case "int16":
		v, err := procmem.ReadValue[int16](h, addr)
		return printOrErr(cmd, v, err)
	case "int32":
		v, err := procmem.ReadValue[int32](h, addr)
		return printOrErr(cmd, v, err)
	case "int64":
		v, err := procmem.ReadValue[int64](h, addr)
		return printOrErr(cmd, v, err)
	default:
		return procerr.New(procerr.KindBadDataType, "unknown --type %q", typeName)
	}
}

func printOrErr(cmd *cobra.Command, v any, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
	return nil
}

func readDump(cmd *cobra.Command, h *procmem.Handle, addr uint64, length int) error {
	if length <= 0 {
		return procerr.New(procerr.KindAddressOutOfBounds, "--length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	for i := range buf {
		b, err := h.ReadByte(addr + uint64(i))
		if err != nil {
			buf = buf[:i]
			break
		}
		buf[i] = b
	}
	fmt.Fprint(cmd.OutOrStdout(), hexdump.Dump(buf, addr, nil))
	return nil
}

func newWriteCmd() *cobra.Command {
	var pid int
	var addrStr, typeName, valueStr string
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a typed value at an address",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(pid)
			addr, err := parseAddr(addrStr)
			if err != nil {
				return err
			}

			h, err := procmem.Open(pid, true)
			if err != nil {
				log.WithError(err).Error("failed to attach")
				return err
			}
			defer h.Close()

			return writeTyped(h, addr, typeName, valueStr)
		},
	}
	cmd.Flags().IntVar(&pid, "pid", 0, "target process id")
	cmd.Flags().StringVar(&addrStr, "addr", "", "address, hex with 0x prefix or decimal")
	cmd.Flags().StringVar(&typeName, "type", "", "uint8|uint16|uint32|uint64|int8|int16|int32|int64")
	cmd.Flags().StringVar(&valueStr, "value", "", "decimal value to write")
	cmd.MarkFlagRequired("pid")
	cmd.MarkFlagRequired("addr")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("value")
	return cmd
}

func writeTyped(h *procmem.Handle, addr uint64, typeName, valueStr string) error {
	switch typeName {
	case "uint8":
		v, err := strconv.ParseUint(valueStr, 10, 8)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, uint8(v))
	case "uint16":
		v, err := strconv.ParseUint(valueStr, 10, 16)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, uint16(v))
	case "uint32":
		v, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, uint32(v))
	case "uint64":
		v, err := strconv.ParseUint(valueStr, 10, 64)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, v)
	case "int8":
		v, err := strconv.ParseInt(valueStr, 10, 8)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, int8(v))
	case "int16":
		v, err := strconv.ParseInt(valueStr, 10, 16)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, int16(v))
	case "int32":
		v, err := strconv.ParseInt(valueStr, 10, 32)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, int32(v))
	case "int64":
		v, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return procerr.Wrap(procerr.KindBadDataType, err, "parsing --value")
		}
		return procmem.WriteValue(h, addr, v)
	default:
		return procerr.New(procerr.KindBadDataType, "unknown --type %q", typeName)
	}
}

func newScanCmd() *cobra.Command {
	var pid int
	var pattern, region, moduleName string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a process for a byte pattern (with ?? wildcards)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(pid)
			h, err := procmem.Open(pid, false)
			if err != nil {
				log.WithError(err).Error("failed to attach")
				return err
			}
			defer h.Close()

			facade := procscan.New(h)
			ctx := context.Background()

			var hits []uint64
			switch {
			case region == "heap":
				hits, err = facade.ScanHeap(ctx, pattern)
			case region == "all" || region == "":
				hits, err = facade.ScanAll(ctx, pattern)
			case strings.HasPrefix(region, "module:"):
				hits, err = facade.ScanModule(ctx, strings.TrimPrefix(region, "module:"), pattern)
			case region == "module":
				hits, err = facade.ScanModule(ctx, moduleName, pattern)
			default:
				err = procerr.New(procerr.KindBadDataType, "unknown --region %q", region)
			}
			if err != nil {
				return err
			}
			for _, addr := range hits {
				fmt.Fprintf(cmd.OutOrStdout(), "0x%x\n", addr)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&pid, "pid", 0, "target process id")
	cmd.Flags().StringVar(&pattern, "pattern", "", "hex byte pattern, e.g. 'DE AD ?? EF'")
	cmd.Flags().StringVar(&region, "region", "all", "heap|all|module:<name>")
	cmd.Flags().StringVar(&moduleName, "module", "", "module name, used with --region module")
	cmd.MarkFlagRequired("pid")
	cmd.MarkFlagRequired("pattern")
	return cmd
}

func parseAddr(s string) (uint64, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	addr, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, procerr.Wrap(procerr.KindParseError, err, "parsing address %q", s)
	}
	return addr, nil
}
