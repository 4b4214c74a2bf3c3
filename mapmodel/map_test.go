package mapmodel

import (
	"testing"

	"github.com/progauge/procmem/procerr"
)

func parseLines(t *testing.T, lines ...string) Map {
	t.Helper()
	var m Map
	for _, l := range lines {
		r, ok, err := parseMapsLine(l)
		if err != nil {
			t.Fatalf("parseMapsLine(%q): %v", l, err)
		}
		if ok {
			m = append(m, r)
		}
	}
	return m
}

func TestParseMapsLineBasic(t *testing.T) {
	m := parseLines(t, "7f00-7f10 r-xp 0 08:01 12345 /lib/x.so")
	if len(m) != 1 {
		t.Fatalf("got %d regions, want 1", len(m))
	}
	r := m[0]
	if r.Start != 0x7f00 || r.End != 0x7f10 {
		t.Errorf("range = 0x%x-0x%x, want 0x7f00-0x7f10", r.Start, r.End)
	}
	if r.Permissions != "r-xp" || r.Offset != 0 || r.Device != "08:01" || r.Inode != 12345 {
		t.Errorf("unexpected fields: %+v", r)
	}
	if r.Pathname != "/lib/x.so" {
		t.Errorf("Pathname = %q, want /lib/x.so", r.Pathname)
	}
}

func TestParseMapsLineMultiWordPathname(t *testing.T) {
	m := parseLines(t, "1000-2000 rw-p 0 00:00 0  /path with spaces/lib.so")
	if len(m) != 1 {
		t.Fatalf("got %d regions, want 1", len(m))
	}
	if m[0].Pathname != "/path with spaces/lib.so" {
		t.Errorf("Pathname = %q", m[0].Pathname)
	}
}

func TestParseMapsLineSkipsMalformed(t *testing.T) {
	m := parseLines(t, "only two fields")
	if len(m) != 0 {
		t.Errorf("expected malformed line to be skipped, got %d regions", len(m))
	}
}

func TestParseMapsLineSkipsBadRangeSplit(t *testing.T) {
	m := parseLines(t, "7f00-7f10-extra r-xp 0 08:01 12345 /lib/x.so")
	if len(m) != 0 {
		t.Errorf("expected bad range split to be skipped, got %d regions", len(m))
	}
}

func TestParseMapsLineBadHexIsFatal(t *testing.T) {
	_, _, err := parseMapsLine("zz00-7f10 r-xp 0 08:01 12345 /lib/x.so")
	if kind, ok := procerr.KindOf(err); !ok || kind != procerr.KindParseError {
		t.Errorf("kind = %v, ok=%v; want KindParseError", kind, ok)
	}
}

func TestContainsIsHalfOpen(t *testing.T) {
	r := Region{Start: 0x1000, End: 0x2000}
	if !r.Contains(0x1000) {
		t.Error("Contains(Start) should be true")
	}
	if !r.Contains(0x1fff) {
		t.Error("Contains(End-1) should be true")
	}
	if r.Contains(0x2000) {
		t.Error("Contains(End) should be false under half-open semantics")
	}
}

func TestHeapAndStackRegions(t *testing.T) {
	m := Map{
		{Start: 1, End: 2, Pathname: "[heap]"},
		{Start: 2, End: 3, Pathname: "[stack]"},
		{Start: 3, End: 4, Pathname: "[stack:123]"},
		{Start: 4, End: 5, Pathname: "/lib/x.so"},
	}
	if got := m.HeapRegions(); len(got) != 1 || got[0].Pathname != "[heap]" {
		t.Errorf("HeapRegions() = %+v", got)
	}
	if got := m.StackRegions(); len(got) != 2 {
		t.Errorf("StackRegions() = %+v, want 2 entries", got)
	}
}

func TestModuleBaseAndLoadBase(t *testing.T) {
	m := Map{
		{Start: 0x7f00, End: 0x7f10, Offset: 0, Permissions: "r-xp", Pathname: "/lib/x.so"},
	}
	base, ok := m.ModuleBase("x.so")
	if !ok || base != 0x7f00 {
		t.Fatalf("ModuleBase = 0x%x, %v; want 0x7f00, true", base, ok)
	}
	loadBase, ok := m.ModuleLoadBase("x.so")
	if !ok || loadBase != 0x7f00 {
		t.Fatalf("ModuleLoadBase = 0x%x, %v; want 0x7f00, true", loadBase, ok)
	}

	m = append(m, Region{Start: 0x7f10, End: 0x7f20, Offset: 0x10, Permissions: "r-xp", Pathname: "/lib/x.so"})
	loadBase, ok = m.ModuleLoadBase("x.so")
	if !ok || loadBase != 0x7f00 {
		t.Fatalf("ModuleLoadBase with second segment = 0x%x, %v; want 0x7f00, true", loadBase, ok)
	}
}

func TestCanReadRejectsSpanningTwoRegions(t *testing.T) {
	m := Map{
		{Start: 0x1000, End: 0x1010, Permissions: "r--p"},
		{Start: 0x1010, End: 0x1020, Permissions: "r--p"},
	}
	// A read entirely within the first region succeeds.
	if err := m.CanRead(0x1000, 0x10); err != nil {
		t.Errorf("CanRead within region: %v", err)
	}
	// A read straddling both regions is rejected even though both are readable.
	err := m.CanRead(0x1008, 0x10)
	if kind, ok := procerr.KindOf(err); !ok || kind != procerr.KindAddressOutOfBounds {
		t.Errorf("CanRead spanning regions kind = %v, ok=%v; want KindAddressOutOfBounds", kind, ok)
	}
}

func TestCanReadNoPermission(t *testing.T) {
	m := Map{{Start: 0x1000, End: 0x2000, Permissions: "-w-p"}}
	err := m.CanRead(0x1000, 1)
	if kind, ok := procerr.KindOf(err); !ok || kind != procerr.KindNoPermission {
		t.Errorf("kind = %v, ok=%v; want KindNoPermission", kind, ok)
	}
}

func TestCanReadAddressOutOfBounds(t *testing.T) {
	m := Map{{Start: 0x1000, End: 0x2000, Permissions: "r--p"}}
	err := m.CanRead(0x5000, 1)
	if kind, ok := procerr.KindOf(err); !ok || kind != procerr.KindAddressOutOfBounds {
		t.Errorf("kind = %v, ok=%v; want KindAddressOutOfBounds", kind, ok)
	}
}

func TestCanWriteAndCanExecute(t *testing.T) {
	m := Map{{Start: 0x1000, End: 0x2000, Permissions: "rwxp"}}
	if err := m.CanWrite(0x1000, 0x10); err != nil {
		t.Errorf("CanWrite: %v", err)
	}
	if err := m.CanExecute(0x1000); err != nil {
		t.Errorf("CanExecute: %v", err)
	}

	m = Map{{Start: 0x1000, End: 0x2000, Permissions: "r--p"}}
	if err := m.CanWrite(0x1000, 1); err == nil {
		t.Error("CanWrite should fail on a read-only region")
	}
	if err := m.CanExecute(0x1000); err == nil {
		t.Error("CanExecute should fail on a non-executable region")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := Map{{Start: 1, End: 2}}
	c := m.Clone()
	c[0].Start = 99
	if m[0].Start != 1 {
		t.Error("Clone shares backing array with the original Map")
	}
}
