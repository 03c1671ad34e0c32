package trace

import (
	"strings"
	"testing"
)

func TestRingDropsOldestPastCapacity(t *testing.T) {
	r := NewRing(2)
	r.Push(Entry{PC: 1, Text: "one"})
	r.Push(Entry{PC: 2, Text: "two"})
	r.Push(Entry{PC: 3, Text: "three"})

	var sb strings.Builder
	r.Dump(&sb)
	out := sb.String()
	if strings.Contains(out, "one") {
		t.Fatalf("ring of capacity 2 retained evicted entry: %q", out)
	}
	if !strings.Contains(out, "two") || !strings.Contains(out, "three") {
		t.Fatalf("ring missing retained entries: %q", out)
	}
}

func TestRingPreservesChronologicalOrder(t *testing.T) {
	r := NewRing(3)
	r.Push(Entry{Text: "a"})
	r.Push(Entry{Text: "b"})
	r.Push(Entry{Text: "c"})

	var sb strings.Builder
	r.Dump(&sb)
	out := sb.String()
	ia, ib, ic := strings.Index(out, "a cyc="), strings.Index(out, "b cyc="), strings.Index(out, "c cyc=")
	if !(ia < ib && ib < ic) {
		t.Fatalf("entries out of chronological order: %q", out)
	}
}

func TestLoggerPrefixesTag(t *testing.T) {
	var sb strings.Builder
	l := Logger{Tag: "BUS", Out: &sb}
	l.Printf("unmapped write %08X", 0x1234)
	if !strings.HasPrefix(sb.String(), "[BUS] ") {
		t.Fatalf("Logger did not prefix tag: %q", sb.String())
	}
}

func TestLoggerNoOutputWithoutWriter(t *testing.T) {
	l := Logger{Tag: "BUS"}
	l.Printf("should not panic")
}
