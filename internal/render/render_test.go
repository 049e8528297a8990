package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatters(t *testing.T) {
	if got := Money(1449.5); got != "$1449.50" {
		t.Fatalf("Money = %q", got)
	}
	if got := Qty(3); got != "3" {
		t.Fatalf("Qty(3) = %q", got)
	}
	if got := Qty(2.5); got != "2.5" {
		t.Fatalf("Qty(2.5) = %q", got)
	}
	if got := Hours(1.25); got != "1.25h" {
		t.Fatalf("Hours = %q", got)
	}
}

func TestRenderTablePorcelain(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable, Porcelain: true})

	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{
		{"PRJ-00001", "HQ refresh"},
		{"PRJ-00002", "Campus audio"},
	})
	if err != nil {
		t.Fatalf("RenderTable: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "ID\tNAME" || lines[1] != "PRJ-00001\tHQ refresh" {
		t.Fatalf("unexpected porcelain output:\n%s", buf.String())
	}
}

func TestRenderTableAligned(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})

	err := r.RenderTable([]string{"ID", "NAME"}, [][]string{
		{"PRJ-00001", "HQ"},
	})
	if err != nil {
		t.Fatalf("RenderTable: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "NAME") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "---") {
		t.Fatalf("expected a separator line, got %q", lines[1])
	}
	// The ID column pads to the widest cell.
	if !strings.HasPrefix(lines[2], "PRJ-00001  ") {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{})
	if err := r.RenderTable([]string{"ID"}, nil); err != nil {
		t.Fatalf("RenderTable: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("empty table must print nothing, got %q", buf.String())
	}
}

func TestRenderJSONPorcelain(t *testing.T) {
	var buf bytes.Buffer

	compact := NewRenderer(&buf, Options{Porcelain: true})
	if err := compact.RenderJSON(map[string]int{"qty": 3}); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != `{"qty":3}` {
		t.Fatalf("porcelain json = %q", got)
	}

	buf.Reset()
	pretty := NewRenderer(&buf, Options{})
	if err := pretty.RenderJSON(map[string]int{"qty": 3}); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("expected indented json, got %q", buf.String())
	}
}
