package id

import "testing"

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatal("expected distinct ids")
	}
	if !IsUUID(a) {
		t.Fatalf("expected a uuid, got %q", a)
	}
}

func TestFormat(t *testing.T) {
	if got := FormatProject(1); got != "PRJ-00001" {
		t.Fatalf("FormatProject(1) = %q", got)
	}
	if got := FormatRevision(42); got != "REV-00042" {
		t.Fatalf("FormatRevision(42) = %q", got)
	}
	if got := FormatPackage(99999); got != "PKG-99999" {
		t.Fatalf("FormatPackage(99999) = %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		wantType Type
		wantSeq  int
		wantErr  bool
	}{
		{"PRJ-00001", TypeProject, 1, false},
		{"REV-00042", TypeRevision, 42, false},
		{"PKG-12345", TypePackage, 12345, false},
		{"  PRJ-00007  ", TypeProject, 7, false},
		{"PRJ-1", "", 0, true},
		{"prj-00001", "", 0, true},
		{"TSK-00001", "", 0, true},
		{"", "", 0, true},
	}
	for _, tt := range tests {
		typ, seq, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if typ != tt.wantType || seq != tt.wantSeq {
			t.Fatalf("Parse(%q) = (%q, %d)", tt.in, typ, seq)
		}
	}
}

func TestIsFriendlyID(t *testing.T) {
	if !IsFriendlyID("PRJ-00001") {
		t.Fatal("PRJ-00001 is a friendly id")
	}
	if IsFriendlyID(New()) {
		t.Fatal("a uuid is not a friendly id")
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("A7F3B2C1-0000-4000-8000-000000000000") {
		t.Fatal("uuid check must be case-insensitive")
	}
	if IsUUID("PRJ-00001") {
		t.Fatal("friendly id is not a uuid")
	}
}
