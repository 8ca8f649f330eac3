package model

import "testing"

func TestParseSource(t *testing.T) {
	tests := []struct {
		tag     string
		want    Source
		wantErr bool
	}{
		{"TB", SourceTB, false},
		{"tb", SourceTB, false},
		{"FB", SourceFB, false},
		{"fb", SourceFB, false},
		{"QB", SourceQB, false},
		{"qb", SourceQB, false},
		{"XX", "", true},
		{"", "", true},
		{"quickbooks", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseSource(tt.tag)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseSource(%q) expected error, got %q", tt.tag, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSource(%q) unexpected error: %v", tt.tag, err)
			}
			if got != tt.want {
				t.Errorf("ParseSource(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestSourceValid(t *testing.T) {
	for _, s := range Sources() {
		if !s.Valid() {
			t.Errorf("Source %q should be valid", s)
		}
	}
	if Source("XX").Valid() {
		t.Error("Source XX should not be valid")
	}
	if Source("").Valid() {
		t.Error("empty Source should not be valid")
	}
}

func TestGroupCounts(t *testing.T) {
	g := ReconciledGroup{
		StandardizedName: "A&N Towing And Transport",
		Members: map[Source][]string{
			SourceTB: {"A N Towing And Transport", "A N Towing And Transport Llc"},
			SourceFB: {"A&N TOWING AND TRANSPORT"},
			SourceQB: {},
		},
	}

	if got := g.MemberCount(); got != 3 {
		t.Errorf("MemberCount() = %d, want 3", got)
	}
	if got := g.SourceCount(); got != 2 {
		t.Errorf("SourceCount() = %d, want 2", got)
	}
}
