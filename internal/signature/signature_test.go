package signature

import (
	"strings"
	"testing"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
	"github.com/customer-recon/internal/normalize"
)

func TestStrategiesCounts(t *testing.T) {
	// Digit-bearing tokens stem to themselves, which makes the expected
	// signature sets exact.
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{
			name:   "two tokens, no subsets",
			tokens: []string{"T1000", "T2000"},
			want: []string{
				"t1000 t2000",
				"t100 t200",
			},
		},
		{
			name:   "three tokens, first two drop positions only",
			tokens: []string{"T1000", "T2000", "T3000"},
			want: []string{
				"t1000 t2000 t3000",
				"t100 t200 t300",
				"t2000 t3000",
				"t1000 t3000",
			},
		},
		{
			name:   "four tokens, all drop positions",
			tokens: []string{"T1000", "T2000", "T3000", "T4000"},
			want: []string{
				"t1000 t2000 t3000 t4000",
				"t100 t200 t300 t400",
				"t2000 t3000 t4000",
				"t1000 t3000 t4000",
				"t1000 t2000 t4000",
				"t1000 t2000 t3000",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strategies(tt.tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("Strategies(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Strategies(%v)[%d] = %q, want %q", tt.tokens, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStrategiesFoldInflectedForms(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
	}{
		{"plural", []string{"ARROW"}, []string{"ARROWS"}},
		{"plural surname", []string{"ALBERTSON", "COMPANIES"}, []string{"ALBERTSONS", "COMPANIES"}},
		{"token order", []string{"TOWING", "ACME"}, []string{"ACME", "TOWING"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sigA := Strategies(tt.a)
			sigB := Strategies(tt.b)
			if sigA[0] != sigB[0] {
				t.Errorf("primary signatures differ: %q vs %q", sigA[0], sigB[0])
			}
		})
	}
}

func TestStrategiesFallbacks(t *testing.T) {
	// Initials carry no meaningful tokens, so all tokens are used.
	got := Strategies([]string{"A", "B"})
	if len(got) == 0 || got[0] != "a b" {
		t.Errorf("initials-only tokens = %v, want primary signature %q", got, "a b")
	}

	// No tokens at all falls into the reserved empty bucket.
	got = Strategies(nil)
	if len(got) != 1 || got[0] != EmptySignature {
		t.Errorf("empty tokens = %v, want [%q]", got, EmptySignature)
	}
}

func TestStrategiesNoDuplicates(t *testing.T) {
	inputs := [][]string{
		{"AAA", "AAA"},
		{"T1000", "T2000", "T3000"},
		{"ARROW"},
	}
	for _, tokens := range inputs {
		sigs := Strategies(tokens)
		seen := make(map[string]bool)
		for _, s := range sigs {
			if seen[s] {
				t.Errorf("Strategies(%v) contains duplicate signature %q", tokens, s)
			}
			seen[s] = true
		}
	}
}

func buildFixtureIndex(t *testing.T) *Index {
	t.Helper()
	cfg := config.DefaultConfig()
	records := []model.RawRecord{
		{Source: model.SourceTB, Text: "A N Towing", Seq: 0},
		{Source: model.SourceTB, Text: "Arrow Service", Seq: 1},
		{Source: model.SourceTB, Text: "Arrows Service", Seq: 2},
		{Source: model.SourceFB, Text: "A&N TOWING", Seq: 0},
		{Source: model.SourceQB, Text: "3 Arrows Towing", Seq: 0},
		{Source: model.SourceQB, Text: "", Seq: 1},
	}
	names := make([]model.NormalizedName, len(records))
	for i, rec := range records {
		names[i] = normalize.Derive(rec, cfg)
	}
	return BuildIndex(names)
}

func TestBuildIndexEveryNameBucketed(t *testing.T) {
	ix := buildFixtureIndex(t)
	for i := range ix.Names {
		if len(ix.Signatures(i)) == 0 {
			t.Errorf("name %d (%q) has no signatures", i, ix.Names[i].Record.Text)
		}
	}
	if ix.BucketCount() == 0 {
		t.Error("index has no buckets")
	}
}

func TestPairsFiltersAndDeduplicates(t *testing.T) {
	ix := buildFixtureIndex(t)

	cross := ix.Pairs(false)
	same := ix.Pairs(true)

	hasPair := func(pairs [][2]int, a, b int) bool {
		for _, p := range pairs {
			if p[0] == a && p[1] == b {
				return true
			}
		}
		return false
	}

	// A N Towing and A&N TOWING normalize identically, so they share
	// every signature but must appear as one cross-source pair.
	if !hasPair(cross, 0, 3) {
		t.Error("cross pairs should include (0, 3)")
	}
	count := 0
	for _, p := range cross {
		if p[0] == 0 && p[1] == 3 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("pair (0, 3) appears %d times, want exactly once", count)
	}

	// Arrow Service vs Arrows Service share stems within TB.
	if !hasPair(same, 1, 2) {
		t.Error("same-source pairs should include (1, 2)")
	}

	for _, p := range same {
		if ix.Names[p[0]].Record.Source != ix.Names[p[1]].Record.Source {
			t.Errorf("Pairs(true) returned cross-source pair %v", p)
		}
	}
	for _, p := range cross {
		if ix.Names[p[0]].Record.Source == ix.Names[p[1]].Record.Source {
			t.Errorf("Pairs(false) returned same-source pair %v", p)
		}
	}

	// 3 Arrows Towing shares no bucket with Arrow Service.
	if hasPair(cross, 1, 4) || hasPair(cross, 2, 4) {
		t.Error("distinct service lines should not share a bucket")
	}
}

func TestPairsDeterministic(t *testing.T) {
	ix := buildFixtureIndex(t)
	first := ix.Pairs(false)
	for i := 0; i < 5; i++ {
		again := ix.Pairs(false)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d pairs, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: pair %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestSharedSignatures(t *testing.T) {
	ix := buildFixtureIndex(t)
	shared := ix.Shared(0, 3)
	if len(shared) == 0 {
		t.Fatal("identical normalized names should share signatures")
	}
	for _, sig := range shared {
		if strings.TrimSpace(sig) == "" {
			t.Errorf("shared signature is blank: %q", sig)
		}
	}
	if got := ix.Shared(1, 4); len(got) != 0 {
		t.Errorf("Shared(1, 4) = %v, want none", got)
	}
}

func BenchmarkStrategies(b *testing.B) {
	tokens := []string{"GRANITE", "STATE", "TOWING", "RECOVERY"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Strategies(tokens)
	}
}

func BenchmarkBuildIndex(b *testing.B) {
	cfg := config.DefaultConfig()
	var names []model.NormalizedName
	samples := []string{
		"A N Towing", "Arrow Service", "Granite State Glass",
		"Concord Lumber Corp", "Albertsons Companies", "3 Arrows Towing",
	}
	for i, s := range samples {
		names = append(names, normalize.Derive(model.RawRecord{
			Source: model.SourceTB, Text: s, Seq: i,
		}, cfg))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		BuildIndex(names)
	}
}
