package normalize

import (
	"reflect"
	"testing"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase input", "arrow service", "ARROW SERVICE"},
		{"surrounding space", "  Arrow Service  ", "ARROW SERVICE"},
		{"punctuation to spaces", "A.P.R. & R., INC", "A P R R INC"},
		{"ampersand spaced not expanded", "A&N Towing", "A N TOWING"},
		{"quoted name", `"A Perfect Move, Inc."`, "A PERFECT MOVE INC"},
		{"asterisk dropped", "*COD Cash Customer", "COD CASH CUSTOMER"},
		{"phone with dashes", "Arrow Service 603-228-3611", "ARROW SERVICE"},
		{"phone with dots", "Arrow Service 603.228.3611", "ARROW SERVICE"},
		{"phone with parens", "Arrow Service (603) 228-3611", "ARROW SERVICE"},
		{"phone with slashes", "Arrow Service 603/228/3611", "ARROW SERVICE"},
		{"bare ten digits", "6032283611 Towing", "TOWING"},
		{"short digit runs kept", "Route 101 Towing", "ROUTE 101 TOWING"},
		{"empty", "", ""},
		{"only noise", " ,.- ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.raw); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"ampersand expands", "A&N Towing", "A AND N TOWING"},
		{"plus expands", "Smith + Jones", "SMITH AND JONES"},
		{"ampersand r i shorthand", "A.P.R &R.I", "A P R AND R I"},
		{"ampersand r shorthand", "B&R. Trucking", "B AND R TRUCKING"},
		{"possessive folds", "Bob's Garage", "BOBS GARAGE"},
		{"interior apostrophe dropped", "O'Brien Towing", "OBRIEN TOWING"},
		{"hyphen to space", "I-70 Wrecker", "I 70 WRECKER"},
		{"phone stripped", "Bob's Garage 603-228-3611", "BOBS GARAGE"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.raw); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"suffix stripped", "A&N Towing LLC", "A N TOWING"},
		{"glue words stripped", "A N Towing And Transport", "A N TOWING TRANSPORT"},
		{"ampersand form matches", "A&N TOWING AND TRANSPORT", "A N TOWING TRANSPORT"},
		{"geo term stripped", "Nitco Forklift Concord", "NITCO FORKLIFT"},
		{"state abbreviation stripped", "Forklifts of NH", "FORKLIFTS"},
		{"all ignore words kept whole", "The LLC", "THE LLC"},
		{"all geo words kept", "Concord NH", "CONCORD NH"},
		{"phone only becomes empty", "(603) 228-3611", ""},
		{"mixed suffixes", "A.P.R. & R., INC", "A P R R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw, cfg); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// Normalization must be a fixed point: running it twice can never give
// a different answer than running it once.
func TestNormalizeIdempotent(t *testing.T) {
	cfg := config.DefaultConfig()
	inputs := []string{
		"A&N Towing And Transport LLC",
		"A.P.R &R.I",
		"Bob's Garage 603-228-3611",
		"*cash/private Retail Customer",
		"Nitco Forklift Concord",
		"The LLC",
		"(603) 228-3611",
		"603/228/3611 Towing",
		"I-70 WRECKER SERVICE & GARAGE",
		"",
		"   ",
		"555 407 555 1234 1234567",
	}

	for _, raw := range inputs {
		once := Normalize(raw, cfg)
		twice := Normalize(once, cfg)
		if once != twice {
			t.Errorf("Normalize(%q) = %q but renormalizes to %q", raw, once, twice)
		}
	}
}

func TestStripCommonWordsFallbacks(t *testing.T) {
	cfg := config.DefaultConfig()

	// Entirely ignore words: kept untouched.
	if got := StripCommonWords("THE CO LLC", cfg); got != "THE CO LLC" {
		t.Errorf("all-ignore fallback = %q, want input back", got)
	}
	// Entirely geo after ignore removal: geo kept.
	if got := StripCommonWords("SALEM LLC", cfg); got != "SALEM" {
		t.Errorf("geo fallback = %q, want %q", got, "SALEM")
	}
	// Geo stripping disabled keeps geo terms.
	noGeo := config.DefaultConfig()
	noGeo.StripGeoTerms = false
	if got := StripCommonWords("NITCO FORKLIFT CONCORD", noGeo); got != "NITCO FORKLIFT CONCORD" {
		t.Errorf("geo stripping disabled = %q, want all tokens", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want []string
	}{
		{"simple", "A N TOWING", []string{"A", "N", "TOWING"}},
		{"duplicate collapsed keeping first", "A A EXPRESS", []string{"A", "EXPRESS"}},
		{"later duplicate dropped", "CLEAN X CLEAN", []string{"CLEAN", "X"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.s)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestIsMeaningful(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"TOWING", true},
		{"ARC", true},
		{"A", false},
		{"XY", false},
		{"CO", true},
		{"PC", true},
		{"AG", true},
		{"3", true},
		{"70", true},
		{"A1", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsMeaningful(tt.token); got != tt.want {
			t.Errorf("IsMeaningful(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestMeaningfulTokens(t *testing.T) {
	got := MeaningfulTokens([]string{"A", "N", "TOWING", "TRANSPORT"})
	want := []string{"TOWING", "TRANSPORT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MeaningfulTokens = %v, want %v", got, want)
	}
	if got := MeaningfulTokens([]string{"A", "B"}); got != nil {
		t.Errorf("MeaningfulTokens on initials = %v, want nil", got)
	}
}

func TestCompanyTypeWords(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"A N TOWING TRANSPORT", []string{"TOWING", "TRANSPORT"}},
		{"ARROW SERVICE", []string{"SERVICE"}},
		{"ARROW SERVICES", []string{"SERVICE"}},
		{"UNITED TRANSPORTATION", []string{"TRANSPORT"}},
		{"CLEAN HARBORS", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := CompanyTypeWords(tt.name)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CompanyTypeWords(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"3", true},
		{"070", true},
		{"A1", false},
		{"", false},
		{"TOWING", false},
	}
	for _, tt := range tests {
		if got := IsDigits(tt.token); got != tt.want {
			t.Errorf("IsDigits(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestDerive(t *testing.T) {
	cfg := config.DefaultConfig()
	rec := model.RawRecord{Source: model.SourceFB, Text: "A&N Towing And Transport LLC", Seq: 7}
	got := Derive(rec, cfg)

	if got.Record != rec {
		t.Errorf("Record = %+v, want %+v", got.Record, rec)
	}
	if got.Cleaned != "A N TOWING AND TRANSPORT LLC" {
		t.Errorf("Cleaned = %q", got.Cleaned)
	}
	if got.Canonical != "A AND N TOWING AND TRANSPORT LLC" {
		t.Errorf("Canonical = %q", got.Canonical)
	}
	if got.Normalized != "A N TOWING TRANSPORT" {
		t.Errorf("Normalized = %q", got.Normalized)
	}
	want := []string{"A", "N", "TOWING", "TRANSPORT"}
	if !reflect.DeepEqual(got.Tokens, want) {
		t.Errorf("Tokens = %v, want %v", got.Tokens, want)
	}
}

func BenchmarkNormalize(b *testing.B) {
	cfg := config.DefaultConfig()
	for i := 0; i < b.N; i++ {
		Normalize("A&N Towing And Transport LLC (603) 228-3611", cfg)
	}
}
