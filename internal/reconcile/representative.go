package reconcile

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
)

// pickRepresentative chooses which member's original text will name the
// group. Candidates are compared by, in order:
//
//  1. frequency of their normalized form within the group
//  2. absence of an asterisk (placeholder marker)
//  3. presence of punctuation, which survives standardization and
//     reads better (A&N over A N)
//  4. presence of lowercase letters, a sign the name was typed rather
//     than imported from an all-caps system
//  5. length of the original text
//  6. source priority
//  7. position within the source file
//
// The returned value is an index into names.
func pickRepresentative(names []model.NormalizedName, members []int, cfg *config.Config) int {
	freq := make(map[string]int, len(members))
	for _, i := range members {
		freq[names[i].Normalized]++
	}

	best := members[0]
	for _, i := range members[1:] {
		if betterRepresentative(names, freq, cfg, i, best) {
			best = i
		}
	}
	return best
}

func betterRepresentative(names []model.NormalizedName, freq map[string]int, cfg *config.Config, i, j int) bool {
	a, b := names[i].Record, names[j].Record

	if fa, fb := freq[names[i].Normalized], freq[names[j].Normalized]; fa != fb {
		return fa > fb
	}
	if xa, xb := strings.Contains(a.Text, "*"), strings.Contains(b.Text, "*"); xa != xb {
		return !xa
	}
	if pa, pb := hasPunctuation(a.Text), hasPunctuation(b.Text); pa != pb {
		return pa
	}
	if la, lb := hasLowercase(a.Text), hasLowercase(b.Text); la != lb {
		return la
	}
	if len(a.Text) != len(b.Text) {
		return len(a.Text) > len(b.Text)
	}
	if ra, rb := cfg.SourceRank(a.Source), cfg.SourceRank(b.Source); ra != rb {
		return ra < rb
	}
	return a.Seq < b.Seq
}

func hasPunctuation(s string) bool {
	return strings.ContainsAny(s, ".,&-'")
}

func hasLowercase(s string) bool {
	return strings.IndexFunc(s, unicode.IsLower) >= 0
}

// Standardize title-cases a representative name for output. The caser
// keeps punctuation intact, so A&N TOWING becomes A&N Towing rather
// than losing its ampersand.
func Standardize(raw string) string {
	return cases.Title(language.English).String(raw)
}
