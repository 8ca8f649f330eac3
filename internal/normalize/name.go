// Package normalize turns free-text customer names into comparable
// forms. Every matching decision downstream works on the output of this
// package, so the transformations here are deliberately conservative:
// uppercase, strip noise, expand the handful of abbreviations the source
// systems are known to use, and remove words that carry no identity.
package normalize

import (
	"regexp"
	"strings"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
)

var (
	// Embedded phone numbers show up in all three systems, usually as
	// 3-3-4 digit groups. Matched after punctuation is spaced so that
	// any separator style collapses to the same shape.
	rePhone = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	// Anything that is not an uppercase letter, digit or whitespace.
	reNonAlnum = regexp.MustCompile(`[^A-Z0-9\s]`)

	rePossessive = regexp.MustCompile(`'S\b`)
	reSpaces     = regexp.MustCompile(`\s+`)
)

// Two-letter tokens that identify a business rather than an initial.
var meaningfulShort = map[string]bool{
	"CO": true, "PC": true, "PA": true, "LP": true,
	"AG": true, "AC": true, "RH": true,
}

// Service-line words used by the match rules to keep different lines of
// business apart. Checked by substring so plural and compound forms
// (SERVICES, TRANSPORTATION) register under the base word.
var companyTypes = []string{
	"TOWING", "TRUCKING", "WRECKER", "GARAGE", "REPAIR",
	"SERVICE", "TRANSPORT", "LOGISTICS", "RENTAL", "LEASING",
	"CONSTRUCTION", "FORESTRY", "STEEL", "BEVERAGE", "SALVAGE",
	"RECYCLING", "EXCAVATION", "PLUMBING", "ELECTRIC", "ROOFING",
	"PAVING",
}

// Clean uppercases a raw name, converts punctuation to spaces, strips
// embedded phone numbers and collapses whitespace. It performs no
// abbreviation expansion, so it is the lightest comparable form.
func Clean(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = reNonAlnum.ReplaceAllString(name, " ")
	name = collapse(name)
	return stripPhones(name)
}

// Canonical produces the matching form of a name: Clean plus expansion
// of the ampersand and plus-sign conventions the source systems use, and
// folding of possessives. The special cases for &R.I and &R. come from
// names written like "A.P.R &R.I" where the ampersand binds to the
// following initials.
func Canonical(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))

	name = strings.ReplaceAll(name, "&R.I", " AND R I")
	name = strings.ReplaceAll(name, "&R.", " AND R ")
	name = strings.ReplaceAll(name, "&", " AND ")
	name = strings.ReplaceAll(name, "+", " AND ")

	name = rePossessive.ReplaceAllString(name, "S")
	name = strings.ReplaceAll(name, "'", "")

	name = reNonAlnum.ReplaceAllString(name, " ")
	name = collapse(name)
	return stripPhones(name)
}

// Normalize is the full pipeline: Canonical followed by removal of
// ignore words and, when enabled, geographic terms. Applying Normalize
// to its own output returns the input unchanged.
func Normalize(raw string, cfg *config.Config) string {
	return stripPhones(StripCommonWords(Canonical(raw), cfg))
}

// StripCommonWords removes ignore words and geographic terms from a
// canonical name, whole tokens only. Two fallbacks keep names from
// vanishing: if every token is an ignore word the name is returned
// untouched, and if geographic stripping would leave nothing the
// pre-geographic tokens are kept.
func StripCommonWords(name string, cfg *config.Config) string {
	tokens := strings.Fields(name)

	var core []string
	for _, t := range tokens {
		if !cfg.IgnoreWords[t] {
			core = append(core, t)
		}
	}
	if len(core) == 0 {
		return name
	}

	if cfg.StripGeoTerms {
		var kept []string
		for _, t := range core {
			if !cfg.GeoTerms[t] {
				kept = append(kept, t)
			}
		}
		if len(kept) > 0 {
			core = kept
		}
	}

	return strings.Join(core, " ")
}

// Tokenize splits a normalized name into tokens, dropping duplicates
// while keeping the first occurrence of each. Ordered deduplication
// keeps the greedy token alignment in the scorer deterministic.
func Tokenize(s string) []string {
	fields := strings.Fields(s)
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// IsMeaningful reports whether a token carries enough identity to anchor
// a match. Single letters are initials, two-letter tokens only count
// when they are known business words, and anything with a digit counts.
func IsMeaningful(token string) bool {
	if token == "" {
		return false
	}
	if containsDigit(token) {
		return true
	}
	switch len(token) {
	case 1:
		return false
	case 2:
		return meaningfulShort[token]
	}
	return true
}

// MeaningfulTokens filters a token list down to the meaningful ones.
func MeaningfulTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if IsMeaningful(t) {
			out = append(out, t)
		}
	}
	return out
}

// CompanyTypeWords returns the service-line words found in a normalized
// name, in a fixed order.
func CompanyTypeWords(name string) []string {
	var words []string
	for _, w := range companyTypes {
		if strings.Contains(name, w) {
			words = append(words, w)
		}
	}
	return words
}

// IsDigits reports whether a token consists entirely of ASCII digits.
func IsDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Derive computes every normalized form for one record.
func Derive(rec model.RawRecord, cfg *config.Config) model.NormalizedName {
	canonical := Canonical(rec.Text)
	normalized := stripPhones(StripCommonWords(canonical, cfg))
	return model.NormalizedName{
		Record:     rec,
		Cleaned:    Clean(rec.Text),
		Canonical:  canonical,
		Normalized: normalized,
		Tokens:     Tokenize(normalized),
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// stripPhones removes phone number patterns until none remain. Removal
// can bring digit groups together, so a single pass is not enough to
// guarantee a stable result.
func stripPhones(s string) string {
	for rePhone.MatchString(s) {
		s = collapse(rePhone.ReplaceAllString(s, " "))
	}
	return s
}
