// Package signature implements candidate blocking. Every name is mapped
// to a small set of signature strings and only names sharing at least
// one signature are ever scored against each other, which keeps the
// pairwise comparison count far below n squared.
package signature

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball"

	"github.com/customer-recon/internal/normalize"
)

// EmptySignature is the reserved bucket for names whose normalized form
// has no tokens at all. They still appear in the index so the engine can
// flag them instead of silently dropping them.
const EmptySignature = "__empty__"

// Strategies computes all signatures for one token list:
//
//  1. the sorted stems joined, an order-insensitive exact key
//  2. the 4-character stem prefixes joined, tolerant of suffix noise
//  3. leave-one-out subsets of the sorted stems, so one extra or
//     missing word still lands both names in a common bucket
//
// Stemming folds plural and inflected forms (ARROW/ARROWS) into one
// key. Subsets are only generated for names with more than two
// meaningful tokens; for three-token names only the first two
// drop positions are used to limit bucket fan-out.
func Strategies(tokens []string) []string {
	meaningful := normalize.MeaningfulTokens(tokens)
	if len(meaningful) == 0 {
		meaningful = tokens
	}
	if len(meaningful) == 0 {
		return []string{EmptySignature}
	}

	stems := make([]string, len(meaningful))
	for i, t := range meaningful {
		stems[i] = stem(t)
	}
	sort.Strings(stems)

	sigs := make([]string, 0, len(stems)+2)
	addSig := func(sig string) {
		if sig == "" {
			return
		}
		for _, existing := range sigs {
			if existing == sig {
				return
			}
		}
		sigs = append(sigs, sig)
	}

	addSig(strings.Join(stems, " "))

	prefixes := make([]string, len(stems))
	for i, s := range stems {
		prefixes[i] = prefix(s, 4)
	}
	addSig(strings.Join(prefixes, " "))

	if len(stems) > 2 {
		for i := range stems {
			if len(stems) <= 3 && i >= 2 {
				continue
			}
			subset := make([]string, 0, len(stems)-1)
			subset = append(subset, stems[:i]...)
			subset = append(subset, stems[i+1:]...)
			addSig(strings.Join(subset, " "))
		}
	}

	return sigs
}

// stem lowercases a token and reduces it to its snowball stem. Tokens
// the stemmer cannot handle are used as-is.
func stem(token string) string {
	lower := strings.ToLower(token)
	s, err := snowball.Stem(lower, "english", true)
	if err != nil || s == "" {
		return lower
	}
	return s
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
