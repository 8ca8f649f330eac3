// Package rules holds the decision cascade that turns a scored name
// pair into a merge verdict. Rules are evaluated in a fixed order and
// the first Accept or Reject wins: exact-equality checks run before the
// guard rules, and the guard rules run before the ratio threshold.
package rules

import (
	"strings"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
	"github.com/customer-recon/internal/normalize"
	"github.com/customer-recon/internal/score"
)

// Decision is the verdict of a single rule or of the whole cascade.
type Decision int

const (
	// Defer means the rule has no opinion and the next rule runs.
	Defer Decision = iota
	// Accept merges the pair.
	Accept
	// Reject keeps the pair apart and stops the cascade.
	Reject
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "defer"
	}
}

// Pair is a scored candidate pair ready for a verdict.
type Pair struct {
	A     model.NormalizedName
	B     model.NormalizedName
	Score score.Result
}

// NewPair scores two names and wraps them for the cascade.
func NewPair(a, b model.NormalizedName, cfg *config.Config) Pair {
	return Pair{A: a, B: b, Score: score.Score(a, b, cfg)}
}

// Rule is one named step of the cascade.
type Rule struct {
	Name     string
	Evaluate func(p Pair) Decision
}

// Step records one rule evaluation for explain output.
type Step struct {
	Rule     string
	Decision Decision
}

// Cascade is the ordered rule list. Build one per run with NewCascade;
// it is read-only afterwards and safe for concurrent use.
type Cascade struct {
	rules []Rule
}

// NewCascade builds the production cascade:
//
//	empty-name           reject names with nothing left after cleanup
//	exact-cleaned        identical after light cleanup
//	exact-canonical      identical after abbreviation expansion
//	exact-normalized     identical after ignore word removal
//	company-type         different service lines never merge
//	cash-account         *CASH placeholder accounts stay separate
//	numeric-distinctness differing digit tokens keep names apart
//	token-ratio          the configurable fuzzy threshold, always decides
func NewCascade(cfg *config.Config) *Cascade {
	return &Cascade{rules: []Rule{
		emptyNameRule(),
		exactCleanedRule(),
		exactCanonicalRule(),
		exactNormalizedRule(),
		companyTypeRule(),
		cashAccountRule(),
		numericDistinctnessRule(),
		tokenRatioRule(cfg),
	}}
}

// Decide runs the cascade and returns the verdict along with the name
// of the rule that produced it.
func (c *Cascade) Decide(p Pair) (Decision, string) {
	for _, r := range c.rules {
		if d := r.Evaluate(p); d != Defer {
			return d, r.Name
		}
	}
	return Reject, "no-rule-decided"
}

// Trace evaluates every rule up to and including the deciding one and
// returns the individual verdicts.
func (c *Cascade) Trace(p Pair) []Step {
	var steps []Step
	for _, r := range c.rules {
		d := r.Evaluate(p)
		steps = append(steps, Step{Rule: r.Name, Decision: d})
		if d != Defer {
			break
		}
	}
	return steps
}

func emptyNameRule() Rule {
	return Rule{
		Name: "empty-name",
		Evaluate: func(p Pair) Decision {
			if p.A.Normalized == "" || p.B.Normalized == "" {
				return Reject
			}
			return Defer
		},
	}
}

func exactCleanedRule() Rule {
	return Rule{
		Name: "exact-cleaned",
		Evaluate: func(p Pair) Decision {
			if p.A.Cleaned != "" && p.A.Cleaned == p.B.Cleaned {
				return Accept
			}
			return Defer
		},
	}
}

func exactCanonicalRule() Rule {
	return Rule{
		Name: "exact-canonical",
		Evaluate: func(p Pair) Decision {
			if p.A.Canonical != "" && p.A.Canonical == p.B.Canonical {
				return Accept
			}
			return Defer
		},
	}
}

func exactNormalizedRule() Rule {
	return Rule{
		Name: "exact-normalized",
		Evaluate: func(p Pair) Decision {
			if p.A.Normalized == p.B.Normalized {
				return Accept
			}
			return Defer
		},
	}
}

// companyTypeRule keeps different lines of business apart. When both
// names carry service-line words and the word sets differ, the pair is
// rejected no matter how similar the rest of the name looks.
func companyTypeRule() Rule {
	return Rule{
		Name: "company-type",
		Evaluate: func(p Pair) Decision {
			typesA := normalize.CompanyTypeWords(p.A.Normalized)
			typesB := normalize.CompanyTypeWords(p.B.Normalized)
			if len(typesA) == 0 || len(typesB) == 0 {
				return Defer
			}
			// CompanyTypeWords scans a fixed list, so equal sets imply
			// equal slices.
			if len(typesA) != len(typesB) {
				return Reject
			}
			for i := range typesA {
				if typesA[i] != typesB[i] {
					return Reject
				}
			}
			return Defer
		},
	}
}

// cashAccountRule separates *CASH placeholder accounts from real COD
// customer accounts. The asterisk is stripped by normalization, so this
// rule inspects the raw text.
func cashAccountRule() Rule {
	conflict := func(x, y string) bool {
		return strings.Contains(x, "*CASH") &&
			strings.Contains(y, "COD") &&
			!strings.Contains(x, "*COD")
	}
	return Rule{
		Name: "cash-account",
		Evaluate: func(p Pair) Decision {
			rawA := strings.ToUpper(p.A.Record.Text)
			rawB := strings.ToUpper(p.B.Record.Text)
			if conflict(rawA, rawB) || conflict(rawB, rawA) {
				return Reject
			}
			return Defer
		},
	}
}

// numericDistinctnessRule treats digit tokens as hard identity markers.
// Names with different digit token sets are rejected even when the
// ratio rule would have accepted them. A digit token on only one side
// is rejected unless at least three meaningful token pairs matched,
// which is strong enough evidence that the number is an annotation
// rather than an identity.
func numericDistinctnessRule() Rule {
	return Rule{
		Name: "numeric-distinctness",
		Evaluate: func(p Pair) Decision {
			digitsA := digitTokens(p.A.Tokens)
			digitsB := digitTokens(p.B.Tokens)

			switch {
			case len(digitsA) > 0 && len(digitsB) > 0:
				if !sameSet(digitsA, digitsB) {
					return Reject
				}
			case len(digitsA) > 0 || len(digitsB) > 0:
				if p.Score.MatchedMeaningful < 3 {
					return Reject
				}
			}
			return Defer
		},
	}
}

func tokenRatioRule(cfg *config.Config) Rule {
	return Rule{
		Name: "token-ratio",
		Evaluate: func(p Pair) Decision {
			if p.Score.MatchRatio >= cfg.MinMatchRatio {
				return Accept
			}
			return Reject
		},
	}
}

func digitTokens(tokens []string) []string {
	var digits []string
	for _, t := range tokens {
		if normalize.IsDigits(t) {
			digits = append(digits, t)
		}
	}
	return digits
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}
