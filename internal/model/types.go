// Package model defines the core data types shared across the
// reconciliation pipeline: source systems, raw input records, normalized
// name forms, and reconciled output groups.
package model

import "fmt"

// Source identifies which accounting system a customer name came from.
type Source string

const (
	// SourceTB is the trial-balance export.
	SourceTB Source = "TB"
	// SourceFB is the FreshBooks export.
	SourceFB Source = "FB"
	// SourceQB is the QuickBooks export.
	SourceQB Source = "QB"
)

// Sources returns all known sources in canonical priority order.
func Sources() []Source {
	return []Source{SourceTB, SourceFB, SourceQB}
}

// ParseSource converts a source tag into a Source, accepting any casing.
// Unknown tags are a configuration error and are reported immediately.
func ParseSource(tag string) (Source, error) {
	switch tag {
	case "TB", "tb", "Tb":
		return SourceTB, nil
	case "FB", "fb", "Fb":
		return SourceFB, nil
	case "QB", "qb", "Qb":
		return SourceQB, nil
	}
	return "", fmt.Errorf("unrecognized source tag %q (expected TB, FB or QB)", tag)
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s == SourceTB || s == SourceFB || s == SourceQB
}

// RawRecord is a single customer name as it appeared in a source file.
// Seq is the zero-based position within that source, used to keep output
// ordering stable and to break representative ties deterministically.
type RawRecord struct {
	Source Source `json:"source"`
	Text   string `json:"text"`
	Seq    int    `json:"seq"`
}

// NormalizedName carries a raw record together with every derived form
// the pipeline computes from it. The forms are ordered from least to most
// aggressive:
//
//	Cleaned    - uppercased, phone numbers stripped, punctuation spaced
//	Canonical  - abbreviations expanded (& -> AND), possessives folded
//	Normalized - canonical with ignore words and geographic terms removed
//
// Tokens are the whitespace-split Normalized form with duplicates removed,
// first occurrence kept.
type NormalizedName struct {
	Record     RawRecord
	Cleaned    string
	Canonical  string
	Normalized string
	Tokens     []string
}

// ReconciledGroup is one cluster of names the engine decided refer to the
// same real-world customer. Members holds the original (unmodified) name
// strings per source, in input order. LowConfidence marks groups whose
// single member normalized to an empty string and therefore could never
// be matched against anything.
type ReconciledGroup struct {
	StandardizedName string              `json:"standardized_name"`
	Members          map[Source][]string `json:"members"`
	LowConfidence    bool                `json:"low_confidence"`
}

// MemberCount returns the total number of names across all sources.
func (g *ReconciledGroup) MemberCount() int {
	n := 0
	for _, names := range g.Members {
		n += len(names)
	}
	return n
}

// SourceCount returns how many distinct sources contributed at least one
// member to the group.
func (g *ReconciledGroup) SourceCount() int {
	n := 0
	for _, names := range g.Members {
		if len(names) > 0 {
			n++
		}
	}
	return n
}
