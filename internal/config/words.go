package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultIgnoreWords returns the built-in list of corporate suffixes and
// glue words that carry no identity. They are stripped whole-token during
// normalization.
func DefaultIgnoreWords() []string {
	return []string{
		"AND", "THE", "OF",
		"LLC", "INC", "INCORPORATED",
		"CORP", "CORPORATION",
		"CO", "COMPANY",
		"LTD", "LIMITED",
		"LLP", "LP", "PLLC", "PLC",
		"PC", "PA", "DBA",
		"GROUP", "HOLDINGS",
	}
}

// DefaultGeoTerms returns the built-in list of geographic tokens. The
// customer base is concentrated in New England, so the list covers the
// regional states and the larger cities that show up as name suffixes.
func DefaultGeoTerms() []string {
	return []string{
		"NH", "MA", "ME", "VT", "CT", "RI", "USA",
		"HAMPSHIRE", "MASSACHUSETTS", "MAINE", "VERMONT",
		"CONNECTICUT", "ENGLAND",
		"CONCORD", "MANCHESTER", "NASHUA", "SALEM", "DERRY",
		"LONDONDERRY", "PORTSMOUTH", "ROCHESTER", "DOVER",
		"KEENE", "LACONIA", "HOOKSETT", "MERRIMACK", "BOSTON",
	}
}

// WordSet converts a word list into an uppercase lookup set.
func WordSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// LoadWordList reads a word list file, one word per line. Blank lines and
// lines starting with # are skipped. Words are uppercased.
func LoadWordList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return words, nil
}
