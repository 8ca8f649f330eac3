// Package input loads customer names from the three source systems: two
// CSV exports, one Excel workbook, and optionally a Postgres query for
// systems fronted by a database. Readers preserve file order, keep empty
// cells as empty records, and never deduplicate; downstream grouping
// depends on seeing every row.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/customer-recon/internal/model"
)

// Column names used by the source exports.
const (
	TBColumn = "account_name"
	FBColumn = "customer"
)

// ReadCSV reads one named column from a CSV export into raw records,
// tagging each with the given source. The header match is
// case-insensitive, rows may have uneven field counts, and a row too
// short to hold the column yields an empty record rather than an error.
func ReadCSV(path, column string, source model.Source) ([]model.RawRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	idx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), column) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("column %q not found in %s (columns: %v)", column, path, header)
	}

	var records []model.RawRecord
	readErrors := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error reading CSV record: %v\n", err)
			readErrors++
			continue
		}

		text := ""
		if idx < len(row) {
			text = row[idx]
		}
		records = append(records, model.RawRecord{Source: source, Text: text, Seq: len(records)})

		if len(records)%1000 == 0 {
			fmt.Printf("Read %d %s records...\n", len(records), source)
		}
	}

	if readErrors > 0 {
		fmt.Printf("Read complete: %d %s records, %d errors\n", len(records), source, readErrors)
	}
	return records, nil
}

// ReadTB reads the TB customer export.
func ReadTB(path string) ([]model.RawRecord, error) {
	return ReadCSV(path, TBColumn, model.SourceTB)
}

// ReadFB reads the FB customer export.
func ReadFB(path string) ([]model.RawRecord, error) {
	return ReadCSV(path, FBColumn, model.SourceFB)
}
