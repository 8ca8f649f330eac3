package input

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/customer-recon/internal/model"
)

// QB workbook layout: active customers live on one sheet in one column.
const (
	QBSheet  = "Active"
	QBColumn = "Customer"
)

// ReadXLSX reads the named column of one worksheet into raw records.
// Blank cells are skipped, unlike the CSV readers: the workbook export
// pads merged and inactive rows with empty cells that are not customer
// records.
func ReadXLSX(path, sheet, column string, source model.Source) ([]model.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q of %s has no header row", sheet, path)
	}

	idx := -1
	for i, col := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(col), column) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("column %q not found on sheet %q of %s", column, sheet, path)
	}

	var records []model.RawRecord
	for _, row := range rows[1:] {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		records = append(records, model.RawRecord{Source: source, Text: row[idx], Seq: len(records)})
	}

	fmt.Printf("Loaded %d active customers from %s\n", len(records), source)
	return records, nil
}

// ReadQB reads the QB workbook with its standard sheet and column names.
func ReadQB(path string) ([]model.RawRecord, error) {
	return ReadXLSX(path, QBSheet, QBColumn, model.SourceQB)
}
