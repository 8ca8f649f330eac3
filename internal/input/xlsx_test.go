package input

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/customer-recon/internal/model"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("creating sheet: %v", err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				t.Fatalf("setting row: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "qb.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	return path
}

func TestReadQBSkipsBlankCells(t *testing.T) {
	path := writeWorkbook(t, QBSheet, [][]interface{}{
		{"Customer", "Balance"},
		{"A&N Towing And Transport", 100},
		{"", 50},
		{"Bob's Garage", 25},
	})

	records, err := ReadQB(path)
	if err != nil {
		t.Fatalf("ReadQB: %v", err)
	}

	want := []string{"A&N Towing And Transport", "Bob's Garage"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, rec := range records {
		if rec.Text != want[i] {
			t.Errorf("record %d = %q, want %q", i, rec.Text, want[i])
		}
		if rec.Source != model.SourceQB {
			t.Errorf("record %d source = %q, want %q", i, rec.Source, model.SourceQB)
		}
		if rec.Seq != i {
			t.Errorf("record %d seq = %d, want %d", i, rec.Seq, i)
		}
	}
}

func TestReadQBMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "", nil)

	if _, err := ReadQB(path); err == nil {
		t.Fatal("expected error when Active sheet is absent")
	}
}

func TestReadQBMissingColumn(t *testing.T) {
	path := writeWorkbook(t, QBSheet, [][]interface{}{
		{"Name", "Balance"},
		{"Arrow Service", 10},
	})

	if _, err := ReadQB(path); err == nil {
		t.Fatal("expected error when Customer column is absent")
	}
}
