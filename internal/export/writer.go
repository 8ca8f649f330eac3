// Package export writes reconciled groups to CSV, splitting outputs
// that exceed a row ceiling into numbered part files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/customer-recon/internal/model"
)

var outputHeader = []string{"standardized_name", "tb_names", "fb_names", "qb_names"}

// WriteGroups writes reconciled groups as CSV rows sorted by
// standardized name, one row per group with member names joined by
// "; ". Output lands in {base}.csv when it fits within maxRows data
// rows, otherwise in {base}_part_{i}_of_{n}.csv files of at most
// maxRows rows each. Returns the files written, in order.
func WriteGroups(groups []model.ReconciledGroup, base string, maxRows int) ([]string, error) {
	if maxRows < 1 {
		return nil, fmt.Errorf("max rows per file must be positive, got %d", maxRows)
	}

	sorted := make([]model.ReconciledGroup, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StandardizedName < sorted[j].StandardizedName
	})

	rows := make([][]string, len(sorted))
	for i, g := range sorted {
		rows[i] = []string{
			g.StandardizedName,
			strings.Join(g.Members[model.SourceTB], "; "),
			strings.Join(g.Members[model.SourceFB], "; "),
			strings.Join(g.Members[model.SourceQB], "; "),
		}
	}

	return writeChunks(outputHeader, rows, base, maxRows)
}

// SplitCSV re-chunks an existing reconciliation CSV into files of at
// most maxRows data rows, repeating the input's header on every part.
func SplitCSV(input, base string, maxRows int) ([]string, error) {
	if maxRows < 1 {
		return nil, fmt.Errorf("max rows per file must be positive, got %d", maxRows)
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s has no header row", input)
	}

	return writeChunks(all[0], all[1:], base, maxRows)
}

func writeChunks(header []string, rows [][]string, base string, maxRows int) ([]string, error) {
	if len(rows) <= maxRows {
		name := base + ".csv"
		if err := writeFile(name, header, rows); err != nil {
			return nil, err
		}
		return []string{name}, nil
	}

	numFiles := (len(rows) + maxRows - 1) / maxRows
	files := make([]string, 0, numFiles)

	for i := 0; i < numFiles; i++ {
		start := i * maxRows
		end := start + maxRows
		if end > len(rows) {
			end = len(rows)
		}

		name := fmt.Sprintf("%s_part_%d_of_%d.csv", base, i+1, numFiles)
		if err := writeFile(name, header, rows[start:end]); err != nil {
			return files, err
		}
		files = append(files, name)
		fmt.Printf("  Wrote rows %d-%d to %s\n", start+1, end, name)
	}

	return files, nil
}

func writeFile(name string, header []string, rows [][]string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write header to %s: %w", name, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write row to %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}

	return f.Close()
}
