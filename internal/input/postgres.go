package input

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/customer-recon/internal/model"
)

// ReadPostgres runs a query expected to return one text column of
// customer names and tags every row with the given source. NULL names
// become empty records. The connection lives only for the read.
func ReadPostgres(dsn, query string, source model.Source) ([]model.RawRecord, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("name query failed: %w", err)
	}
	defer rows.Close()

	var records []model.RawRecord
	for rows.Next() {
		var text sql.NullString
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(records), err)
		}
		records = append(records, model.RawRecord{Source: source, Text: text.String, Seq: len(records)})

		if len(records)%1000 == 0 {
			fmt.Printf("Read %d %s records...\n", len(records), source)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("name query interrupted: %w", err)
	}

	return records, nil
}
