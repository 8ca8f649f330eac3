// Package store persists reconciliation runs to a SQLite file so past
// results can be listed, inspected and reviewed. Each saved run carries
// its configuration, its groups in output order, and the accepted pair
// decisions that produced them.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/customer-recon/internal/config"
	"github.com/customer-recon/internal/model"
	"github.com/customer-recon/internal/reconcile"
)

// ErrNotFound reports that the requested run does not exist.
var ErrNotFound = errors.New("run not found")

// Store wraps the SQLite database holding saved runs.
type Store struct {
	db *sql.DB
}

// Run is the stored summary of one reconciliation run.
type Run struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
	TotalRecords  int             `json:"total_records"`
	TotalGroups   int             `json:"total_groups"`
	LowConfidence int             `json:"low_confidence"`
	Config        json.RawMessage `json:"config"`
}

// StoredGroup is one reconciled group as persisted, in output order.
type StoredGroup struct {
	Position         int                       `json:"position"`
	StandardizedName string                    `json:"standardized_name"`
	Members          map[model.Source][]string `json:"members"`
	MemberCount      int                       `json:"member_count"`
	SourceCount      int                       `json:"source_count"`
	LowConfidence    bool                      `json:"low_confidence"`
}

// Open opens or creates the run store at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping store %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id             text PRIMARY KEY,
			label          text NOT NULL,
			started_at     timestamp NOT NULL,
			finished_at    timestamp NOT NULL,
			total_records  integer NOT NULL,
			total_groups   integer NOT NULL,
			low_confidence integer NOT NULL,
			config_json    text NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			run_id            text NOT NULL REFERENCES runs(id),
			position          integer NOT NULL,
			standardized_name text NOT NULL,
			members_json      text NOT NULL,
			member_count      integer NOT NULL,
			source_count      integer NOT NULL,
			low_confidence    integer NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS merges (
			run_id           text NOT NULL REFERENCES runs(id),
			position         integer NOT NULL,
			rule             text NOT NULL,
			source_a         text NOT NULL,
			name_a           text NOT NULL,
			source_b         text NOT NULL,
			name_b           text NOT NULL,
			token_similarity real NOT NULL,
			match_ratio      real NOT NULL,
			cross_source     integer NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS groups_name_idx ON groups (run_id, standardized_name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// SaveRun persists one reconciliation result with the configuration
// that produced it and returns the generated run id. The run, its
// groups and its merge decisions are written in a single transaction.
func (s *Store) SaveRun(label string, cfg *config.Config, res *reconcile.Result, startedAt time.Time) (string, error) {
	runID := uuid.New().String()

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, label, started_at, finished_at, total_records, total_groups, low_confidence, config_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, label, startedAt, time.Now(), res.Stats.TotalRecords, res.Stats.TotalGroups,
		res.Stats.LowConfidence, string(configJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	groupStmt, err := tx.Prepare(`
		INSERT INTO groups (run_id, position, standardized_name, members_json, member_count, source_count, low_confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare group insert: %w", err)
	}
	defer groupStmt.Close()

	for i, g := range res.Groups {
		membersJSON, err := json.Marshal(g.Members)
		if err != nil {
			return "", fmt.Errorf("failed to marshal members of group %d: %w", i, err)
		}
		_, err = groupStmt.Exec(runID, i, g.StandardizedName, string(membersJSON),
			g.MemberCount(), g.SourceCount(), g.LowConfidence)
		if err != nil {
			return "", fmt.Errorf("failed to insert group %d: %w", i, err)
		}
	}

	mergeStmt, err := tx.Prepare(`
		INSERT INTO merges (run_id, position, rule, source_a, name_a, source_b, name_b, token_similarity, match_ratio, cross_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare merge insert: %w", err)
	}
	defer mergeStmt.Close()

	for i, m := range res.Merges {
		_, err = mergeStmt.Exec(runID, i, m.Rule, string(m.SourceA), m.NameA,
			string(m.SourceB), m.NameB, m.TokenSimilarity, m.MatchRatio, m.CrossSource)
		if err != nil {
			return "", fmt.Errorf("failed to insert merge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return runID, nil
}

// ListRuns returns stored run summaries, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, label, started_at, finished_at, total_records, total_groups, low_confidence, config_json
		FROM runs
		ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one stored run by id. Returns ErrNotFound when the id
// is unknown.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, label, started_at, finished_at, total_records, total_groups, low_confidence, config_json
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanRun(scan func(...interface{}) error) (Run, error) {
	var run Run
	var configJSON string
	err := scan(&run.ID, &run.Label, &run.StartedAt, &run.FinishedAt,
		&run.TotalRecords, &run.TotalGroups, &run.LowConfidence, &configJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Config = json.RawMessage(configJSON)
	return run, nil
}

// GroupsForRun returns the groups of a stored run in output order.
func (s *Store) GroupsForRun(runID string) ([]StoredGroup, error) {
	rows, err := s.db.Query(`
		SELECT position, standardized_name, members_json, member_count, source_count, low_confidence
		FROM groups
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []StoredGroup
	for rows.Next() {
		var g StoredGroup
		var membersJSON string
		if err := rows.Scan(&g.Position, &g.StandardizedName, &membersJSON,
			&g.MemberCount, &g.SourceCount, &g.LowConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(membersJSON), &g.Members); err != nil {
			return nil, fmt.Errorf("failed to decode members of group %d: %w", g.Position, err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read groups: %w", err)
	}
	return groups, nil
}

// MergesForRun returns the accepted pair decisions of a stored run in
// the order they were applied.
func (s *Store) MergesForRun(runID string) ([]reconcile.Merge, error) {
	rows, err := s.db.Query(`
		SELECT rule, source_a, name_a, source_b, name_b, token_similarity, match_ratio, cross_source
		FROM merges
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query merges: %w", err)
	}
	defer rows.Close()

	var merges []reconcile.Merge
	for rows.Next() {
		var m reconcile.Merge
		var sourceA, sourceB string
		if err := rows.Scan(&m.Rule, &sourceA, &m.NameA, &sourceB, &m.NameB,
			&m.TokenSimilarity, &m.MatchRatio, &m.CrossSource); err != nil {
			return nil, fmt.Errorf("failed to scan merge: %w", err)
		}
		m.SourceA = model.Source(sourceA)
		m.SourceB = model.Source(sourceB)
		merges = append(merges, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read merges: %w", err)
	}
	return merges, nil
}
