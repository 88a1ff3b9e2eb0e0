// Package store persists exported budget trees and their validation
// reports in SQLite. The nested tree and the report are stored as JSON
// documents; the columns queried by the API (source, counts, totals,
// validity) are indexed alongside.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jmoralo/bc3tree/internal/tree"
)

// ErrNotFound is returned when no budget matches the requested ID.
var ErrNotFound = errors.New("budget not found")

// Budget is the indexed metadata of one stored import.
type Budget struct {
	ID           string    `json:"id"`
	SourceFile   string    `json:"source_file"`
	Version      string    `json:"version,omitempty"`
	Generator    string    `json:"generator,omitempty"`
	NodeCount    int       `json:"node_count"`
	MaxDepth     int       `json:"max_depth"`
	RootCount    int       `json:"root_count"`
	TotalAmount  string    `json:"total_amount"`
	Valid        bool      `json:"valid"`
	WarningCount int       `json:"warning_count"`
	ImportedAt   time.Time `json:"imported_at"`
}

// Store is the SQLite-backed persistence collaborator.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		version TEXT,
		generator TEXT,
		node_count INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		root_count INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		valid INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		tree JSON NOT NULL,
		report JSON NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_budgets_source ON budgets(source_file);
	CREATE INDEX IF NOT EXISTS idx_budgets_imported ON budgets(imported_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores one import: the nested export plus its validation report.
// An existing budget with the same ID is replaced.
func (s *Store) Save(ctx context.Context, id string, export *tree.Export, report *tree.Report, version, generator string) error {
	treeJSON, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO budgets
			(id, source_file, version, generator, node_count, max_depth,
			 root_count, total_amount, valid, warning_count, tree, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, export.Source, version, generator, export.NodeCount, export.MaxDepth,
		export.RootCount, export.Total.String(), report.Valid, len(report.Warnings),
		treeJSON, reportJSON,
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

// Get loads the stored metadata plus the raw tree and report documents.
func (s *Store) Get(ctx context.Context, id string) (*Budget, json.RawMessage, json.RawMessage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_file, version, generator, node_count, max_depth,
		       root_count, total_amount, valid, warning_count, tree, report, imported_at
		FROM budgets WHERE id = ?`, id)

	var b Budget
	var treeJSON, reportJSON []byte
	err := row.Scan(&b.ID, &b.SourceFile, &b.Version, &b.Generator, &b.NodeCount,
		&b.MaxDepth, &b.RootCount, &b.TotalAmount, &b.Valid, &b.WarningCount,
		&treeJSON, &reportJSON, &b.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("scan budget: %w", err)
	}
	return &b, treeJSON, reportJSON, nil
}

// List returns the stored budgets, newest first.
func (s *Store) List(ctx context.Context) ([]Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_file, version, generator, node_count, max_depth,
		       root_count, total_amount, valid, warning_count, imported_at
		FROM budgets ORDER BY imported_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.SourceFile, &b.Version, &b.Generator,
			&b.NodeCount, &b.MaxDepth, &b.RootCount, &b.TotalAmount,
			&b.Valid, &b.WarningCount, &b.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a budget. Deleting an unknown ID returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
