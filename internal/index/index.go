// Package index persists a per-rule examples index built from bulk
// analysis: for each rule, which real translations exercise it. Downstream
// consumers use it to surface example translations for a rule.
//
// Storage is SQLite with WAL mode; a single writer connection avoids
// SQLITE_BUSY during run saves while readers stay concurrent.
package index

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tac-tics/spectra-lexer/internal/lexer"
	"github.com/tac-tics/spectra-lexer/internal/rules"
)

//go:embed schema.sql
var schemaSQL string

// Store is an open examples index database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the index database at path, applying pragmas and
// the idempotent schema. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to index database: %w", err)
	}

	// SQLite allows one writer; a single pooled connection sidesteps
	// SQLITE_BUSY on concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying index schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run summarizes one saved bulk analysis.
type Run struct {
	ID       string
	Total    int
	Complete int
}

// Example is one translation known to exercise a rule.
type Example struct {
	Keys string `json:"keys"`
	Word string `json:"word"`
}

// SaveRun records a bulk analysis in a single transaction and returns the
// new run ID. Run IDs are UUIDv7, so runs sort by creation time.
//
// Only complete decompositions contribute examples, and rules flagged
// "reference" are skipped: primitives appear in nearly every map and make
// useless examples.
func (s *Store) SaveRun(ctx context.Context, results []lexer.Decomposition) (Run, error) {
	run := Run{ID: uuid.Must(uuid.NewV7()).String(), Total: len(results)}
	for _, d := range results {
		if d.Complete() {
			run.Complete++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	// The run row goes in first so the examples' foreign key resolves.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, total, complete) VALUES (?, ?, ?)
	`, run.ID, run.Total, run.Complete)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}

	ins, err := tx.PrepareContext(ctx, `
		INSERT INTO examples (run_id, rule_id, keys, word) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	defer ins.Close()

	for _, d := range results {
		if !d.Complete() {
			continue
		}
		for _, item := range d.Map {
			if item.Rule.Is(rules.FlagReference) || rules.IsUnmatched(item.Rule) {
				continue
			}
			if _, err := ins.ExecContext(ctx, run.ID, item.Rule.ID, d.Keys.String(), d.Word); err != nil {
				return Run{}, fmt.Errorf("save run: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

// ExamplesFor returns up to limit distinct translations that exercise the
// rule, ordered by keys for reproducible output. limit <= 0 means no limit.
func (s *Store) ExamplesFor(ctx context.Context, ruleID string, limit int) ([]Example, error) {
	query := `
		SELECT DISTINCT keys, word FROM examples
		WHERE rule_id = ? ORDER BY keys, word
	`
	args := []any{ruleID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("examples for %q: %w", ruleID, err)
	}
	defer rows.Close()

	var out []Example
	for rows.Next() {
		var ex Example
		if err := rows.Scan(&ex.Keys, &ex.Word); err != nil {
			return nil, fmt.Errorf("examples for %q: %w", ruleID, err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("examples for %q: %w", ruleID, err)
	}
	return out, nil
}

// Runs lists every saved run, newest last (UUIDv7 order).
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, total, complete FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Total, &r.Complete); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return out, nil
}
