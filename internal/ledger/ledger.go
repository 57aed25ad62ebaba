// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records pipeline runs in a SQLite database so earlier
// results can be listed, inspected, and exported. Each run stores the status
// of every scanned file, every PDF written, and any bank records extracted.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kanapdf/pkg/types"
)

const dbFile = "kanapdf.db"

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// Open opens or creates dir/kanapdf.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			command TEXT NOT NULL,
			input_dir TEXT,
			output_dir TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			status TEXT NOT NULL,
			kana_row TEXT,
			PRIMARY KEY (run_id, path)
		)`,
		`CREATE TABLE IF NOT EXISTS outputs (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			kana_row TEXT,
			part INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0,
			bytes INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, path)
		)`,
		`CREATE TABLE IF NOT EXISTS bank_records (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			file TEXT NOT NULL,
			page INTEGER,
			bank_code TEXT,
			branch_code TEXT,
			account_number TEXT,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_status ON files(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, command, inputDir, outputDir string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (command, input_dir, output_dir, started_at) VALUES (?, ?, ?, ?)`,
		command, inputDir, outputDir, formatTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun stamps the run's end time and failure count.
func (s *Store) FinishRun(ctx context.Context, runID int64, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, failed = ? WHERE id = ?`,
		formatTime(s.now()), failed, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %d: %w", runID, ErrRunNotFound)
	}
	return nil
}

// RecordFiles stores the status of each scanned file. Recording a path again
// within the same run replaces its status.
func (s *Store) RecordFiles(ctx context.Context, runID int64, records []types.FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, seq, path, status, kana_row) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, path) DO UPDATE SET status=excluded.status, kana_row=excluded.kana_row`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, i, r.Path, string(r.Status), r.Row); err != nil {
			return fmt.Errorf("recording file %s: %w", r.Path, err)
		}
	}
	return tx.Commit()
}

// RecordOutput stores one written PDF.
func (s *Store) RecordOutput(ctx context.Context, runID int64, out types.OutputFile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outputs (run_id, path, kana_row, part, pages, bytes) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, path) DO UPDATE SET
			kana_row=excluded.kana_row, part=excluded.part, pages=excluded.pages, bytes=excluded.bytes`,
		runID, out.Path, out.Row, out.Part, out.Pages, out.Bytes,
	)
	if err != nil {
		return fmt.Errorf("recording output %s: %w", out.Path, err)
	}
	return nil
}

// RecordBank stores the records of a bank extraction run, replacing any
// stored earlier for the run.
func (s *Store) RecordBank(ctx context.Context, runID int64, records []types.BankRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bank_records WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clearing bank records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bank_records (run_id, seq, file, page, bank_code, branch_code, account_number, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, i, r.File, r.Page, r.BankCode, r.BranchCode, r.AccountNumber, r.Status); err != nil {
			return fmt.Errorf("recording bank record %s: %w", r.File, err)
		}
	}
	return tx.Commit()
}

// Runs returns up to limit runs, newest first. A non-positive limit returns
// every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.Run, error) {
	query := `SELECT id, command, input_dir, output_dir, started_at, finished_at, failed
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Detail is a run with everything recorded for it.
type Detail struct {
	types.Run `yaml:",inline"`
	Files     []types.FileRecord `json:"files,omitempty" yaml:"files,omitempty"`
	Outputs   []types.OutputFile `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Bank      []types.BankRecord `json:"bank,omitempty" yaml:"bank,omitempty"`
}

// RunDetail loads one run.
func (s *Store) RunDetail(ctx context.Context, runID int64) (Detail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, command, input_dir, output_dir, started_at, finished_at, failed
		 FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Detail{}, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Run: run}
	if d.Files, err = s.files(ctx, runID); err != nil {
		return Detail{}, err
	}
	if d.Outputs, err = s.outputs(ctx, runID); err != nil {
		return Detail{}, err
	}
	if d.Bank, err = s.bank(ctx, runID); err != nil {
		return Detail{}, err
	}
	return d, nil
}

func (s *Store) files(ctx context.Context, runID int64) ([]types.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, status, kana_row FROM files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var out []types.FileRecord
	for rows.Next() {
		var r types.FileRecord
		var status string
		var row sql.NullString
		if err := rows.Scan(&r.Path, &status, &row); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		r.Status = types.FileStatus(status)
		r.Row = row.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) outputs(ctx context.Context, runID int64) ([]types.OutputFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, kana_row, part, pages, bytes FROM outputs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outputs: %w", err)
	}
	defer rows.Close()

	var out []types.OutputFile
	for rows.Next() {
		var o types.OutputFile
		var row sql.NullString
		if err := rows.Scan(&o.Path, &row, &o.Part, &o.Pages, &o.Bytes); err != nil {
			return nil, fmt.Errorf("scanning output: %w", err)
		}
		o.Row = row.String
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) bank(ctx context.Context, runID int64) ([]types.BankRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file, page, bank_code, branch_code, account_number, status
		 FROM bank_records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying bank records: %w", err)
	}
	defer rows.Close()

	var out []types.BankRecord
	for rows.Next() {
		var r types.BankRecord
		var page sql.NullInt64
		var bank, branch, account sql.NullString
		if err := rows.Scan(&r.File, &page, &bank, &branch, &account, &r.Status); err != nil {
			return nil, fmt.Errorf("scanning bank record: %w", err)
		}
		r.Page = int(page.Int64)
		r.BankCode, r.BranchCode, r.AccountNumber = bank.String, branch.String, account.String
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var r types.Run
	var input, output, finished sql.NullString
	var started string
	if err := sc.Scan(&r.ID, &r.Command, &input, &output, &started, &finished, &r.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scanning run: %w", err)
	}
	r.InputDir = input.String
	r.OutputDir = output.String
	r.StartedAt = parseTime(started)
	if finished.Valid {
		r.FinishedAt = parseTime(finished.String)
	}
	return r, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
