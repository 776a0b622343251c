package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pagecrawl/internal/model"
)

// FileName is the name of the archive database inside its directory.
const FileName = "pagecrawl.db"

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// CrawlDB provides SQLite-based storage for finished crawl runs.
//
// Design decision: We use a single database file for all seeds rather
// than separate files per site. This keeps history and diff queries simple.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawled seed
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		page_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		options_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Page records in the order they were produced
	CREATE TABLE IF NOT EXISTS pages (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		title TEXT,
		error TEXT,
		fingerprint TEXT NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run describes one archived crawl of a seed.
type Run struct {
	// ID is the run identifier (a UUID).
	ID string

	// Seed is the start URL of the crawl.
	Seed string

	// StartedAt and FinishedAt bound the crawl.
	StartedAt  time.Time
	FinishedAt time.Time

	// PageCount is the number of records produced.
	PageCount int

	// ErrorCount is the number of failed records.
	ErrorCount int

	// Options holds the crawl options in effect, for display only.
	Options map[string]string
}

// SaveRun stores run and its records in a single transaction.
// An empty run.ID is replaced by a new UUID. Page and error counts are
// computed from records. The run ID is returned.
func (cdb *CrawlDB) SaveRun(ctx context.Context, run *Run, records []*model.PageRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.PageCount = len(records)
	run.ErrorCount = 0
	for _, r := range records {
		if r.Failed() {
			run.ErrorCount++
		}
	}

	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return "", fmt.Errorf("failed to serialize options: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, seed, started_at, finished_at, page_count, error_count, options_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seed,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.PageCount,
		run.ErrorCount,
		string(optionsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, position, url, depth, title, error, fingerprint, record_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to serialize record %s: %w", r.URL, err)
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, r.URL, r.Depth, r.Title, r.Error, fingerprint(data), string(data),
		); err != nil {
			return "", fmt.Errorf("failed to insert page %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// ListSeeds returns every archived seed in alphabetical order.
func (cdb *CrawlDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `SELECT DISTINCT seed FROM runs ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

// ListRuns returns all runs of seed, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context, seed string) ([]Run, error) {
	return cdb.LatestRuns(ctx, seed, -1)
}

// LatestRuns returns at most n runs of seed, newest first.
// A negative n returns all runs.
func (cdb *CrawlDB) LatestRuns(ctx context.Context, seed string, n int) ([]Run, error) {
	query := `
	SELECT id, seed, started_at, finished_at, page_count, error_count, options_json
	FROM runs
	WHERE seed = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?
	`

	rows, err := cdb.db.QueryContext(ctx, query, seed, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		var optionsJSON sql.NullString

		if err := rows.Scan(
			&run.ID,
			&run.Seed,
			&started,
			&finished,
			&run.PageCount,
			&run.ErrorCount,
			&optionsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Options = map[string]string{}
		if optionsJSON.Valid && optionsJSON.String != "" && optionsJSON.String != "null" {
			if err := json.Unmarshal([]byte(optionsJSON.String), &run.Options); err != nil {
				run.Options = map[string]string{}
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunRecords returns the records of a run in their original order.
// ErrRunNotFound is returned for an unknown run ID.
func (cdb *CrawlDB) GetRunRecords(ctx context.Context, runID string) ([]*model.PageRecord, error) {
	pages, err := cdb.runPages(ctx, runID)
	if err != nil {
		return nil, err
	}

	records := make([]*model.PageRecord, 0, len(pages))
	for _, p := range pages {
		var r model.PageRecord
		if err := json.Unmarshal([]byte(p.recordJSON), &r); err != nil {
			return nil, fmt.Errorf("failed to parse record %s: %w", p.url, err)
		}
		records = append(records, &r)
	}
	return records, nil
}

// RunDiff lists URLs that differ between two runs.
type RunDiff struct {
	// Added URLs appear only in the newer run.
	Added []string `json:"added"`

	// Removed URLs appear only in the older run.
	Removed []string `json:"removed"`

	// Changed URLs appear in both runs with a different record fingerprint.
	Changed []string `json:"changed"`
}

// Empty reports whether the runs are equivalent.
func (d *RunDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DiffRuns compares two runs by URL and record fingerprint.
// Each list is sorted alphabetically.
func (cdb *CrawlDB) DiffRuns(ctx context.Context, oldRunID, newRunID string) (*RunDiff, error) {
	oldPrints, err := cdb.fingerprints(ctx, oldRunID)
	if err != nil {
		return nil, err
	}
	newPrints, err := cdb.fingerprints(ctx, newRunID)
	if err != nil {
		return nil, err
	}

	diff := &RunDiff{
		Added:   []string{},
		Removed: []string{},
		Changed: []string{},
	}
	for url, fp := range newPrints {
		old, ok := oldPrints[url]
		switch {
		case !ok:
			diff.Added = append(diff.Added, url)
		case old != fp:
			diff.Changed = append(diff.Changed, url)
		}
	}
	for url := range oldPrints {
		if _, ok := newPrints[url]; !ok {
			diff.Removed = append(diff.Removed, url)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff, nil
}

// storedPage is a row of the pages table.
type storedPage struct {
	url         string
	fingerprint string
	recordJSON  string
}

// runPages loads the pages of a run ordered by position.
func (cdb *CrawlDB) runPages(ctx context.Context, runID string) ([]storedPage, error) {
	var exists int
	err := cdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT url, fingerprint, record_json FROM pages
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	var pages []storedPage
	for rows.Next() {
		var p storedPage
		if err := rows.Scan(&p.url, &p.fingerprint, &p.recordJSON); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// fingerprints maps each URL of a run to its record fingerprint.
func (cdb *CrawlDB) fingerprints(ctx context.Context, runID string) (map[string]string, error) {
	pages, err := cdb.runPages(ctx, runID)
	if err != nil {
		return nil, err
	}
	prints := make(map[string]string, len(pages))
	for _, p := range pages {
		prints[p.url] = p.fingerprint
	}
	return prints, nil
}

// fingerprint returns the hex SHA3-256 of data.
func fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the fingerprint stored for record.
func Fingerprint(record *model.PageRecord) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	return fingerprint(data), nil
}

// formatTimestamp renders t in UTC with a fixed width.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
