package writers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

// Option configures a writer.
type Option func(*table)

// Buffered keeps rows in memory until Flush instead of exporting the parquet
// file after every write. Replay uses it.
func Buffered() Option {
	return func(t *table) {
		t.exportOnWrite = false
	}
}

// table is an in-memory DuckDB table mirrored to a parquet file.
type table struct {
	db            *sql.DB
	name          string
	columns       string
	orderBy       string
	outputPath    string
	exportOnWrite bool
	mu            sync.Mutex
}

func newTable(outputPath, name, columns, orderBy string, opts []Option) *table {
	t := &table{
		db:            nil,
		name:          name,
		columns:       columns,
		orderBy:       orderBy,
		outputPath:    outputPath,
		exportOnWrite: true,
		mu:            sync.Mutex{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// initialize creates the table and loads rows from an existing parquet file,
// so a restarted session keeps appending to the same artifact.
func (t *table) initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, t.columns)); err != nil {
		db.Close()

		return fmt.Errorf("failed to create %s table: %w", t.name, err)
	}

	if _, err := os.Stat(t.outputPath); err == nil {
		if _, err := db.Exec(fmt.Sprintf("INSERT INTO %s SELECT * FROM read_parquet('%s')", t.name, t.outputPath)); err != nil {
			db.Close()

			return fmt.Errorf("failed to load existing %s from %s: %w", t.name, t.outputPath, err)
		}
	}

	t.db = db

	return nil
}

func (t *table) insert(args ...any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	if _, err := t.db.Exec(fmt.Sprintf("INSERT INTO %s VALUES (%s)", t.name, placeholders), args...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}

	if !t.exportOnWrite {
		return nil
	}

	return t.export()
}

func (t *table) flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	return t.export()
}

func (t *table) count() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return 0, fmt.Errorf("writer not initialized")
	}

	var count int
	if err := t.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", t.name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}

	return count, nil
}

func (t *table) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.db == nil {
		return nil
	}

	err := t.db.Close()
	t.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

//nolint:funcorder // helper method used by insert and flush
func (t *table) export() error {
	_, err := t.db.Exec(fmt.Sprintf("COPY (SELECT * FROM %s ORDER BY %s) TO '%s' (FORMAT PARQUET)", t.name, t.orderBy, t.outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}
