package writer

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// StreamingDuckDBWriter records live bars into a parquet file that survives
// restarts. Bars are upserted by (symbol, time), so a reconnect that replays
// bars does not duplicate rows. The file is named stream_{source}_{timeframe}.parquet.
type StreamingDuckDBWriter struct {
	db         *sql.DB
	outputPath string
	mu         sync.Mutex
}

// NewStreamingDuckDBWriter creates a writer for dataDir/stream_{source}_{timeframe}.parquet.
func NewStreamingDuckDBWriter(dataDir, source, timeframe string) *StreamingDuckDBWriter {
	return &StreamingDuckDBWriter{
		db:         nil,
		outputPath: filepath.Join(dataDir, fmt.Sprintf("stream_%s_%s.parquet", source, timeframe)),
		mu:         sync.Mutex{},
	}
}

// Initialize opens the database and loads the existing file if there is one.
func (w *StreamingDuckDBWriter) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	if _, err = db.Exec(fmt.Sprintf(createTableSQL, ",\n\t\tPRIMARY KEY (symbol, time)")); err != nil {
		db.Close()

		return fmt.Errorf("failed to create table: %w", err)
	}

	if _, statErr := os.Stat(w.outputPath); statErr == nil {
		// an unreadable file is overwritten by the next export
		_, _ = db.Exec(fmt.Sprintf(`
			INSERT INTO market_data
			SELECT * FROM read_parquet('%s')
			ON CONFLICT (symbol, time) DO NOTHING
		`, w.outputPath))
	}

	w.db = db

	return nil
}

// Write upserts one bar and re-exports the file.
func (w *StreamingDuckDBWriter) Write(bar types.Bar) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return fmt.Errorf("writer not initialized")
	}

	_, err := w.db.Exec(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, time) DO UPDATE SET
			id = excluded.id,
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`, uuid.New().String(), bar.Time, bar.Symbol, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	if err != nil {
		return fmt.Errorf("failed to insert bar: %w", err)
	}

	return w.export()
}

// Finalize exports the data and returns the output path.
func (w *StreamingDuckDBWriter) Finalize() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return "", fmt.Errorf("writer not initialized")
	}

	if err := w.export(); err != nil {
		return "", err
	}

	return w.outputPath, nil
}

func (w *StreamingDuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

// Close releases database resources.
func (w *StreamingDuckDBWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.db == nil {
		return nil
	}

	err := w.db.Close()
	w.db = nil

	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func (w *StreamingDuckDBWriter) export() error {
	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY time ASC) TO '%s' (FORMAT PARQUET)`, w.outputPath))
	if err != nil {
		return fmt.Errorf("failed to export to parquet: %w", err)
	}

	return nil
}

var _ MarketDataWriter = (*StreamingDuckDBWriter)(nil)
