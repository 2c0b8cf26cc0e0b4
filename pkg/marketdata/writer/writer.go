package writer

import (
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// MarketDataWriter persists bars to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// createTableSQL is shared by every DuckDB backed writer so the files they
// produce can be read back by the same query.
const createTableSQL = `
	CREATE TABLE IF NOT EXISTS market_data (
		id TEXT,
		time TIMESTAMPTZ,
		symbol TEXT,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume DOUBLE%s
	)
`
