package writers

import (
	"encoding/json"
	"fmt"

	"github.com/rxtech-lab/argo-intraday/internal/types"
)

const tradeColumns = `
	id TEXT,
	symbol TEXT,
	slot TEXT,
	policy TEXT,
	side TEXT,
	entry_time TIMESTAMPTZ,
	exit_time TIMESTAMPTZ,
	entry_price DOUBLE,
	exit_price DOUBLE,
	qty DOUBLE,
	pnl DOUBLE,
	pnl_pct DOUBLE,
	exit_reason TEXT,
	hold_minutes DOUBLE,
	diagnostics TEXT`

// TradesWriter writes closed trades to trades.parquet. Policy diagnostics are
// stored as a JSON object.
type TradesWriter struct {
	*table
}

// NewTradesWriter creates a new TradesWriter.
// outputPath is the full path to the parquet file.
func NewTradesWriter(outputPath string, opts ...Option) *TradesWriter {
	return &TradesWriter{table: newTable(outputPath, "trades", tradeColumns, "exit_time ASC, id ASC", opts)}
}

func (w *TradesWriter) Initialize() error {
	return w.initialize()
}

// Write persists a trade.
func (w *TradesWriter) Write(trade types.Trade) error {
	diagnostics := "{}"

	if len(trade.Diagnostics) > 0 {
		raw, err := json.Marshal(trade.Diagnostics)
		if err != nil {
			return fmt.Errorf("failed to encode diagnostics of trade %s: %w", trade.ID, err)
		}

		diagnostics = string(raw)
	}

	return w.insert(
		trade.ID, trade.Symbol, trade.Slot, trade.Policy, string(trade.Side),
		trade.EntryTime, trade.ExitTime, trade.EntryPrice, trade.ExitPrice,
		trade.Qty, trade.PnL, trade.PnLPct, trade.ExitReason, trade.HoldMinutes(),
		diagnostics,
	)
}

func (w *TradesWriter) Flush() error {
	return w.flush()
}

// GetOutputPath returns the parquet file path.
func (w *TradesWriter) GetOutputPath() string {
	return w.outputPath
}

func (w *TradesWriter) GetTradeCount() (int, error) {
	return w.count()
}

// Close releases database resources.
func (w *TradesWriter) Close() error {
	return w.close()
}
