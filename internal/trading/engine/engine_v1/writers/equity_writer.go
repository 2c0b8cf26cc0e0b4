package writers

import (
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

const equityColumns = `
	time TIMESTAMPTZ,
	equity DOUBLE,
	cash DOUBLE,
	positions_value DOUBLE`

// EquityWriter writes the equity curve to equity.parquet.
type EquityWriter struct {
	*table
}

func NewEquityWriter(outputPath string, opts ...Option) *EquityWriter {
	return &EquityWriter{table: newTable(outputPath, "equity", equityColumns, "time ASC", opts)}
}

func (w *EquityWriter) Initialize() error {
	return w.initialize()
}

func (w *EquityWriter) Write(snapshot types.EquitySnapshot) error {
	return w.insert(snapshot.Time, snapshot.Equity, snapshot.Cash, snapshot.PositionsValue)
}

func (w *EquityWriter) Flush() error {
	return w.flush()
}

func (w *EquityWriter) GetOutputPath() string {
	return w.outputPath
}

func (w *EquityWriter) GetSnapshotCount() (int, error) {
	return w.count()
}

func (w *EquityWriter) Close() error {
	return w.close()
}
