package writers

import (
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

const orderColumns = `
	id TEXT,
	time TIMESTAMPTZ,
	symbol TEXT,
	side TEXT,
	qty DOUBLE,
	status TEXT,
	error TEXT`

// OrdersWriter writes every submitted order, filled or rejected, to orders.parquet.
type OrdersWriter struct {
	*table
}

func NewOrdersWriter(outputPath string, opts ...Option) *OrdersWriter {
	return &OrdersWriter{table: newTable(outputPath, "orders", orderColumns, "time ASC, id ASC", opts)}
}

func (w *OrdersWriter) Initialize() error {
	return w.initialize()
}

func (w *OrdersWriter) Write(order types.OrderRecord) error {
	return w.insert(order.ID, order.Time, order.Symbol, string(order.Side), order.Qty, order.Status, order.Error)
}

func (w *OrdersWriter) Flush() error {
	return w.flush()
}

func (w *OrdersWriter) GetOutputPath() string {
	return w.outputPath
}

func (w *OrdersWriter) GetOrderCount() (int, error) {
	return w.count()
}

func (w *OrdersWriter) Close() error {
	return w.close()
}
