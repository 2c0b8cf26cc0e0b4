package types

import "time"

const (
	ExitReasonStrategy      = "strategy"
	ExitReasonStopLoss      = "stop_loss"
	ExitReasonTakeProfit    = "take_profit"
	ExitReasonEndOfBacktest = "end_of_backtest"
	ExitReasonFlatten       = "flatten"
)

// Trade is one closed position. It is created once at close time and never mutated.
type Trade struct {
	ID          string         `json:"id" yaml:"id"`
	Symbol      string         `json:"symbol" yaml:"symbol"`
	Slot        string         `json:"slot" yaml:"slot"`
	Policy      string         `json:"policy" yaml:"policy"`
	Side        Side           `json:"side" yaml:"side"`
	EntryTime   time.Time      `json:"entry_time" yaml:"entry_time"`
	ExitTime    time.Time      `json:"exit_time" yaml:"exit_time"`
	EntryPrice  float64        `json:"entry_price" yaml:"entry_price"`
	ExitPrice   float64        `json:"exit_price" yaml:"exit_price"`
	Qty         float64        `json:"qty" yaml:"qty"`
	PnL         float64        `json:"pnl" yaml:"pnl"`
	PnLPct      float64        `json:"pnl_pct" yaml:"pnl_pct"`
	ExitReason  string         `json:"exit_reason" yaml:"exit_reason"`
	Diagnostics map[string]any `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// HoldMinutes is the time between entry and exit in minutes.
func (t Trade) HoldMinutes() float64 {
	return t.ExitTime.Sub(t.EntryTime).Minutes()
}

// EquitySnapshot is one point of the equity curve.
type EquitySnapshot struct {
	Time           time.Time `json:"time" yaml:"time"`
	Equity         float64   `json:"equity" yaml:"equity"`
	Cash           float64   `json:"cash" yaml:"cash"`
	PositionsValue float64   `json:"positions_value" yaml:"positions_value"`
}

// Order statuses recorded for submitted orders.
const (
	OrderStatusFilled   = "filled"
	OrderStatusRejected = "rejected"
)

// OrderRecord is one market order handed to an executor.
type OrderRecord struct {
	ID     string    `json:"id" yaml:"id"`
	Time   time.Time `json:"time" yaml:"time"`
	Symbol string    `json:"symbol" yaml:"symbol"`
	Side   OrderSide `json:"side" yaml:"side"`
	Qty    float64   `json:"qty" yaml:"qty"`
	Status string    `json:"status" yaml:"status"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
}
