// Package trading connects scheduler decisions to order execution.
package trading

import (
	"context"

	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// OrderExecutor submits market orders on behalf of the scheduler. Callers only
// mutate the ledger after Submit returns nil.
type OrderExecutor interface {
	// Submit places a market order for qty shares of symbol
	Submit(ctx context.Context, symbol string, qty float64, side types.OrderSide) error
}
