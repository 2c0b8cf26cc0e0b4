package trading

import (
	"context"

	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

// BrokerExecutor forwards orders to a live broker.
type BrokerExecutor struct {
	broker tradingprovider.Broker
}

// NewBrokerExecutor creates an executor that sends every order to broker.
func NewBrokerExecutor(broker tradingprovider.Broker) *BrokerExecutor {
	return &BrokerExecutor{
		broker: broker,
	}
}

func (e *BrokerExecutor) Submit(ctx context.Context, symbol string, qty float64, side types.OrderSide) error {
	return e.broker.SubmitMarketOrder(ctx, symbol, qty, side)
}

// FillExecutor accepts every well-formed order. Replay uses it, so fills happen
// at whatever price the scheduler records in the ledger.
type FillExecutor struct {
	submitted int
}

func NewFillExecutor() *FillExecutor {
	return &FillExecutor{submitted: 0}
}

func (e *FillExecutor) Submit(ctx context.Context, symbol string, qty float64, side types.OrderSide) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "order requires a symbol")
	}

	if qty <= 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "order quantity must be positive, got %v", qty)
	}

	if side != types.OrderSideBuy && side != types.OrderSideSell {
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported order side: %s", side)
	}

	e.submitted++

	return nil
}

// Submitted is the number of accepted orders.
func (e *FillExecutor) Submitted() int {
	return e.submitted
}
