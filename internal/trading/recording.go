package trading

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// OrderRecorder persists order records.
type OrderRecorder interface {
	Write(order types.OrderRecord) error
}

// RecordingExecutor records every order it forwards, including rejected ones.
// A failing recorder is logged and never fails the order.
type RecordingExecutor struct {
	next     OrderExecutor
	recorder OrderRecorder
	now      func() time.Time
	log      *logger.Logger
}

func NewRecordingExecutor(next OrderExecutor, recorder OrderRecorder, log *logger.Logger) *RecordingExecutor {
	return &RecordingExecutor{
		next:     next,
		recorder: recorder,
		now:      time.Now,
		log:      log,
	}
}

func (e *RecordingExecutor) Submit(ctx context.Context, symbol string, qty float64, side types.OrderSide) error {
	err := e.next.Submit(ctx, symbol, qty, side)

	record := types.OrderRecord{
		ID:     uuid.NewString(),
		Time:   e.now(),
		Symbol: symbol,
		Side:   side,
		Qty:    qty,
		Status: types.OrderStatusFilled,
	}

	if err != nil {
		record.Status = types.OrderStatusRejected
		record.Error = err.Error()
	}

	if writeErr := e.recorder.Write(record); writeErr != nil {
		e.log.Warn("Failed to record order",
			zap.String("symbol", symbol),
			zap.Error(writeErr),
		)
	}

	return err
}
