package engine_v1

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"go.uber.org/zap"
)

// DefaultQueueCapacity is the number of bars buffered between the stream and the worker.
const DefaultQueueCapacity = 1024

// BarQueue hands bars from the stream goroutine to the worker. A bar at or
// before the last accepted time of its symbol is dropped. When the queue is
// full the oldest bar is discarded so that the worker always sees the latest data.
type BarQueue struct {
	bars chan types.Bar
	log  *logger.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time

	duplicates atomic.Int64
	overflows  atomic.Int64
}

// NewBarQueue creates a queue holding at most capacity bars.
func NewBarQueue(capacity int, log *logger.Logger) *BarQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	return &BarQueue{
		bars:     make(chan types.Bar, capacity),
		log:      log,
		lastSeen: make(map[string]time.Time),
	}
}

// Seed records t as the last accepted time of symbol, typically the last
// prefetched bar.
func (q *BarQueue) Seed(symbol string, t time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if last, ok := q.lastSeen[symbol]; !ok || t.After(last) {
		q.lastSeen[symbol] = t
	}
}

// accept updates the per-symbol watermark and reports whether bar is new.
func (q *BarQueue) accept(bar types.Bar) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if last, ok := q.lastSeen[bar.Symbol]; ok && !bar.Time.After(last) {
		return false
	}

	q.lastSeen[bar.Symbol] = bar.Time

	return true
}

// Push enqueues bar without blocking. It reports whether the bar was accepted.
func (q *BarQueue) Push(bar types.Bar) bool {
	if !q.accept(bar) {
		q.duplicates.Add(1)
		q.log.Debug("Dropping duplicate or out-of-order bar",
			zap.String("symbol", bar.Symbol),
			zap.Time("time", bar.Time),
		)

		return false
	}

	for {
		select {
		case q.bars <- bar:
			return true
		default:
		}

		select {
		case dropped := <-q.bars:
			q.overflows.Add(1)
			q.log.Warn("Bar queue full, dropping oldest bar",
				zap.String("symbol", dropped.Symbol),
				zap.Time("time", dropped.Time),
			)
		default:
		}
	}
}

// Pop waits up to timeout for the next bar. ok is false on timeout or when ctx ends.
func (q *BarQueue) Pop(ctx context.Context, timeout time.Duration) (bar types.Bar, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case bar = <-q.bars:
		return bar, true
	case <-timer.C:
		return types.Bar{}, false
	case <-ctx.Done():
		return types.Bar{}, false
	}
}

// Len is the number of bars waiting.
func (q *BarQueue) Len() int {
	return len(q.bars)
}

// Duplicates is the number of bars dropped by the timestamp check.
func (q *BarQueue) Duplicates() int64 {
	return q.duplicates.Load()
}

// Overflows is the number of bars discarded because the queue was full.
func (q *BarQueue) Overflows() int64 {
	return q.overflows.Load()
}
