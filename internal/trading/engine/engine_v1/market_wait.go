package engine_v1

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MarketWaitSchedule is the polling interval used while the market is closed,
// chosen by the time left until the next open.
type MarketWaitSchedule struct {
	Far      time.Duration
	Near     time.Duration
	Imminent time.Duration
}

// DefaultMarketWaitSchedule polls every 30s, every 15s within five minutes of
// the open and every 5s within the last minute.
var DefaultMarketWaitSchedule = MarketWaitSchedule{
	Far:      30 * time.Second,
	Near:     15 * time.Second,
	Imminent: 5 * time.Second,
}

// Next returns the sleep before the next clock check.
func (s MarketWaitSchedule) Next(untilOpen time.Duration) time.Duration {
	switch {
	case untilOpen <= time.Minute:
		return s.Imminent
	case untilOpen <= 5*time.Minute:
		return s.Near
	default:
		return s.Far
	}
}

// waitForMarketOpen blocks until the broker reports the market open. It
// returns false without error when a stop is requested while waiting.
func (e *LiveTradingEngineV1) waitForMarketOpen(ctx context.Context) (bool, error) {
	for {
		if e.stopRequested.Load() {
			e.log.Info("Stop requested while waiting for market open")

			return false, nil
		}

		clock, err := e.broker.Clock(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}

		delay := e.marketWait.Far

		if err != nil {
			e.log.Warn("Failed to read market clock", zap.Error(err))
		} else {
			if clock.IsOpen {
				return true, nil
			}

			now := clock.Timestamp
			if now.IsZero() {
				now = e.now()
			}

			untilOpen := clock.NextOpen.Sub(now)
			delay = e.marketWait.Next(untilOpen)

			e.log.Info("Waiting for market open",
				zap.Time("next_open", clock.NextOpen),
				zap.Duration("until_open", untilOpen),
				zap.Duration("next_check", delay),
			)
		}

		if err := e.sleep(ctx, delay); err != nil {
			return false, err
		}
	}
}

// sleep waits for d in slices of the poll timeout so a stop request is seen
// within one slice. It returns early without error on a stop request.
func (e *LiveTradingEngineV1) sleep(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 || e.stopRequested.Load() {
			return nil
		}

		slice := min(remaining, e.config.PollTimeout)
		timer := time.NewTimer(slice)

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-timer.C:
		}
	}
}
