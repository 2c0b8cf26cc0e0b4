package prefetch

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// Warmer consumes historical bars without trading on them.
type Warmer interface {
	Warm(bar types.Bar) error
}

// BarRecorder persists prefetched bars next to the streamed ones.
type BarRecorder interface {
	Write(bar types.Bar) error
}

// PrefetchManager warms the policies with the bars of the current session and
// fills the gap between the prefetch and the first streamed bar.
type PrefetchManager struct {
	config    engine.PrefetchConfig
	provider  provider.Provider
	warmer    Warmer
	recorder  BarRecorder
	timeframe provider.Timeframe
	logger    *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
	handled  map[string]bool
}

// NewPrefetchManager creates a new PrefetchManager instance.
func NewPrefetchManager(log *logger.Logger) *PrefetchManager {
	return &PrefetchManager{
		config:    engine.PrefetchConfig{}, //nolint:exhaustruct // zero value is fine
		provider:  nil,
		warmer:    nil,
		recorder:  nil,
		timeframe: provider.TimeframeOneMinute,
		logger:    log.Named("prefetch"),
		now:       time.Now,
		mu:        sync.Mutex{},
		lastSeen:  make(map[string]time.Time),
		handled:   make(map[string]bool),
	}
}

// Initialize sets up the prefetch manager with required components.
// recorder may be nil when bars are not recorded.
func (p *PrefetchManager) Initialize(
	config engine.PrefetchConfig,
	prov provider.Provider,
	timeframe provider.Timeframe,
	warmer Warmer,
	recorder BarRecorder,
) {
	p.config = config
	p.provider = prov
	p.timeframe = timeframe
	p.warmer = warmer
	p.recorder = recorder
}

// SetClock replaces the wall clock used to compute the prefetch range.
func (p *PrefetchManager) SetClock(now func() time.Time) {
	p.now = now
}

// calculateStartTime is the premarket open of the current session, or now minus
// the configured minutes when that is later.
func (p *PrefetchManager) calculateStartTime(now time.Time) time.Time {
	local := utils.ToSessionTime(now)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, utils.PremarketOpenMinute, 0, 0, local.Location())

	if p.config.Minutes > 0 {
		if limited := now.Add(-time.Duration(p.config.Minutes) * time.Minute); limited.After(start) {
			return limited
		}
	}

	return start
}

// ExecutePrefetch fetches the session's bars for every symbol and feeds them to
// the warmer. A symbol that fails is logged and skipped. It returns the number
// of bars warmed.
func (p *PrefetchManager) ExecutePrefetch(ctx context.Context, symbols []string) (int, error) {
	if !p.config.Enabled {
		p.logger.Info("Prefetch is disabled, skipping")

		return 0, nil
	}

	if p.provider == nil || p.warmer == nil {
		return 0, errors.New(errors.ErrCodeEngineInitFailed, "prefetch manager is not initialized")
	}

	end := p.now()
	start := p.calculateStartTime(end)

	p.logger.Info("Starting prefetch",
		zap.Time("start_time", start),
		zap.Time("end_time", end),
		zap.Strings("symbols", symbols),
		zap.String("timeframe", p.timeframe.String()),
	)

	total := 0

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		count, err := p.warmRange(ctx, symbol, start, end)
		if err != nil {
			p.logger.Warn("Failed to prefetch data for symbol",
				zap.String("symbol", symbol),
				zap.Error(err),
			)

			continue
		}

		total += count
	}

	p.logger.Info("Prefetch completed", zap.Int("bars", total))

	return total, nil
}

// warmRange fetches [from, to] and warms every bar newer than the last one seen.
func (p *PrefetchManager) warmRange(ctx context.Context, symbol string, from, to time.Time) (int, error) {
	bars, err := p.provider.HistoricalBars(ctx, symbol, p.timeframe, from, to)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", symbol)
	}

	count := 0

	for _, bar := range provider.DedupSorted(bars) {
		last, seen := p.GetLastStoredTimestamp(symbol)
		if seen && !bar.Time.After(last) {
			continue
		}

		if err := p.warmer.Warm(bar); err != nil {
			p.logger.Debug("Skipping prefetched bar", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		if p.recorder != nil {
			if err := p.recorder.Write(bar); err != nil {
				p.logger.Warn("Failed to record prefetched bar", zap.String("symbol", symbol), zap.Error(err))
			}
		}

		p.markSeen(symbol, bar.Time)
		count++
	}

	return count, nil
}

func (p *PrefetchManager) markSeen(symbol string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if last, ok := p.lastSeen[symbol]; !ok || at.After(last) {
		p.lastSeen[symbol] = at
	}
}

// GetLastStoredTimestamp returns the timestamp of the last warmed bar for symbol.
func (p *PrefetchManager) GetLastStoredTimestamp(symbol string) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	last, ok := p.lastSeen[symbol]

	return last, ok
}

// DetectGap checks if there's a gap between the warmed data and the stream.
// Returns the gap duration. If gap is within two bars, returns 0.
func (p *PrefetchManager) DetectGap(firstStreamTime time.Time, symbol string) time.Duration {
	lastStored, ok := p.GetLastStoredTimestamp(symbol)
	if !ok {
		return 0
	}

	gap := firstStreamTime.Sub(lastStored)
	tolerance := 2 * p.timeframe.Duration()

	if gap <= tolerance {
		p.logger.Debug("Gap within tolerance, no fill needed",
			zap.String("symbol", symbol),
			zap.Duration("gap", gap),
			zap.Duration("tolerance", tolerance),
		)

		return 0
	}

	p.logger.Info("Gap detected",
		zap.String("symbol", symbol),
		zap.Time("last_stored", lastStored),
		zap.Time("first_stream", firstStreamTime),
		zap.Duration("gap", gap),
	)

	return gap
}

// FillGap warms the bars strictly between from and to.
func (p *PrefetchManager) FillGap(ctx context.Context, symbol string, from time.Time, to time.Time) (int, error) {
	p.logger.Info("Filling gap",
		zap.String("symbol", symbol),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	count, err := p.warmRange(ctx, symbol, from, to.Add(-time.Nanosecond))
	if err != nil {
		return 0, err
	}

	p.logger.Info("Gap filled", zap.String("symbol", symbol), zap.Int("bars", count))

	return count, nil
}

// HandleStreamBar is called with every streamed bar before it is queued. On the
// first bar of each symbol it fills the gap left since the prefetch.
func (p *PrefetchManager) HandleStreamBar(ctx context.Context, bar types.Bar) {
	if !p.config.Enabled {
		return
	}

	p.mu.Lock()
	first := !p.handled[bar.Symbol]
	p.handled[bar.Symbol] = true
	p.mu.Unlock()

	if !first {
		return
	}

	if p.DetectGap(bar.Time, bar.Symbol) == 0 {
		return
	}

	lastStored, _ := p.GetLastStoredTimestamp(bar.Symbol)

	if _, err := p.FillGap(ctx, bar.Symbol, lastStored, bar.Time); err != nil {
		p.logger.Warn("Failed to fill gap",
			zap.String("symbol", bar.Symbol),
			zap.Error(err),
		)
	}
}

// IsEnabled returns whether prefetch is enabled.
func (p *PrefetchManager) IsEnabled() bool {
	return p.config.Enabled
}

// GetConfig returns the prefetch configuration.
func (p *PrefetchManager) GetConfig() engine.PrefetchConfig {
	return p.config
}
