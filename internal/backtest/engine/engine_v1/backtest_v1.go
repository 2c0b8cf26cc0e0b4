package engine

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/backtest/engine"
	"github.com/rxtech-lab/argo-intraday/internal/ledger"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/scheduler"
	"github.com/rxtech-lab/argo-intraday/internal/strategy"
	"github.com/rxtech-lab/argo-intraday/internal/trading"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/session"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/stats"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/writers"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

const (
	recentTradesInSnapshot = 20
	summaryTopTrades       = 5
)

// symbolBars is the replay input of one symbol.
type symbolBars struct {
	symbol string
	bars   []types.Bar
}

// BacktestEngineV1 replays historical bars through the scheduler on a single
// goroutine. Only Pause, Resume, RequestStop, Snapshot and Stats may be called
// from other goroutines.
type BacktestEngineV1 struct {
	config   BacktestEngineV1Config
	registry strategy.Registry
	provider provider.Provider
	broker   tradingprovider.Broker
	log      *logger.Logger
	now      func() time.Time

	paused        atomic.Bool
	stopRequested atomic.Bool
	snapshot      atomic.Pointer[types.Snapshot]
	stats         atomic.Pointer[types.RunStats]
}

// Option configures a BacktestEngineV1.
type Option func(*BacktestEngineV1)

// WithBroker seeds the starting cash from the broker's account equity.
func WithBroker(broker tradingprovider.Broker) Option {
	return func(b *BacktestEngineV1) {
		b.broker = broker
	}
}

// WithClock replaces the wall clock used to name the run folder.
func WithClock(now func() time.Time) Option {
	return func(b *BacktestEngineV1) {
		b.now = now
	}
}

// NewBacktestEngineV1 creates a replay driver. The provider is required; it is
// asked once per symbol for the whole replay range.
func NewBacktestEngineV1(
	config BacktestEngineV1Config,
	registry strategy.Registry,
	marketData provider.Provider,
	log *logger.Logger,
	opts ...Option,
) (engine.Engine, error) {
	if marketData == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoProvider, "no market data provider")
	}

	if registry == nil {
		return nil, errors.New(errors.ErrCodeBacktestConfigError, "no strategy registry")
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	b := &BacktestEngineV1{
		config:   config,
		registry: registry,
		provider: marketData,
		broker:   nil,
		log:      log.Named("backtest"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	idle := types.IdleSnapshot()
	b.snapshot.Store(&idle)

	return b, nil
}

// Pause implements engine.Engine.
func (b *BacktestEngineV1) Pause() {
	b.paused.Store(true)
}

// Resume implements engine.Engine.
func (b *BacktestEngineV1) Resume() {
	b.paused.Store(false)
}

// RequestStop implements engine.Engine. Both flatten values end the replay the
// same way since every open position is closed at its entry price.
func (b *BacktestEngineV1) RequestStop(flatten bool) {
	b.log.Info("Stop requested", zap.Bool("flatten", flatten))
	b.stopRequested.Store(true)
}

// Snapshot implements engine.Engine.
func (b *BacktestEngineV1) Snapshot() types.Snapshot {
	return *b.snapshot.Load()
}

// Stats implements engine.Engine.
func (b *BacktestEngineV1) Stats() types.RunStats {
	if s := b.stats.Load(); s != nil {
		return *s
	}

	return types.RunStats{}
}

// GetConfigSchema returns the JSON schema of the replay configuration.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	return config.GenerateSchemaJSON()
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	defer func() {
		b.stopRequested.Store(false)

		if callbacks.OnBacktestEnd != nil {
			(*callbacks.OnBacktestEnd)(err)
		}
	}()

	startingCash := b.startingCash(ctx)
	book := ledger.New(startingCash)
	state := &types.SessionState{
		Mode:           types.RunModeBacktest,
		ConnectionMode: "",
		Started:        true,
		Paused:         b.paused.Load(),
		Stopping:       false,
		FlattenOnStop:  false,
		RealizedPnL:    0,
		UnrealizedPnL:  0,
		LastPnLUpdate:  time.Time{},
		RunFolder:      "",
	}

	sched, err := scheduler.New(b.config.Slots, b.registry, b.config.Scheduler, book, trading.NewFillExecutor(), state, b.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to build scheduler", err)
	}

	series, totalBars, err := b.loadBars(ctx)
	if err != nil {
		return err
	}

	if callbacks.OnBacktestStart != nil {
		if cbErr := (*callbacks.OnBacktestStart)(b.config.Symbols, totalBars); cbErr != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "backtest start callback failed", cbErr)
		}
	}

	run, err := b.openRun(startingCash)
	if err != nil {
		return err
	}
	defer run.close()

	state.RunFolder = run.session.GetCurrentRunPath()

	sched.Start()

	replayErr := b.replay(ctx, series, totalBars, sched, state, run, callbacks)

	b.finish(ctx, sched, state, run, callbacks)
	sched.Stop()

	return replayErr
}

// startingCash uses the broker equity when a broker is set.
func (b *BacktestEngineV1) startingCash(ctx context.Context) float64 {
	if b.broker == nil {
		return b.config.StartingCash
	}

	equity, err := b.broker.AccountEquity(ctx)
	if err != nil || equity <= 0 {
		b.log.Warn("Failed to read broker equity, using configured starting cash",
			zap.Float64("starting_cash", b.config.StartingCash),
			zap.Error(err),
		)

		return b.config.StartingCash
	}

	b.log.Info("Starting cash from broker equity", zap.Float64("equity", equity))

	return equity
}

// loadBars fetches every symbol once. A symbol that fails to load is skipped.
func (b *BacktestEngineV1) loadBars(ctx context.Context) ([]symbolBars, int, error) {
	start := b.config.StartTime.TakeOr(time.Time{})
	end := b.config.EndTime.TakeOr(time.Time{})

	series := make([]symbolBars, 0, len(b.config.Symbols))
	total := 0

	for _, symbol := range b.config.Symbols {
		bars, err := b.provider.HistoricalBars(ctx, symbol, b.config.Timeframe, start, end)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}

		if err != nil {
			b.log.Warn("Skipping symbol, failed to load bars", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		bars = provider.DedupSorted(bars)
		if len(bars) == 0 {
			b.log.Warn("Skipping symbol, no bars in range", zap.String("symbol", symbol))

			continue
		}

		b.log.Debug("Loaded bars", zap.String("symbol", symbol), zap.Int("bars", len(bars)))

		series = append(series, symbolBars{symbol: symbol, bars: bars})
		total += len(bars)
	}

	if len(series) == 0 {
		return nil, 0, errors.Newf(errors.ErrCodeDataNotFound, "no bars loaded for %v", b.config.Symbols)
	}

	return series, total, nil
}

// replayRun holds the artifacts of one run.
type replayRun struct {
	session *session.SessionManager
	trades  *writers.TradesWriter
	equity  *writers.EquityWriter
	stats   *stats.StatsTracker
	log     *logger.Logger

	// lastBar is the time of the last processed bar, zero before the first one.
	lastBar time.Time
}

func (b *BacktestEngineV1) openRun(startingCash float64) (*replayRun, error) {
	started := b.now()

	sessionManager := session.NewSessionManager(b.log)
	if err := sessionManager.Initialize(b.config.OutputPath, started); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create run folder", err)
	}

	run := &replayRun{
		session: sessionManager,
		trades:  writers.NewTradesWriter(sessionManager.GetFilePath("trades.parquet"), writers.Buffered()),
		equity:  writers.NewEquityWriter(sessionManager.GetFilePath("equity.parquet"), writers.Buffered()),
		stats:   stats.NewStatsTracker(b.log),
		log:     b.log,
	}

	if err := run.trades.Initialize(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArtifactWriteFailed, "failed to initialize trades writer", err)
	}

	if err := run.equity.Initialize(); err != nil {
		_ = run.trades.Close()

		return nil, errors.Wrap(errors.ErrCodeArtifactWriteFailed, "failed to initialize equity writer", err)
	}

	run.stats.Initialize(types.RunModeBacktest, sessionManager.GetRunID(), b.config.Symbols, started, startingCash)
	run.stats.SetFilePaths(
		run.trades.GetOutputPath(),
		run.equity.GetOutputPath(),
		sessionManager.GetFilePath("stats.yaml"),
	)

	return run, nil
}

func (r *replayRun) close() {
	if err := r.trades.Close(); err != nil {
		r.log.Warn("Failed to close trades writer", zap.Error(err))
	}

	if err := r.equity.Close(); err != nil {
		r.log.Warn("Failed to close equity writer", zap.Error(err))
	}
}

func (r *replayRun) recordTrade(trade types.Trade, callbacks engine.LifecycleCallbacks) {
	if err := r.trades.Write(trade); err != nil {
		r.log.Warn("Failed to write trade", zap.String("id", trade.ID), zap.Error(err))
	}

	r.stats.RecordTrade(trade)

	if callbacks.OnTrade != nil {
		(*callbacks.OnTrade)(trade)
	}
}

func (r *replayRun) recordEquity(book *ledger.Ledger, at time.Time) {
	snapshot := types.EquitySnapshot{
		Time:           at,
		Equity:         book.Equity(),
		Cash:           book.Cash(),
		PositionsValue: book.PositionsValue(),
	}

	if err := r.equity.Write(snapshot); err != nil {
		r.log.Warn("Failed to write equity snapshot", zap.Time("time", at), zap.Error(err))
	}

	r.stats.RecordEquity(snapshot)
}

// replay walks the symbols one after another. It returns the error that ended
// the replay early, if any.
func (b *BacktestEngineV1) replay(
	ctx context.Context,
	series []symbolBars,
	totalBars int,
	sched *scheduler.Scheduler,
	state *types.SessionState,
	run *replayRun,
	callbacks engine.LifecycleCallbacks,
) error {
	book := sched.Ledger()
	processed := 0

	for idx, s := range series {
		if b.stopRequested.Load() {
			return nil
		}

		if callbacks.OnSymbolStart != nil {
			if err := (*callbacks.OnSymbolStart)(s.symbol, idx, len(series), len(s.bars)); err != nil {
				return errors.Wrap(errors.ErrCodeCallbackFailed, "symbol start callback failed", err)
			}
		}

		for _, bar := range s.bars {
			if err := ctx.Err(); err != nil {
				b.log.Info("Backtest cancelled", zap.Int("processed", processed))

				return err
			}

			if b.stopRequested.Load() {
				b.log.Info("Backtest stopped", zap.Int("processed", processed))

				return nil
			}

			state.Paused = b.paused.Load()

			result, err := sched.ProcessBar(ctx, bar, state.Paused)
			if err != nil {
				b.log.Warn("Skipping bar", zap.String("symbol", bar.Symbol), zap.Time("time", bar.Time), zap.Error(err))

				continue
			}

			processed++
			run.lastBar = bar.Time

			for _, trade := range result.Closed {
				run.recordTrade(trade, callbacks)
			}

			if processed%b.config.EquityEvery == 0 {
				run.recordEquity(book, bar.Time)
			}

			b.publish(book, state, b.engineState(), bar.Time)

			if callbacks.OnProcessData != nil {
				if err := (*callbacks.OnProcessData)(processed, totalBars); err != nil {
					return errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", err)
				}
			}
		}

		if callbacks.OnSymbolEnd != nil {
			(*callbacks.OnSymbolEnd)(s.symbol, idx)
		}
	}

	return nil
}

// finish force-closes what is still open, writes the artifacts and logs the summary.
// It runs even after a cancelled replay.
func (b *BacktestEngineV1) finish(
	ctx context.Context,
	sched *scheduler.Scheduler,
	state *types.SessionState,
	run *replayRun,
	callbacks engine.LifecycleCallbacks,
) {
	book := sched.Ledger()
	state.Stopping = true

	if last := run.lastBar; !last.IsZero() {
		trades, err := sched.CloseAll(context.WithoutCancel(ctx), last, types.ExitReasonEndOfBacktest,
			func(position types.Position) float64 { return position.EntryPrice })
		if err != nil {
			b.log.Error("Failed to close open positions", zap.Error(err))
		}

		for _, trade := range trades {
			run.recordTrade(trade, callbacks)
		}

		run.recordEquity(book, last)
	}

	state.RealizedPnL = book.RealizedPnL()
	state.UnrealizedPnL = book.UnrealizedPnL()
	run.stats.SetUnrealizedPnL(book.UnrealizedPnL())

	if err := run.trades.Flush(); err != nil {
		b.log.Error("Failed to write trades", zap.Error(err))
	}

	if err := run.equity.Flush(); err != nil {
		b.log.Error("Failed to write equity curve", zap.Error(err))
	}

	if err := run.stats.WriteStatsYAML(); err != nil {
		b.log.Error("Failed to write stats", zap.Error(err))
	}

	result := run.stats.Stats()
	b.stats.Store(&result)

	b.logSummary(result, run.stats)
	b.publish(book, state, types.EngineStateIdle, b.now())
}

func (b *BacktestEngineV1) engineState() types.EngineState {
	switch {
	case b.stopRequested.Load():
		return types.EngineStateStopping
	case b.paused.Load():
		return types.EngineStatePaused
	default:
		return types.EngineStateRunning
	}
}

func (b *BacktestEngineV1) publish(book *ledger.Ledger, state *types.SessionState, engineState types.EngineState, at time.Time) {
	snapshot := book.Snapshot(engineState, *state, recentTradesInSnapshot, at)
	b.snapshot.Store(&snapshot)
}

func (b *BacktestEngineV1) logSummary(result types.RunStats, tracker *stats.StatsTracker) {
	b.log.Info("Backtest completed",
		zap.String("run_id", result.ID),
		zap.Int("trades", result.TradeResult.NumberOfTrades),
		zap.Float64("win_rate_pct", result.TradeResult.WinRate),
		zap.Float64("total_pnl", result.TradePnl.TotalPnL),
		zap.Float64("profit_factor", result.TradePnl.ProfitFactor),
		zap.Float64("max_drawdown_pct", result.TradeResult.MaxDrawdownPct),
		zap.Float64("final_equity", result.FinalEquity),
		zap.Float64("return_pct", result.TotalReturnPct),
	)

	for i, trade := range tracker.TopWinners(summaryTopTrades) {
		b.log.Info("Top winner",
			zap.Int("rank", i+1),
			zap.String("symbol", trade.Symbol),
			zap.String("slot", trade.Slot),
			zap.Float64("pnl", trade.PnL),
			zap.String("exit_reason", trade.ExitReason),
		)
	}

	for i, trade := range tracker.TopLosers(summaryTopTrades) {
		b.log.Info("Top loser",
			zap.Int("rank", i+1),
			zap.String("symbol", trade.Symbol),
			zap.String("slot", trade.Slot),
			zap.Float64("pnl", trade.PnL),
			zap.String("exit_reason", trade.ExitReason),
		)
	}
}
