package engine_v1

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/ledger"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/scheduler"
	"github.com/rxtech-lab/argo-intraday/internal/strategy"
	"github.com/rxtech-lab/argo-intraday/internal/trading"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/prefetch"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/session"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/stats"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1/writers"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultPollTimeout      = time.Second
	DefaultSnapshotInterval = 2 * time.Second
	DefaultOutputPath       = "results"

	recentTradesInSnapshot = 20
)

// PriceMarker is implemented by brokers that fill at a price fed by the engine,
// such as the simulated broker.
type PriceMarker interface {
	Mark(symbol string, price float64)
}

// LiveTradingEngineV1 implements the LiveTradingEngine interface for real-time trading.
// Run owns the ledger and the scheduler on a single worker goroutine; the
// stream runs on its own goroutine and only pushes bars into the queue.
type LiveTradingEngineV1 struct {
	config     engine.LiveTradingEngineConfig
	registry   strategy.Registry
	marketData provider.Provider
	broker     tradingprovider.Broker
	log        *logger.Logger
	now        func() time.Time
	marketWait MarketWaitSchedule
	dataSource string

	paused           atomic.Bool
	stopRequested    atomic.Bool
	flattenRequested atomic.Bool
	snapshot         atomic.Pointer[types.Snapshot]
	stats            atomic.Pointer[types.RunStats]
}

// Option configures a LiveTradingEngineV1.
type Option func(*LiveTradingEngineV1)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(e *LiveTradingEngineV1) {
		e.now = now
	}
}

// WithMarketWaitSchedule replaces the polling intervals used before the open.
func WithMarketWaitSchedule(schedule MarketWaitSchedule) Option {
	return func(e *LiveTradingEngineV1) {
		e.marketWait = schedule
	}
}

// WithDataSourceName names the recorded bar file (stream_{name}_{timeframe}.parquet).
func WithDataSourceName(name string) Option {
	return func(e *LiveTradingEngineV1) {
		e.dataSource = name
	}
}

// NewLiveTradingEngineV1 creates a live engine. The scheduler is built from
// config.Slots and config.Scheduler at the start of every run.
func NewLiveTradingEngineV1(
	config engine.LiveTradingEngineConfig,
	registry strategy.Registry,
	marketData provider.Provider,
	broker tradingprovider.Broker,
	log *logger.Logger,
	opts ...Option,
) (engine.LiveTradingEngine, error) {
	if marketData == nil {
		return nil, errors.New(errors.ErrCodeEngineInitFailed, "market data provider not set")
	}

	if broker == nil {
		return nil, errors.New(errors.ErrCodeEngineInitFailed, "broker not set")
	}

	if registry == nil {
		return nil, errors.New(errors.ErrCodeEngineInitFailed, "strategy registry not set")
	}

	if len(config.Symbols) == 0 {
		return nil, errors.New(errors.ErrCodeEngineInitFailed, "no symbols configured")
	}

	if _, err := provider.ParseTimeframe(string(config.Timeframe)); err != nil {
		return nil, err
	}

	config = withDefaults(config)

	e := &LiveTradingEngineV1{
		config:     config,
		registry:   registry,
		marketData: marketData,
		broker:     broker,
		log:        log.Named("live"),
		now:        time.Now,
		marketWait: DefaultMarketWaitSchedule,
		dataSource: "live",
	}

	for _, opt := range opts {
		opt(e)
	}

	idle := types.IdleSnapshot()
	e.snapshot.Store(&idle)

	return e, nil
}

func withDefaults(config engine.LiveTradingEngineConfig) engine.LiveTradingEngineConfig {
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}

	if config.PollTimeout <= 0 {
		config.PollTimeout = DefaultPollTimeout
	}

	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = DefaultSnapshotInterval
	}

	if config.Reconcile == "" {
		config.Reconcile = engine.ReconcileLog
	}

	if config.ForceMode == "" {
		config.ForceMode = tradingprovider.ForceModeAuto
	}

	if config.DataOutputPath == "" {
		config.DataOutputPath = DefaultOutputPath
	}

	return config
}

// Pause implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) Pause() {
	e.paused.Store(true)
}

// Resume implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) Resume() {
	e.paused.Store(false)
}

// RequestStop implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) RequestStop(flatten bool) {
	e.log.Info("Stop requested", zap.Bool("flatten", flatten))

	if flatten {
		e.flattenRequested.Store(true)
	}

	e.stopRequested.Store(true)
}

// Snapshot implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) Snapshot() types.Snapshot {
	return *e.snapshot.Load()
}

// Stats implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) Stats() types.RunStats {
	if s := e.stats.Load(); s != nil {
		return *s
	}

	return types.RunStats{}
}

// GetConfigSchema implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) GetConfigSchema() (string, error) {
	return engine.GetConfigSchema()
}

// liveRun is the state of one Run, owned by the worker.
type liveRun struct {
	sched     *scheduler.Scheduler
	book      *ledger.Ledger
	state     *types.SessionState
	session   *session.SessionManager
	trades    *writers.TradesWriter
	equity    *writers.EquityWriter
	orders    *writers.OrdersWriter
	stats     *stats.StatsTracker
	recorder  *writer.StreamingDuckDBWriter
	prefetch  *prefetch.PrefetchManager
	queue     *BarQueue
	callbacks engine.LiveTradingCallbacks

	account     types.AccountSnapshot
	lastRefresh time.Time
	lastState   types.EngineState
	processed   int
}

// Run implements engine.LiveTradingEngine.
func (e *LiveTradingEngineV1) Run(ctx context.Context, callbacks engine.LiveTradingCallbacks) (err error) {
	defer func() {
		e.stopRequested.Store(false)
		e.flattenRequested.Store(false)

		final := *e.snapshot.Load()
		final.State = types.EngineStateIdle
		final.Session.Started = false
		final.UpdatedAt = e.now()
		e.snapshot.Store(&final)

		if callbacks.OnStatusUpdate != nil {
			(*callbacks.OnStatusUpdate)(types.EngineStateIdle)
		}

		if callbacks.OnEngineStop != nil {
			(*callbacks.OnEngineStop)(err)
		}
	}()

	run := &liveRun{
		book: ledger.New(0),
		state: &types.SessionState{
			Mode:           types.RunModeLive,
			ConnectionMode: "",
			Started:        false,
			Paused:         e.paused.Load(),
			Stopping:       false,
			FlattenOnStop:  e.config.FlattenOnStop,
			RealizedPnL:    0,
			UnrealizedPnL:  0,
			LastPnLUpdate:  time.Time{},
			RunFolder:      "",
		},
		queue:     NewBarQueue(e.config.QueueCapacity, e.log),
		callbacks: callbacks,
		lastState: types.EngineStateIdle,
	}

	// Unknown policies fail here, before the broker is touched.
	orders := &deferredRecorder{target: nil}
	executor := trading.NewRecordingExecutor(trading.NewBrokerExecutor(e.broker), orders, e.log)

	sched, err := scheduler.New(e.config.Slots, e.registry, e.config.Scheduler, run.book, executor, run.state, e.log)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to build scheduler", err)
	}

	run.sched = sched

	if err := e.connect(ctx, run.state); err != nil {
		return err
	}

	if err := e.reconcile(ctx); err != nil {
		return err
	}

	open, err := e.waitForMarketOpen(ctx)
	if err != nil || !open {
		return err
	}

	equity, err := e.broker.AccountEquity(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to read account equity", err)
	}

	if err := run.book.SetCash(equity); err != nil {
		return err
	}

	defer e.closeRun(run)

	if err := e.openRun(run, equity); err != nil {
		return err
	}

	orders.target = run.orders

	sched.Start()
	defer sched.Stop()

	e.warmUp(ctx, run)

	run.state.Started = true
	run.state.RunFolder = run.session.GetCurrentRunPath()

	if callbacks.OnEngineStart != nil {
		if cbErr := (*callbacks.OnEngineStart)(e.config.Symbols, e.config.Timeframe, run.state.RunFolder); cbErr != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "engine start callback failed", cbErr)
		}
	}

	streamCtx, cancelStream := context.WithCancel(ctx)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		e.pump(streamCtx, run)
	}()

	loopErr := e.loop(ctx, run)

	cancelStream()
	wg.Wait()

	e.shutdown(ctx, run, loopErr != nil)

	return loopErr
}

// connect opens the broker session and refuses a live account without confirmation.
func (e *LiveTradingEngineV1) connect(ctx context.Context, state *types.SessionState) error {
	mode, err := e.broker.Connect(ctx, e.config.ForceMode)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBrokerUnavailable, "failed to connect broker", err)
	}

	if mode == tradingprovider.ConnectionLive && !e.config.ConfirmLive {
		return errors.New(errors.ErrCodeLiveTradingNotConfirm, "connected to a live money account, pass --confirm-live to trade it")
	}

	state.ConnectionMode = mode
	e.log.Info("Broker connected", zap.String("mode", mode))

	return nil
}

// reconcile reports broker positions the fresh ledger does not know and
// flattens them when configured to.
func (e *LiveTradingEngineV1) reconcile(ctx context.Context) error {
	positions, err := e.broker.Positions(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeReconcileFailed, "failed to list broker positions", err)
	}

	if len(positions) == 0 {
		return nil
	}

	for _, position := range positions {
		e.log.Warn("Broker holds a position unknown to the ledger",
			zap.String("symbol", position.Symbol),
			zap.String("side", string(position.Side)),
			zap.Float64("qty", position.Qty),
			zap.Float64("avg_entry_price", position.AvgEntryPrice),
			zap.Float64("unrealized_pnl", position.UnrealizedPnL),
		)
	}

	if e.config.Reconcile != engine.ReconcileFlatten {
		return nil
	}

	if err := e.broker.FlattenAll(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeReconcileFailed, "failed to flatten unknown positions", err)
	}

	e.log.Info("Flattened unknown broker positions", zap.Int("count", len(positions)))

	return nil
}

func (e *LiveTradingEngineV1) openRun(run *liveRun, startingEquity float64) error {
	started := e.now()

	run.session = session.NewSessionManager(e.log)
	if err := run.session.Initialize(e.config.DataOutputPath, started); err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to create run folder", err)
	}

	run.trades = writers.NewTradesWriter(run.session.GetFilePath("trades.parquet"))
	run.equity = writers.NewEquityWriter(run.session.GetFilePath("equity.parquet"))
	run.orders = writers.NewOrdersWriter(run.session.GetFilePath("orders.parquet"))

	if err := run.trades.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeArtifactWriteFailed, "failed to initialize trades writer", err)
	}

	if err := run.equity.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeArtifactWriteFailed, "failed to initialize equity writer", err)
	}

	if err := run.orders.Initialize(); err != nil {
		return errors.Wrap(errors.ErrCodeArtifactWriteFailed, "failed to initialize orders writer", err)
	}

	if e.config.MarketDataPath != "" {
		run.recorder = writer.NewStreamingDuckDBWriter(e.config.MarketDataPath, e.dataSource, e.config.Timeframe.String())
		if err := run.recorder.Initialize(); err != nil {
			e.log.Warn("Bar recording disabled", zap.Error(err))

			run.recorder = nil
		}
	}

	run.stats = stats.NewStatsTracker(e.log)
	run.stats.Initialize(types.RunModeLive, run.session.GetRunID(), e.config.Symbols, started, startingEquity)
	run.stats.SetFilePaths(
		run.trades.GetOutputPath(),
		run.equity.GetOutputPath(),
		run.session.GetFilePath("stats.yaml"),
	)

	e.log.Info("Session initialized",
		zap.String("run_id", run.session.GetRunID()),
		zap.String("run_path", run.session.GetCurrentRunPath()),
		zap.Float64("starting_equity", startingEquity),
	)

	return nil
}

// closeRun releases whatever openRun managed to open.
func (e *LiveTradingEngineV1) closeRun(run *liveRun) {
	if run.recorder != nil {
		if _, err := run.recorder.Finalize(); err != nil {
			e.log.Warn("Failed to finalize bar recording", zap.Error(err))
		}

		if err := run.recorder.Close(); err != nil {
			e.log.Warn("Failed to close bar recording", zap.Error(err))
		}
	}

	if run.trades != nil {
		if err := run.trades.Close(); err != nil {
			e.log.Warn("Failed to close trades writer", zap.Error(err))
		}
	}

	if run.equity != nil {
		if err := run.equity.Close(); err != nil {
			e.log.Warn("Failed to close equity writer", zap.Error(err))
		}
	}

	if run.orders != nil {
		if err := run.orders.Close(); err != nil {
			e.log.Warn("Failed to close orders writer", zap.Error(err))
		}
	}
}

// warmUp feeds the session's bars to the policies and seeds the dedup watermarks.
func (e *LiveTradingEngineV1) warmUp(ctx context.Context, run *liveRun) {
	var recorder prefetch.BarRecorder
	if run.recorder != nil {
		recorder = run.recorder
	}

	run.prefetch = prefetch.NewPrefetchManager(e.log)
	run.prefetch.Initialize(e.config.Prefetch, e.marketData, e.config.Timeframe, run.sched, recorder)
	run.prefetch.SetClock(e.now)

	if _, err := run.prefetch.ExecutePrefetch(ctx, e.config.Symbols); err != nil {
		e.log.Warn("Prefetch failed, continuing without history", zap.Error(err))
	}

	for _, symbol := range e.config.Symbols {
		if last, ok := run.prefetch.GetLastStoredTimestamp(symbol); ok {
			run.queue.Seed(symbol, last)
		}
	}
}

// pump moves streamed bars into the queue until ctx ends or the stream closes.
// It never touches the ledger.
func (e *LiveTradingEngineV1) pump(ctx context.Context, run *liveRun) {
	for bar, err := range e.marketData.Stream(ctx, e.config.Symbols, e.config.Timeframe) {
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			e.log.Warn("Stream error received", zap.Error(err))

			if run.callbacks.OnError != nil {
				(*run.callbacks.OnError)(err)
			}

			continue
		}

		run.queue.Push(bar)
	}

	e.log.Info("Market data stream closed")
}

// loop is the worker. It returns ctx.Err() on cancellation, a callback error,
// or nil after a stop request.
func (e *LiveTradingEngineV1) loop(ctx context.Context, run *liveRun) error {
	for {
		if err := ctx.Err(); err != nil {
			e.log.Info("Live trading cancelled", zap.Int("processed", run.processed))

			return err
		}

		e.emitState(run)

		if e.stopRequested.Load() {
			e.log.Info("Live trading stopped", zap.Int("processed", run.processed))

			return nil
		}

		e.refreshAccount(ctx, run, false)

		bar, ok := run.queue.Pop(ctx, e.config.PollTimeout)
		if !ok {
			continue
		}

		if err := e.processBar(ctx, run, bar); err != nil {
			return err
		}
	}
}

func (e *LiveTradingEngineV1) processBar(ctx context.Context, run *liveRun, bar types.Bar) error {
	run.prefetch.HandleStreamBar(ctx, bar)

	if run.recorder != nil {
		if err := run.recorder.Write(bar); err != nil {
			e.log.Warn("Failed to record bar", zap.String("symbol", bar.Symbol), zap.Error(err))
		}
	}

	if marker, ok := e.broker.(PriceMarker); ok {
		marker.Mark(bar.Symbol, bar.Close)
	}

	if run.callbacks.OnBar != nil {
		if err := (*run.callbacks.OnBar)(run.session.GetRunID(), bar); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "bar callback failed", err)
		}
	}

	run.state.Paused = e.paused.Load()

	result, err := run.sched.ProcessBar(ctx, bar, run.state.Paused)
	if err != nil {
		e.log.Warn("Skipping bar", zap.String("symbol", bar.Symbol), zap.Time("time", bar.Time), zap.Error(err))

		if run.callbacks.OnError != nil {
			(*run.callbacks.OnError)(err)
		}

		return nil
	}

	run.processed++

	for _, trade := range result.Closed {
		e.recordTrade(run, trade)
	}

	e.recordEquity(run, bar.Time)
	e.publish(run, bar.Time)

	return nil
}

func (e *LiveTradingEngineV1) recordTrade(run *liveRun, trade types.Trade) {
	if err := run.trades.Write(trade); err != nil {
		e.log.Warn("Failed to write trade", zap.String("id", trade.ID), zap.Error(err))
	}

	run.stats.RecordTrade(trade)

	if run.callbacks.OnTrade != nil {
		(*run.callbacks.OnTrade)(trade)
	}
}

func (e *LiveTradingEngineV1) recordEquity(run *liveRun, at time.Time) {
	snapshot := types.EquitySnapshot{
		Time:           at,
		Equity:         run.book.Equity(),
		Cash:           run.book.Cash(),
		PositionsValue: run.book.PositionsValue(),
	}

	if err := run.equity.Write(snapshot); err != nil {
		e.log.Warn("Failed to write equity snapshot", zap.Time("time", at), zap.Error(err))
	}

	run.stats.RecordEquity(snapshot)
}

// refreshAccount reads the broker account at most once per snapshot interval
// unless force is set.
func (e *LiveTradingEngineV1) refreshAccount(ctx context.Context, run *liveRun, force bool) {
	now := e.now()
	if !force && !run.lastRefresh.IsZero() && now.Sub(run.lastRefresh) < e.config.SnapshotInterval {
		return
	}

	run.lastRefresh = now

	equity, err := e.broker.AccountEquity(ctx)
	if err != nil {
		e.log.Warn("Failed to refresh account equity", zap.Error(err))

		return
	}

	todayPnL, err := e.broker.TodayPnL(ctx)
	if err != nil {
		e.log.Warn("Failed to refresh today pnl", zap.Error(err))

		return
	}

	unrealized, err := e.broker.UnrealizedPnL(ctx)
	if err != nil {
		e.log.Warn("Failed to refresh unrealized pnl", zap.Error(err))

		return
	}

	run.account = types.AccountSnapshot{
		Equity:        equity,
		TodayPnL:      todayPnL,
		UnrealizedPnL: unrealized,
		UpdatedAt:     now,
	}
	run.state.LastPnLUpdate = now

	e.publish(run, now)
}

func (e *LiveTradingEngineV1) engineState() types.EngineState {
	switch {
	case e.stopRequested.Load():
		return types.EngineStateStopping
	case e.paused.Load():
		return types.EngineStatePaused
	default:
		return types.EngineStateRunning
	}
}

// emitState reports a state change observed since the last iteration.
func (e *LiveTradingEngineV1) emitState(run *liveRun) {
	current := e.engineState()
	if current == run.lastState {
		return
	}

	run.lastState = current
	run.state.Paused = current == types.EngineStatePaused
	run.state.Stopping = current == types.EngineStateStopping

	e.log.Info("Engine state changed", zap.String("state", string(current)))

	if run.callbacks.OnStatusUpdate != nil {
		(*run.callbacks.OnStatusUpdate)(current)
	}

	e.publish(run, e.now())
}

func (e *LiveTradingEngineV1) publish(run *liveRun, at time.Time) {
	run.state.RealizedPnL = run.book.RealizedPnL()
	run.state.UnrealizedPnL = run.book.UnrealizedPnL()

	snapshot := run.book.Snapshot(e.engineState(), *run.state, recentTradesInSnapshot, at)
	snapshot.Account = run.account
	e.snapshot.Store(&snapshot)
}

// shutdown flattens when asked to, or when the run was aborted with
// flatten_on_stop set, then writes the final artifacts. Broker calls use a
// context that survives the cancellation of the run.
func (e *LiveTradingEngineV1) shutdown(ctx context.Context, run *liveRun, aborted bool) {
	closeCtx := context.WithoutCancel(ctx)
	run.state.Stopping = true

	flatten := e.flattenRequested.Load() || (aborted && e.config.FlattenOnStop)
	if flatten {
		e.flatten(closeCtx, run)
	}

	if run.book.Count() > 0 {
		e.log.Warn("Stopping with open positions", zap.Int("positions", run.book.Count()))
	}

	e.recordEquity(run, e.now())
	run.stats.SetUnrealizedPnL(run.book.UnrealizedPnL())

	if err := run.trades.Flush(); err != nil {
		e.log.Error("Failed to write trades", zap.Error(err))
	}

	if err := run.equity.Flush(); err != nil {
		e.log.Error("Failed to write equity curve", zap.Error(err))
	}

	if err := run.orders.Flush(); err != nil {
		e.log.Error("Failed to write orders", zap.Error(err))
	}

	if err := run.stats.WriteStatsYAML(); err != nil {
		e.log.Error("Failed to write stats", zap.Error(err))
	}

	result := run.stats.Stats()
	e.stats.Store(&result)

	e.refreshAccount(closeCtx, run, true)
	e.publish(run, e.now())

	e.log.Info("Live trading finished",
		zap.String("run_id", result.ID),
		zap.Int("bars", run.processed),
		zap.Int("trades", result.TradeResult.NumberOfTrades),
		zap.Float64("total_pnl", result.TradePnl.TotalPnL),
		zap.Int64("duplicate_bars", run.queue.Duplicates()),
		zap.Int64("dropped_bars", run.queue.Overflows()),
	)
}

// flatten closes every ledger position through the broker at its last mark,
// then asks the broker to close whatever is left.
func (e *LiveTradingEngineV1) flatten(ctx context.Context, run *liveRun) {
	trades, err := run.sched.CloseAll(ctx, e.now(), types.ExitReasonFlatten,
		func(position types.Position) float64 { return position.CurrentPrice })
	if err != nil {
		e.log.Error("Failed to flatten ledger positions", zap.Error(err))
	}

	for _, trade := range trades {
		e.recordTrade(run, trade)
	}

	if err := e.broker.FlattenAll(ctx); err != nil {
		e.log.Error("Broker flatten failed", zap.Error(errors.Wrap(errors.ErrCodeOrderFailed, "flatten all", err)))
	}

	e.log.Info("Flattened", zap.Int("closed", len(trades)))
}

// deferredRecorder lets the executor be built before the orders writer exists.
// Orders submitted before the run folder is open are not recorded.
type deferredRecorder struct {
	target *writers.OrdersWriter
}

func (r *deferredRecorder) Write(order types.OrderRecord) error {
	if r.target == nil {
		return nil
	}

	return r.target.Write(order)
}

// Verify LiveTradingEngineV1 implements engine.LiveTradingEngine interface.
var _ engine.LiveTradingEngine = (*LiveTradingEngineV1)(nil)
