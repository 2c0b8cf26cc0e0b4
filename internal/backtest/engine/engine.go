package engine

import (
	"context"

	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// Lifecycle callback types for backtest phases.
// Callbacks with an error return abort the replay when they return an error.

// OnBacktestStartCallback is called once the bars of every symbol are loaded.
type OnBacktestStartCallback func(symbols []string, totalBars int) error

// OnBacktestEndCallback is called when the replay completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnSymbolStartCallback is called before the bars of a symbol are replayed.
type OnSymbolStartCallback func(symbol string, symbolIndex int, totalSymbols int, totalBars int) error

// OnSymbolEndCallback is called after the bars of a symbol are replayed.
type OnSymbolEndCallback func(symbol string, symbolIndex int)

// OnProcessDataCallback is called for each bar processed.
type OnProcessDataCallback func(current int, total int) error

// OnTradeCallback is called for each closed trade.
type OnTradeCallback func(trade types.Trade)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnSymbolStart   *OnSymbolStartCallback
	OnSymbolEnd     *OnSymbolEndCallback
	OnProcessData   *OnProcessDataCallback
	OnTrade         *OnTradeCallback
}

// Engine replays historical bars through the scheduler.
type Engine interface {
	// Run loads the bars of every symbol and replays them, symbol by symbol.
	// The context can be used to cancel the replay; artifacts are still written.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// Pause suppresses new entries until Resume. Exits keep running.
	Pause()
	Resume()
	// RequestStop ends the replay after the current bar. Open positions are
	// closed at their entry price like at the end of the data.
	RequestStop(flatten bool)
	// Snapshot returns the last published view of the run.
	Snapshot() types.Snapshot
	// Stats returns the statistics of the last run.
	Stats() types.RunStats
}
