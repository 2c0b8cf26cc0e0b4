package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/rxtech-lab/argo-intraday/internal/scheduler"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

// Lifecycle callback types for live trading phases.
// All callbacks with error return can abort execution if they return an error.

// OnEngineStartCallback is called once the market is open and the stream is about to start.
// runFolder is the folder receiving the artifacts of the run.
type OnEngineStartCallback func(symbols []string, timeframe provider.Timeframe, runFolder string) error

// OnEngineStopCallback is called when the engine stops (always called via defer).
type OnEngineStopCallback func(err error)

// OnBarCallback is called for each accepted bar, before the scheduler sees it.
type OnBarCallback func(runID string, bar types.Bar) error

// OnTradeCallback is called for each closed trade.
type OnTradeCallback func(trade types.Trade)

// OnErrorCallback is called when a non-fatal error occurs.
type OnErrorCallback func(err error)

// OnStatusUpdateCallback is called when the engine state changes.
type OnStatusUpdateCallback func(state types.EngineState)

// LiveTradingCallbacks holds all lifecycle callback functions for the live trading engine.
// All fields are pointers - nil means no callback will be invoked.
type LiveTradingCallbacks struct {
	// OnEngineStart is called when the engine starts successfully.
	OnEngineStart *OnEngineStartCallback

	// OnEngineStop is called when the engine stops (always called via defer).
	OnEngineStop *OnEngineStopCallback

	// OnBar is called for each accepted bar.
	OnBar *OnBarCallback

	// OnTrade is called for each closed trade.
	OnTrade *OnTradeCallback

	// OnError is called when a non-fatal error occurs.
	OnError *OnErrorCallback

	// OnStatusUpdate is called when the engine state changes.
	OnStatusUpdate *OnStatusUpdateCallback
}

// ReconcileMode decides what happens to broker positions the ledger does not know at connect.
type ReconcileMode string

const (
	ReconcileLog     ReconcileMode = "log"
	ReconcileFlatten ReconcileMode = "flatten"
)

// PrefetchConfig holds configuration for warming the policies with today's bars.
type PrefetchConfig struct {
	// Enabled fetches the bars of the current session before the stream starts
	Enabled bool `json:"enabled" yaml:"enabled" jsonschema:"description=Warm the policies with the bars of the current session,default=true"`

	// Minutes limits the prefetch to the last N minutes. Zero starts at the premarket open.
	Minutes int `json:"minutes" yaml:"minutes" jsonschema:"description=Minutes of history to prefetch (0 starts at the premarket open),minimum=0"`
}

// LiveTradingEngineConfig holds the configuration for the live trading engine.
type LiveTradingEngineConfig struct {
	Symbols   []string           `json:"symbols" yaml:"symbols" jsonschema:"description=Tickers to trade,minItems=1"`
	Timeframe provider.Timeframe `json:"timeframe" yaml:"timeframe" jsonschema:"description=Bar size of the stream,enum=1m,enum=3m,enum=5m"`

	// ForceMode selects the broker endpoint
	ForceMode tradingprovider.ForceMode `json:"force_mode" yaml:"force_mode" jsonschema:"description=Broker endpoint selection,enum=auto,enum=paper,enum=live,default=auto"`

	// ConfirmLive must be set to trade against a live money account
	ConfirmLive bool `json:"-" yaml:"-"`

	// QueueCapacity bounds the bars waiting for the worker
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity" jsonschema:"description=Bars buffered between the stream and the worker,default=1024"`

	// PollTimeout is the longest the worker waits for a bar before checking its flags
	PollTimeout time.Duration `json:"poll_timeout" yaml:"poll_timeout" jsonschema:"description=Timed queue read,default=1s"`

	// SnapshotInterval rate-limits broker account refreshes
	SnapshotInterval time.Duration `json:"snapshot_interval" yaml:"snapshot_interval" jsonschema:"description=Minimum time between account refreshes,default=2s"`

	// Reconcile handles broker positions unknown to the ledger at start
	Reconcile ReconcileMode `json:"reconcile" yaml:"reconcile" jsonschema:"description=Handling of unknown broker positions at start,enum=log,enum=flatten,default=log"`

	// FlattenOnStop closes every position when the context ends the run
	FlattenOnStop bool `json:"flatten_on_stop" yaml:"flatten_on_stop" jsonschema:"description=Close every position when the run ends"`

	// DataOutputPath is the root of the run folders (orders, trades, equity, stats)
	DataOutputPath string `json:"data_output_path" yaml:"data_output_path" jsonschema:"description=Root folder of the run folders"`

	// MarketDataPath enables recording of the streamed bars when set
	MarketDataPath string `json:"market_data_path" yaml:"market_data_path" jsonschema:"description=Folder receiving the recorded bars"`

	// Prefetch configures warming the policies before the stream starts
	Prefetch PrefetchConfig `json:"prefetch" yaml:"prefetch" jsonschema:"description=Historical data prefetch configuration"`

	// Scheduler and Slots come from the application config.
	Scheduler scheduler.Config     `json:"-" yaml:"-"`
	Slots     []types.StrategySlot `json:"-" yaml:"-"`
}

// GetConfigSchema returns the JSON schema for LiveTradingEngineConfig.
func GetConfigSchema() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&LiveTradingEngineConfig{}) //nolint:exhaustruct // Empty config for schema generation
	schema.Title = "live-trading-engine-config"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// LiveTradingEngine runs the scheduler against streamed bars and a broker.
type LiveTradingEngine interface {
	// Run connects the broker, waits for the market to open and processes bars
	// until ctx is cancelled or a stop is requested.
	Run(ctx context.Context, callbacks LiveTradingCallbacks) error

	// Pause suppresses new entries. Exits keep running.
	Pause()

	// Resume re-enables entries.
	Resume()

	// RequestStop ends the loop after the current bar, closing every position first when flatten is set.
	RequestStop(flatten bool)

	// Snapshot returns the last published view of the run.
	Snapshot() types.Snapshot

	// Stats returns the statistics of the run so far.
	Stats() types.RunStats

	// GetConfigSchema returns the JSON schema for engine configuration.
	GetConfigSchema() (string, error)
}
