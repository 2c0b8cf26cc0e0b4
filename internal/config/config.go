// Package config loads the application configuration file shared by the
// backtest and trading commands.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	backtest "github.com/rxtech-lab/argo-intraday/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-intraday/internal/scheduler"
	"github.com/rxtech-lab/argo-intraday/internal/strategy"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
	"github.com/rxtech-lab/argo-intraday/internal/version"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

// Default values applied to zero fields.
const (
	DefaultTimeframe         = provider.TimeframeOneMinute
	DefaultRiskPercent       = 1.0
	DefaultStopLossPercent   = 2.0
	DefaultTakeProfitPercent = 4.0
	DefaultSMAWindow         = 20
	DefaultORBWindowMinutes  = 5
	DefaultOutputPath        = "results"
	DefaultDataSource        = string(provider.ProviderPolygon)
	DefaultBroker            = string(tradingprovider.ProviderAlpaca)
)

// AppConfig is the YAML configuration file.
type AppConfig struct {
	// Version is the binary version the file was written for
	Version string `yaml:"version" json:"version" validate:"required" jsonschema:"title=Version,description=Binary version the file targets (major and minor must match)"`

	Symbols   []string `yaml:"symbols" json:"symbols" validate:"required,min=1,dive,required" jsonschema:"title=Symbols,minItems=1"`
	Timeframe string   `yaml:"timeframe" json:"timeframe" validate:"oneof=1m 3m 5m" jsonschema:"title=Timeframe,enum=1m,enum=3m,enum=5m,default=1m"`

	RiskPercent       float64 `yaml:"risk_percent" json:"risk_percent" validate:"gt=0,lte=100" jsonschema:"title=Risk Percent,description=Equity risked per trade,default=1"`
	StopLossPercent   float64 `yaml:"stop_loss_percent" json:"stop_loss_percent" validate:"gt=0,lt=100" jsonschema:"title=Stop Loss Percent,default=2"`
	TakeProfitPercent float64 `yaml:"take_profit_percent" json:"take_profit_percent" validate:"gt=0" jsonschema:"title=Take Profit Percent,default=4"`

	// SelectedStrategy runs alone when no slot is enabled
	SelectedStrategy string `yaml:"selected_strategy" json:"selected_strategy" jsonschema:"title=Selected Strategy,enum=baseline_sma,enum=orb,enum=gap_and_go,enum=router"`
	LunchSkip        bool   `yaml:"lunch_skip" json:"lunch_skip" jsonschema:"title=Lunch Skip,description=Suppress entries during the noon hour"`
	FlattenOnStop    bool   `yaml:"flatten_on_stop" json:"flatten_on_stop" jsonschema:"title=Flatten On Stop,description=Close every position when a live run is interrupted"`
	ForceMode        string `yaml:"force_mode" json:"force_mode" validate:"omitempty,oneof=auto paper live" jsonschema:"title=Force Mode,enum=auto,enum=paper,enum=live,default=auto"`
	OutputPath       string `yaml:"output_path" json:"output_path" jsonschema:"title=Output Path,description=Root folder of the run folders,default=results"`

	// DataSource is the market data provider and Broker the order destination
	DataSource string `yaml:"data_source" json:"data_source" validate:"omitempty,oneof=polygon alpaca file" jsonschema:"title=Data Source,enum=polygon,enum=alpaca,enum=file,default=polygon"`
	Broker     string `yaml:"broker" json:"broker" validate:"omitempty,oneof=alpaca simulated" jsonschema:"title=Broker,enum=alpaca,enum=simulated,default=alpaca"`

	StrategySlots []types.StrategySlot `yaml:"strategy_slots" json:"strategy_slots" validate:"dive" jsonschema:"title=Strategy Slots"`

	SMAWindow        int                     `yaml:"sma_window" json:"sma_window" validate:"gte=0" jsonschema:"title=SMA Window,default=20"`
	ORBWindowMinutes int                     `yaml:"orb_window_minutes" json:"orb_window_minutes" validate:"gte=0" jsonschema:"title=Opening Range Minutes,default=5"`
	GapAndGo         strategy.GapAndGoConfig `yaml:"gap_and_go" json:"gap_and_go" jsonschema:"title=Gap and Go"`

	Backtest BacktestSection `yaml:"backtest" json:"backtest" jsonschema:"title=Backtest"`
	Live     LiveSection     `yaml:"live" json:"live" jsonschema:"title=Live"`
}

// BacktestSection configures the replay.
type BacktestSection struct {
	// Start and End are YYYY-MM-DD session dates, both inclusive
	Start        string  `yaml:"start" json:"start" validate:"omitempty,datetime=2006-01-02" jsonschema:"title=Start Date,format=date"`
	End          string  `yaml:"end" json:"end" validate:"omitempty,datetime=2006-01-02" jsonschema:"title=End Date,format=date"`
	DataPath     string  `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=Folder of the file data source"`
	StartingCash float64 `yaml:"starting_cash" json:"starting_cash" validate:"gte=0" jsonschema:"title=Starting Cash,default=100000"`
	EquityEvery  int     `yaml:"equity_every" json:"equity_every" validate:"gte=0" jsonschema:"title=Equity Every,description=Bars between equity snapshots,default=100"`
}

// LiveSection configures the live worker.
type LiveSection struct {
	QueueCapacity    int           `yaml:"queue_capacity" json:"queue_capacity" validate:"gte=0" jsonschema:"title=Queue Capacity,default=1024"`
	PollTimeout      time.Duration `yaml:"poll_timeout" json:"poll_timeout" validate:"gte=0" jsonschema:"title=Poll Timeout,description=Go duration such as 1s,default=1s"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval" json:"snapshot_interval" validate:"gte=0" jsonschema:"title=Snapshot Interval,description=Go duration such as 2s,default=2s"`
	Reconcile        string        `yaml:"reconcile" json:"reconcile" validate:"omitempty,oneof=log flatten" jsonschema:"title=Reconcile,enum=log,enum=flatten,default=log"`
	Prefetch         bool          `yaml:"prefetch" json:"prefetch" jsonschema:"title=Prefetch,description=Warm the policies with the session's bars before streaming"`
	PrefetchMinutes  int           `yaml:"prefetch_minutes" json:"prefetch_minutes" validate:"gte=0" jsonschema:"title=Prefetch Minutes,description=0 starts at the premarket open"`
	MarketDataPath   string        `yaml:"market_data_path" json:"market_data_path" jsonschema:"title=Market Data Path,description=Record streamed bars into this folder"`
	// StartingCash is the equity of the simulated broker
	StartingCash float64 `yaml:"starting_cash" json:"starting_cash" validate:"gte=0" jsonschema:"title=Simulated Starting Cash,default=100000"`
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string, registry strategy.Registry) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data, registry)
}

// LoadWithPolicies loads the file and builds the built-in policy registry
// from its policy parameters.
func LoadWithPolicies(path string) (*AppConfig, strategy.Registry, error) {
	config, err := Load(path, strategy.NewDefaultRegistry(strategy.DefaultParams()))
	if err != nil {
		return nil, nil, err
	}

	return config, strategy.NewDefaultRegistry(config.PolicyParams()), nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte, registry strategy.Registry) (*AppConfig, error) {
	var config AppConfig

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	config.applyDefaults()

	if err := config.Validate(registry); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Timeframe == "" {
		c.Timeframe = string(DefaultTimeframe)
	}

	if c.RiskPercent == 0 {
		c.RiskPercent = DefaultRiskPercent
	}

	if c.StopLossPercent == 0 {
		c.StopLossPercent = DefaultStopLossPercent
	}

	if c.TakeProfitPercent == 0 {
		c.TakeProfitPercent = DefaultTakeProfitPercent
	}

	if c.ForceMode == "" {
		c.ForceMode = string(tradingprovider.ForceModeAuto)
	}

	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}

	if c.DataSource == "" {
		c.DataSource = DefaultDataSource
	}

	if c.Broker == "" {
		c.Broker = DefaultBroker
	}

	if c.SMAWindow == 0 {
		c.SMAWindow = DefaultSMAWindow
	}

	if c.ORBWindowMinutes == 0 {
		c.ORBWindowMinutes = DefaultORBWindowMinutes
	}

	if reflect.ValueOf(c.GapAndGo).IsZero() {
		c.GapAndGo = strategy.DefaultGapAndGoConfig()
	} else {
		c.GapAndGo = c.GapAndGo.WithDefaults()
	}

	if c.Live.Reconcile == "" {
		c.Live.Reconcile = string(engine.ReconcileLog)
	}

	if c.Live.StartingCash == 0 {
		c.Live.StartingCash = backtest.DefaultStartingCash
	}
}

// Validate checks the struct tags, the version, the dates and that every
// referenced policy is registered.
func (c *AppConfig) Validate(registry strategy.Registry) error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := version.CheckVersionCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "config version is not supported by this binary", err)
	}

	if c.Backtest.Start != "" && c.Backtest.End != "" && c.Backtest.End < c.Backtest.Start {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "backtest end %s is before start %s", c.Backtest.End, c.Backtest.Start)
	}

	return c.checkPolicies(registry)
}

func (c *AppConfig) checkPolicies(registry strategy.Registry) error {
	enabled := 0

	for _, slot := range c.StrategySlots {
		if !slot.Enabled {
			continue
		}

		enabled++

		if !registry.Has(slot.Name) {
			return errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown policy %q in slot %s", slot.Name, slot.ID())
		}

		if _, err := utils.ParseWindow(withDefault(slot.Start, "09:30"), withDefault(slot.End, "16:00")); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidWindow, err, "invalid window for slot %s", slot.ID())
		}
	}

	if c.SelectedStrategy != "" && !registry.Has(c.SelectedStrategy) {
		return errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown policy %q", c.SelectedStrategy)
	}

	if enabled == 0 && c.SelectedStrategy == "" {
		return errors.New(errors.ErrCodeMissingParameter, "enable a strategy slot or set selected_strategy")
	}

	return nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// Risk returns the global sizing parameters.
func (c *AppConfig) Risk() types.RiskParams {
	return types.RiskParams{
		RiskPercent:       c.RiskPercent,
		StopLossPercent:   c.StopLossPercent,
		TakeProfitPercent: c.TakeProfitPercent,
	}
}

// SchedulerConfig returns the scheduler parameters shared by both modes.
func (c *AppConfig) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		Risk:             c.Risk(),
		SelectedStrategy: c.SelectedStrategy,
		LunchSkip:        c.LunchSkip,
	}
}

// PolicyParams returns the construction parameters of the built-in policies.
func (c *AppConfig) PolicyParams() strategy.Params {
	return strategy.Params{
		SMAWindow:        c.SMAWindow,
		ORBWindowMinutes: c.ORBWindowMinutes,
		GapAndGo:         c.GapAndGo,
	}
}

// BacktestConfig builds the replay configuration. Dates are session dates;
// the end date includes its whole day.
func (c *AppConfig) BacktestConfig() (backtest.BacktestEngineV1Config, error) {
	config := backtest.EmptyConfig()
	config.Symbols = c.Symbols
	config.Timeframe = provider.Timeframe(c.Timeframe)
	config.StartingCash = c.Backtest.StartingCash
	config.EquityEvery = c.Backtest.EquityEvery
	config.OutputPath = c.OutputPath
	config.Scheduler = c.SchedulerConfig()
	config.Slots = c.StrategySlots

	if c.Backtest.Start != "" {
		start, err := time.ParseInLocation(time.DateOnly, c.Backtest.Start, utils.SessionLocation())
		if err != nil {
			return config, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest start", err)
		}

		config.StartTime = optional.Some(start)
	}

	if c.Backtest.End != "" {
		end, err := time.ParseInLocation(time.DateOnly, c.Backtest.End, utils.SessionLocation())
		if err != nil {
			return config, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest end", err)
		}

		config.EndTime = optional.Some(end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	}

	return config.WithDefaults(), nil
}

// LiveConfig builds the live engine configuration.
func (c *AppConfig) LiveConfig(confirmLive bool) engine.LiveTradingEngineConfig {
	return engine.LiveTradingEngineConfig{
		Symbols:          c.Symbols,
		Timeframe:        provider.Timeframe(c.Timeframe),
		ForceMode:        tradingprovider.ForceMode(c.ForceMode),
		ConfirmLive:      confirmLive,
		QueueCapacity:    c.Live.QueueCapacity,
		PollTimeout:      c.Live.PollTimeout,
		SnapshotInterval: c.Live.SnapshotInterval,
		Reconcile:        engine.ReconcileMode(c.Live.Reconcile),
		FlattenOnStop:    c.FlattenOnStop,
		DataOutputPath:   c.OutputPath,
		MarketDataPath:   c.Live.MarketDataPath,
		Prefetch: engine.PrefetchConfig{
			Enabled: c.Live.Prefetch,
			Minutes: c.Live.PrefetchMinutes,
		},
		Scheduler: c.SchedulerConfig(),
		Slots:     c.StrategySlots,
	}
}

// Sample returns a starter configuration with every default filled in: a
// gap_and_go slot over the premarket and the first half hour, then ORB.
func Sample() AppConfig {
	config := AppConfig{
		Version:          version.GetVersion(),
		Symbols:          []string{"AAPL"},
		SelectedStrategy: strategy.PolicyGapAndGo,
		StrategySlots: []types.StrategySlot{
			{
				Enabled:  true,
				Name:     strategy.PolicyGapAndGo,
				Priority: 1,
				// the policy needs the premarket range
				Start: "04:00",
				End:   "10:00",
			},
			{
				Enabled:  true,
				Name:     strategy.PolicyORB,
				Priority: 2,
				Start:    "09:30",
				End:      "15:30",
			},
		},
	}
	config.applyDefaults()

	return config
}

// Schema returns the JSON schema of the configuration file.
func Schema() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
		FieldNameTag:              "yaml",
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(time.Duration(0)) {
				return &jsonschema.Schema{Type: "string", Pattern: `^[0-9]+(ns|us|ms|s|m|h)$`}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&AppConfig{})
	schema.Title = "argo-intraday-config"
	schema.Description = "Configuration file of the backtest and trading commands"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
