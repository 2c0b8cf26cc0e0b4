package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-intraday/internal/scheduler"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

const (
	DefaultStartingCash = 100000.0
	DefaultEquityEvery  = 100
	DefaultOutputPath   = "results"
)

type BacktestEngineV1Config struct {
	Symbols      []string                   `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Tickers replayed one after another,minItems=1"`
	Timeframe    provider.Timeframe         `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,description=Bar size of the replay"`
	StartTime    optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime      optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	StartingCash float64                    `yaml:"starting_cash" json:"starting_cash" jsonschema:"title=Starting Cash,description=Ledger cash at the first bar in USD,minimum=0"`
	EquityEvery  int                        `yaml:"equity_every" json:"equity_every" jsonschema:"title=Equity Every,description=Bars between two equity snapshots,minimum=1"`
	OutputPath   string                     `yaml:"output_path" json:"output_path" jsonschema:"title=Output Path,description=Root folder of the run folders"`

	// Scheduler and Slots come from the application config.
	Scheduler scheduler.Config     `yaml:"-" json:"-"`
	Slots     []types.StrategySlot `yaml:"-" json:"-"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Symbols      []string   `yaml:"symbols"`
		Timeframe    string     `yaml:"timeframe"`
		StartTime    *time.Time `yaml:"start_time"`
		EndTime      *time.Time `yaml:"end_time"`
		StartingCash float64    `yaml:"starting_cash"`
		EquityEvery  int        `yaml:"equity_every"`
		OutputPath   string     `yaml:"output_path"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Symbols = raw.Symbols
	c.Timeframe = provider.Timeframe(raw.Timeframe)
	c.StartTime = optional.FromNillable(raw.StartTime)
	c.EndTime = optional.FromNillable(raw.EndTime)
	c.StartingCash = raw.StartingCash
	c.EquityEvery = raw.EquityEvery
	c.OutputPath = raw.OutputPath

	return nil
}

// WithDefaults fills the zero fields.
func (c BacktestEngineV1Config) WithDefaults() BacktestEngineV1Config {
	if c.Timeframe == "" {
		c.Timeframe = provider.TimeframeOneMinute
	}

	if c.StartingCash <= 0 {
		c.StartingCash = DefaultStartingCash
	}

	if c.EquityEvery <= 0 {
		c.EquityEvery = DefaultEquityEvery
	}

	if c.OutputPath == "" {
		c.OutputPath = DefaultOutputPath
	}

	return c
}

// Validate checks the replay parameters.
func (c BacktestEngineV1Config) Validate() error {
	if len(c.Symbols) == 0 {
		return errors.New(errors.ErrCodeBacktestNoSymbols, "no symbols to replay")
	}

	for _, symbol := range c.Symbols {
		if symbol == "" {
			return errors.New(errors.ErrCodeBacktestConfigError, "empty symbol")
		}
	}

	if _, err := provider.ParseTimeframe(string(c.Timeframe)); err != nil {
		return err
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeBacktestConfigError, "end time is before start time")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(optional.Option[time.Time]{}) {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if t == reflect.TypeOf(provider.Timeframe("")) {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{
						string(provider.TimeframeOneMinute),
						string(provider.TimeframeThreeMinutes),
						string(provider.TimeframeFiveMinutes),
					},
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Symbols:      nil,
		Timeframe:    provider.TimeframeOneMinute,
		StartTime:    optional.None[time.Time](),
		EndTime:      optional.None[time.Time](),
		StartingCash: DefaultStartingCash,
		EquityEvery:  DefaultEquityEvery,
		OutputPath:   DefaultOutputPath,
		Scheduler:    scheduler.Config{},
		Slots:        nil,
	}
}
