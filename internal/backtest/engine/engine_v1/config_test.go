package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(DefaultStartingCash, config.StartingCash)
	suite.Equal(DefaultEquityEvery, config.EquityEvery)
	suite.Equal(provider.TimeframeOneMinute, config.Timeframe)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestWithDefaults() {
	config := BacktestEngineV1Config{Symbols: []string{"AAPL"}, EquityEvery: 10}.WithDefaults()

	suite.Equal(DefaultStartingCash, config.StartingCash)
	suite.Equal(10, config.EquityEvery)
	suite.Equal(DefaultOutputPath, config.OutputPath)
	suite.Equal(provider.TimeframeOneMinute, config.Timeframe)
}

func (suite *ConfigTestSuite) TestValidate() {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		modify func(c *BacktestEngineV1Config)
		code   errors.ErrorCode
	}{
		{
			name:   "no symbols",
			modify: func(c *BacktestEngineV1Config) { c.Symbols = nil },
			code:   errors.ErrCodeBacktestNoSymbols,
		},
		{
			name:   "empty symbol",
			modify: func(c *BacktestEngineV1Config) { c.Symbols = []string{"AAPL", ""} },
			code:   errors.ErrCodeBacktestConfigError,
		},
		{
			name:   "end before start",
			modify: func(c *BacktestEngineV1Config) { c.StartTime = optional.Some(start); c.EndTime = optional.Some(start.Add(-time.Hour)) },
			code:   errors.ErrCodeBacktestConfigError,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			config := EmptyConfig()
			config.Symbols = []string{"AAPL"}
			tt.modify(&config)

			err := config.Validate()
			suite.Require().Error(err)
			suite.Equal(tt.code, errors.GetCode(err))
		})
	}

	config := EmptyConfig()
	config.Symbols = []string{"AAPL", "MSFT"}
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownTimeframe() {
	config := EmptyConfig()
	config.Symbols = []string{"AAPL"}
	config.Timeframe = "1h"

	suite.Error(config.Validate())
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &BacktestEngineV1Config{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("backtest-engine-v1-config", schema.Title)
	suite.Equal("Configuration schema for BacktestEngineV1", schema.Description)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &BacktestEngineV1Config{}
	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &result))
	suite.Equal("backtest-engine-v1-config", result["title"])

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "symbols")
	suite.Contains(properties, "equity_every")
	suite.NotContains(properties, "Scheduler")

	startTime, ok := properties["start_time"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("date-time", startTime["format"])

	timeframe, ok := properties["timeframe"].(map[string]any)
	suite.Require().True(ok)
	suite.ElementsMatch([]any{"1m", "3m", "5m"}, timeframe["enum"])
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLComplete() {
	yamlData := `
symbols: [AAPL, SOUN]
timeframe: 5m
start_time: 2025-03-03T00:00:00Z
end_time: 2025-03-07T00:00:00Z
starting_cash: 50000
equity_every: 25
output_path: out
`

	var config BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal([]byte(yamlData), &config))

	suite.Equal([]string{"AAPL", "SOUN"}, config.Symbols)
	suite.Equal(provider.TimeframeFiveMinutes, config.Timeframe)
	suite.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.Equal(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), config.EndTime.Unwrap())
	suite.Equal(50000.0, config.StartingCash)
	suite.Equal(25, config.EquityEvery)
	suite.Equal("out", config.OutputPath)
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLWithoutTimes() {
	var config BacktestEngineV1Config
	suite.Require().NoError(yaml.Unmarshal([]byte("symbols: [AAPL]\n"), &config))

	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}
