package marketdata

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

// BaseDownloadConfig contains common fields for all download configurations.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The symbol to download bars for (e.g. SOUN),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start date (RFC3339 or YYYY-MM-DD),required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End date (RFC3339 or YYYY-MM-DD),required" validate:"required"`
	Interval  string `json:"interval" jsonschema:"title=Interval,description=Bar timeframe,required,enum=1m,enum=3m,enum=5m" validate:"required,oneof=1m 3m 5m"`
}

// PolygonDownloadConfig contains configuration for downloading from Polygon.io.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	ApiKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" keychain:"true" validate:"required"`
}

// AlpacaDownloadConfig contains configuration for downloading from Alpaca market data.
type AlpacaDownloadConfig struct {
	BaseDownloadConfig

	ApiKey    string `json:"apiKey" jsonschema:"title=API Key ID,description=Alpaca API key id,required" keychain:"true" validate:"required"`
	ApiSecret string `json:"apiSecret" jsonschema:"title=API Secret,description=Alpaca API secret key,required" keychain:"true" validate:"required"`
	Feed      string `json:"feed" jsonschema:"title=Feed,description=Market data feed,enum=iex,enum=sip,default=iex" validate:"omitempty,oneof=iex sip"`
}

// parseDate accepts RFC3339 timestamps and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	return time.Parse(time.DateOnly, value)
}

// Validate validates the BaseDownloadConfig fields.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	startDate, err := parseDate(c.StartDate)
	if err != nil {
		return fmt.Errorf("invalid startDate format, expected RFC3339 or YYYY-MM-DD: %w", err)
	}

	endDate, err := parseDate(c.EndDate)
	if err != nil {
		return fmt.Errorf("invalid endDate format, expected RFC3339 or YYYY-MM-DD: %w", err)
	}

	if !endDate.After(startDate) {
		return fmt.Errorf("endDate %s must be after startDate %s", c.EndDate, c.StartDate)
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// Validate validates the AlpacaDownloadConfig.
func (c *AlpacaDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return c.BaseDownloadConfig.Validate()
}

// ToDownloadParams converts a BaseDownloadConfig to DownloadParams.
func (c *BaseDownloadConfig) ToDownloadParams() (DownloadParams, error) {
	startDate, err := parseDate(c.StartDate)
	if err != nil {
		return DownloadParams{}, fmt.Errorf("failed to parse startDate: %w", err)
	}

	endDate, err := parseDate(c.EndDate)
	if err != nil {
		return DownloadParams{}, fmt.Errorf("failed to parse endDate: %w", err)
	}

	timeframe, err := provider.ParseTimeframe(c.Interval)
	if err != nil {
		return DownloadParams{}, err
	}

	return DownloadParams{
		Ticker:    c.Ticker,
		StartDate: startDate,
		EndDate:   endDate,
		Timeframe: timeframe,
	}, nil
}

// ToClientConfig converts a PolygonDownloadConfig to ClientConfig.
func (c *PolygonDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	//nolint:exhaustruct // alpaca fields unused
	return ClientConfig{
		ProviderType:  provider.ProviderPolygon,
		WriterType:    WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: c.ApiKey,
	}
}

// ToClientConfig converts an AlpacaDownloadConfig to ClientConfig.
func (c *AlpacaDownloadConfig) ToClientConfig(dataPath string) ClientConfig {
	//nolint:exhaustruct // polygon fields unused
	return ClientConfig{
		ProviderType:    provider.ProviderAlpaca,
		WriterType:      WriterDuckDB,
		DataPath:        dataPath,
		AlpacaApiKey:    c.ApiKey,
		AlpacaApiSecret: c.ApiSecret,
		AlpacaFeed:      c.Feed,
	}
}

// ParsePolygonConfig parses JSON into a PolygonDownloadConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonDownloadConfig, error) {
	var config PolygonDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseAlpacaConfig parses JSON into an AlpacaDownloadConfig.
func ParseAlpacaConfig(jsonConfig string) (*AlpacaDownloadConfig, error) {
	var config AlpacaDownloadConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
