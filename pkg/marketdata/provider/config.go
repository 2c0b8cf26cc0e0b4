package provider

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// PolygonConfig configures the Polygon.io provider.
type PolygonConfig struct {
	APIKey string `json:"apiKey" yaml:"api_key" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" keychain:"true" validate:"required"`
}

// AlpacaDataConfig configures the Alpaca market data provider.
type AlpacaDataConfig struct {
	APIKey    string `json:"apiKey" yaml:"api_key" jsonschema:"title=API Key ID,description=Alpaca API key id,required" keychain:"true" validate:"required"`
	APISecret string `json:"apiSecret" yaml:"api_secret" jsonschema:"title=API Secret,description=Alpaca API secret key,required" keychain:"true" validate:"required"`
	// Feed is iex for free accounts and sip for paid ones.
	Feed string `json:"feed" yaml:"feed" jsonschema:"title=Feed,description=Market data feed,enum=iex,enum=sip,default=iex" validate:"omitempty,oneof=iex sip"`
}

// FileConfig configures the offline parquet/csv provider.
type FileConfig struct {
	DataPath string `json:"dataPath" yaml:"data_path" jsonschema:"title=Data Path,description=Directory holding SYMBOL_TIMEFRAME.parquet or .csv files,required" validate:"required"`
}

func validate(config any) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func (c *PolygonConfig) Validate() error {
	return validate(c)
}

func (c *AlpacaDataConfig) Validate() error {
	return validate(c)
}

func (c *FileConfig) Validate() error {
	return validate(c)
}

func parseConfig[T interface{ Validate() error }](jsonConfig string, config T) (T, error) {
	if err := json.Unmarshal([]byte(jsonConfig), config); err != nil {
		var zero T

		return zero, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	if err := config.Validate(); err != nil {
		var zero T

		return zero, err
	}

	return config, nil
}

// ParsePolygonConfig parses JSON into a PolygonConfig.
func ParsePolygonConfig(jsonConfig string) (*PolygonConfig, error) {
	//nolint:exhaustruct // filled by json
	return parseConfig(jsonConfig, &PolygonConfig{})
}

// ParseAlpacaDataConfig parses JSON into an AlpacaDataConfig.
func ParseAlpacaDataConfig(jsonConfig string) (*AlpacaDataConfig, error) {
	//nolint:exhaustruct // filled by json
	return parseConfig(jsonConfig, &AlpacaDataConfig{})
}

// ParseFileConfig parses JSON into a FileConfig.
func ParseFileConfig(jsonConfig string) (*FileConfig, error) {
	//nolint:exhaustruct // filled by json
	return parseConfig(jsonConfig, &FileConfig{})
}
