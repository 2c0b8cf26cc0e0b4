package tradingprovider

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

const (
	DefaultAlpacaPaperURL = "https://paper-api.alpaca.markets"
	DefaultAlpacaLiveURL  = "https://api.alpaca.markets"
)

// AlpacaProviderConfig contains configuration for Alpaca trading.
type AlpacaProviderConfig struct {
	APIKey    string `json:"apiKey" jsonschema:"title=API Key,description=Alpaca API key id" validate:"required" keychain:"true"`
	APISecret string `json:"apiSecret" jsonschema:"title=API Secret,description=Alpaca API secret key" validate:"required" keychain:"true"`
	PaperURL  string `json:"paperUrl,omitempty" jsonschema:"title=Paper URL,description=Paper trading endpoint" validate:"omitempty,url"`
	LiveURL   string `json:"liveUrl,omitempty" jsonschema:"title=Live URL,description=Live trading endpoint" validate:"omitempty,url"`
}

// Validate validates the AlpacaProviderConfig struct.
func (c *AlpacaProviderConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeMissingCredentials, "invalid alpaca provider config", err)
	}

	return nil
}

func (c AlpacaProviderConfig) paperURL() string {
	if c.PaperURL == "" {
		return DefaultAlpacaPaperURL
	}

	return c.PaperURL
}

func (c AlpacaProviderConfig) liveURL() string {
	if c.LiveURL == "" {
		return DefaultAlpacaLiveURL
	}

	return c.LiveURL
}

// ParseAlpacaConfig parses a JSON configuration string into an AlpacaProviderConfig.
func ParseAlpacaConfig(jsonConfig string) (*AlpacaProviderConfig, error) {
	var config AlpacaProviderConfig
	if err := json.Unmarshal([]byte(jsonConfig), &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to parse alpaca config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
