package config

import (
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

// MarketData builds the configured market data provider.
func (c *AppConfig) MarketData(secrets Secrets) (provider.Provider, error) {
	if err := secrets.RequireDataSource(c.DataSource); err != nil {
		return nil, err
	}

	var config any

	switch provider.ProviderType(c.DataSource) {
	case provider.ProviderPolygon:
		config = &provider.PolygonConfig{APIKey: secrets.PolygonAPIKey}
	case provider.ProviderAlpaca:
		config = &provider.AlpacaDataConfig{
			APIKey:    secrets.AlpacaKeyID,
			APISecret: secrets.AlpacaSecretKey,
			Feed:      secrets.AlpacaDataFeed,
		}
	case provider.ProviderFile:
		if c.Backtest.DataPath == "" {
			return nil, errors.New(errors.ErrCodeMissingParameter, "backtest.data_path is required for the file data source")
		}

		config = &provider.FileConfig{DataPath: c.Backtest.DataPath}
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported data source %q", c.DataSource)
	}

	return provider.NewMarketDataProvider(provider.ProviderType(c.DataSource), config)
}

// NewBroker builds the configured broker.
func (c *AppConfig) NewBroker(secrets Secrets) (tradingprovider.Broker, error) {
	if err := secrets.RequireBroker(c.Broker); err != nil {
		return nil, err
	}

	switch tradingprovider.ProviderType(c.Broker) {
	case tradingprovider.ProviderAlpaca:
		return tradingprovider.NewBroker(tradingprovider.ProviderAlpaca, &tradingprovider.AlpacaProviderConfig{
			APIKey:    secrets.AlpacaKeyID,
			APISecret: secrets.AlpacaSecretKey,
			PaperURL:  secrets.AlpacaPaperURL,
			LiveURL:   secrets.AlpacaLiveURL,
		})
	case tradingprovider.ProviderSimulated:
		return tradingprovider.NewBroker(tradingprovider.ProviderSimulated, &tradingprovider.SimulatedBrokerConfig{
			StartingCash: c.Live.StartingCash,
		})
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported broker %q", c.Broker)
	}
}
