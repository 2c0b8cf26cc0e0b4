package tradingprovider

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TradingSystemProviderTestSuite struct {
	suite.Suite
}

func TestTradingSystemProviderSuite(t *testing.T) {
	suite.Run(t, new(TradingSystemProviderTestSuite))
}

// Unit Tests - Provider Registry

func (suite *TradingSystemProviderTestSuite) TestGetSupportedProviders() {
	providers := GetSupportedProviders()
	suite.Len(providers, 2)
	suite.Contains(providers, "alpaca")
	suite.Contains(providers, "simulated")
}

func (suite *TradingSystemProviderTestSuite) TestGetProviderInfo() {
	info, err := GetProviderInfo("alpaca")
	suite.NoError(err)
	suite.Equal("Alpaca", info.DisplayName)
	suite.False(info.IsPaperTrading)

	info, err = GetProviderInfo("simulated")
	suite.NoError(err)
	suite.True(info.IsPaperTrading)
}

func (suite *TradingSystemProviderTestSuite) TestGetProviderInfo_Unsupported() {
	_, err := GetProviderInfo("binance")
	suite.Error(err)
	suite.Contains(err.Error(), "unsupported trading provider")
}

func (suite *TradingSystemProviderTestSuite) TestGetProviderConfigSchema() {
	schema, err := GetProviderConfigSchema("alpaca")
	suite.NoError(err)
	suite.Contains(schema, "apiKey")
	suite.Contains(schema, "apiSecret")

	schema, err = GetProviderConfigSchema("simulated")
	suite.NoError(err)
	suite.Contains(schema, "startingCash")

	_, err = GetProviderConfigSchema("unknown")
	suite.Error(err)
}

func (suite *TradingSystemProviderTestSuite) TestNewBroker() {
	broker, err := NewBroker(ProviderSimulated, &SimulatedBrokerConfig{StartingCash: 1000})
	suite.NoError(err)
	suite.IsType(&SimulatedBroker{}, broker)

	broker, err = NewBroker(ProviderAlpaca, &AlpacaProviderConfig{APIKey: "key", APISecret: "secret"})
	suite.NoError(err)
	suite.IsType(&AlpacaBroker{}, broker)
}

func (suite *TradingSystemProviderTestSuite) TestNewBroker_Errors() {
	_, err := NewBroker(ProviderAlpaca, &SimulatedBrokerConfig{})
	suite.Error(err)
	suite.Contains(err.Error(), "invalid config type")

	_, err = NewBroker(ProviderAlpaca, &AlpacaProviderConfig{})
	suite.Error(err)

	_, err = NewBroker("binance", nil)
	suite.Error(err)
}

func (suite *TradingSystemProviderTestSuite) TestParseAlpacaConfig() {
	config, err := ParseAlpacaConfig(`{"apiKey": "k", "apiSecret": "s"}`)
	suite.NoError(err)
	suite.Equal("k", config.APIKey)
	suite.Equal(DefaultAlpacaPaperURL, config.paperURL())
	suite.Equal(DefaultAlpacaLiveURL, config.liveURL())

	_, err = ParseAlpacaConfig(`{"apiKey": "k"}`)
	suite.Error(err)

	_, err = ParseAlpacaConfig(`not json`)
	suite.Error(err)
}
