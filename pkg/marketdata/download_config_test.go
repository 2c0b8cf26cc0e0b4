package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

type DownloadConfigTestSuite struct {
	suite.Suite
}

func TestDownloadConfigTestSuite(t *testing.T) {
	suite.Run(t, new(DownloadConfigTestSuite))
}

func base() BaseDownloadConfig {
	return BaseDownloadConfig{
		Ticker:    "SOUN",
		StartDate: "2025-03-03",
		EndDate:   "2025-03-07T21:00:00Z",
		Interval:  "1m",
	}
}

func (suite *DownloadConfigTestSuite) TestPolygonConfigValidation() {
	testCases := []struct {
		name     string
		mutate   func(c *PolygonDownloadConfig)
		contains string
	}{
		{"valid", func(c *PolygonDownloadConfig) {}, ""},
		{"missing ticker", func(c *PolygonDownloadConfig) { c.Ticker = "" }, "Ticker"},
		{"missing api key", func(c *PolygonDownloadConfig) { c.ApiKey = "" }, "ApiKey"},
		{"hourly interval", func(c *PolygonDownloadConfig) { c.Interval = "1h" }, "Interval"},
		{"bad start date", func(c *PolygonDownloadConfig) { c.StartDate = "03/03/2025" }, "startDate"},
		{"end before start", func(c *PolygonDownloadConfig) { c.EndDate = "2025-03-01" }, "must be after"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			config := &PolygonDownloadConfig{BaseDownloadConfig: base(), ApiKey: "key"}
			tc.mutate(config)

			err := config.Validate()
			if tc.contains == "" {
				suite.NoError(err)
			} else {
				suite.Error(err)
				suite.Contains(err.Error(), tc.contains)
			}
		})
	}
}

func (suite *DownloadConfigTestSuite) TestAlpacaConfigValidation() {
	config := &AlpacaDownloadConfig{BaseDownloadConfig: base(), ApiKey: "id", ApiSecret: "secret", Feed: "sip"}
	suite.NoError(config.Validate())

	config.Feed = "otc"
	suite.Error(config.Validate())

	config.Feed = ""
	config.ApiSecret = ""
	suite.Error(config.Validate())
}

func (suite *DownloadConfigTestSuite) TestToDownloadParams() {
	config := base()
	config.Interval = "5m"

	params, err := config.ToDownloadParams()
	suite.Require().NoError(err)
	suite.Equal("SOUN", params.Ticker)
	suite.Equal(provider.TimeframeFiveMinutes, params.Timeframe)
	suite.True(params.StartDate.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
	suite.True(params.EndDate.Equal(time.Date(2025, 3, 7, 21, 0, 0, 0, time.UTC)))
}

func (suite *DownloadConfigTestSuite) TestToClientConfig() {
	polygon := &PolygonDownloadConfig{BaseDownloadConfig: base(), ApiKey: "key"}
	clientConfig := polygon.ToClientConfig("/data")
	suite.Equal(provider.ProviderPolygon, clientConfig.ProviderType)
	suite.Equal("key", clientConfig.PolygonApiKey)
	suite.Equal(WriterDuckDB, clientConfig.WriterType)

	alpaca := &AlpacaDownloadConfig{BaseDownloadConfig: base(), ApiKey: "id", ApiSecret: "secret", Feed: "iex"}
	clientConfig = alpaca.ToClientConfig("/data")
	suite.Equal(provider.ProviderAlpaca, clientConfig.ProviderType)
	suite.Equal("secret", clientConfig.AlpacaApiSecret)
	suite.Equal("/data", clientConfig.DataPath)
}

func (suite *DownloadConfigTestSuite) TestParseConfigs() {
	polygon, err := ParsePolygonConfig(`{"ticker":"SOUN","startDate":"2025-03-03","endDate":"2025-03-07","interval":"1m","apiKey":"key"}`)
	suite.Require().NoError(err)
	suite.Equal("key", polygon.ApiKey)

	_, err = ParsePolygonConfig(`{"ticker":`)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to parse JSON config")

	alpaca, err := ParseAlpacaConfig(`{"ticker":"SOUN","startDate":"2025-03-03","endDate":"2025-03-07","interval":"3m","apiKey":"id","apiSecret":"secret"}`)
	suite.Require().NoError(err)
	suite.Equal("3m", alpaca.Interval)
}
