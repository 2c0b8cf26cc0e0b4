package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/argo-intraday/internal/config"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

type MarketCommandTestSuite struct {
	suite.Suite
}

func TestMarketCommandSuite(t *testing.T) {
	suite.Run(t, new(MarketCommandTestSuite))
}

func (suite *MarketCommandTestSuite) run(args ...string) (marketdata.ClientConfig, []string, time.Time) {
	var (
		got     marketdata.ClientConfig
		tickers []string
		start   time.Time
	)

	secrets := config.Secrets{
		PolygonAPIKey:   "poly",
		AlpacaKeyID:     "key",
		AlpacaSecretKey: "secret",
		AlpacaDataFeed:  "iex",
	}

	cmd := newCommand(func(_ context.Context, cmd *cli.Command) error {
		got = clientConfig(cmd, secrets)
		tickers = cmd.StringSlice("ticker")
		start = cmd.Timestamp("start")

		return nil
	})

	suite.Require().NoError(cmd.Run(context.Background(), append([]string{"market"}, args...)))

	return got, tickers, start
}

func (suite *MarketCommandTestSuite) TestDefaults() {
	got, tickers, start := suite.run("--ticker", "SOUN", "--start", "2025-03-03")

	suite.Equal(provider.ProviderPolygon, got.ProviderType)
	suite.Equal(marketdata.WriterDuckDB, got.WriterType)
	suite.Equal("data", got.DataPath)
	suite.Equal("poly", got.PolygonApiKey)
	suite.Equal([]string{"SOUN"}, tickers)
	suite.Equal(2025, start.Year())
	suite.Equal(time.March, start.Month())
	suite.Equal(3, start.Day())
}

func (suite *MarketCommandTestSuite) TestAlpacaWithSeveralTickers() {
	got, tickers, _ := suite.run("-t", "AAPL", "-t", "TSLA", "-s", "2025-03-03", "-p", "alpaca", "-d", "bars")

	suite.Equal(provider.ProviderAlpaca, got.ProviderType)
	suite.Equal("bars", got.DataPath)
	suite.Equal("key", got.AlpacaApiKey)
	suite.Equal("secret", got.AlpacaApiSecret)
	suite.Equal("iex", got.AlpacaFeed)
	suite.Equal([]string{"AAPL", "TSLA"}, tickers)
}

func (suite *MarketCommandTestSuite) TestTickerIsRequired() {
	cmd := newCommand(func(context.Context, *cli.Command) error { return nil })

	suite.Error(cmd.Run(context.Background(), []string{"market", "--start", "2025-03-03"}))
}
