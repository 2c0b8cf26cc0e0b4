package tradingprovider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// mockAlpacaClient implements AlpacaClient for testing
type mockAlpacaClient struct {
	baseURL    string
	account    *alpaca.Account
	accountErr error
	clock      *alpaca.Clock
	positions  []alpaca.Position
	orders     []alpaca.PlaceOrderRequest
	orderErr   error
	closedAll  bool
}

func (m *mockAlpacaClient) GetAccount() (*alpaca.Account, error) {
	if m.accountErr != nil {
		return nil, m.accountErr
	}

	return m.account, nil
}

func (m *mockAlpacaClient) GetClock() (*alpaca.Clock, error) {
	return m.clock, nil
}

func (m *mockAlpacaClient) GetPositions() ([]alpaca.Position, error) {
	return m.positions, nil
}

func (m *mockAlpacaClient) PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error) {
	if m.orderErr != nil {
		return nil, m.orderErr
	}

	m.orders = append(m.orders, req)

	return &alpaca.Order{}, nil
}

func (m *mockAlpacaClient) CloseAllPositions(req alpaca.CloseAllPositionsRequest) ([]alpaca.Order, error) {
	m.closedAll = req.CancelOrders

	return []alpaca.Order{}, nil
}

type AlpacaBrokerTestSuite struct {
	suite.Suite
	clients map[string]*mockAlpacaClient
	broker  *AlpacaBroker
}

func TestAlpacaBrokerSuite(t *testing.T) {
	suite.Run(t, new(AlpacaBrokerTestSuite))
}

func (suite *AlpacaBrokerTestSuite) SetupTest() {
	account := &alpaca.Account{
		Equity:     decimal.NewFromInt(25500),
		LastEquity: decimal.NewFromInt(25000),
	}

	suite.clients = map[string]*mockAlpacaClient{
		DefaultAlpacaPaperURL: {baseURL: DefaultAlpacaPaperURL, account: account},
		DefaultAlpacaLiveURL:  {baseURL: DefaultAlpacaLiveURL, account: account},
	}

	suite.broker = newAlpacaBrokerWithFactory(AlpacaProviderConfig{APIKey: "k", APISecret: "s"}, func(baseURL string) AlpacaClient {
		return suite.clients[baseURL]
	})
}

func (suite *AlpacaBrokerTestSuite) TestConnectAutoPrefersPaper() {
	mode, err := suite.broker.Connect(context.Background(), ForceModeAuto)
	suite.Require().NoError(err)
	suite.Equal(ConnectionPaper, mode)
	suite.Equal(ConnectionPaper, suite.broker.Mode())
}

func (suite *AlpacaBrokerTestSuite) TestConnectAutoFallsBackToLive() {
	suite.clients[DefaultAlpacaPaperURL].accountErr = fmt.Errorf("unauthorized")

	mode, err := suite.broker.Connect(context.Background(), ForceModeAuto)
	suite.Require().NoError(err)
	suite.Equal(ConnectionLive, mode)
}

func (suite *AlpacaBrokerTestSuite) TestConnectForcedPaperDoesNotFallBack() {
	suite.clients[DefaultAlpacaPaperURL].accountErr = fmt.Errorf("unauthorized")

	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBrokerUnavailable))
}

func (suite *AlpacaBrokerTestSuite) TestCallsBeforeConnectFail() {
	_, err := suite.broker.AccountEquity(context.Background())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBrokerUnavailable))
}

func (suite *AlpacaBrokerTestSuite) TestAccountFigures() {
	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Require().NoError(err)

	pl := decimal.NewFromFloat(12.5)
	suite.clients[DefaultAlpacaPaperURL].positions = []alpaca.Position{
		{Symbol: "AAPL", Qty: decimal.NewFromInt(10), Side: "long", AvgEntryPrice: decimal.NewFromInt(100), UnrealizedPL: &pl},
		{Symbol: "TSLA", Qty: decimal.NewFromInt(-5), Side: "short", AvgEntryPrice: decimal.NewFromInt(200), UnrealizedPL: nil},
	}

	equity, err := suite.broker.AccountEquity(context.Background())
	suite.NoError(err)
	suite.Equal(25500.0, equity)

	today, err := suite.broker.TodayPnL(context.Background())
	suite.NoError(err)
	suite.Equal(500.0, today)

	unrealized, err := suite.broker.UnrealizedPnL(context.Background())
	suite.NoError(err)
	suite.InDelta(12.5, unrealized, 1e-9)

	positions, err := suite.broker.Positions(context.Background())
	suite.NoError(err)
	suite.Require().Len(positions, 2)
	suite.Equal(types.SideShort, positions[1].Side)
	suite.Equal(5.0, positions[1].Qty)
}

func (suite *AlpacaBrokerTestSuite) TestClock() {
	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Require().NoError(err)

	next := time.Date(2025, 3, 4, 14, 30, 0, 0, time.UTC)
	suite.clients[DefaultAlpacaPaperURL].clock = &alpaca.Clock{IsOpen: false, NextOpen: next}

	open, err := suite.broker.IsMarketOpen(context.Background())
	suite.NoError(err)
	suite.False(open)

	clock, err := suite.broker.Clock(context.Background())
	suite.NoError(err)
	suite.Equal(next, clock.NextOpen)
}

func (suite *AlpacaBrokerTestSuite) TestSubmitMarketOrder() {
	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Require().NoError(err)

	err = suite.broker.SubmitMarketOrder(context.Background(), "AAPL", 12.7, types.OrderSideSell)
	suite.Require().NoError(err)

	orders := suite.clients[DefaultAlpacaPaperURL].orders
	suite.Require().Len(orders, 1)
	suite.Equal("AAPL", orders[0].Symbol)
	suite.Equal(alpaca.Sell, orders[0].Side)
	suite.Equal(alpaca.Market, orders[0].Type)
	suite.True(orders[0].Qty.Equal(decimal.NewFromInt(12)))
}

func (suite *AlpacaBrokerTestSuite) TestSubmitMarketOrderErrors() {
	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Require().NoError(err)

	err = suite.broker.SubmitMarketOrder(context.Background(), "AAPL", 0.4, types.OrderSideBuy)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidQuantity))

	suite.clients[DefaultAlpacaPaperURL].orderErr = fmt.Errorf("insufficient buying power")
	err = suite.broker.SubmitMarketOrder(context.Background(), "AAPL", 1, types.OrderSideBuy)
	suite.True(errors.HasCode(err, errors.ErrCodeOrderFailed))
}

func (suite *AlpacaBrokerTestSuite) TestFlattenAll() {
	_, err := suite.broker.Connect(context.Background(), ForceModePaper)
	suite.Require().NoError(err)

	suite.NoError(suite.broker.FlattenAll(context.Background()))
	suite.True(suite.clients[DefaultAlpacaPaperURL].closedAll)
}
