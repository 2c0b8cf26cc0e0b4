package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-intraday/internal/types"
)

type CallbacksTestSuite struct {
	suite.Suite
}

func TestCallbacksSuite(t *testing.T) {
	suite.Run(t, new(CallbacksTestSuite))
}

func (suite *CallbacksTestSuite) TestZeroValueHasNoCallbacks() {
	var callbacks LifecycleCallbacks

	suite.Nil(callbacks.OnBacktestStart)
	suite.Nil(callbacks.OnBacktestEnd)
	suite.Nil(callbacks.OnSymbolStart)
	suite.Nil(callbacks.OnSymbolEnd)
	suite.Nil(callbacks.OnProcessData)
	suite.Nil(callbacks.OnTrade)
}

func (suite *CallbacksTestSuite) TestCallbacksSeeReplayEvents() {
	var (
		symbols []string
		pnl     float64
	)

	onStart := OnBacktestStartCallback(func(s []string, _ int) error {
		symbols = s
		return nil
	})
	onTrade := OnTradeCallback(func(trade types.Trade) {
		pnl += trade.PnL
	})
	stop := errors.New("stop")
	onProcess := OnProcessDataCallback(func(current int, total int) error {
		if current == total {
			return stop
		}
		return nil
	})

	callbacks := LifecycleCallbacks{OnBacktestStart: &onStart, OnTrade: &onTrade, OnProcessData: &onProcess}

	suite.NoError((*callbacks.OnBacktestStart)([]string{"AAPL"}, 2))
	(*callbacks.OnTrade)(types.Trade{Symbol: "AAPL", PnL: 4})
	(*callbacks.OnTrade)(types.Trade{Symbol: "AAPL", PnL: -1.5})
	suite.NoError((*callbacks.OnProcessData)(1, 2))
	suite.ErrorIs((*callbacks.OnProcessData)(2, 2), stop)

	suite.Equal([]string{"AAPL"}, symbols)
	suite.InDelta(2.5, pnl, 1e-9)
}
