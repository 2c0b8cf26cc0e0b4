package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

type TypesTestSuite struct {
	suite.Suite
	tempDir string
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) SetupTest() {
	tempDir, err := os.MkdirTemp("", "types_test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir
}

func (suite *TypesTestSuite) TearDownTest() {
	os.RemoveAll(suite.tempDir)
}

func (suite *TypesTestSuite) TestBarValidate() {
	ts := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		bar     Bar
		wantErr bool
	}{
		{"valid", Bar{Symbol: "AAPL", Time: ts, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100}, false},
		{"zero time", Bar{Symbol: "AAPL", Open: 10, High: 11, Low: 9, Close: 10.5}, true},
		{"zero close", Bar{Symbol: "AAPL", Time: ts, Open: 10, High: 11, Low: 9}, true},
		{"high below low", Bar{Symbol: "AAPL", Time: ts, Open: 10, High: 9, Low: 11, Close: 10}, true},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			err := tt.bar.Validate()
			if tt.wantErr {
				suite.Require().Error(err)
				suite.Equal(errors.ErrCodeInvalidBar, errors.GetCode(err))
			} else {
				suite.NoError(err)
			}
		})
	}
}

func (suite *TypesTestSuite) TestBarSpread() {
	_, ok := Bar{}.Spread()
	suite.False(ok)

	spread, ok := Bar{Bid: 10.00, Ask: 10.05}.Spread()
	suite.True(ok)
	suite.InDelta(0.05, spread, 1e-9)
}

func (suite *TypesTestSuite) TestSignalCloses() {
	suite.True(NewSignal(SignalTypeSell, "x").Closes(SideLong))
	suite.False(NewSignal(SignalTypeBuy, "x").Closes(SideLong))
	suite.True(NewSignal(SignalTypeBuy, "x").Closes(SideShort))
	suite.False(NewSignal(SignalTypeFlat, "x").Closes(SideShort))

	var nilSignal *Signal
	suite.False(nilSignal.Closes(SideLong))
	suite.False(nilSignal.IsEntry())
	suite.False(NewSignal(SignalTypeFlat, "x").IsEntry())
}

func (suite *TypesTestSuite) TestSignalOverrides() {
	signal := NewSignal(SignalTypeSell, "breakout").WithStop(10.5).WithTarget(9)
	suite.Equal(SideShort, signal.EntrySide())
	suite.InDelta(10.5, signal.Stop.Unwrap(), 1e-9)
	suite.InDelta(9.0, signal.Target.Unwrap(), 1e-9)
}

func (suite *TypesTestSuite) TestPositionPnL() {
	long := Position{Side: SideLong, EntryPrice: 100, Qty: 10, CurrentPrice: 101}
	suite.InDelta(-10.0, long.PnLAt(99), 1e-9)
	suite.InDelta(1010.0, long.MarketValue(), 1e-9)

	short := Position{Side: SideShort, EntryPrice: 50, Qty: 10, CurrentPrice: 45}
	suite.InDelta(50.0, short.PnLAt(45), 1e-9)
	suite.InDelta(-450.0, short.MarketValue(), 1e-9)

	suite.Equal(OrderSideSell, SideShort.OrderSide())
	suite.Equal(OrderSideBuy, SideShort.CloseOrderSide())
}

func (suite *TypesTestSuite) TestTradeHoldMinutes() {
	entry := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	trade := Trade{EntryTime: entry, ExitTime: entry.Add(45 * time.Minute)}
	suite.InDelta(45.0, trade.HoldMinutes(), 1e-9)
}

func (suite *TypesTestSuite) TestWriteAndReadRunStats() {
	stats := RunStats{
		ID:      "run_1",
		Mode:    RunModeBacktest,
		Symbols: []string{"AAPL"},
		TradeResult: TradeResult{
			NumberOfTrades:        4,
			NumberOfWinningTrades: 3,
			NumberOfLosingTrades:  1,
			WinRate:               0.75,
		},
		TradePnl:       TradePnl{RealizedPnL: 120, TotalPnL: 120, ProfitFactor: 4},
		StartingEquity: 100000,
		FinalEquity:    100120,
	}

	path := filepath.Join(suite.tempDir, "stats.yaml")
	suite.Require().NoError(WriteRunStats(path, stats))

	loaded, err := ReadRunStats(path)
	suite.Require().NoError(err)
	suite.Equal("run_1", loaded.ID)
	suite.Equal(RunModeBacktest, loaded.Mode)
	suite.Equal(3, loaded.TradeResult.NumberOfWinningTrades)
	suite.InDelta(4.0, loaded.TradePnl.ProfitFactor, 1e-9)
}

func (suite *TypesTestSuite) TestIdleSnapshot() {
	snapshot := IdleSnapshot()
	suite.Equal(EngineStateIdle, snapshot.State)
	suite.Empty(snapshot.Positions)
	suite.NotNil(snapshot.RecentTrades)
}
