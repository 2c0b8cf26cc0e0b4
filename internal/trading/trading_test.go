package trading

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ExecutorTestSuite struct {
	suite.Suite
}

func TestExecutorSuite(t *testing.T) {
	suite.Run(t, new(ExecutorTestSuite))
}

func (suite *ExecutorTestSuite) TestFillExecutor() {
	executor := NewFillExecutor()

	suite.NoError(executor.Submit(context.Background(), "AAPL", 3, types.OrderSideBuy))
	suite.True(errors.HasCode(executor.Submit(context.Background(), "AAPL", 0, types.OrderSideBuy), errors.ErrCodeInvalidQuantity))
	suite.Error(executor.Submit(context.Background(), "", 1, types.OrderSideBuy))
	suite.Error(executor.Submit(context.Background(), "AAPL", 1, "hold"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	suite.Error(executor.Submit(ctx, "AAPL", 1, types.OrderSideSell))

	suite.Equal(1, executor.Submitted())
}

func (suite *ExecutorTestSuite) TestBrokerExecutorForwardsOrders() {
	broker := tradingprovider.NewSimulatedBroker(tradingprovider.SimulatedBrokerConfig{StartingCash: 1000})
	_, err := broker.Connect(context.Background(), tradingprovider.ForceModePaper)
	suite.Require().NoError(err)
	broker.Mark("AAPL", 10)

	executor := NewBrokerExecutor(broker)
	suite.Require().NoError(executor.Submit(context.Background(), "AAPL", 5, types.OrderSideBuy))

	positions, err := broker.Positions(context.Background())
	suite.NoError(err)
	suite.Require().Len(positions, 1)
	suite.Equal(5.0, positions[0].Qty)

	suite.Error(executor.Submit(context.Background(), "MSFT", 1, types.OrderSideBuy))
}

type recordedOrders struct {
	orders []types.OrderRecord
	err    error
}

func (r *recordedOrders) Write(order types.OrderRecord) error {
	r.orders = append(r.orders, order)

	return r.err
}

func (suite *ExecutorTestSuite) TestRecordingExecutor() {
	recorder := &recordedOrders{}
	executor := NewRecordingExecutor(NewFillExecutor(), recorder, logger.NewNopLogger())

	suite.NoError(executor.Submit(context.Background(), "SOUN", 100, types.OrderSideBuy))
	suite.Error(executor.Submit(context.Background(), "SOUN", 0, types.OrderSideSell))

	suite.Require().Len(recorder.orders, 2)
	suite.Equal(types.OrderStatusFilled, recorder.orders[0].Status)
	suite.NotEmpty(recorder.orders[0].ID)
	suite.Equal(types.OrderStatusRejected, recorder.orders[1].Status)
	suite.Contains(recorder.orders[1].Error, "quantity")
}

func (suite *ExecutorTestSuite) TestRecordingExecutorIgnoresRecorderFailure() {
	recorder := &recordedOrders{err: stderrors.New("disk full")}
	executor := NewRecordingExecutor(NewFillExecutor(), recorder, logger.NewNopLogger())

	suite.NoError(executor.Submit(context.Background(), "SOUN", 5, types.OrderSideBuy))
	suite.Len(recorder.orders, 1)
}
