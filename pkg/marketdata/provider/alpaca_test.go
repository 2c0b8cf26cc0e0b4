package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/stretchr/testify/suite"
)

type fakeAlpacaBarsClient struct {
	bars    []marketdata.Bar
	err     error
	lastReq marketdata.GetBarsRequest
}

func (f *fakeAlpacaBarsClient) GetBars(_ string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	f.lastReq = req

	return f.bars, f.err
}

// fakeBarStream replays bars through the handler once connected.
type fakeBarStream struct {
	handler    func(stream.Bar)
	bars       []stream.Bar
	connectErr error
	terminated chan error
}

func (f *fakeBarStream) Connect(_ context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}

	go func() {
		for _, bar := range f.bars {
			f.handler(bar)
		}
	}()

	return nil
}

func (f *fakeBarStream) Terminated() <-chan error {
	return f.terminated
}

type AlpacaBarsTestSuite struct {
	suite.Suite
	client *fakeAlpacaBarsClient
	stream *fakeBarStream
	bars   *AlpacaBars
}

func TestAlpacaBarsSuite(t *testing.T) {
	suite.Run(t, new(AlpacaBarsTestSuite))
}

func (suite *AlpacaBarsTestSuite) SetupTest() {
	suite.client = &fakeAlpacaBarsClient{}
	suite.stream = &fakeBarStream{terminated: make(chan error, 1)}
	suite.bars = NewAlpacaBarsWithClient(suite.client, func(handler func(stream.Bar), _ []string) AlpacaBarStream {
		suite.stream.handler = handler

		return suite.stream
	}, marketdata.IEX)
}

func (suite *AlpacaBarsTestSuite) TestNewAlpacaBarsRequiresCredentials() {
	_, err := NewAlpacaBars(AlpacaDataConfig{APIKey: "key"})
	suite.Error(err)

	bars, err := NewAlpacaBars(AlpacaDataConfig{APIKey: "key", APISecret: "secret", Feed: "sip"})
	suite.Require().NoError(err)
	suite.Equal(marketdata.SIP, bars.feed)
}

func (suite *AlpacaBarsTestSuite) TestHistoricalBars() {
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	suite.client.bars = []marketdata.Bar{
		{Timestamp: t0.Add(3 * time.Minute), Open: 10.1, High: 10.3, Low: 10.0, Close: 10.2, Volume: 1500},
		{Timestamp: t0, Open: 10.0, High: 10.2, Low: 9.9, Close: 10.1, Volume: 1000},
	}

	start := t0.Add(-time.Hour)
	bars, err := suite.bars.HistoricalBars(context.Background(), "SOUN", TimeframeThreeMinutes, start, t0.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.True(bars[0].Time.Equal(t0))
	suite.Equal("SOUN", bars[0].Symbol)
	suite.Equal(1500.0, bars[1].Volume)

	suite.Equal(marketdata.NewTimeFrame(3, marketdata.Min), suite.client.lastReq.TimeFrame)
	suite.Equal(marketdata.IEX, suite.client.lastReq.Feed)
	suite.True(suite.client.lastReq.Start.Equal(start))
}

func (suite *AlpacaBarsTestSuite) TestHistoricalBarsError() {
	suite.client.err = errors.New("forbidden")

	_, err := suite.bars.HistoricalBars(context.Background(), "SOUN", TimeframeOneMinute, time.Now().Add(-time.Hour), time.Now())
	suite.Error(err)
	suite.Contains(err.Error(), "forbidden")
}

func (suite *AlpacaBarsTestSuite) TestDownloadWritesBars() {
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	suite.client.bars = []marketdata.Bar{
		{Timestamp: t0, Open: 10.0, High: 10.2, Low: 9.9, Close: 10.1, Volume: 1000},
		{Timestamp: t0.Add(time.Minute), Open: 10.1, High: 10.3, Low: 10.0, Close: 10.2, Volume: 1500},
	}

	w := &mockWriter{outputPath: "/tmp/alpaca.parquet"}
	suite.bars.ConfigWriter(w)

	path, err := suite.bars.Download(context.Background(), "SOUN", t0, t0.Add(time.Hour), TimeframeOneMinute, nil)
	suite.Require().NoError(err)
	suite.Equal("/tmp/alpaca.parquet", path)
	suite.Len(w.written, 2)
	suite.True(w.closed)
}

func (suite *AlpacaBarsTestSuite) TestStreamYieldsBars() {
	t0 := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	suite.stream.bars = []stream.Bar{
		{Symbol: "SOUN", Open: 10, High: 10.2, Low: 9.9, Close: 10.1, Volume: 1000, Timestamp: t0},
		{Symbol: "SOUN", Open: 10.1, High: 10.3, Low: 10, Close: 10.2, Volume: 1500, Timestamp: t0.Add(time.Minute)},
	}

	var statuses []ConnectionStatus
	suite.bars.SetOnStatusChange(func(status ConnectionStatus) { statuses = append(statuses, status) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var closes []float64

	for bar, err := range suite.bars.Stream(ctx, []string{"SOUN"}, TimeframeOneMinute) {
		suite.Require().NoError(err)

		closes = append(closes, bar.Close)
		if len(closes) == 2 {
			break
		}
	}

	suite.Equal([]float64{10.1, 10.2}, closes)
	suite.Equal([]ConnectionStatus{StatusConnected, StatusDisconnected}, statuses)
}

func (suite *AlpacaBarsTestSuite) TestStreamTermination() {
	suite.stream.terminated <- errors.New("max reconnect limit reached")

	var errorMsg string

	for _, err := range suite.bars.Stream(context.Background(), []string{"SOUN"}, TimeframeOneMinute) {
		if err != nil {
			errorMsg = err.Error()
		}
	}

	suite.Contains(errorMsg, "max reconnect limit reached")
}

func (suite *AlpacaBarsTestSuite) TestStreamConnectError() {
	suite.stream.connectErr = errors.New("auth failed")

	var errorMsg string

	for _, err := range suite.bars.Stream(context.Background(), []string{"SOUN"}, TimeframeOneMinute) {
		if err != nil {
			errorMsg = err.Error()
		}
	}

	suite.Contains(errorMsg, "failed to connect")
}

func (suite *AlpacaBarsTestSuite) TestStreamRejectsMultiMinuteTimeframe() {
	var gotError bool

	for _, err := range suite.bars.Stream(context.Background(), []string{"SOUN"}, TimeframeFiveMinutes) {
		gotError = err != nil
	}

	suite.True(gotError)
}
