package provider

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/stretchr/testify/suite"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

// mockWriter records what a provider writes.
type mockWriter struct {
	outputPath    string
	initializeErr error
	writeErr      error
	finalizeErr   error
	closeErr      error
	initialized   bool
	closed        bool
	written       []types.Bar
}

func (m *mockWriter) Initialize() error {
	if m.initializeErr != nil {
		return m.initializeErr
	}

	m.initialized = true

	return nil
}

func (m *mockWriter) Write(bar types.Bar) error {
	if m.writeErr != nil {
		return m.writeErr
	}

	m.written = append(m.written, bar)

	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	if m.finalizeErr != nil {
		return "", m.finalizeErr
	}

	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	m.closed = true

	return m.closeErr
}

func (m *mockWriter) GetOutputPath() string {
	return m.outputPath
}

func agg(ts time.Time, open, closePrice float64) models.Agg {
	return models.Agg{
		Timestamp: models.Millis(ts),
		Open:      open,
		High:      max(open, closePrice) + 0.5,
		Low:       min(open, closePrice) - 0.5,
		Close:     closePrice,
		Volume:    1000000,
	}
}

type PolygonClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) tempFile() string {
	tmpFile, err := os.CreateTemp("", "polygon_test_*.parquet")
	suite.Require().NoError(err)
	tmpFile.Close()

	return tmpFile.Name()
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient() {
	client, err := NewPolygonClient("test-api-key")
	suite.Require().NoError(err)
	suite.NotNil(client.apiClient)
	suite.Nil(client.writer)
	suite.Nil(client.wsService)

	_, err = NewPolygonClient("")
	suite.Error(err)
	suite.Contains(err.Error(), "apiKey is required")
}

func (suite *PolygonClientTestSuite) TestHistoricalBarsSortsAndDedups() {
	t0 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	iterator := &mockPolygonIterator{aggs: []models.Agg{
		agg(t0.Add(time.Minute), 101, 102),
		agg(t0, 100, 101),
		agg(t0.Add(time.Minute), 999, 999),
	}}
	api := &mockPolygonAPIClient{iterator: iterator}
	client := NewPolygonClientWithAPI(api)

	bars, err := client.HistoricalBars(context.Background(), "AAPL", TimeframeFiveMinutes, suite.start, suite.end)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.True(bars[0].Time.Equal(t0))
	suite.Equal(101.0, bars[1].Open)
	suite.Equal("AAPL", bars[1].Symbol)

	suite.Require().NotNil(api.lastParams)
	suite.Equal(5, api.lastParams.Multiplier)
	suite.Equal(models.Minute, api.lastParams.Timespan)
	suite.Equal("AAPL", api.lastParams.Ticker)
}

func (suite *PolygonClientTestSuite) TestHistoricalBarsIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("API rate limit exceeded")}}
	client := NewPolygonClientWithAPI(api)

	_, err := client.HistoricalBars(context.Background(), "AAPL", TimeframeOneMinute, suite.start, suite.end)
	suite.Error(err)
	suite.Contains(err.Error(), "rate limit")
}

func (suite *PolygonClientTestSuite) TestDownloadWithoutWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "no writer configured")
}

func (suite *PolygonClientTestSuite) TestDownloadWriterInitializeError() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{}})
	client.ConfigWriter(&mockWriter{initializeErr: errors.New("initialization failed")})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to initialize writer")
}

func (suite *PolygonClientTestSuite) TestDownloadSuccess() {
	t0 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	iterator := &mockPolygonIterator{aggs: []models.Agg{agg(t0, 100, 100.5), agg(t0.Add(time.Minute), 100.5, 101.5)}}
	w := &mockWriter{outputPath: "/tmp/test.parquet"}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: iterator})
	client.ConfigWriter(w)

	var progressCalls int

	path, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, func(_, _ float64, _ string) {
		progressCalls++
	})
	suite.Require().NoError(err)
	suite.Equal("/tmp/test.parquet", path)
	suite.True(w.initialized)
	suite.True(w.closed)
	suite.Require().Len(w.written, 2)
	suite.Equal("SPY", w.written[0].Symbol)
	suite.InDelta(100.0, w.written[0].Open, 0.01)
	suite.InDelta(100.5, w.written[0].Close, 0.01)
	suite.InDelta(1000000, w.written[0].Volume, 0.01)
	suite.GreaterOrEqual(progressCalls, 1)
}

func (suite *PolygonClientTestSuite) TestDownloadIteratorErrorDeletesEmptyFile() {
	tmpPath := suite.tempFile()

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("API rate limit exceeded")}})
	client.ConfigWriter(&mockWriter{outputPath: tmpPath})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "error iterating polygon aggregates")

	_, err = os.Stat(tmpPath)
	suite.True(os.IsNotExist(err))
}

func (suite *PolygonClientTestSuite) TestDownloadWriteError() {
	tmpPath := suite.tempFile()
	iterator := &mockPolygonIterator{aggs: []models.Agg{agg(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), 100, 101)}}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: iterator})
	client.ConfigWriter(&mockWriter{outputPath: tmpPath, writeErr: errors.New("disk full")})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to write data")

	_, err = os.Stat(tmpPath)
	suite.True(os.IsNotExist(err))
}

func (suite *PolygonClientTestSuite) TestDownloadFinalizeError() {
	iterator := &mockPolygonIterator{aggs: []models.Agg{agg(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), 100, 101)}}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: iterator})
	client.ConfigWriter(&mockWriter{outputPath: "/tmp/test.parquet", finalizeErr: errors.New("export failed")})

	_, err := client.Download(context.Background(), "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.Error(err)
	suite.Contains(err.Error(), "export failed")
}

func (suite *PolygonClientTestSuite) TestDownloadCancellation() {
	tmpPath := suite.tempFile()
	iterator := &mockPolygonIterator{aggs: []models.Agg{agg(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), 100, 101)}}

	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: iterator})
	client.ConfigWriter(&mockWriter{outputPath: tmpPath})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, "SPY", suite.start, suite.end, TimeframeOneMinute, nil)
	suite.ErrorIs(err, context.Canceled)

	_, err = os.Stat(tmpPath)
	suite.True(os.IsNotExist(err))
}
