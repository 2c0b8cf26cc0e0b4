package provider

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	polygonws "github.com/polygon-io/client-go/websocket"
	wsmodels "github.com/polygon-io/client-go/websocket/models"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/writer"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

// PolygonWebSocketService is the subset of the polygon websocket client used here.
type PolygonWebSocketService interface {
	Connect() error
	Subscribe(topic polygonws.Topic, tickers ...string) error
	Unsubscribe(topic polygonws.Topic, tickers ...string) error
	Output() <-chan any
	Error() <-chan error
	Close()
}

type polygonRESTAdapter struct {
	client *polygon.Client
}

func (a *polygonRESTAdapter) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return a.client.ListAggs(ctx, params, options...)
}

// PolygonClient serves minute aggregates from Polygon.io: history over REST and
// live bars over the stocks websocket.
type PolygonClient struct {
	apiKey         string
	apiClient      PolygonAPIClient
	wsService      PolygonWebSocketService
	writer         writer.MarketDataWriter
	onStatusChange OnStatusChange
}

// NewPolygonClient creates a client for apiKey. The websocket is opened lazily by Stream.
func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "apiKey is required")
	}

	return &PolygonClient{
		apiKey:         apiKey,
		apiClient:      &polygonRESTAdapter{client: polygon.New(apiKey)},
		wsService:      nil,
		writer:         nil,
		onStatusChange: nil,
	}, nil
}

// NewPolygonClientWithAPI creates a client over an existing REST client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiKey:         "",
		apiClient:      apiClient,
		wsService:      nil,
		writer:         nil,
		onStatusChange: nil,
	}
}

// NewPolygonClientWithWebSocket creates a client over an existing websocket service.
func NewPolygonClientWithWebSocket(apiKey string, wsService PolygonWebSocketService) *PolygonClient {
	return &PolygonClient{
		apiKey:         apiKey,
		apiClient:      &polygonRESTAdapter{client: polygon.New(apiKey)},
		wsService:      wsService,
		writer:         nil,
		onStatusChange: nil,
	}
}

func (c *PolygonClient) ConfigWriter(w writer.MarketDataWriter) {
	c.writer = w
}

// SetOnStatusChange registers a callback for websocket connection changes.
func (c *PolygonClient) SetOnStatusChange(callback OnStatusChange) {
	c.onStatusChange = callback
}

func (c *PolygonClient) aggsParams(ticker string, start, end time.Time, timeframe Timeframe) *models.ListAggsParams {
	//nolint:exhaustruct // third-party struct with many optional fields
	return models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: timeframe.Multiplier(),
		Timespan:   timeframe.Timespan(),
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(50000)
}

// HistoricalBars fetches adjusted aggregates for symbol in [start, end].
func (c *PolygonClient) HistoricalBars(ctx context.Context, symbol string, timeframe Timeframe, start, end time.Time) ([]types.Bar, error) {
	aggs := c.apiClient.ListAggs(ctx, c.aggsParams(symbol, start, end, timeframe))

	bars := []types.Bar{}
	for aggs.Next() {
		bars = append(bars, convertAggToBar(symbol, aggs.Item()))
	}

	if err := aggs.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s aggregates from polygon", symbol)
	}

	return DedupSorted(bars), nil
}

// Download writes the aggregates of ticker through the configured writer. When
// the download fails before anything was written the output file is removed.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	if err = c.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	processedCount := 0

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing writer: %w", cerr)
		}

		if err != nil && processedCount == 0 {
			_ = os.Remove(c.writer.GetOutputPath())
		}
	}()

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	bar := progressbar.NewOptions(totalDays,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount(),
	)

	aggs := c.apiClient.ListAggs(ctx, c.aggsParams(ticker, startDate, endDate, timeframe))

	for aggs.Next() {
		if err = ctx.Err(); err != nil {
			return "", err
		}

		agg := aggs.Item()

		if err = c.writer.Write(convertAggToBar(ticker, agg)); err != nil {
			return "", fmt.Errorf("failed to write data: %w", err)
		}

		processedCount++

		if processedCount%1000 == 0 {
			daysElapsed := int(time.Time(agg.Timestamp).Sub(startDate).Hours() / 24)
			_ = bar.Set(daysElapsed)

			if onProgress != nil {
				onProgress(float64(daysElapsed), float64(totalDays), fmt.Sprintf("Downloading %s", ticker))
			}
		}
	}

	if err = ctx.Err(); err != nil {
		return "", err
	}

	if err = aggs.Err(); err != nil {
		return "", fmt.Errorf("error iterating polygon aggregates: %w", err)
	}

	_ = bar.Finish()

	if onProgress != nil {
		onProgress(float64(totalDays), float64(totalDays), fmt.Sprintf("Downloaded %d bars for %s", processedCount, ticker))
	}

	return c.writer.Finalize()
}

// Stream subscribes to minute aggregates for symbols. The websocket client
// reconnects on its own; errors it reports are yielded without ending the stream.
func (c *PolygonClient) Stream(ctx context.Context, symbols []string, timeframe Timeframe) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		if len(symbols) == 0 {
			yield(types.Bar{}, streamError("no symbols to stream"))

			return
		}

		topic, err := convertTimeframeToPolygonTopic(timeframe)
		if err != nil {
			yield(types.Bar{}, err)

			return
		}

		ws := c.wsService
		if ws == nil {
			client, err := polygonws.New(polygonws.Config{
				APIKey: c.apiKey,
				Feed:   polygonws.RealTime,
				Market: polygonws.Stocks,
			})
			if err != nil {
				yield(types.Bar{}, streamError("failed to create websocket client: %v", err))

				return
			}

			ws = client
		}

		if err := ws.Connect(); err != nil {
			c.notifyStatus(StatusDisconnected)
			yield(types.Bar{}, streamError("failed to connect: %v", err))

			return
		}

		c.notifyStatus(StatusConnected)

		defer func() {
			ws.Close()
			c.notifyStatus(StatusDisconnected)
		}()

		if err := ws.Subscribe(topic, symbols...); err != nil {
			yield(types.Bar{}, streamError("failed to subscribe: %v", err))

			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-ws.Error():
				if !ok {
					return
				}

				if !yield(types.Bar{}, streamError("websocket error: %v", err)) {
					return
				}
			case out, ok := <-ws.Output():
				if !ok {
					return
				}

				var bar types.Bar

				switch event := out.(type) {
				case wsmodels.EquityAgg:
					bar = convertEquityAggToBar(&event)
				case *wsmodels.EquityAgg:
					bar = convertEquityAggToBar(event)
				default:
					continue
				}

				if !yield(bar, nil) {
					return
				}
			}
		}
	}
}

func (c *PolygonClient) notifyStatus(status ConnectionStatus) {
	if c.onStatusChange != nil {
		c.onStatusChange(status)
	}
}

func convertAggToBar(symbol string, agg models.Agg) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   time.Time(agg.Timestamp),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
		Bid:    0,
		Ask:    0,
	}
}

func convertEquityAggToBar(agg *wsmodels.EquityAgg) types.Bar {
	return types.Bar{
		Symbol: agg.Symbol,
		Time:   time.UnixMilli(agg.StartTimestamp),
		Open:   agg.Open,
		High:   agg.High,
		Low:    agg.Low,
		Close:  agg.Close,
		Volume: agg.Volume,
		Bid:    0,
		Ask:    0,
	}
}

// convertTimeframeToPolygonTopic picks the websocket topic. Polygon pushes minute
// aggregates only.
func convertTimeframeToPolygonTopic(timeframe Timeframe) (polygonws.Topic, error) {
	if timeframe != TimeframeOneMinute {
		return 0, errors.Newf(errors.ErrCodeStreamUnsupported, "polygon streams only minute aggregates, got %s", timeframe)
	}

	return polygonws.StocksMinAggs, nil
}
