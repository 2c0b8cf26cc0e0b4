package provider

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/schollz/progressbar/v3"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/writer"
)

// AlpacaBarsClient is the subset of the Alpaca market data client used here.
type AlpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaBarStream is the subset of the Alpaca stocks stream client used here.
type AlpacaBarStream interface {
	Connect(ctx context.Context) error
	Terminated() <-chan error
}

// AlpacaStreamFactory builds a stream that delivers minute bars of symbols to handler.
type AlpacaStreamFactory func(handler func(stream.Bar), symbols []string) AlpacaBarStream

// AlpacaBars serves bars from the Alpaca data API.
type AlpacaBars struct {
	client         AlpacaBarsClient
	streamFactory  AlpacaStreamFactory
	feed           marketdata.Feed
	writer         writer.MarketDataWriter
	onStatusChange OnStatusChange
}

// NewAlpacaBars creates a provider from credentials. The stream reconnects up to
// ten times with a half second delay before giving up.
func NewAlpacaBars(config AlpacaDataConfig) (*AlpacaBars, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingCredentials, "invalid alpaca data configuration", err)
	}

	feed := marketdata.IEX
	if config.Feed == "sip" {
		feed = marketdata.SIP
	}

	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    config.APIKey,
		APISecret: config.APISecret,
		Feed:      feed,
	})

	factory := func(handler func(stream.Bar), symbols []string) AlpacaBarStream {
		return stream.NewStocksClient(
			feed,
			stream.WithCredentials(config.APIKey, config.APISecret),
			stream.WithReconnectSettings(10, 500*time.Millisecond),
			stream.WithBars(handler, symbols...),
		)
	}

	return NewAlpacaBarsWithClient(client, factory, feed), nil
}

// NewAlpacaBarsWithClient creates a provider over existing clients.
func NewAlpacaBarsWithClient(client AlpacaBarsClient, streamFactory AlpacaStreamFactory, feed marketdata.Feed) *AlpacaBars {
	return &AlpacaBars{
		client:         client,
		streamFactory:  streamFactory,
		feed:           feed,
		writer:         nil,
		onStatusChange: nil,
	}
}

func (a *AlpacaBars) ConfigWriter(w writer.MarketDataWriter) {
	a.writer = w
}

// SetOnStatusChange registers a callback for stream connection changes.
func (a *AlpacaBars) SetOnStatusChange(callback OnStatusChange) {
	a.onStatusChange = callback
}

func (a *AlpacaBars) fetch(ctx context.Context, symbol string, timeframe Timeframe, start, end time.Time) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:exhaustruct // optional request fields
	raw, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.NewTimeFrame(timeframe.Multiplier(), marketdata.Min),
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       a.feed,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s bars from alpaca", symbol)
	}

	bars := make([]types.Bar, 0, len(raw))
	for _, bar := range raw {
		bars = append(bars, types.Bar{
			Symbol: symbol,
			Time:   bar.Timestamp,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: float64(bar.Volume),
			Bid:    0,
			Ask:    0,
		})
	}

	return bars, nil
}

// HistoricalBars fetches adjusted bars for symbol in [start, end].
func (a *AlpacaBars) HistoricalBars(ctx context.Context, symbol string, timeframe Timeframe, start, end time.Time) ([]types.Bar, error) {
	bars, err := a.fetch(ctx, symbol, timeframe, start, end)
	if err != nil {
		return nil, err
	}

	return DedupSorted(bars), nil
}

// Download writes the bars of ticker through the configured writer.
func (a *AlpacaBars) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error) {
	if a.writer == nil {
		return "", fmt.Errorf("no writer configured for AlpacaBars. Call ConfigWriter first")
	}

	if err = a.writer.Initialize(); err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	written := 0

	defer func() {
		if cerr := a.writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing writer: %w", cerr)
		}

		if err != nil && written == 0 {
			_ = os.Remove(a.writer.GetOutputPath())
		}
	}()

	bars, err := a.fetch(ctx, ticker, timeframe, startDate, endDate)
	if err != nil {
		return "", err
	}

	progress := progressbar.NewOptions(len(bars),
		progressbar.OptionSetDescription(fmt.Sprintf("Writing %s", ticker)),
		progressbar.OptionShowCount(),
	)

	for _, bar := range DedupSorted(bars) {
		if err = ctx.Err(); err != nil {
			return "", err
		}

		if err = a.writer.Write(bar); err != nil {
			return "", fmt.Errorf("failed to write data: %w", err)
		}

		written++
		_ = progress.Add(1)
	}

	_ = progress.Finish()

	if onProgress != nil {
		onProgress(float64(written), float64(len(bars)), fmt.Sprintf("Downloaded %d bars for %s", written, ticker))
	}

	return a.writer.Finalize()
}

// Stream subscribes to minute bars. The SDK reconnects on its own; the stream
// ends when it gives up or ctx is cancelled.
func (a *AlpacaBars) Stream(ctx context.Context, symbols []string, timeframe Timeframe) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		if len(symbols) == 0 {
			yield(types.Bar{}, streamError("no symbols to stream"))

			return
		}

		if timeframe != TimeframeOneMinute {
			yield(types.Bar{}, errors.Newf(errors.ErrCodeStreamUnsupported, "alpaca streams minute bars only, got %s", timeframe))

			return
		}

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		bars := make(chan types.Bar, 1024)
		handler := func(bar stream.Bar) {
			select {
			case bars <- convertStreamBar(bar):
			case <-streamCtx.Done():
			}
		}

		client := a.streamFactory(handler, symbols)
		if err := client.Connect(streamCtx); err != nil {
			a.notifyStatus(StatusDisconnected)
			yield(types.Bar{}, streamError("failed to connect: %v", err))

			return
		}

		a.notifyStatus(StatusConnected)
		defer a.notifyStatus(StatusDisconnected)

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-client.Terminated():
				if err != nil && ctx.Err() == nil {
					yield(types.Bar{}, streamError("stream terminated: %v", err))
				}

				return
			case bar := <-bars:
				if !yield(bar, nil) {
					return
				}
			}
		}
	}
}

func (a *AlpacaBars) notifyStatus(status ConnectionStatus) {
	if a.onStatusChange != nil {
		a.onStatusChange(status)
	}
}

func convertStreamBar(bar stream.Bar) types.Bar {
	return types.Bar{
		Symbol: bar.Symbol,
		Time:   bar.Timestamp,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Close:  bar.Close,
		Volume: float64(bar.Volume),
		Bid:    0,
		Ask:    0,
	}
}
