package provider

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderAlpaca  ProviderType = "alpaca"
	ProviderFile    ProviderType = "file"
)

// ConnectionStatus is reported by streaming providers when their socket state changes.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// OnStatusChange is called from the stream goroutine.
type OnStatusChange = func(status ConnectionStatus)

type OnDownloadProgress = func(current float64, total float64, message string)

// Provider is the market data collaborator used by the engines.
type Provider interface {
	// HistoricalBars returns the bars of one symbol in [start, end], ascending by
	// time with one bar per timestamp.
	HistoricalBars(ctx context.Context, symbol string, timeframe Timeframe, start, end time.Time) ([]types.Bar, error)
	// Stream yields live bars until ctx is cancelled. Bars may arrive late, out of
	// order or more than once; consumers deduplicate. An error element does not end
	// the stream unless the provider cannot continue.
	Stream(ctx context.Context, symbols []string, timeframe Timeframe) iter.Seq2[types.Bar, error]
}

// Downloader is implemented by providers that can persist history through a writer.
type Downloader interface {
	// ConfigWriter sets the writer used by Download.
	ConfigWriter(writer writer.MarketDataWriter)
	// Download writes the bars of ticker in [startDate, endDate] and returns the output path.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, timeframe Timeframe, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a provider from its parsed configuration
// (see ParseProviderConfig).
func NewMarketDataProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderPolygon:
		cfg, ok := config.(*PolygonConfig)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidProvider, "polygon provider requires *PolygonConfig, got %T", config)
		}

		client, err := NewPolygonClient(cfg.APIKey)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderAlpaca:
		cfg, ok := config.(*AlpacaDataConfig)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidProvider, "alpaca provider requires *AlpacaDataConfig, got %T", config)
		}

		client, err := NewAlpacaBars(*cfg)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderFile:
		cfg, ok := config.(*FileConfig)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidProvider, "file provider requires *FileConfig, got %T", config)
		}

		client, err := NewFileProvider(cfg.DataPath)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// DedupSorted orders bars by time and keeps the first bar seen for each timestamp.
// The input slice is not modified.
func DedupSorted(bars []types.Bar) []types.Bar {
	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)

	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	result := make([]types.Bar, 0, len(sorted))
	for _, bar := range sorted {
		if len(result) > 0 && result[len(result)-1].Time.Equal(bar.Time) {
			continue
		}

		result = append(result, bar)
	}

	return result
}

// streamError wraps a failure yielded by a stream.
func streamError(format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "stream failed", fmt.Errorf(format, args...))
}
