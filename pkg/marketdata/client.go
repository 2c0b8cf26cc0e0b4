package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType    provider.ProviderType `validate:"required,oneof=polygon alpaca"`
	WriterType      WriterType            `validate:"required,oneof=duckdb"`
	DataPath        string                `validate:"required"`
	PolygonApiKey   string                `validate:"required_if=ProviderType polygon"`
	AlpacaApiKey    string                `validate:"required_if=ProviderType alpaca"`
	AlpacaApiSecret string                `validate:"required_if=ProviderType alpaca"`
	AlpacaFeed      string                `validate:"omitempty,oneof=iex sip"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string             `validate:"required"`
	StartDate time.Time          `validate:"required"`
	EndDate   time.Time          `validate:"required,gtfield=StartDate"`
	Timeframe provider.Timeframe `validate:"required,oneof=1m 3m 5m"`
}

// OutputFileName is TICKER_START_END_TIMEFRAME.parquet, the layout the file provider globs for.
func (p DownloadParams) OutputFileName() string {
	return fmt.Sprintf("%s_%s_%s_%s.parquet",
		p.Ticker,
		p.StartDate.Format("2006-01-02"),
		p.EndDate.Format("2006-01-02"),
		p.Timeframe)
}

// Client downloads bars from a provider and stores them through a writer.
type Client struct {
	downloader provider.Downloader
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
	log        *logger.Logger
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	var downloader provider.Downloader

	switch config.ProviderType {
	case provider.ProviderPolygon:
		client, err := provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Polygon client: %w", err)
		}

		downloader = client
	case provider.ProviderAlpaca:
		client, err := provider.NewAlpacaBars(provider.AlpacaDataConfig{
			APIKey:    config.AlpacaApiKey,
			APISecret: config.AlpacaApiSecret,
			Feed:      config.AlpacaFeed,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Alpaca client: %w", err)
		}

		downloader = client
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider type: %s", config.ProviderType)
	}

	return newClient(downloader, config, onProgress, log), nil
}

func newClient(downloader provider.Downloader, config ClientConfig, onProgress provider.OnDownloadProgress, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		downloader: downloader,
		config:     config,
		validate:   validator.New(),
		onProgress: onProgress,
		log:        log,
	}
}

// Download runs a download with the given parameters and returns the parquet path.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	marketWriter, err := c.setupWriter(params)
	if err != nil {
		return "", fmt.Errorf("failed to setup writer: %w", err)
	}

	defer func() {
		if err := marketWriter.Close(); err != nil {
			c.log.Warn("failed to close writer", zap.Error(err))
		}
	}()

	c.downloader.ConfigWriter(marketWriter)

	path, err := c.downloader.Download(
		ctx,
		params.Ticker,
		params.StartDate,
		params.EndDate,
		params.Timeframe,
		c.onProgress,
	)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	c.log.Info("download finished",
		zap.String("ticker", params.Ticker),
		zap.String("timeframe", params.Timeframe.String()),
		zap.String("path", path),
	)

	return path, nil
}

// setupWriter initializes the market data writer selected by the configuration.
func (c *Client) setupWriter(params DownloadParams) (writer.MarketDataWriter, error) {
	switch c.config.WriterType {
	case WriterDuckDB:
		if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create data path %s", c.config.DataPath)
		}

		outputPath := filepath.Join(c.config.DataPath, params.OutputFileName())

		duckdbWriter := writer.NewDuckDBWriter(outputPath)
		if err := duckdbWriter.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize DuckDB writer at %s: %w", outputPath, err)
		}

		return duckdbWriter, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported writer type: %s", c.config.WriterType)
	}
}
