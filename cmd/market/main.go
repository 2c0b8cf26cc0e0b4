package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/config"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/version"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
)

// clientConfig maps the flags and the loaded credentials to a download client configuration.
func clientConfig(cmd *cli.Command, secrets config.Secrets) marketdata.ClientConfig {
	return marketdata.ClientConfig{
		ProviderType:    provider.ProviderType(cmd.String("provider")),
		WriterType:      marketdata.WriterType(cmd.String("writer")),
		DataPath:        cmd.String("data"),
		PolygonApiKey:   secrets.PolygonAPIKey,
		AlpacaApiKey:    secrets.AlpacaKeyID,
		AlpacaApiSecret: secrets.AlpacaSecretKey,
		AlpacaFeed:      secrets.AlpacaDataFeed,
	}
}

// downloadAction downloads every ticker into its own parquet file.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	secrets := config.LoadSecrets(log, cmd.StringSlice("env-file")...)
	if err := secrets.RequireDataSource(cmd.String("provider")); err != nil {
		return err
	}

	timeframe, err := provider.ParseTimeframe(cmd.String("timeframe"))
	if err != nil {
		return err
	}

	client, err := marketdata.NewClient(clientConfig(cmd, secrets), nil, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")

	for _, ticker := range cmd.StringSlice("ticker") {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))

		log.Info("Starting download",
			zap.String("ticker", ticker),
			zap.String("start", startDate.Format(time.DateOnly)),
			zap.String("end", endDate.Format(time.DateOnly)),
			zap.String("provider", cmd.String("provider")),
			zap.String("timeframe", timeframe.String()))

		path, err := client.Download(ctx, marketdata.DownloadParams{
			Ticker:    ticker,
			StartDate: startDate,
			EndDate:   endDate,
			Timeframe: timeframe,
		})
		if err != nil {
			return fmt.Errorf("download of %s failed: %w", ticker, err)
		}

		fmt.Println(path)
	}

	return nil
}

func newCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    "market",
		Usage:   "Download historical bars into parquet files for offline backtests",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Stock ticker symbol, repeat for several",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s)", strings.Join(marketdata.GetDownloadProviders(), ", ")),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Usage: "Bar size (1m, 3m, 5m)",
				Value: string(provider.TimeframeOneMinute),
			},
			&cli.StringFlag{
				Name:    "writer",
				Aliases: []string{"w"},
				Usage:   fmt.Sprintf("Data writer format (e.g., %s)", marketdata.WriterDuckDB),
				Value:   string(marketdata.WriterDuckDB),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Dotenv files holding the provider credentials",
				Value: []string{".env"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Action: action,
	}
}

func main() {
	if err := newCommand(downloadAction).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
