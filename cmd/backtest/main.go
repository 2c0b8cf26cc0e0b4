package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-intraday/internal/backtest/engine"
	backtest "github.com/rxtech-lab/argo-intraday/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-intraday/internal/config"
	"github.com/rxtech-lab/argo-intraday/internal/controller"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/version"
)

func runAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	appConfig, registry, err := config.LoadWithPolicies(cmd.String("config"))
	if err != nil {
		return err
	}

	secrets := config.LoadSecrets(log, cmd.StringSlice("env-file")...)

	marketData, err := appConfig.MarketData(secrets)
	if err != nil {
		return err
	}

	backtestConfig, err := appConfig.BacktestConfig()
	if err != nil {
		return err
	}

	var opts []backtest.Option

	if cmd.Bool("seed-from-broker") {
		broker, err := appConfig.NewBroker(secrets)
		if err != nil {
			return err
		}

		opts = append(opts, backtest.WithBroker(broker))
	}

	replay, err := backtest.NewBacktestEngineV1(backtestConfig, registry, marketData, log, opts...)
	if err != nil {
		return err
	}

	ctrl := controller.New(map[types.RunMode]controller.Runner{
		types.RunModeBacktest: controller.BacktestRunner(replay, progressCallbacks(log)),
	}, log)

	if err := ctrl.Start(ctx, types.RunModeBacktest); err != nil {
		return err
	}

	// first interrupt stops after the current bar
	signals, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-signals.Done()

		_ = ctrl.Stop(false)
	}()

	ctrl.Wait()

	if err := ctrl.LastError(); err != nil {
		return err
	}

	summary, err := yaml.Marshal(ctrl.Stats())
	if err != nil {
		return err
	}

	fmt.Print(string(summary))

	return nil
}

func progressCallbacks(log *logger.Logger) engine.LifecycleCallbacks {
	var bar *progressbar.ProgressBar

	onStart := engine.OnBacktestStartCallback(func(symbols []string, totalBars int) error {
		bar = progressbar.NewOptions(totalBars,
			progressbar.OptionSetDescription(fmt.Sprintf("Replaying %s", strings.Join(symbols, ","))),
			progressbar.OptionShowCount())

		return nil
	})

	onProcess := engine.OnProcessDataCallback(func(current int, _ int) error {
		if bar == nil {
			return nil
		}

		return bar.Set(current)
	})

	onTrade := engine.OnTradeCallback(func(trade types.Trade) {
		log.Debug("Trade closed",
			zap.String("symbol", trade.Symbol),
			zap.String("slot", trade.Slot),
			zap.Float64("pnl", trade.PnL),
			zap.String("reason", trade.ExitReason))
	})

	onEnd := engine.OnBacktestEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			log.Error("Backtest failed", zap.Error(err))
		}
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnSymbolStart:   nil,
		OnSymbolEnd:     nil,
		OnProcessData:   &onProcess,
		OnTrade:         &onTrade,
	}
}

const (
	schemaFileName = "argo-intraday-config.json"
	sampleFileName = "config.yaml"
)

// schemaAction prints the config schema, or writes it with a sample config
// into the --output folder. An existing sample is left untouched.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.Schema()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		fmt.Println(schema)

		return nil
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(output, schemaFileName), []byte(schema), 0644); err != nil {
		return err
	}

	samplePath := filepath.Join(output, sampleFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	sample, err := yaml.Marshal(config.Sample())
	if err != nil {
		return err
	}

	sample = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), sample...)

	return os.WriteFile(samplePath, sample, 0644)
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Replay historical bars through the strategy scheduler",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
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
			&cli.BoolFlag{
				Name:  "seed-from-broker",
				Usage: "Use the broker account equity as starting cash",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema and a sample config into this folder",
					},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
