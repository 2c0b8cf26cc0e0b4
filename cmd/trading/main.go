package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-intraday/internal/config"
	"github.com/rxtech-lab/argo-intraday/internal/controller"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/trading/engine"
	enginev1 "github.com/rxtech-lab/argo-intraday/internal/trading/engine/engine_v1"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/version"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
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

	broker, err := appConfig.NewBroker(secrets)
	if err != nil {
		return err
	}

	flatten := appConfig.FlattenOnStop || cmd.Bool("flatten")

	liveConfig := appConfig.LiveConfig(cmd.Bool("confirm-live"))
	liveConfig.FlattenOnStop = flatten

	live, err := enginev1.NewLiveTradingEngineV1(liveConfig, registry, marketData, broker, log,
		enginev1.WithDataSourceName(appConfig.DataSource))
	if err != nil {
		return err
	}

	ctrl := controller.New(map[types.RunMode]controller.Runner{
		types.RunModeLive: controller.LiveRunner(live, liveCallbacks(log)),
	}, log)

	if err := ctrl.Start(ctx, types.RunModeLive); err != nil {
		return err
	}

	signals, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-signals.Done()

		fmt.Println("\nReceived interrupt signal, stopping...")

		_ = ctrl.Stop(flatten)
	}()

	if !cmd.Bool("no-console") {
		go console(os.Stdin, os.Stdout, ctrl)
	}

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

func liveCallbacks(log *logger.Logger) engine.LiveTradingCallbacks {
	onStart := engine.OnEngineStartCallback(func(symbols []string, timeframe provider.Timeframe, runFolder string) error {
		fmt.Printf("Trading %s on %s bars, writing to %s\n", strings.Join(symbols, ","), timeframe, runFolder)

		return nil
	})

	onStop := engine.OnEngineStopCallback(func(err error) {
		if err != nil {
			fmt.Printf("Engine stopped with error: %v\n", err)

			return
		}

		fmt.Println("Engine stopped")
	})

	onTrade := engine.OnTradeCallback(func(trade types.Trade) {
		fmt.Printf("Closed %s %s %.0f @ %.2f -> %.2f pnl=%.2f (%s)\n",
			trade.Slot, trade.Symbol, trade.Qty, trade.EntryPrice, trade.ExitPrice, trade.PnL, trade.ExitReason)
	})

	onError := engine.OnErrorCallback(func(err error) {
		log.Warn("Engine error", zap.Error(err))
	})

	onStatus := engine.OnStatusUpdateCallback(func(state types.EngineState) {
		log.Info("Engine state changed", zap.String("state", string(state)))
	})

	return engine.LiveTradingCallbacks{
		OnEngineStart:  &onStart,
		OnEngineStop:   &onStop,
		OnBar:          nil,
		OnTrade:        &onTrade,
		OnError:        &onError,
		OnStatusUpdate: &onStatus,
	}
}

// console reads control commands, one per line, until the input closes.
func console(in io.Reader, out io.Writer, ctrl *controller.Controller) {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		var err error

		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "":
			continue
		case "pause":
			err = ctrl.Pause()
		case "resume":
			err = ctrl.Resume()
		case "stop":
			err = ctrl.Stop(false)
		case "flatten":
			err = ctrl.Stop(true)
		case "status":
			printStatus(out, ctrl.Snapshot())
		default:
			_, _ = fmt.Fprintln(out, "commands: pause, resume, stop, flatten, status")
		}

		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printStatus(out io.Writer, snapshot types.Snapshot) {
	_, _ = fmt.Fprintf(out, "state=%s cash=%.2f equity=%.2f realized=%.2f unrealized=%.2f\n",
		snapshot.State, snapshot.Cash, snapshot.Equity, snapshot.Session.RealizedPnL, snapshot.Session.UnrealizedPnL)

	for _, position := range snapshot.Positions {
		_, _ = fmt.Fprintf(out, "  %s %s %s %.0f @ %.2f stop=%.2f target=%.2f upnl=%.2f\n",
			position.Key.Slot, position.Key.Symbol, position.Side, position.Qty,
			position.EntryPrice, position.Stop, position.Target, position.UnrealizedPnL)
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "trading",
		Usage:   "Trade the configured symbols against a live or paper broker",
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
				Name:  "confirm-live",
				Usage: "Allow trading a live money account",
			},
			&cli.BoolFlag{
				Name:  "flatten",
				Usage: "Close every position when the run is interrupted",
			},
			&cli.BoolFlag{
				Name:  "no-console",
				Usage: "Do not read control commands from stdin",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
