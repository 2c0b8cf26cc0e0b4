package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in minutes
	Min float64 `yaml:"min" json:"min"`
	// Maximum holding time of a trade in minutes
	Max float64 `yaml:"max" json:"max"`
	// Average holding time of a trade in minutes
	Avg float64 `yaml:"avg" json:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of all closed trades' pnl.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Unrealized PnL of positions still open when the stats were taken.
	UnrealizedPnL float64 `yaml:"unrealized_pnl" json:"unrealized_pnl"`
	// Total PnL. RealizedPnL plus UnrealizedPnL.
	TotalPnL float64 `yaml:"total_pnl" json:"total_pnl"`
	AvgWin   float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss  float64 `yaml:"avg_loss" json:"avg_loss"`
	// Largest single losing trade, zero when there were no losers.
	LargestLoss float64 `yaml:"largest_loss" json:"largest_loss"`
	// Largest single winning trade, zero when there were no winners.
	LargestWin float64 `yaml:"largest_win" json:"largest_win"`
	// Gross wins divided by gross losses. Zero when there were no losing trades.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
}

type TradeResult struct {
	NumberOfTrades        int     `yaml:"number_of_trades" json:"number_of_trades"`
	NumberOfWinningTrades int     `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	NumberOfLosingTrades  int     `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	WinRate               float64 `yaml:"win_rate" json:"win_rate"`
	// Maximum peak-to-trough drop of the equity curve, in percent.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
}

// RunStats summarizes one backtest or live run. It is written to stats.yaml in the run folder.
type RunStats struct {
	// ID is the run identifier, e.g. "run_1".
	ID        string    `yaml:"id" json:"id"`
	Mode      RunMode   `yaml:"mode" json:"mode"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Symbols   []string  `yaml:"symbols" json:"symbols"`

	TradeResult      TradeResult      `yaml:"trade_result" json:"trade_result"`
	TradePnl         TradePnl         `yaml:"trade_pnl" json:"trade_pnl"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time" json:"trade_holding_time"`

	StartingEquity float64 `yaml:"starting_equity" json:"starting_equity"`
	FinalEquity    float64 `yaml:"final_equity" json:"final_equity"`
	TotalReturnPct float64 `yaml:"total_return_pct" json:"total_return_pct"`

	// TradesFilePath is the path to the trades parquet file.
	TradesFilePath string `yaml:"trades_file_path" json:"trades_file_path"`
	// EquityFilePath is the path to the equity snapshot parquet file.
	EquityFilePath string `yaml:"equity_file_path" json:"equity_file_path"`
}

func WriteRunStats(path string, stats RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}

func ReadRunStats(path string) (RunStats, error) {
	var stats RunStats

	data, err := os.ReadFile(path)
	if err != nil {
		return stats, fmt.Errorf("failed to read run stats file: %w", err)
	}

	if err := yaml.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("failed to unmarshal run stats: %w", err)
	}

	return stats, nil
}
