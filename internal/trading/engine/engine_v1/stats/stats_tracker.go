package stats

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

// accumulator holds running trade statistics.
type accumulator struct {
	totalTrades   int
	winningTrades int
	losingTrades  int
	grossWin      float64
	grossLoss     float64
	realizedPnL   float64
	unrealizedPnL float64
	largestWin    float64
	largestLoss   float64
	holdMinutes   []float64
}

// StatsTracker accumulates the statistics of one run from its closed trades
// and its equity curve.
type StatsTracker struct {
	mode           types.RunMode
	runID          string
	symbols        []string
	sessionStart   time.Time
	startingEquity float64

	acc    *accumulator
	trades []types.Trade

	peakEquity     float64
	lastEquity     float64
	hasEquity      bool
	maxDrawdownPct float64

	tradesFilePath  string
	equityFilePath  string
	statsOutputPath string

	mu     sync.Mutex
	logger *logger.Logger
}

// NewStatsTracker creates a new StatsTracker instance.
func NewStatsTracker(log *logger.Logger) *StatsTracker {
	return &StatsTracker{
		mode:            "",
		runID:           "",
		symbols:         nil,
		sessionStart:    time.Time{},
		startingEquity:  0,
		acc:             newAccumulator(),
		trades:          nil,
		peakEquity:      0,
		lastEquity:      0,
		hasEquity:       false,
		maxDrawdownPct:  0,
		tradesFilePath:  "",
		equityFilePath:  "",
		statsOutputPath: "",
		mu:              sync.Mutex{},
		logger:          log,
	}
}

func newAccumulator() *accumulator {
	return &accumulator{
		holdMinutes: make([]float64, 0),
	}
}

// Initialize resets the tracker for a new run.
func (s *StatsTracker) Initialize(mode types.RunMode, runID string, symbols []string, sessionStart time.Time, startingEquity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = mode
	s.runID = runID
	s.symbols = symbols
	s.sessionStart = sessionStart
	s.startingEquity = startingEquity
	s.acc = newAccumulator()
	s.trades = nil
	s.peakEquity = startingEquity
	s.lastEquity = startingEquity
	s.hasEquity = false
	s.maxDrawdownPct = 0

	s.logger.Debug("Stats tracker initialized",
		zap.String("run_id", runID),
		zap.Strings("symbols", symbols),
		zap.Float64("starting_equity", startingEquity),
	)
}

// SetFilePaths sets the artifact paths reported in stats.yaml.
func (s *StatsTracker) SetFilePaths(tradesPath, equityPath, statsPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tradesFilePath = tradesPath
	s.equityFilePath = equityPath
	s.statsOutputPath = statsPath
}

// RecordTrade adds a closed trade.
func (s *StatsTracker) RecordTrade(trade types.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.acc
	acc.totalTrades++
	acc.realizedPnL += trade.PnL
	acc.holdMinutes = append(acc.holdMinutes, trade.HoldMinutes())

	switch {
	case trade.PnL > 0:
		acc.winningTrades++
		acc.grossWin += trade.PnL
		acc.largestWin = max(acc.largestWin, trade.PnL)
	case trade.PnL < 0:
		acc.losingTrades++
		acc.grossLoss += trade.PnL
		acc.largestLoss = min(acc.largestLoss, trade.PnL)
	}

	s.trades = append(s.trades, trade)

	s.logger.Debug("Trade recorded",
		zap.String("trade_id", trade.ID),
		zap.Float64("pnl", trade.PnL),
		zap.Int("total_trades", acc.totalTrades),
	)
}

// RecordEquity adds a point of the equity curve and updates the drawdown.
func (s *StatsTracker) RecordEquity(snapshot types.EquitySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hasEquity = true
	s.lastEquity = snapshot.Equity

	if snapshot.Equity > s.peakEquity {
		s.peakEquity = snapshot.Equity
	}

	if s.peakEquity > 0 {
		drawdown := (s.peakEquity - snapshot.Equity) / s.peakEquity * 100
		s.maxDrawdownPct = max(s.maxDrawdownPct, drawdown)
	}
}

// SetUnrealizedPnL updates the unrealized pnl of open positions.
func (s *StatsTracker) SetUnrealizedPnL(unrealizedPnL float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.acc.unrealizedPnL = unrealizedPnL
}

// Stats returns the statistics accumulated so far.
func (s *StatsTracker) Stats() types.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildStats()
}

//nolint:funcorder // helper method used by Stats and WriteStatsYAML
func (s *StatsTracker) buildStats() types.RunStats {
	acc := s.acc

	winRate := 0.0
	if acc.totalTrades > 0 {
		winRate = float64(acc.winningTrades) / float64(acc.totalTrades) * 100
	}

	pnl := types.TradePnl{
		RealizedPnL:   acc.realizedPnL,
		UnrealizedPnL: acc.unrealizedPnL,
		TotalPnL:      acc.realizedPnL + acc.unrealizedPnL,
		LargestWin:    acc.largestWin,
		LargestLoss:   acc.largestLoss,
	}

	if acc.winningTrades > 0 {
		pnl.AvgWin = acc.grossWin / float64(acc.winningTrades)
	}

	if acc.losingTrades > 0 {
		pnl.AvgLoss = acc.grossLoss / float64(acc.losingTrades)
		pnl.ProfitFactor = acc.grossWin / -acc.grossLoss
	}

	holding := types.TradeHoldingTime{}
	if len(acc.holdMinutes) > 0 {
		holding.Min = slices.Min(acc.holdMinutes)
		holding.Max = slices.Max(acc.holdMinutes)

		total := 0.0
		for _, minutes := range acc.holdMinutes {
			total += minutes
		}

		holding.Avg = total / float64(len(acc.holdMinutes))
	}

	finalEquity := s.startingEquity + pnl.TotalPnL
	if s.hasEquity {
		finalEquity = s.lastEquity
	}

	totalReturn := 0.0
	if s.startingEquity > 0 {
		totalReturn = (finalEquity - s.startingEquity) / s.startingEquity * 100
	}

	return types.RunStats{
		ID:        s.runID,
		Mode:      s.mode,
		Timestamp: s.sessionStart,
		Symbols:   s.symbols,
		TradeResult: types.TradeResult{
			NumberOfTrades:        acc.totalTrades,
			NumberOfWinningTrades: acc.winningTrades,
			NumberOfLosingTrades:  acc.losingTrades,
			WinRate:               winRate,
			MaxDrawdownPct:        s.maxDrawdownPct,
		},
		TradePnl:         pnl,
		TradeHoldingTime: holding,
		StartingEquity:   s.startingEquity,
		FinalEquity:      finalEquity,
		TotalReturnPct:   totalReturn,
		TradesFilePath:   s.tradesFilePath,
		EquityFilePath:   s.equityFilePath,
	}
}

// WriteStatsYAML writes the current stats to the configured stats.yaml path.
func (s *StatsTracker) WriteStatsYAML() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statsOutputPath == "" {
		return nil
	}

	return types.WriteRunStats(s.statsOutputPath, s.buildStats())
}

// TopWinners returns up to n trades with the highest pnl, best first.
func (s *StatsTracker) TopWinners(n int) []types.Trade {
	return s.ranked(n, func(a, b types.Trade) int { return cmp.Compare(b.PnL, a.PnL) })
}

// TopLosers returns up to n trades with the lowest pnl, worst first.
func (s *StatsTracker) TopLosers(n int) []types.Trade {
	return s.ranked(n, func(a, b types.Trade) int { return cmp.Compare(a.PnL, b.PnL) })
}

func (s *StatsTracker) ranked(n int, compare func(a, b types.Trade) int) []types.Trade {
	s.mu.Lock()
	sorted := slices.Clone(s.trades)
	s.mu.Unlock()

	slices.SortStableFunc(sorted, compare)

	return sorted[:min(n, len(sorted))]
}
