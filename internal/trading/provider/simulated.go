package tradingprovider

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

// SimulatedBrokerConfig configures the in-process broker.
type SimulatedBrokerConfig struct {
	StartingCash float64 `json:"startingCash" jsonschema:"title=Starting Cash,description=Account equity at connect,default=100000" validate:"gte=0"`
}

type simulatedHolding struct {
	qty       float64 // signed, negative for short
	avgPrice  float64
	lastPrice float64
}

// SimulatedBroker fills every market order immediately at the last marked price.
// It follows the NYSE regular session in the session timezone and has no holidays.
type SimulatedBroker struct {
	mu           sync.Mutex
	startingCash float64
	cash         float64
	lastEquity   float64
	holdings     map[string]*simulatedHolding
	now          func() time.Time
	connected    bool
}

func NewSimulatedBroker(config SimulatedBrokerConfig) *SimulatedBroker {
	return &SimulatedBroker{
		mu:           sync.Mutex{},
		startingCash: config.StartingCash,
		cash:         config.StartingCash,
		lastEquity:   config.StartingCash,
		holdings:     make(map[string]*simulatedHolding),
		now:          time.Now,
		connected:    false,
	}
}

// SetClock replaces the wall clock. Used by tests.
func (b *SimulatedBroker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.now = now
}

// Mark sets the fill and valuation price for symbol.
func (b *SimulatedBroker) Mark(symbol string, price float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	holding, ok := b.holdings[symbol]
	if !ok {
		holding = &simulatedHolding{qty: 0, avgPrice: 0, lastPrice: 0}
		b.holdings[symbol] = holding
	}

	holding.lastPrice = price
}

// Connect implements Broker. The simulated broker is always paper.
func (b *SimulatedBroker) Connect(ctx context.Context, mode ForceMode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if mode == ForceModeLive {
		return "", errors.New(errors.ErrCodeInvalidConfiguration, "simulated broker cannot trade live")
	}

	b.mu.Lock()
	b.connected = true
	b.mu.Unlock()

	return ConnectionPaper, nil
}

// IsMarketOpen implements Broker.
func (b *SimulatedBroker) IsMarketOpen(ctx context.Context) (bool, error) {
	clock, err := b.Clock(ctx)
	if err != nil {
		return false, err
	}

	return clock.IsOpen, nil
}

// Clock implements Broker.
func (b *SimulatedBroker) Clock(ctx context.Context) (Clock, error) {
	if err := ctx.Err(); err != nil {
		return Clock{}, err
	}

	b.mu.Lock()
	now := utils.ToSessionTime(b.now())
	b.mu.Unlock()

	isOpen := isTradingDay(now) && utils.IsRegularSession(now) && utils.MinuteOfDay(now) < utils.RegularCloseMinute

	return Clock{
		Timestamp: now,
		IsOpen:    isOpen,
		NextOpen:  nextSessionBoundary(now, utils.RegularOpenMinute),
		NextClose: nextSessionBoundary(now, utils.RegularCloseMinute),
	}, nil
}

func isTradingDay(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}

// nextSessionBoundary returns the next weekday time at minute-of-day strictly after t.
func nextSessionBoundary(t time.Time, minute int) time.Time {
	for i := 0; i < 8; i++ {
		candidate := time.Date(t.Year(), t.Month(), t.Day()+i, minute/60, minute%60, 0, 0, t.Location())
		if candidate.After(t) && isTradingDay(candidate) {
			return candidate
		}
	}

	return time.Date(t.Year(), t.Month(), t.Day()+8, minute/60, minute%60, 0, 0, t.Location())
}

func (b *SimulatedBroker) equityLocked() float64 {
	equity := b.cash
	for _, holding := range b.holdings {
		equity += holding.qty * holding.lastPrice
	}

	return equity
}

// AccountEquity implements Broker.
func (b *SimulatedBroker) AccountEquity(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.equityLocked(), nil
}

// TodayPnL implements Broker.
func (b *SimulatedBroker) TodayPnL(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.equityLocked() - b.lastEquity, nil
}

// UnrealizedPnL implements Broker.
func (b *SimulatedBroker) UnrealizedPnL(ctx context.Context) (float64, error) {
	positions, err := b.Positions(ctx)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, position := range positions {
		total += position.UnrealizedPnL
	}

	return total, nil
}

// Positions implements Broker.
func (b *SimulatedBroker) Positions(ctx context.Context) ([]BrokerPosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]BrokerPosition, 0, len(b.holdings))

	for symbol, holding := range b.holdings {
		if holding.qty == 0 {
			continue
		}

		side := types.SideLong
		if holding.qty < 0 {
			side = types.SideShort
		}

		result = append(result, BrokerPosition{
			Symbol:        symbol,
			Qty:           abs(holding.qty),
			Side:          side,
			AvgEntryPrice: holding.avgPrice,
			UnrealizedPnL: (holding.lastPrice - holding.avgPrice) * holding.qty,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })

	return result, nil
}

// SubmitMarketOrder implements Broker.
func (b *SimulatedBroker) SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side types.OrderSide) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if qty <= 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "order quantity must be positive, got %v", qty)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return errors.New(errors.ErrCodeBrokerUnavailable, "simulated broker is not connected")
	}

	holding, ok := b.holdings[symbol]
	if !ok || holding.lastPrice <= 0 {
		return errors.Newf(errors.ErrCodeOrderFailed, "no price for %s", symbol)
	}

	signed := qty
	if side == types.OrderSideSell {
		signed = -qty
	}

	b.fillLocked(holding, signed)

	return nil
}

func (b *SimulatedBroker) fillLocked(holding *simulatedHolding, signed float64) {
	price := holding.lastPrice
	next := holding.qty + signed

	switch {
	case next == 0:
		holding.avgPrice = 0
	case holding.qty == 0 || (holding.qty > 0) != (next > 0):
		holding.avgPrice = price
	case abs(next) > abs(holding.qty):
		holding.avgPrice = (holding.avgPrice*abs(holding.qty) + price*abs(signed)) / abs(next)
	}

	b.cash -= signed * price
	holding.qty = next
}

// FlattenAll implements Broker.
func (b *SimulatedBroker) FlattenAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, holding := range b.holdings {
		if holding.qty != 0 {
			b.fillLocked(holding, -holding.qty)
		}
	}

	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
