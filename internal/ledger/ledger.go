// Package ledger owns cash, open positions and closed trades for one run.
//
// It is the single source of truth for what is open and what it is worth.
// All mutation happens on the run's worker goroutine, so the ledger holds no
// locks; readers get copies through Positions, Trades and the published
// snapshot.
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

// Annotator returns extra diagnostic fields for a trade that is being closed.
type Annotator func(trade types.Trade) map[string]any

// OpenRequest describes a new position.
type OpenRequest struct {
	Key        types.PositionKey
	Side       types.Side
	Qty        float64
	EntryPrice float64
	// Stop and Target are absolute guardrail prices. Zero disables that guardrail.
	Stop      float64
	Target    float64
	EntryTime time.Time
	Policy    string
	Priority  int
	Meta      map[string]any
}

type Ledger struct {
	startingCash float64
	cash         float64
	realizedPnL  float64
	positions    map[types.PositionKey]*types.Position
	trades       []types.Trade
	newID        func() string
}

// New creates a ledger holding startingCash and nothing else.
func New(startingCash float64) *Ledger {
	return &Ledger{
		startingCash: startingCash,
		cash:         startingCash,
		realizedPnL:  0,
		positions:    make(map[types.PositionKey]*types.Position),
		trades:       []types.Trade{},
		newID:        func() string { return uuid.New().String() },
	}
}

// ValidateOpen checks a request without touching the ledger, so callers can
// reject an entry before any order is sent.
func ValidateOpen(req OpenRequest) error {
	if req.Key.Symbol == "" || req.Key.Slot == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "position key requires symbol and slot")
	}

	if req.Side != types.SideLong && req.Side != types.SideShort {
		return errors.Newf(errors.ErrCodeInvalidParameter, "invalid side %q", req.Side)
	}

	if req.Qty <= 0 || math.IsNaN(req.Qty) || math.IsInf(req.Qty, 0) {
		return errors.Newf(errors.ErrCodeInvalidQuantity, "quantity must be positive, got %v", req.Qty)
	}

	if req.EntryPrice <= 0 || math.IsNaN(req.EntryPrice) || math.IsInf(req.EntryPrice, 0) {
		return errors.Newf(errors.ErrCodeInvalidPrice, "entry price must be positive, got %v", req.EntryPrice)
	}

	sign := req.Side.Sign()

	if req.Stop != 0 && sign*(req.Stop-req.EntryPrice) >= 0 {
		return errors.Newf(errors.ErrCodeInvalidStopLoss, "%s stop %.4f is on the wrong side of entry %.4f", req.Side, req.Stop, req.EntryPrice)
	}

	if req.Target != 0 && sign*(req.Target-req.EntryPrice) <= 0 {
		return errors.Newf(errors.ErrCodeInvalidTakeProfit, "%s target %.4f is on the wrong side of entry %.4f", req.Side, req.Target, req.EntryPrice)
	}

	return nil
}

// Open records a new position. Opening a long debits entryPrice*qty from cash;
// opening a short credits the same amount as sale proceeds.
func (l *Ledger) Open(req OpenRequest) (types.Position, error) {
	if err := ValidateOpen(req); err != nil {
		return types.Position{}, err
	}

	if _, exists := l.positions[req.Key]; exists {
		return types.Position{}, errors.Newf(errors.ErrCodePositionExists, "position already open for %s", req.Key)
	}

	position := &types.Position{
		Key:           req.Key,
		Side:          req.Side,
		EntryTime:     req.EntryTime,
		EntryPrice:    req.EntryPrice,
		Qty:           req.Qty,
		Stop:          req.Stop,
		Target:        req.Target,
		Policy:        req.Policy,
		Priority:      req.Priority,
		CurrentPrice:  req.EntryPrice,
		UnrealizedPnL: 0,
		EntryMeta:     req.Meta,
	}

	l.cash -= req.Side.Sign() * req.EntryPrice * req.Qty
	l.positions[req.Key] = position

	return *position, nil
}

// Close removes the position at exitPrice and appends its trade.
// Long pnl is (exit-entry)*qty and short pnl is (entry-exit)*qty.
func (l *Ledger) Close(key types.PositionKey, exitPrice float64, exitTime time.Time, reason string, annotate Annotator) (types.Trade, error) {
	position, exists := l.positions[key]
	if !exists {
		return types.Trade{}, errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", key)
	}

	if exitPrice <= 0 || math.IsNaN(exitPrice) || math.IsInf(exitPrice, 0) {
		return types.Trade{}, errors.Newf(errors.ErrCodeInvalidPrice, "exit price must be positive, got %v", exitPrice)
	}

	pnl := position.PnLAt(exitPrice)

	trade := types.Trade{
		ID:          l.newID(),
		Symbol:      key.Symbol,
		Slot:        key.Slot,
		Policy:      position.Policy,
		Side:        position.Side,
		EntryTime:   position.EntryTime,
		ExitTime:    exitTime,
		EntryPrice:  position.EntryPrice,
		ExitPrice:   exitPrice,
		Qty:         position.Qty,
		PnL:         pnl,
		PnLPct:      pnl / (position.EntryPrice * position.Qty) * 100,
		ExitReason:  reason,
		Diagnostics: nil,
	}

	if annotate != nil {
		trade.Diagnostics = annotate(trade)
	}

	l.cash += position.Side.Sign() * exitPrice * position.Qty
	l.realizedPnL += pnl
	l.trades = append(l.trades, trade)
	delete(l.positions, key)

	return trade, nil
}

// GuardrailHit reports which guardrail a bar crosses for a position.
// If a single bar crosses both, the stop wins since the intrabar path is unknown.
func GuardrailHit(position types.Position, bar types.Bar) (reason string, price float64, hit bool) {
	switch position.Side {
	case types.SideLong:
		if position.Stop > 0 && bar.Low <= position.Stop {
			return types.ExitReasonStopLoss, position.Stop, true
		}

		if position.Target > 0 && bar.High >= position.Target {
			return types.ExitReasonTakeProfit, position.Target, true
		}
	case types.SideShort:
		if position.Stop > 0 && bar.High >= position.Stop {
			return types.ExitReasonStopLoss, position.Stop, true
		}

		if position.Target > 0 && bar.Low <= position.Target {
			return types.ExitReasonTakeProfit, position.Target, true
		}
	}

	return "", 0, false
}

// CheckGuardrails closes the position at its stop or target if bar crosses one.
// It returns nil when nothing triggered.
func (l *Ledger) CheckGuardrails(key types.PositionKey, bar types.Bar, annotate Annotator) (*types.Trade, error) {
	position, exists := l.positions[key]
	if !exists {
		return nil, errors.Newf(errors.ErrCodePositionNotFound, "no open position for %s", key)
	}

	reason, price, hit := GuardrailHit(*position, bar)
	if !hit {
		return nil, nil
	}

	trade, err := l.Close(key, price, bar.Time, reason, annotate)
	if err != nil {
		return nil, err
	}

	return &trade, nil
}

// Mark refreshes the display price and unrealized pnl of every position on symbol.
func (l *Ledger) Mark(symbol string, price float64) {
	if price <= 0 {
		return
	}

	for key, position := range l.positions {
		if key.Symbol != symbol {
			continue
		}

		position.CurrentPrice = price
		position.UnrealizedPnL = position.PnLAt(price)
	}
}

func (l *Ledger) StartingCash() float64 {
	return l.startingCash
}

func (l *Ledger) Cash() float64 {
	return l.cash
}

// PositionsValue is the signed market value of all positions; shorts count negative.
func (l *Ledger) PositionsValue() float64 {
	value := 0.0
	for _, position := range l.positions {
		value += position.MarketValue()
	}

	return value
}

// Equity is cash plus the signed market value of all positions.
func (l *Ledger) Equity() float64 {
	return l.cash + l.PositionsValue()
}

func (l *Ledger) RealizedPnL() float64 {
	return l.realizedPnL
}

func (l *Ledger) UnrealizedPnL() float64 {
	total := 0.0
	for _, position := range l.positions {
		total += position.UnrealizedPnL
	}

	return total
}

// Position returns a copy of the position at key.
func (l *Ledger) Position(key types.PositionKey) (types.Position, bool) {
	position, exists := l.positions[key]
	if !exists {
		return types.Position{}, false
	}

	return *position, true
}

func (l *Ledger) Has(key types.PositionKey) bool {
	_, exists := l.positions[key]

	return exists
}

func (l *Ledger) Count() int {
	return len(l.positions)
}

// Positions returns copies of all open positions ordered by symbol, priority and slot.
func (l *Ledger) Positions() []types.Position {
	out := make([]types.Position, 0, len(l.positions))
	for _, position := range l.positions {
		out = append(out, *position)
	}

	sortPositions(out)

	return out
}

// PositionsForSymbol returns copies of the positions on symbol in priority order.
func (l *Ledger) PositionsForSymbol(symbol string) []types.Position {
	out := make([]types.Position, 0)
	for key, position := range l.positions {
		if key.Symbol == symbol {
			out = append(out, *position)
		}
	}

	sortPositions(out)

	return out
}

func sortPositions(positions []types.Position) {
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if a.Key.Symbol != b.Key.Symbol {
			return a.Key.Symbol < b.Key.Symbol
		}

		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}

		return a.Key.Slot < b.Key.Slot
	})
}

// Trades returns a copy of the closed trades in close order.
func (l *Ledger) Trades() []types.Trade {
	out := make([]types.Trade, len(l.trades))
	copy(out, l.trades)

	return out
}

// RecentTrades returns up to n of the latest trades, newest last.
func (l *Ledger) RecentTrades(n int) []types.Trade {
	if n <= 0 || n >= len(l.trades) {
		return l.Trades()
	}

	out := make([]types.Trade, n)
	copy(out, l.trades[len(l.trades)-n:])

	return out
}

// SetCash replaces the cash balance. It is only valid while no position is open.
func (l *Ledger) SetCash(cash float64) error {
	if len(l.positions) > 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "cannot reseed cash with open positions")
	}

	l.startingCash = cash
	l.cash = cash

	return nil
}

// Reset drops all positions and trades and restores the starting cash.
func (l *Ledger) Reset() {
	l.cash = l.startingCash
	l.realizedPnL = 0
	l.positions = make(map[types.PositionKey]*types.Position)
	l.trades = []types.Trade{}
}

// Snapshot builds a read-only view of the ledger for publishing. It copies
// everything, so the result can be handed to other goroutines.
func (l *Ledger) Snapshot(state types.EngineState, session types.SessionState, recentTrades int, at time.Time) types.Snapshot {
	return types.Snapshot{
		State:        state,
		Session:      session,
		Cash:         l.Cash(),
		Equity:       l.Equity(),
		Positions:    l.Positions(),
		RecentTrades: l.RecentTrades(recentTrades),
		UpdatedAt:    at,
	}
}
