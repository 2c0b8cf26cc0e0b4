// Package scheduler runs the per-bar decision cycle over the configured strategy slots.
//
// For every bar the scheduler runs four passes in a fixed order:
//
//  1. strategy exits: each slot holding a position on the symbol sees the bar first
//  2. guardrails: stop loss and take profit close whatever is still open
//  3. mark: open positions are re-priced at the bar close
//  4. entries: eligible slots are asked in priority order and the first fundable entry wins
//
// A policy sees each bar at most once.
package scheduler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/ledger"
	"github.com/rxtech-lab/argo-intraday/internal/logger"
	"github.com/rxtech-lab/argo-intraday/internal/strategy"
	"github.com/rxtech-lab/argo-intraday/internal/trading"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"go.uber.org/zap"
)

// Config holds the run-wide parameters the scheduler needs.
type Config struct {
	// Risk is the global sizing and guardrail fallback for every slot.
	Risk types.RiskParams
	// SelectedStrategy is the policy used when no slot is enabled.
	SelectedStrategy string
	// LunchSkip suppresses entries during the noon hour in single-policy mode
	// and is the default for slots without their own setting.
	LunchSkip bool
}

// Slot is one live policy instance with its resolved parameters.
type Slot struct {
	ID        string
	Name      string
	Priority  int
	Policy    strategy.Policy
	Window    utils.Window
	Risk      types.RiskParams
	LunchSkip bool
}

// Result lists what a bar changed.
type Result struct {
	Opened []types.Position
	Closed []types.Trade
}

type Scheduler struct {
	slots    []*Slot
	byID     map[string]*Slot
	single   bool
	ledger   *ledger.Ledger
	executor trading.OrderExecutor
	session  *types.SessionState
	logger   *logger.Logger
}

// allDay is the window used in single-policy mode.
var allDay = utils.Window{Start: 0, End: 24*60 - 1}

// New builds a scheduler from the enabled slots, ordered by ascending priority and
// then by configuration order. With no enabled slot it falls back to a single
// slot running cfg.SelectedStrategy with the global parameters.
func New(
	slots []types.StrategySlot,
	registry strategy.Registry,
	cfg Config,
	book *ledger.Ledger,
	executor trading.OrderExecutor,
	session *types.SessionState,
	log *logger.Logger,
) (*Scheduler, error) {
	if err := validateRisk(cfg.Risk); err != nil {
		return nil, err
	}

	s := &Scheduler{
		slots:    []*Slot{},
		byID:     make(map[string]*Slot),
		single:   false,
		ledger:   book,
		executor: executor,
		session:  session,
		logger:   log.Named("scheduler"),
	}

	enabled := make([]types.StrategySlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Enabled {
			enabled = append(enabled, slot)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool { return enabled[i].Priority < enabled[j].Priority })

	for _, cfgSlot := range enabled {
		slot, err := buildSlot(cfgSlot, registry, cfg)
		if err != nil {
			return nil, err
		}

		if _, exists := s.byID[slot.ID]; exists {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "duplicate strategy slot %s", slot.ID)
		}

		s.slots = append(s.slots, slot)
		s.byID[slot.ID] = slot
	}

	if len(s.slots) == 0 {
		if cfg.SelectedStrategy == "" {
			return nil, errors.New(errors.ErrCodeMissingParameter, "no strategy slot enabled and no selected strategy")
		}

		policy, err := registry.Create(cfg.SelectedStrategy)
		if err != nil {
			return nil, err
		}

		slot := &Slot{
			ID:        cfg.SelectedStrategy,
			Name:      cfg.SelectedStrategy,
			Priority:  0,
			Policy:    policy,
			Window:    allDay,
			Risk:      cfg.Risk,
			LunchSkip: cfg.LunchSkip,
		}

		s.single = true
		s.slots = append(s.slots, slot)
		s.byID[slot.ID] = slot
	}

	return s, nil
}

func buildSlot(cfgSlot types.StrategySlot, registry strategy.Registry, cfg Config) (*Slot, error) {
	start, end := cfgSlot.Start, cfgSlot.End
	if start == "" {
		start = "09:30"
	}

	if end == "" {
		end = "16:00"
	}

	window, err := utils.ParseWindow(start, end)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidWindow, err, "invalid window for slot %s", cfgSlot.ID())
	}

	risk := cfgSlot.Resolve(cfg.Risk)
	if err := validateRisk(risk); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid risk for slot %s", cfgSlot.ID())
	}

	policy, err := registry.Create(cfgSlot.Name)
	if err != nil {
		return nil, err
	}

	return &Slot{
		ID:        cfgSlot.ID(),
		Name:      cfgSlot.Name,
		Priority:  cfgSlot.Priority,
		Policy:    policy,
		Window:    window,
		Risk:      risk,
		LunchSkip: cfgSlot.LunchSkip.TakeOr(cfg.LunchSkip),
	}, nil
}

func validateRisk(risk types.RiskParams) error {
	if risk.RiskPercent <= 0 || risk.StopLossPercent <= 0 || risk.TakeProfitPercent <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"risk, stop loss and take profit percentages must be positive (got %.4f, %.4f, %.4f)",
			risk.RiskPercent, risk.StopLossPercent, risk.TakeProfitPercent)
	}

	if risk.StopLossPercent >= 100 {
		return errors.Newf(errors.ErrCodeInvalidStopLoss, "stop loss percent %.4f must be below 100", risk.StopLossPercent)
	}

	return nil
}

// Slots returns the slots in evaluation order.
func (s *Scheduler) Slots() []*Slot {
	return s.slots
}

// SinglePolicy reports whether the scheduler runs one globally selected policy.
func (s *Scheduler) SinglePolicy() bool {
	return s.single
}

func (s *Scheduler) Ledger() *ledger.Ledger {
	return s.ledger
}

// Start calls OnStart on every policy.
func (s *Scheduler) Start() {
	for _, slot := range s.slots {
		slot.Policy.OnStart(s.session)
	}
}

// Stop calls OnStop on every policy.
func (s *Scheduler) Stop() {
	for _, slot := range s.slots {
		slot.Policy.OnStop(s.session)
	}
}

// ProcessBar runs the exit, guardrail, mark and entry passes for one bar.
// While paused only the entry pass is skipped. The returned error is only set
// for a bar that cannot be processed at all; per-slot faults are logged and
// the bar continues.
func (s *Scheduler) ProcessBar(ctx context.Context, bar types.Bar, paused bool) (Result, error) {
	result := Result{Opened: []types.Position{}, Closed: []types.Trade{}}

	if err := bar.Validate(); err != nil {
		return result, errors.Wrap(errors.ErrCodeInvalidBar, "invalid bar", err)
	}

	invoked := make(map[string]bool, len(s.slots))

	s.exitPass(ctx, bar, invoked, &result)
	s.guardrailPass(ctx, bar, &result)
	s.ledger.Mark(bar.Symbol, bar.Close)

	if paused {
		return result, nil
	}

	s.entryPass(ctx, bar, invoked, &result)

	return result, nil
}

// Warm feeds a historical bar to every policy so that session state (opening
// range, gap reference, moving averages) is built before live trading starts.
// Signals are discarded and no order is placed.
func (s *Scheduler) Warm(bar types.Bar) error {
	if err := bar.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBar, "invalid warm-up bar", err)
	}

	for _, slot := range s.slots {
		signal := s.invoke(slot, bar)
		if !signal.IsEntry() {
			continue
		}

		if listener, ok := slot.Policy.(strategy.PositionListener); ok {
			listener.OnEntryRejected(bar.Symbol, signal)
		}
	}

	return nil
}

func (s *Scheduler) exitPass(ctx context.Context, bar types.Bar, invoked map[string]bool, result *Result) {
	for _, slot := range s.slots {
		key := types.PositionKey{Symbol: bar.Symbol, Slot: slot.ID}

		position, ok := s.ledger.Position(key)
		if !ok {
			continue
		}

		invoked[slot.ID] = true

		signal := s.invoke(slot, bar)
		if !signal.Closes(position.Side) {
			continue
		}

		trade, err := s.exit(ctx, slot, position, bar.Close, bar.Time, types.ExitReasonStrategy)
		if err != nil {
			if listener, ok := slot.Policy.(strategy.PositionListener); ok && s.ledger.Has(key) {
				listener.OnExitRejected(bar.Symbol, position)
			}

			continue
		}

		result.Closed = append(result.Closed, trade)
	}
}

func (s *Scheduler) guardrailPass(ctx context.Context, bar types.Bar, result *Result) {
	for _, position := range s.ledger.PositionsForSymbol(bar.Symbol) {
		reason, price, hit := ledger.GuardrailHit(position, bar)
		if !hit {
			continue
		}

		slot := s.byID[position.Key.Slot]

		if err := s.executor.Submit(ctx, position.Key.Symbol, position.Qty, position.Side.CloseOrderSide()); err != nil {
			s.logger.Error("Failed to submit guardrail exit",
				zap.String("slot", position.Key.Slot),
				zap.String("symbol", position.Key.Symbol),
				zap.String("reason", reason),
				zap.Error(errors.Wrap(errors.ErrCodeOrderFailed, "guardrail exit rejected", err)),
			)

			continue
		}

		trade, err := s.ledger.CheckGuardrails(position.Key, bar, s.annotator(slot, position))
		if err != nil || trade == nil {
			s.logger.Error("Guardrail close did not settle in the ledger",
				zap.String("slot", position.Key.Slot),
				zap.String("symbol", position.Key.Symbol),
				zap.Error(err),
			)

			continue
		}

		s.logger.Info("Guardrail exit",
			zap.String("slot", trade.Slot),
			zap.String("symbol", trade.Symbol),
			zap.String("reason", reason),
			zap.Float64("price", price),
			zap.Float64("pnl", trade.PnL),
		)

		s.notifyClosed(slot, trade)
		result.Closed = append(result.Closed, *trade)
	}
}

func (s *Scheduler) entryPass(ctx context.Context, bar types.Bar, invoked map[string]bool, result *Result) {
	lunch := utils.IsLunchHour(bar.Time)

	if s.single && lunch && s.slots[0].LunchSkip {
		s.logger.Debug("Lunch skip", zap.String("symbol", bar.Symbol), zap.Time("time", bar.Time))

		return
	}

	for _, slot := range s.slots {
		if invoked[slot.ID] {
			continue
		}

		if !slot.Window.Contains(bar.Time) {
			continue
		}

		if lunch && slot.LunchSkip {
			continue
		}

		key := types.PositionKey{Symbol: bar.Symbol, Slot: slot.ID}
		if s.ledger.Has(key) {
			continue
		}

		invoked[slot.ID] = true

		signal := s.invoke(slot, bar)
		if !signal.IsEntry() {
			continue
		}

		position, err := s.enter(ctx, slot, signal, bar)
		if err != nil {
			s.logger.Debug("Entry not taken",
				zap.String("slot", slot.ID),
				zap.String("symbol", bar.Symbol),
				zap.String("signal", string(signal.Type)),
				zap.Error(err),
			)

			if listener, ok := slot.Policy.(strategy.PositionListener); ok {
				listener.OnEntryRejected(bar.Symbol, signal)
			}

			continue
		}

		result.Opened = append(result.Opened, position)

		break
	}
}

// invoke calls the policy, turning errors and panics into "no signal".
func (s *Scheduler) invoke(slot *Slot, bar types.Bar) (signal *types.Signal) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Newf(errors.ErrCodeStrategyRuntimeError, "policy %s panicked on %s: %v", slot.ID, bar.Symbol, r)
			s.logger.Error("Policy panicked", zap.String("slot", slot.ID), zap.String("symbol", bar.Symbol), zap.Error(err))

			signal = nil
		}
	}()

	signal, err := slot.Policy.OnBar(bar.Symbol, bar, s.session)
	if err != nil {
		s.logger.Warn("Policy returned an error",
			zap.String("slot", slot.ID),
			zap.String("symbol", bar.Symbol),
			zap.Error(errors.Wrap(errors.ErrCodeStrategyRuntimeError, "policy error", err)),
		)

		return nil
	}

	return signal
}

// Size computes the share quantity for an entry at price. A signal stop overrides
// the slot's stop percentage as the risk distance.
func Size(equity, price float64, risk types.RiskParams, signal *types.Signal) (float64, bool) {
	stopFraction := utils.PercentToFraction(risk.StopLossPercent)

	if stop, err := signal.Stop.Take(); err == nil {
		stopFraction = math.Abs(price-stop) / price
	}

	return utils.CalculateRiskQuantity(equity, price, utils.PercentToFraction(risk.RiskPercent), stopFraction)
}

// Guardrails returns the absolute stop and target for an entry. Signal overrides
// win over the slot percentages.
func Guardrails(price float64, side types.Side, risk types.RiskParams, signal *types.Signal) (stop float64, target float64) {
	sign := side.Sign()
	stop = signal.Stop.TakeOr(price * (1 - sign*utils.PercentToFraction(risk.StopLossPercent)))
	target = signal.Target.TakeOr(price * (1 + sign*utils.PercentToFraction(risk.TakeProfitPercent)))

	return stop, target
}

func (s *Scheduler) enter(ctx context.Context, slot *Slot, signal *types.Signal, bar types.Bar) (types.Position, error) {
	price := bar.Close
	side := signal.EntrySide()

	qty, ok := Size(s.ledger.Equity(), price, slot.Risk, signal)
	if !ok {
		return types.Position{}, errors.Newf(errors.ErrCodeInvalidQuantity, "cannot size entry at %.4f", price)
	}

	if side == types.SideLong && !utils.CanAfford(s.ledger.Cash(), price, qty) {
		return types.Position{}, errors.Newf(errors.ErrCodeInsufficientCash,
			"long entry needs %.2f, cash is %.2f", price*qty, s.ledger.Cash())
	}

	stop, target := Guardrails(price, side, slot.Risk, signal)

	req := ledger.OpenRequest{
		Key:        types.PositionKey{Symbol: bar.Symbol, Slot: slot.ID},
		Side:       side,
		Qty:        qty,
		EntryPrice: price,
		Stop:       stop,
		Target:     target,
		EntryTime:  bar.Time,
		Policy:     slot.Name,
		Priority:   slot.Priority,
		Meta:       signal.Meta,
	}

	if err := ledger.ValidateOpen(req); err != nil {
		return types.Position{}, err
	}

	if err := s.executor.Submit(ctx, bar.Symbol, qty, side.OrderSide()); err != nil {
		wrapped := errors.Wrap(errors.ErrCodeOrderFailed, "entry order rejected", err)
		s.logger.Error("Failed to submit entry",
			zap.String("slot", slot.ID),
			zap.String("symbol", bar.Symbol),
			zap.Error(wrapped),
		)

		return types.Position{}, wrapped
	}

	position, err := s.ledger.Open(req)
	if err != nil {
		return types.Position{}, err
	}

	s.logger.Info("Entered position",
		zap.String("slot", slot.ID),
		zap.Int("priority", slot.Priority),
		zap.String("symbol", bar.Symbol),
		zap.String("side", string(side)),
		zap.Float64("qty", qty),
		zap.Float64("price", price),
		zap.Float64("stop", stop),
		zap.Float64("target", target),
		zap.String("reason", signal.Reason),
	)

	return position, nil
}

// exit submits the closing order and settles the position in the ledger.
func (s *Scheduler) exit(ctx context.Context, slot *Slot, position types.Position, price float64, at time.Time, reason string) (types.Trade, error) {
	if err := s.executor.Submit(ctx, position.Key.Symbol, position.Qty, position.Side.CloseOrderSide()); err != nil {
		wrapped := errors.Wrap(errors.ErrCodeOrderFailed, "exit order rejected", err)
		s.logger.Error("Failed to submit exit",
			zap.String("slot", position.Key.Slot),
			zap.String("symbol", position.Key.Symbol),
			zap.String("reason", reason),
			zap.Error(wrapped),
		)

		return types.Trade{}, wrapped
	}

	trade, err := s.ledger.Close(position.Key, price, at, reason, s.annotator(slot, position))
	if err != nil {
		s.logger.Error("Failed to close position", zap.String("key", position.Key.String()), zap.Error(err))

		return types.Trade{}, err
	}

	s.logger.Info("Exited position",
		zap.String("slot", trade.Slot),
		zap.String("symbol", trade.Symbol),
		zap.String("side", string(trade.Side)),
		zap.Float64("qty", trade.Qty),
		zap.Float64("price", price),
		zap.Float64("pnl", trade.PnL),
		zap.String("reason", reason),
	)

	s.notifyClosed(slot, &trade)

	return trade, nil
}

// CloseAll exits every open position through the executor at the price chosen by
// priceOf. Positions whose order fails stay open and are reported in the error.
func (s *Scheduler) CloseAll(ctx context.Context, at time.Time, reason string, priceOf func(types.Position) float64) ([]types.Trade, error) {
	trades := []types.Trade{}
	failed := []string{}

	for _, position := range s.ledger.Positions() {
		trade, err := s.exit(ctx, s.byID[position.Key.Slot], position, priceOf(position), at, reason)
		if err != nil {
			failed = append(failed, position.Key.String())

			continue
		}

		trades = append(trades, trade)
	}

	if len(failed) > 0 {
		return trades, errors.Newf(errors.ErrCodeOrderFailed, "failed to close %d positions: %v", len(failed), failed)
	}

	return trades, nil
}

func (s *Scheduler) annotator(slot *Slot, position types.Position) ledger.Annotator {
	return func(trade types.Trade) map[string]any {
		diagnostics := map[string]any{}

		for k, v := range position.EntryMeta {
			diagnostics[k] = v
		}

		if slot == nil {
			return diagnostics
		}

		diagnostics["priority"] = slot.Priority

		if diagnoser, ok := slot.Policy.(strategy.Diagnoser); ok {
			for k, v := range diagnoser.Diagnostics(trade.Symbol, trade) {
				diagnostics[k] = v
			}
		}

		return diagnostics
	}
}

func (s *Scheduler) notifyClosed(slot *Slot, trade *types.Trade) {
	if slot == nil || trade == nil {
		return
	}

	if listener, ok := slot.Policy.(strategy.PositionListener); ok {
		listener.OnPositionClosed(trade.Symbol, *trade)
	}
}

func (s *Slot) String() string {
	return fmt.Sprintf("%s[%s]", s.ID, s.Window)
}
