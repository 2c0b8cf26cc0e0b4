package strategy

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-intraday/internal/indicator"
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

const (
	gapExitTime     = "time_exit"
	gapExitVWAP     = "vwap_crack"
	gapExitStop     = "stop_hit"
	gapEntryLong    = "gap_up_breakout"
	gapEntryShort   = "gap_down_breakout"
	minSpreadFloor  = 0.015
	volumeSampleLen = 100
	volumeWarmup    = 5
	minATRSamples   = 3
)

// gapPosition is the policy's own view of the position it opened.
type gapPosition struct {
	side              types.Side
	entryTime         time.Time
	entryPrice        float64
	initialStop       float64
	stop              float64
	r                 float64
	atrOnEntry        float64
	breakevenLocked   bool
	breakevenLockTime time.Time
	crackCount        int
	exitReason        string
}

// gapState is the per-symbol state. Everything except prevClose is reset at
// the start of each session date.
type gapState struct {
	date string

	prevClose     float64
	sessionGapPct float64
	sessionOpen   float64
	gapRecorded   bool

	premarketHigh   float64
	premarketLow    float64
	premarketVolume float64

	firstBreakDone bool
	breakoutCount  int

	atr     *indicator.ATR
	vwap    *indicator.VWAP
	volumes *indicator.Rolling

	position *gapPosition
	// last is the most recent position, kept after exit for trade diagnostics.
	last *gapPosition
}

// GapAndGo trades the first breakout of the premarket range on gapping stocks
// and manages its own exits with a breakeven lock, a VWAP trailing stop, a
// debounced VWAP crack exit and a forced time exit.
type GapAndGo struct {
	config     GapAndGoConfig
	exitMinute int
	states     map[string]*gapState
}

// NewGapAndGo builds the policy. Zero-valued fields of config fall back to the defaults.
func NewGapAndGo(config GapAndGoConfig) *GapAndGo {
	config = config.WithDefaults()

	exitMinute, err := utils.ParseClock(config.ExitTime)
	if err != nil {
		exitMinute, _ = utils.ParseClock(DefaultGapAndGoConfig().ExitTime)
	}

	return &GapAndGo{
		config:     config,
		exitMinute: exitMinute,
		states:     make(map[string]*gapState),
	}
}

// WithDefaults fills the fields that have no usable zero value.
func (c GapAndGoConfig) WithDefaults() GapAndGoConfig {
	d := DefaultGapAndGoConfig()

	if c.MaxGapPct == 0 {
		c.MaxGapPct = d.MaxGapPct
	}

	if c.MaxPrice == 0 {
		c.MaxPrice = d.MaxPrice
	}

	if c.ConfirmBars < 1 {
		c.ConfirmBars = d.ConfirmBars
	}

	if c.ATRLen < 1 {
		c.ATRLen = d.ATRLen
	}

	if c.ATRStopMult <= 0 {
		c.ATRStopMult = d.ATRStopMult
	}

	if c.VWAPCrackBars < 1 {
		c.VWAPCrackBars = d.VWAPCrackBars
	}

	if c.ExitTime == "" {
		c.ExitTime = d.ExitTime
	}

	if c.Direction == "" {
		c.Direction = d.Direction
	}

	return c
}

func (g *GapAndGo) Name() string {
	return PolicyGapAndGo
}

// Config returns the effective parameters.
func (g *GapAndGo) Config() GapAndGoConfig {
	return g.config
}

func (g *GapAndGo) OnStart(_ *types.SessionState) {
	g.states = make(map[string]*gapState)
}

func (g *GapAndGo) OnStop(_ *types.SessionState) {}

func (g *GapAndGo) state(symbol string, date string) *gapState {
	st, ok := g.states[symbol]
	if !ok {
		st = &gapState{}
		g.states[symbol] = st
	}

	if st.date != date {
		g.resetDay(st, date)
	}

	return st
}

func (g *GapAndGo) resetDay(st *gapState, date string) {
	prevClose := st.prevClose
	last := st.last

	*st = gapState{
		date:            date,
		prevClose:       prevClose,
		premarketHigh:   math.Inf(-1),
		premarketLow:    math.Inf(1),
		premarketVolume: 0,
		atr:             indicator.NewATR(g.config.ATRLen),
		vwap:            indicator.NewVWAP(),
		volumes:         indicator.NewRolling(volumeSampleLen),
		last:            last,
	}
}

func (g *GapAndGo) OnBar(symbol string, bar types.Bar, _ *types.SessionState) (*types.Signal, error) {
	st := g.state(symbol, utils.SessionDate(bar.Time))

	if utils.IsPremarket(bar.Time) {
		st.premarketHigh = math.Max(st.premarketHigh, bar.High)
		st.premarketLow = math.Min(st.premarketLow, bar.Low)
		st.premarketVolume += bar.Volume

		return nil, nil
	}

	if !utils.IsRegularSession(bar.Time) {
		st.prevClose = bar.Close

		return nil, nil
	}

	if st.prevClose <= 0 {
		// no prior session seen, the gap for today is zero
		st.prevClose = bar.Open
	}

	minutes := utils.MinutesSinceOpen(bar.Time)

	st.atr.Update(bar.High, bar.Low, bar.Close)
	st.vwap.Update(bar.TypicalPrice(), bar.Volume)

	if minutes > volumeWarmup {
		st.volumes.Add(bar.Volume)
	}

	if !st.gapRecorded {
		st.sessionOpen = bar.Open
		st.sessionGapPct = (bar.Open - st.prevClose) / st.prevClose * 100
		st.gapRecorded = true
	}

	if st.position != nil {
		return g.manage(st, bar), nil
	}

	return g.entry(st, bar, minutes), nil
}

func (g *GapAndGo) eligible(st *gapState, bar types.Bar) bool {
	if bar.Close < g.config.MinPrice || bar.Close > g.config.MaxPrice {
		return false
	}

	if st.premarketVolume < g.config.MinPremarketVolume {
		return false
	}

	if spread, ok := bar.Spread(); ok {
		if spread/bar.Close > math.Max(g.config.MaxSpread, minSpreadFloor) {
			return false
		}
	}

	if avg := st.volumes.Mean(); avg > 0 && bar.Volume < avg*g.config.VolumeSurge {
		return false
	}

	return true
}

func (g *GapAndGo) direction(gapPct float64) (types.Side, bool) {
	gapUp := gapPct >= g.config.MinGapPct && gapPct <= g.config.MaxGapPct
	gapDown := gapPct <= -g.config.MinGapPct && gapPct >= -g.config.MaxGapPct

	if gapUp && g.config.Direction != DirectionShortOnly {
		return types.SideLong, true
	}

	if gapDown && g.config.Direction != DirectionLongOnly {
		return types.SideShort, true
	}

	return "", false
}

func (g *GapAndGo) entry(st *gapState, bar types.Bar, minutes int) *types.Signal {
	if minutes > g.config.TradeCutoffMinute {
		return nil
	}

	if st.firstBreakDone && !g.config.AllowMultipleEntries {
		return nil
	}

	if !g.eligible(st, bar) {
		return nil
	}

	side, ok := g.direction(st.sessionGapPct)
	if !ok {
		return nil
	}

	if math.IsInf(st.premarketHigh, 0) || math.IsInf(st.premarketLow, 0) {
		return nil
	}

	ref := st.premarketHigh
	if side == types.SideShort {
		ref = st.premarketLow
	}

	offset := math.Max(0.03, 0.0005*ref)

	var broke bool
	if side == types.SideLong {
		broke = bar.High >= ref+offset && bar.Close >= ref
	} else {
		broke = bar.Low <= ref-offset && bar.Close <= ref
	}

	if !broke {
		st.breakoutCount = 0

		return nil
	}

	st.breakoutCount++
	if st.breakoutCount < g.config.ConfirmBars {
		return nil
	}

	atr := st.atr.Value()
	if st.atr.Samples() < minATRSamples {
		atr = bar.Close * 0.01
	}

	stop := bar.Close - side.Sign()*g.config.ATRStopMult*atr
	r := math.Abs(bar.Close - stop)

	if r < bar.Close*0.005 {
		return nil
	}

	st.firstBreakDone = true
	st.breakoutCount = 0
	st.position = &gapPosition{
		side:        side,
		entryTime:   bar.Time,
		entryPrice:  bar.Close,
		initialStop: stop,
		stop:        stop,
		r:           r,
		atrOnEntry:  atr,
	}
	st.last = st.position

	signalType, reason := types.SignalTypeBuy, gapEntryLong
	if side == types.SideShort {
		signalType, reason = types.SignalTypeSell, gapEntryShort
	}

	signal := types.NewSignal(signalType, reason)

	signal.Meta["gap_pct"] = st.sessionGapPct
	signal.Meta["ref_price"] = ref
	signal.Meta["initial_stop"] = stop
	signal.Meta["r_value"] = r
	signal.Meta["atr"] = atr

	return signal
}

func breakevenBuffer(entry, r, atr float64) float64 {
	if entry < 10 {
		return math.Max(0.03, math.Max(0.30*r, 0.5*atr))
	}

	return math.Max(0.02, math.Max(0.20*r, 0.4*atr))
}

// manage runs the exit precedence for an open position. Only the first
// matching exit fires.
func (g *GapAndGo) manage(st *gapState, bar types.Bar) *types.Signal {
	pos := st.position
	sign := pos.side.Sign()

	if utils.MinuteOfDay(bar.Time) >= g.exitMinute {
		return g.exit(st, gapExitTime)
	}

	atr := st.atr.Value()
	if atr <= 0 {
		atr = pos.entryPrice * 0.005
	}

	vwap, hasVWAP := st.vwap.Value()

	if !pos.breakevenLocked && sign*(bar.Close-pos.entryPrice) >= pos.r {
		lock := pos.entryPrice + sign*breakevenBuffer(pos.entryPrice, pos.r, atr)
		pos.stop = tighter(pos.side, pos.stop, lock)
		pos.breakevenLocked = true
		pos.breakevenLockTime = bar.Time
	}

	if hasVWAP {
		trail := vwap - sign*g.config.TrailFloorMult*atr
		pos.stop = tighter(pos.side, pos.stop, trail)

		buffer := math.Max(0.5*atr, 0.005*bar.Close)
		if sign*(bar.Close-vwap) < -buffer {
			pos.crackCount++
		} else {
			pos.crackCount = 0
		}

		if pos.crackCount >= g.config.VWAPCrackBars {
			return g.exit(st, gapExitVWAP)
		}
	}

	if (pos.side == types.SideLong && bar.Low <= pos.stop) || (pos.side == types.SideShort && bar.High >= pos.stop) {
		return g.exit(st, gapExitStop)
	}

	return nil
}

// tighter returns whichever stop gives back less, so stops only ratchet.
func tighter(side types.Side, current, candidate float64) float64 {
	if side == types.SideShort {
		return math.Min(current, candidate)
	}

	return math.Max(current, candidate)
}

func (g *GapAndGo) exit(st *gapState, reason string) *types.Signal {
	pos := st.position
	pos.exitReason = reason
	st.position = nil

	signalType := types.SignalTypeSell
	if pos.side == types.SideShort {
		signalType = types.SignalTypeBuy
	}

	signal := types.NewSignal(signalType, reason)

	signal.Meta["stop"] = pos.stop

	return signal
}

// InPosition reports whether the policy believes it holds symbol.
func (g *GapAndGo) InPosition(symbol string) bool {
	st, ok := g.states[symbol]

	return ok && st.position != nil
}

// Stop returns the managed stop of the open position on symbol.
func (g *GapAndGo) Stop(symbol string) (float64, bool) {
	st, ok := g.states[symbol]
	if !ok || st.position == nil {
		return 0, false
	}

	return st.position.stop, true
}

func (g *GapAndGo) OnPositionClosed(symbol string, _ types.Trade) {
	if st, ok := g.states[symbol]; ok {
		st.position = nil
	}
}

func (g *GapAndGo) OnEntryRejected(symbol string, _ *types.Signal) {
	st, ok := g.states[symbol]
	if !ok {
		return
	}

	st.position = nil
	st.last = nil
	st.firstBreakDone = false
}

// OnExitRejected puts the position the policy just exited back under
// management, so the exit is signalled again on the next bar.
func (g *GapAndGo) OnExitRejected(symbol string, _ types.Position) {
	st, ok := g.states[symbol]
	if !ok || st.position != nil || st.last == nil {
		return
	}

	st.last.exitReason = ""
	st.position = st.last
}

// Diagnostics describes the setup behind a closed trade.
func (g *GapAndGo) Diagnostics(symbol string, trade types.Trade) map[string]any {
	st, ok := g.states[symbol]
	if !ok {
		return nil
	}

	diagnostics := map[string]any{
		"vwap_exit":     false,
		"time_exit":     false,
		"strategy_exit": trade.ExitReason == types.ExitReasonStrategy,
	}

	if st.prevClose > 0 {
		diagnostics["prev_close"] = st.prevClose
		diagnostics["gap_pct"] = (trade.EntryPrice - st.prevClose) / st.prevClose * 100
	}

	if !math.IsInf(st.premarketHigh, 0) {
		diagnostics["premarket_high"] = st.premarketHigh
	}

	if !math.IsInf(st.premarketLow, 0) {
		diagnostics["premarket_low"] = st.premarketLow
	}

	if st.premarketVolume > 0 {
		diagnostics["premarket_volume"] = st.premarketVolume
	}

	pos := st.last
	if pos == nil {
		return diagnostics
	}

	diagnostics["atr_on_entry"] = pos.atrOnEntry
	diagnostics["initial_stop"] = pos.initialStop
	diagnostics["r_value"] = pos.r

	if pos.r > 0 && trade.Qty > 0 {
		diagnostics["r_multiple"] = trade.PnL / (pos.r * trade.Qty)
	}

	if pos.breakevenLocked {
		diagnostics["breakeven_lock_time"] = pos.breakevenLockTime
	}

	diagnostics["vwap_exit"] = pos.exitReason == gapExitVWAP
	diagnostics["time_exit"] = pos.exitReason == gapExitTime

	return diagnostics
}
