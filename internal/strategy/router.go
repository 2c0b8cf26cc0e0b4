package strategy

import (
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

const routerGapMinutes = 2

// Router runs GapAndGo for the first minutes of the session and ORB afterwards.
// Both policies see every bar so their state stays current; only the routed
// policy's signal is returned. A position opened by GapAndGo stays under
// GapAndGo management until it closes.
type Router struct {
	gag    *GapAndGo
	orb    *ORB
	owners map[string]string
}

func NewRouter(gag *GapAndGo, orb *ORB) *Router {
	if gag == nil {
		gag = NewGapAndGo(DefaultGapAndGoConfig())
	}

	if orb == nil {
		orb = NewORB(5)
	}

	return &Router{
		gag:    gag,
		orb:    orb,
		owners: make(map[string]string),
	}
}

func (r *Router) Name() string {
	return PolicyRouter
}

func (r *Router) OnStart(session *types.SessionState) {
	r.gag.OnStart(session)
	r.orb.OnStart(session)
	r.owners = make(map[string]string)
}

func (r *Router) OnStop(session *types.SessionState) {
	r.gag.OnStop(session)
	r.orb.OnStop(session)
}

func (r *Router) OnBar(symbol string, bar types.Bar, session *types.SessionState) (*types.Signal, error) {
	gagSignal, err := r.gag.OnBar(symbol, bar, session)
	if err != nil {
		return nil, err
	}

	orbSignal, err := r.orb.OnBar(symbol, bar, session)
	if err != nil {
		return nil, err
	}

	if !utils.IsRegularSession(bar.Time) {
		return nil, nil
	}

	owner := r.owners[symbol]
	if owner == PolicyGapAndGo {
		return gagSignal, nil
	}

	if owner == "" && utils.MinutesSinceOpen(bar.Time) < routerGapMinutes && gagSignal.IsEntry() {
		r.owners[symbol] = PolicyGapAndGo

		return gagSignal, nil
	}

	// GapAndGo believes it entered but the entry was not routed to it
	if r.gag.InPosition(symbol) {
		r.gag.OnEntryRejected(symbol, gagSignal)
	}

	if owner == PolicyORB {
		// ORB never exits on its own, the guardrails close its positions
		return nil, nil
	}

	if orbSignal.IsEntry() {
		r.owners[symbol] = PolicyORB
	}

	return orbSignal, nil
}

// Active returns which policy owns the symbol's position, or "".
func (r *Router) Active(symbol string) string {
	return r.owners[symbol]
}

func (r *Router) OnPositionClosed(symbol string, trade types.Trade) {
	if r.owners[symbol] == PolicyGapAndGo {
		r.gag.OnPositionClosed(symbol, trade)
	}

	delete(r.owners, symbol)
}

func (r *Router) OnEntryRejected(symbol string, signal *types.Signal) {
	if r.owners[symbol] == PolicyGapAndGo {
		r.gag.OnEntryRejected(symbol, signal)
	}

	delete(r.owners, symbol)
}

func (r *Router) OnExitRejected(symbol string, position types.Position) {
	if r.owners[symbol] == PolicyGapAndGo {
		r.gag.OnExitRejected(symbol, position)
	}
}

func (r *Router) Diagnostics(symbol string, trade types.Trade) map[string]any {
	diagnostics := map[string]any{"routed_to": r.owners[symbol]}

	if r.owners[symbol] == PolicyGapAndGo {
		for k, v := range r.gag.Diagnostics(symbol, trade) {
			diagnostics[k] = v
		}
	}

	return diagnostics
}
