package strategy

import (
	"github.com/rxtech-lab/argo-intraday/internal/types"
	"github.com/rxtech-lab/argo-intraday/internal/utils"
)

type openingRange struct {
	date   string
	low    float64
	high   float64
	locked bool
}

// ORB trades long breakouts of the opening range.
// The range is built from the first windowMinutes of the regular session and
// locked; afterwards any bar whose high reaches the range high emits BUY.
// Bars outside the regular session are ignored.
type ORB struct {
	windowMinutes int
	ranges        map[string]*openingRange
}

func NewORB(windowMinutes int) *ORB {
	if windowMinutes < 1 {
		windowMinutes = 5
	}

	return &ORB{
		windowMinutes: windowMinutes,
		ranges:        make(map[string]*openingRange),
	}
}

func (o *ORB) Name() string {
	return PolicyORB
}

func (o *ORB) OnStart(_ *types.SessionState) {
	o.ranges = make(map[string]*openingRange)
}

func (o *ORB) OnBar(symbol string, bar types.Bar, _ *types.SessionState) (*types.Signal, error) {
	if !utils.IsRegularSession(bar.Time) {
		return nil, nil
	}

	minutes := utils.MinutesSinceOpen(bar.Time)
	date := utils.SessionDate(bar.Time)

	r, ok := o.ranges[symbol]
	if !ok || r.date != date {
		r = &openingRange{date: date, low: bar.Low, high: bar.High, locked: false}
		o.ranges[symbol] = r
	}

	if !r.locked {
		r.low = min(r.low, bar.Low)
		r.high = max(r.high, bar.High)

		if minutes+1 >= o.windowMinutes {
			r.locked = true
		}

		return nil, nil
	}

	if bar.High >= r.high {
		signal := types.NewSignal(types.SignalTypeBuy, "range_breakout")
		signal.Meta["range_high"] = r.high
		signal.Meta["range_low"] = r.low

		return signal, nil
	}

	return nil, nil
}

func (o *ORB) OnStop(_ *types.SessionState) {}

// Range returns the current opening range of symbol.
func (o *ORB) Range(symbol string) (low, high float64, locked bool) {
	r, ok := o.ranges[symbol]
	if !ok {
		return 0, 0, false
	}

	return r.low, r.high, r.locked
}
