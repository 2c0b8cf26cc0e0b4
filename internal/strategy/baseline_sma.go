package strategy

import (
	"github.com/rxtech-lab/argo-intraday/internal/indicator"
	"github.com/rxtech-lab/argo-intraday/internal/types"
)

type relation int

const (
	relationUnknown relation = iota
	relationAbove
	relationBelow
)

// BaselineSMA is a close-versus-moving-average crossover.
// It emits BUY when the close moves above the average and SELL when it moves
// below. The relation starts unknown, so the first ready bar on either side
// counts as a cross.
type BaselineSMA struct {
	window   int
	averages map[string]*indicator.SMA
	last     map[string]relation
}

func NewBaselineSMA(window int) *BaselineSMA {
	if window < 2 {
		window = 20
	}

	return &BaselineSMA{
		window:   window,
		averages: make(map[string]*indicator.SMA),
		last:     make(map[string]relation),
	}
}

func (b *BaselineSMA) Name() string {
	return PolicyBaselineSMA
}

func (b *BaselineSMA) OnStart(_ *types.SessionState) {
	b.averages = make(map[string]*indicator.SMA)
	b.last = make(map[string]relation)
}

func (b *BaselineSMA) OnBar(symbol string, bar types.Bar, _ *types.SessionState) (*types.Signal, error) {
	sma, ok := b.averages[symbol]
	if !ok {
		sma = indicator.NewSMA(b.window)
		b.averages[symbol] = sma
	}

	average, ready := sma.Update(bar.Close)
	if !ready {
		return nil, nil
	}

	previous := b.last[symbol]

	switch {
	case bar.Close > average:
		b.last[symbol] = relationAbove
		if previous != relationAbove {
			return b.signal(types.SignalTypeBuy, "cross_above", average), nil
		}
	case bar.Close < average:
		b.last[symbol] = relationBelow
		if previous != relationBelow {
			return b.signal(types.SignalTypeSell, "cross_below", average), nil
		}
	}

	return nil, nil
}

func (b *BaselineSMA) signal(signalType types.SignalType, reason string, average float64) *types.Signal {
	signal := types.NewSignal(signalType, reason)
	signal.Meta["sma"] = average

	return signal
}

func (b *BaselineSMA) OnStop(_ *types.SessionState) {}
