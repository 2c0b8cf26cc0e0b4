package types

import "github.com/moznion/go-optional"

type SignalType string

const (
	// SignalTypeBuy opens a long or closes a short
	SignalTypeBuy SignalType = "BUY"
	// SignalTypeSell closes a long or opens a short
	SignalTypeSell SignalType = "SELL"
	// SignalTypeFlat means the policy wants no exposure; it never opens a position
	SignalTypeFlat SignalType = "FLAT"
)

// Signal is a policy's trading intent for one bar. It is consumed immediately
// by the scheduler and never persisted.
type Signal struct {
	// Type is the intent of the signal
	Type SignalType
	// Stop is an absolute stop-loss price overriding the slot's stop percentage
	Stop optional.Option[float64]
	// Target is an absolute take-profit price overriding the slot's target percentage
	Target optional.Option[float64]
	// Reason is a short machine-readable explanation, e.g. "vwap_crack"
	Reason string
	// Meta carries free-form policy diagnostics
	Meta map[string]any
}

// NewSignal builds a signal with empty overrides.
func NewSignal(signalType SignalType, reason string) *Signal {
	return &Signal{
		Type:   signalType,
		Stop:   optional.None[float64](),
		Target: optional.None[float64](),
		Reason: reason,
		Meta:   map[string]any{},
	}
}

// WithStop sets an absolute stop price.
func (s *Signal) WithStop(price float64) *Signal {
	s.Stop = optional.Some(price)

	return s
}

// WithTarget sets an absolute target price.
func (s *Signal) WithTarget(price float64) *Signal {
	s.Target = optional.Some(price)

	return s
}

// IsEntry reports whether the signal can open or close exposure.
func (s *Signal) IsEntry() bool {
	return s != nil && (s.Type == SignalTypeBuy || s.Type == SignalTypeSell)
}

// EntrySide maps BUY to long and SELL to short.
func (s *Signal) EntrySide() Side {
	if s.Type == SignalTypeSell {
		return SideShort
	}

	return SideLong
}

// Closes reports whether the signal is the opposite of a position's side.
func (s *Signal) Closes(side Side) bool {
	if s == nil {
		return false
	}

	return (side == SideLong && s.Type == SignalTypeSell) || (side == SideShort && s.Type == SignalTypeBuy)
}
