// Package strategy defines the decision policy contract and the compiled set
// of policies a run can select by name.
//
// A policy sees bars in timestamp order, one symbol at a time, and returns at
// most one signal per bar. Policies must be deterministic: the same bars and
// parameters always produce the same signals, and the only clock a policy may
// read is the bar's own timestamp.
package strategy

import "github.com/rxtech-lab/argo-intraday/internal/types"

// Policy is the contract every decision policy implements.
type Policy interface {
	// Name is the registered name of the policy
	Name() string
	// OnStart is called once before the first bar of a run
	OnStart(session *types.SessionState)
	// OnBar evaluates one bar and returns a signal or nil. An error is treated as no signal.
	OnBar(symbol string, bar types.Bar, session *types.SessionState) (*types.Signal, error)
	// OnStop is called once after the last bar of a run
	OnStop(session *types.SessionState)
}

// PositionListener is implemented by policies that track their own position
// state and need to hear when the engine disagrees with it.
type PositionListener interface {
	// OnPositionClosed is called after the policy's position was closed for any reason
	OnPositionClosed(symbol string, trade types.Trade)
	// OnEntryRejected is called when an entry signal did not open a position
	OnEntryRejected(symbol string, signal *types.Signal)
	// OnExitRejected is called when an exit signal did not close the position.
	// The position is still open and the policy keeps managing it.
	OnExitRejected(symbol string, position types.Position)
}

// Diagnoser is implemented by policies that can describe a closed trade.
// The returned fields are merged into the trade record.
type Diagnoser interface {
	Diagnostics(symbol string, trade types.Trade) map[string]any
}
