package types

import "time"

type RunMode string

const (
	RunModeLive     RunMode = "live"
	RunModeBacktest RunMode = "backtest"
)

// EngineState is the lifecycle state of a run.
type EngineState string

const (
	EngineStateIdle     EngineState = "idle"
	EngineStateRunning  EngineState = "running"
	EngineStatePaused   EngineState = "paused"
	EngineStateStopping EngineState = "stopping"
)

// SessionState is the run-wide control and status record handed to policies.
type SessionState struct {
	Mode RunMode `json:"mode" yaml:"mode"`
	// ConnectionMode is "paper" or "live" once a broker is connected.
	ConnectionMode string `json:"connection_mode" yaml:"connection_mode"`
	Started        bool   `json:"started" yaml:"started"`
	Paused         bool   `json:"paused" yaml:"paused"`
	Stopping       bool   `json:"stopping" yaml:"stopping"`
	FlattenOnStop  bool   `json:"flatten_on_stop" yaml:"flatten_on_stop"`

	RealizedPnL   float64   `json:"realized_pnl" yaml:"realized_pnl"`
	UnrealizedPnL float64   `json:"unrealized_pnl" yaml:"unrealized_pnl"`
	LastPnLUpdate time.Time `json:"last_pnl_update" yaml:"last_pnl_update"`

	// RunFolder is where the run writes its artifacts.
	RunFolder string `json:"run_folder" yaml:"run_folder"`
}

// AccountSnapshot is the broker-side view refreshed periodically in live mode.
type AccountSnapshot struct {
	Equity        float64   `json:"equity" yaml:"equity"`
	TodayPnL      float64   `json:"today_pnl" yaml:"today_pnl"`
	UnrealizedPnL float64   `json:"unrealized_pnl" yaml:"unrealized_pnl"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// Snapshot is a fully formed, read-only view of a run published for readers.
type Snapshot struct {
	State        EngineState     `json:"state" yaml:"state"`
	Session      SessionState    `json:"session" yaml:"session"`
	Cash         float64         `json:"cash" yaml:"cash"`
	Equity       float64         `json:"equity" yaml:"equity"`
	Positions    []Position      `json:"positions" yaml:"positions"`
	RecentTrades []Trade         `json:"recent_trades" yaml:"recent_trades"`
	Account      AccountSnapshot `json:"account" yaml:"account"`
	UpdatedAt    time.Time       `json:"updated_at" yaml:"updated_at"`
}

// IdleSnapshot is what readers see before the first run and after a crash.
func IdleSnapshot() Snapshot {
	return Snapshot{
		State:        EngineStateIdle,
		Positions:    []Position{},
		RecentTrades: []Trade{},
	}
}
