// Package indicator holds the streaming calculators used by the policies.
// Each calculator is fed one bar at a time in timestamp order and keeps only
// the state its window needs, so replay and live produce identical values.
package indicator

// Indicator is a calculator that can be cleared at a session boundary.
type Indicator interface {
	// Reset drops all accumulated state
	Reset()
	// Ready reports whether the calculator has seen enough samples to produce a value
	Ready() bool
}
