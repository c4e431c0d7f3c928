// Package gate implements the one-way Initializing -> Ready state machine
// that separates cold-launch signals from steady-state signals.
//
// The OS redelivers a launch trigger through both the cold-launch path and
// an immediate resume callback. Without the gate a single physical tap
// would be reported twice: once via the durable pull slot and once via the
// live push stream. The gate gives the startup window a fixed duration;
// everything inside it is "still starting up".
package gate

import (
	"sync/atomic"
	"time"
)

// State is the gate's position.
type State int32

const (
	// Initializing means the process is still inside its startup window.
	Initializing State = iota
	// Ready means the startup window has passed; the app is running.
	Ready
)

// String returns the state name.
func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "initializing"
}

// DefaultWindow is the default startup window duration.
// Long enough to cover the cold-launch/resume double delivery, short
// enough that a user-initiated tap after startup is seen as live.
const DefaultWindow = 500 * time.Millisecond

// Gate is the process-wide Initializing/Ready machine.
//
// The transition is one-way and happens exactly once, either from the
// expiry timer or from an explicit Trip (tests, harness). Reads are
// lock-free; the timer is not cancellable and does not need to be.
type Gate struct {
	state atomic.Int32
}

// Start creates a gate in Initializing and arms the expiry timer.
// A non-positive window falls back to DefaultWindow.
func Start(window time.Duration) *Gate {
	g := &Gate{}
	if window <= 0 {
		window = DefaultWindow
	}
	time.AfterFunc(window, g.Trip)
	return g
}

// NewManual creates a gate in Initializing with no timer.
// The caller transitions it via Trip. Used by tests and the scenario
// harness for deterministic timing.
func NewManual() *Gate {
	return &Gate{}
}

// Trip moves the gate to Ready. Idempotent; never reverts.
func (g *Gate) Trip() {
	g.state.Store(int32(Ready))
}

// State returns the current state.
func (g *Gate) State() State {
	return State(g.state.Load())
}

// Ready reports whether the startup window has passed.
func (g *Gate) Ready() bool {
	return g.State() == Ready
}
