package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/slvrxyzz/tvoizakaz/internal/bus"
)

// State is the connection status visible to views.
type State string

const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
	Error        State = "error"
)

// validTransitions defines allowed state transitions. A transition to
// the current state is always permitted: the transport reports
// "connected" both on socket open and on the server's
// connection_established acknowledgement, and either signal alone must
// suffice.
var validTransitions = map[State][]State{
	Disconnected: {Connecting},
	Connecting:   {Connected, Disconnected, Error},
	Connected:    {Disconnected, Error},
	Error:        {Connecting, Disconnected},
}

// Machine tracks and enforces connection status transitions. Changes
// are announced on the bus so views can re-render without polling.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine starting in Disconnected.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Disconnected,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition attempts to move to a new state. Moving to the current
// state is a no-op. Returns an error if the transition is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()

	if m.current == to {
		m.mu.Unlock()
		return nil
	}

	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	from := m.current
	m.current = to
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(bus.KindConnStatusChanged, StatusChange{From: from, To: to})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
