package status

import (
	"testing"

	"github.com/slvrxyzz/tvoizakaz/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Disconnected {
		t.Errorf("initial state = %s, want disconnected", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Disconnected, Connecting},
		{Connecting, Connected},
		{Connecting, Error},
		{Connecting, Disconnected},
		{Connected, Disconnected},
		{Connected, Error},
		{Error, Connecting},
		{Error, Disconnected},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Connected); err == nil {
		t.Error("Transition(disconnected -> connected) should fail")
	}
	if m.Current() != Disconnected {
		t.Errorf("state = %s, want disconnected (unchanged)", m.Current())
	}
}

// TestConnectedAckIsIdempotent verifies that the server's
// connection_established frame arriving after the socket is already
// open does not fail: either signal alone must be sufficient.
func TestConnectedAckIsIdempotent(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connected)

	if err := m.Transition(Connected); err != nil {
		t.Fatalf("same-state transition: %v", err)
	}
	if m.Current() != Connected {
		t.Errorf("state = %s, want connected", m.Current())
	}
}

// TestReconnectCycle walks the full manual reconnect loop:
// connected -> disconnected -> connecting -> connected.
func TestReconnectCycle(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Connected)

	steps := []State{Disconnected, Connecting, Connected}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Connected {
		t.Errorf("final state = %s, want connected", m.Current())
	}
}

// TestErrorIsRecoverable verifies error is never terminal: a manual
// reconnect must be able to leave it.
func TestErrorIsRecoverable(t *testing.T) {
	m := NewMachine(nil)
	walkTo(t, m, Error)

	if err := m.Transition(Connecting); err != nil {
		t.Fatalf("error -> connecting: %v", err)
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("conn.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindConnStatusChanged {
		t.Errorf("event kind = %q, want %q", evt.Kind, bus.KindConnStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Disconnected || change.To != Connecting {
		t.Errorf("change = %v -> %v, want disconnected -> connecting", change.From, change.To)
	}
}

func TestSameStateEmitsNoEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("conn.", 10)
	defer unsub()

	m := NewMachine(b)
	walkTo(t, m, Connected)
	for len(ch) > 0 {
		<-ch
	}

	_ = m.Transition(Connected)
	if len(ch) != 0 {
		t.Error("same-state transition published an event")
	}
}

// walkTo is a helper that transitions the machine to a target state.
func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Disconnected: {},
		Connecting:   {Connecting},
		Connected:    {Connecting, Connected},
		Error:        {Connecting, Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
