package bus

import (
	"time"

	"github.com/google/uuid"
)

// Kind names an event. Kinds are dot-namespaced so subscribers can
// filter by prefix.
type Kind string

// Event kinds published by the core.
const (
	KindConnStatusChanged Kind = "conn.status_changed"
	KindConnEstablished   Kind = "conn.established"
	KindChatListReplaced  Kind = "chat.list_replaced"
	KindMessageHistory    Kind = "message.history"
	KindMessageReceived   Kind = "message.received"
	KindNotifyPushed      Kind = "notify.pushed"
	KindNotifyCleared     Kind = "notify.cleared"
)

// Event is one occurrence delivered to subscribers.
type Event struct {
	ID        string
	Kind      Kind
	Timestamp time.Time
	Payload   any
}

func newEvent(kind Kind, payload any) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
