package wire

import (
	"encoding/json"
	"fmt"
)

// Outbound is the closed union of client-to-server events. Commands
// are pure data; sending is fire-and-forget with no correlation id,
// replies are matched implicitly by chat id.
type Outbound interface {
	outbound()
}

// JoinChat subscribes to live events for one chat.
type JoinChat struct {
	ChatID int64
}

// LeaveChat unsubscribes from one chat.
type LeaveChat struct {
	ChatID int64
}

// SendMessage posts a message to an existing chat.
type SendMessage struct {
	ChatID  int64
	Message string
}

// GetChats requests a full chat list snapshot.
type GetChats struct{}

// GetMessages requests a chat's history, optionally only messages
// after a known id.
type GetMessages struct {
	ChatID  int64
	AfterID int64
}

// UserMessage starts or continues a direct conversation addressed by
// user id instead of chat id.
type UserMessage struct {
	UserID  int64
	Message string
}

// Ping is a liveness probe; the server answers with pong.
type Ping struct{}

func (JoinChat) outbound()    {}
func (LeaveChat) outbound()   {}
func (SendMessage) outbound() {}
func (GetChats) outbound()    {}
func (GetMessages) outbound() {}
func (UserMessage) outbound() {}
func (Ping) outbound()        {}

// EncodeOutbound serializes one command into its wire frame.
func EncodeOutbound(evt Outbound) ([]byte, error) {
	switch e := evt.(type) {
	case JoinChat:
		return json.Marshal(struct {
			Type   string `json:"type"`
			ChatID int64  `json:"chat_id"`
		}{"joinChat", e.ChatID})

	case LeaveChat:
		return json.Marshal(struct {
			Type   string `json:"type"`
			ChatID int64  `json:"chat_id"`
		}{"leaveChat", e.ChatID})

	case SendMessage:
		return json.Marshal(struct {
			Type    string `json:"type"`
			ChatID  int64  `json:"chat_id"`
			Message string `json:"message"`
		}{"sendMessage", e.ChatID, e.Message})

	case GetChats:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"getChats"})

	case GetMessages:
		return json.Marshal(struct {
			Type    string `json:"type"`
			ChatID  int64  `json:"chat_id"`
			AfterID int64  `json:"after_id,omitempty"`
		}{"getMessages", e.ChatID, e.AfterID})

	case UserMessage:
		return json.Marshal(struct {
			Type    string `json:"type"`
			UserID  int64  `json:"user_id"`
			Message string `json:"message"`
		}{"user_message", e.UserID, e.Message})

	case Ping:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"ping"})

	default:
		return nil, fmt.Errorf("unsupported outbound event %T", evt)
	}
}
