package wire

import (
	"encoding/json"
	"fmt"
)

// Inbound is the closed union of server-to-client events. The router
// switches over it exhaustively; adding a variant is a compile-time
// visible decision, not a runtime fallthrough.
type Inbound interface {
	inbound()
}

// ConnectionEstablished acknowledges the connection and carries the
// authenticated user id.
type ConnectionEstablished struct {
	UserID    int64
	Timestamp string
}

// ChatList is a full snapshot of the user's chats. It always replaces
// the current list, never merges.
type ChatList struct {
	Chats []Chat
}

// MessageHistory is a full snapshot of one chat's messages.
type MessageHistory struct {
	ChatID   int64
	Messages []Message
}

// NewMessage is a live message push. A zero ChatID marks a frame that
// referenced no chat and must be dropped.
type NewMessage struct {
	ChatID  int64
	Message Message
}

// Notification is an opaque server push surfaced as a banner.
type Notification struct {
	Raw string
}

// Moderation reports that a sent message was held or rewritten by the
// moderation filter. Sanitized carries the replacement text when the
// server provides one, otherwise the original message.
type Moderation struct {
	Message   string
	Sanitized string
	Raw       string
}

// ServerError is an application-level error pushed by the backend.
type ServerError struct {
	Message string
}

// Pong answers a liveness ping.
type Pong struct {
	Timestamp string
}

// Unknown is any frame with an unrecognized tag. Tolerated by
// contract.
type Unknown struct {
	Type string
}

func (ConnectionEstablished) inbound() {}
func (ChatList) inbound()              {}
func (MessageHistory) inbound()        {}
func (NewMessage) inbound()            {}
func (Notification) inbound()          {}
func (Moderation) inbound()            {}
func (ServerError) inbound()           {}
func (Pong) inbound()                  {}
func (Unknown) inbound()               {}

// envelope is the superset of inbound frame fields. The message field
// is kept raw because it is an object in new_message frames and a
// plain string in error and moderation frames.
type envelope struct {
	Type       string          `json:"type"`
	UserID     int64           `json:"user_id"`
	Timestamp  string          `json:"timestamp"`
	ChatID     int64           `json:"chat_id"`
	LegacyChat int64           `json:"chatId"`
	Chats      json.RawMessage `json:"chats"`
	Messages   json.RawMessage `json:"messages"`
	Message    json.RawMessage `json:"message"`
	Sanitized  string          `json:"sanitized"`
}

// chatID resolves the chat reference, preferring the canonical snake
// case field over the legacy camel case alias some backend builds
// still emit.
func (e *envelope) chatID() int64 {
	if e.ChatID != 0 {
		return e.ChatID
	}
	return e.LegacyChat
}

func (e *envelope) messageText() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	return string(e.Message)
}

// ParseInbound decodes one frame into its typed event. It errors only
// when the frame is not a JSON object; a recognized tag with a
// malformed payload degrades to the tag's empty value, and an
// unrecognized tag returns Unknown with a nil error.
func ParseInbound(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch env.Type {
	case "connection_established":
		return ConnectionEstablished{UserID: env.UserID, Timestamp: env.Timestamp}, nil

	case "chats":
		var chats []Chat
		if err := json.Unmarshal(env.Chats, &chats); err != nil || chats == nil {
			chats = []Chat{}
		}
		return ChatList{Chats: chats}, nil

	case "messages":
		var msgs []Message
		if err := json.Unmarshal(env.Messages, &msgs); err != nil || msgs == nil {
			msgs = []Message{}
		}
		return MessageHistory{ChatID: env.chatID(), Messages: msgs}, nil

	case "new_message":
		var msg Message
		if len(env.Message) == 0 || json.Unmarshal(env.Message, &msg) != nil {
			// No usable message body; a zero chat id tells the router
			// to drop the event.
			return NewMessage{}, nil
		}
		return NewMessage{ChatID: env.chatID(), Message: msg}, nil

	case "notification":
		return Notification{Raw: string(data)}, nil

	case "moderation":
		text := env.messageText()
		sanitized := env.Sanitized
		if sanitized == "" {
			sanitized = text
		}
		return Moderation{Message: text, Sanitized: sanitized, Raw: string(data)}, nil

	case "error":
		return ServerError{Message: env.messageText()}, nil

	case "pong":
		return Pong{Timestamp: env.Timestamp}, nil

	default:
		return Unknown{Type: env.Type}, nil
	}
}
