// Package chat exposes the typed command surface of the realtime
// protocol. Commands build outbound events and report whether the
// frame actually left the process; they never block and never queue.
package chat

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/wire"
)

// Transport sends one outbound event, returning false when no
// connection is up. Satisfied by the websocket manager.
type Transport interface {
	Send(evt wire.Outbound) bool
}

// Client is the outbound command API used by the views and the
// control CLI. A nil limiter means message sends are uncapped.
type Client struct {
	transport Transport
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func NewClient(transport Transport, cfg config.ChatConfig, logger *zap.Logger) *Client {
	var limiter *rate.Limiter
	if perMinute := cfg.SendRatePerMinute; perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 5)
	}
	return &Client{
		transport: transport,
		limiter:   limiter,
		logger:    logger,
	}
}

func (c *Client) allowSend() bool {
	return c.limiter == nil || c.limiter.Allow()
}

// SendChatMessage posts text to an existing chat. Returns true only
// when the frame was transmitted; callers clear their compose box on
// true, never on hope.
func (c *Client) SendChatMessage(chatID int64, text string) bool {
	text = strings.TrimSpace(text)
	if chatID <= 0 || text == "" {
		return false
	}
	if !c.allowSend() {
		c.logger.Warn("outbound message rate limit hit", zap.Int64("chat_id", chatID))
		return false
	}
	return c.transport.Send(wire.SendMessage{ChatID: chatID, Message: text})
}

// SendUserMessage starts or continues a direct conversation addressed
// by user id. The backend resolves or creates the chat.
func (c *Client) SendUserMessage(userID int64, text string) bool {
	text = strings.TrimSpace(text)
	if userID <= 0 || text == "" {
		return false
	}
	if !c.allowSend() {
		c.logger.Warn("outbound message rate limit hit", zap.Int64("user_id", userID))
		return false
	}
	return c.transport.Send(wire.UserMessage{UserID: userID, Message: text})
}

// GetChats requests a fresh chat list snapshot. Fire-and-forget; the
// reply arrives as a chats frame.
func (c *Client) GetChats() {
	c.transport.Send(wire.GetChats{})
}

// GetChatMessages requests the full history of one chat.
func (c *Client) GetChatMessages(chatID int64) {
	if chatID <= 0 {
		return
	}
	c.transport.Send(wire.GetMessages{ChatID: chatID})
}

// GetChatMessagesAfter requests only messages newer than a known id.
func (c *Client) GetChatMessagesAfter(chatID, afterID int64) {
	if chatID <= 0 {
		return
	}
	c.transport.Send(wire.GetMessages{ChatID: chatID, AfterID: afterID})
}

// JoinChat subscribes to live events for a chat.
func (c *Client) JoinChat(chatID int64) bool {
	if chatID <= 0 {
		return false
	}
	return c.transport.Send(wire.JoinChat{ChatID: chatID})
}

// LeaveChat unsubscribes from a chat.
func (c *Client) LeaveChat(chatID int64) bool {
	if chatID <= 0 {
		return false
	}
	return c.transport.Send(wire.LeaveChat{ChatID: chatID})
}

// Ping probes connection liveness.
func (c *Client) Ping() bool {
	return c.transport.Send(wire.Ping{})
}
