package state

import (
	"go.uber.org/zap"

	"github.com/slvrxyzz/tvoizakaz/internal/bus"
	"github.com/slvrxyzz/tvoizakaz/internal/status"
	"github.com/slvrxyzz/tvoizakaz/internal/wire"
)

// Sender transmits outbound events. Satisfied by the websocket manager;
// bound after construction because the manager is built with the router
// as its handler.
type Sender interface {
	Send(evt wire.Outbound) bool
}

// Router is the single writer of the store. It receives every decoded
// inbound event from the transport and dispatches it to exactly one
// mutation, so views never observe partial updates.
type Router struct {
	store   *Store
	machine *status.Machine
	bus     *bus.Bus
	logger  *zap.Logger
	sender  Sender
}

func NewRouter(store *Store, machine *status.Machine, b *bus.Bus, logger *zap.Logger) *Router {
	return &Router{
		store:   store,
		machine: machine,
		bus:     b,
		logger:  logger,
	}
}

// BindSender attaches the outbound side once it exists. Until then the
// router only applies state; the initial chat list fetch is skipped.
func (r *Router) BindSender(s Sender) {
	r.sender = s
}

// Apply routes one inbound event. Events carrying a zero chat id are
// dropped: the backend occasionally emits them during chat teardown and
// they reference nothing.
func (r *Router) Apply(evt wire.Inbound) {
	switch e := evt.(type) {
	case wire.ConnectionEstablished:
		r.store.setSelf(e.UserID)
		// The socket-open transition may already have run; the server
		// acknowledgement re-asserts the same state.
		_ = r.machine.Transition(status.Connected)
		if r.bus != nil {
			r.bus.Publish(bus.KindConnEstablished, e.UserID)
		}
		r.logger.Info("connection established", zap.Int64("user_id", e.UserID))
		if r.sender != nil {
			r.sender.Send(wire.GetChats{})
		}

	case wire.ChatList:
		r.store.replaceChats(e.Chats)
		r.logger.Debug("chat list replaced", zap.Int("count", len(e.Chats)))

	case wire.MessageHistory:
		if e.ChatID == 0 {
			r.logger.Debug("dropping history without chat id")
			return
		}
		r.store.setHistory(e.ChatID, e.Messages)
		r.logger.Debug("history loaded",
			zap.Int64("chat_id", e.ChatID),
			zap.Int("count", len(e.Messages)))

	case wire.NewMessage:
		if e.ChatID == 0 {
			r.logger.Debug("dropping message without chat id")
			return
		}
		r.store.appendMessage(e.ChatID, e.Message)

	case wire.Notification:
		r.store.pushNotification(e.Raw, true)

	case wire.Moderation:
		r.store.pushNotification(e.Sanitized, false)
		r.logger.Info("message held by moderation", zap.String("reason", e.Sanitized))

	case wire.ServerError:
		r.logger.Warn("server error", zap.String("message", e.Message))
		// Loaded chats and messages stay; only the status degrades.
		_ = r.machine.Transition(status.Error)

	case wire.Pong:
		// Liveness is tracked by the transport before dispatch.

	case wire.Unknown:
		r.logger.Debug("ignoring unknown event", zap.String("type", e.Type))

	default:
		r.logger.Debug("unhandled inbound event")
	}
}
