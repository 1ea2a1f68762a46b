package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slvrxyzz/tvoizakaz/internal/bus"
	"github.com/slvrxyzz/tvoizakaz/internal/wire"
)

// Notification is a banner pushed by the backend, kept until the user
// opens the notifications view.
type Notification struct {
	ID         string
	Text       string
	ReceivedAt time.Time
}

// Store holds everything the views render: the chat list, per-chat
// message history, pending notifications and the authenticated user id.
// All mutation goes through the event router; accessors return copies
// so views never share slices with the single writer.
type Store struct {
	mu            sync.RWMutex
	chats         []wire.Chat
	messages      map[int64][]wire.Message
	loaded        map[int64]bool
	notifications []Notification
	unread        int
	selfID        int64

	bus     *bus.Bus
	refresh chan struct{}
}

func NewStore(b *bus.Bus) *Store {
	return &Store{
		messages: make(map[int64][]wire.Message),
		loaded:   make(map[int64]bool),
		bus:      b,
		refresh:  make(chan struct{}, 1),
	}
}

// Refresh signals with at-most-one pending tick whenever the store
// changes. The TUI drains it to coalesce redraws.
func (s *Store) Refresh() <-chan struct{} {
	return s.refresh
}

func (s *Store) signal() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// Chats returns a copy of the current chat list in server order.
func (s *Store) Chats() []wire.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]wire.Chat, len(s.chats))
	copy(out, s.chats)
	return out
}

// Chat looks a chat up by id.
func (s *Store) Chat(chatID int64) (wire.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chats {
		if c.ID == chatID {
			return c, true
		}
	}
	return wire.Chat{}, false
}

// Messages returns a copy of the history for one chat and whether a
// full history snapshot has been loaded for it. Messages that arrived
// live before any snapshot are returned with loaded == false.
func (s *Store) Messages(chatID int64) ([]wire.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[chatID]
	out := make([]wire.Message, len(msgs))
	copy(out, msgs)
	return out, s.loaded[chatID]
}

// Notifications returns a copy of the pending notifications, newest
// last.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// UnreadCount reports how many unseen notifications are pending.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// SelfID returns the authenticated user id, zero before the server
// acknowledges the connection.
func (s *Store) SelfID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

// ClearNotifications drops all pending notifications and resets the
// unread counter in one step, so a notification arriving concurrently
// is either fully kept or fully cleared.
func (s *Store) ClearNotifications() {
	s.mu.Lock()
	s.notifications = nil
	s.unread = 0
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.KindNotifyCleared, nil)
	}
	s.signal()
}

// SeedSelf presets the user id, typically decoded from the access
// token before the server's connection acknowledgement arrives. The
// acknowledgement remains authoritative and overwrites the seed.
func (s *Store) SeedSelf(userID int64) {
	s.mu.Lock()
	if s.selfID == 0 {
		s.selfID = userID
	}
	s.mu.Unlock()
}

func (s *Store) setSelf(userID int64) {
	s.mu.Lock()
	s.selfID = userID
	s.mu.Unlock()
	s.signal()
}

// replaceChats swaps in a fresh server snapshot. Message histories are
// kept; the list itself is authoritative and never merged.
func (s *Store) replaceChats(chats []wire.Chat) {
	s.mu.Lock()
	s.chats = chats
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.KindChatListReplaced, len(chats))
	}
	s.signal()
}

// setHistory replaces the stored messages for a chat with a server
// snapshot and marks the chat as loaded.
func (s *Store) setHistory(chatID int64, msgs []wire.Message) {
	s.mu.Lock()
	s.messages[chatID] = msgs
	s.loaded[chatID] = true
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.KindMessageHistory, chatID)
	}
	s.signal()
}

// appendMessage adds one live message, creating the chat's history
// entry if this is the first message seen for it. The chat list's
// last-message preview is updated in place when the chat is known.
func (s *Store) appendMessage(chatID int64, msg wire.Message) {
	s.mu.Lock()
	s.messages[chatID] = append(s.messages[chatID], msg)
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			last := msg
			s.chats[i].LastMessage = &last
			break
		}
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.KindMessageReceived, msg)
	}
	s.signal()
}

// pushNotification stores a banner. countUnread is false for
// moderation notices, which inform but do not demand attention.
func (s *Store) pushNotification(text string, countUnread bool) {
	n := Notification{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	}
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if countUnread {
		s.unread++
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.KindNotifyPushed, n)
	}
	s.signal()
}
