package chat

import (
	"testing"

	"github.com/slvrxyzz/tvoizakaz/internal/config"
	"github.com/slvrxyzz/tvoizakaz/internal/wire"
	"go.uber.org/zap"
)

type spyTransport struct {
	sent      []wire.Outbound
	connected bool
}

func (s *spyTransport) Send(evt wire.Outbound) bool {
	if !s.connected {
		return false
	}
	s.sent = append(s.sent, evt)
	return true
}

func newTestClient(connected bool) (*Client, *spyTransport) {
	spy := &spyTransport{connected: connected}
	return NewClient(spy, config.ChatConfig{SendRatePerMinute: 600}, zap.NewNop()), spy
}

func TestSendChatMessage(t *testing.T) {
	client, spy := newTestClient(true)

	if !client.SendChatMessage(7, "  hello  ") {
		t.Fatal("SendChatMessage() = false while connected")
	}
	got, ok := spy.sent[0].(wire.SendMessage)
	if !ok {
		t.Fatalf("sent %T, want SendMessage", spy.sent[0])
	}
	if got.ChatID != 7 || got.Message != "hello" {
		t.Errorf("sent = %+v, want trimmed text for chat 7", got)
	}
}

func TestSendChatMessagePreconditions(t *testing.T) {
	client, spy := newTestClient(true)

	if client.SendChatMessage(7, "   ") {
		t.Error("blank text transmitted")
	}
	if client.SendChatMessage(0, "hello") {
		t.Error("zero chat id transmitted")
	}
	if len(spy.sent) != 0 {
		t.Errorf("frames on the wire = %d, want 0", len(spy.sent))
	}
}

func TestSendWhenDisconnected(t *testing.T) {
	client, spy := newTestClient(false)

	if client.SendChatMessage(7, "hello") {
		t.Error("SendChatMessage() = true while disconnected")
	}
	if client.SendUserMessage(30, "hello") {
		t.Error("SendUserMessage() = true while disconnected")
	}
	if client.JoinChat(7) {
		t.Error("JoinChat() = true while disconnected")
	}
	if len(spy.sent) != 0 {
		t.Errorf("frames on the wire = %d, want 0", len(spy.sent))
	}
}

func TestSendUserMessage(t *testing.T) {
	client, spy := newTestClient(true)

	if !client.SendUserMessage(30, "hi") {
		t.Fatal("SendUserMessage() = false while connected")
	}
	got := spy.sent[0].(wire.UserMessage)
	if got.UserID != 30 || got.Message != "hi" {
		t.Errorf("sent = %+v", got)
	}

	if client.SendUserMessage(-1, "hi") {
		t.Error("negative user id transmitted")
	}
}

func TestHistoryRequests(t *testing.T) {
	client, spy := newTestClient(true)

	client.GetChats()
	client.GetChatMessages(7)
	client.GetChatMessagesAfter(7, 100)
	client.GetChatMessages(0)

	if len(spy.sent) != 3 {
		t.Fatalf("frames = %d, want 3", len(spy.sent))
	}
	if _, ok := spy.sent[0].(wire.GetChats); !ok {
		t.Errorf("first frame = %T, want GetChats", spy.sent[0])
	}
	if got := spy.sent[2].(wire.GetMessages); got.AfterID != 100 {
		t.Errorf("AfterID = %d, want 100", got.AfterID)
	}
}

func TestRateLimit(t *testing.T) {
	spy := &spyTransport{connected: true}
	// One message a minute with a burst of five.
	client := NewClient(spy, config.ChatConfig{SendRatePerMinute: 1}, zap.NewNop())

	sent := 0
	for i := 0; i < 10; i++ {
		if client.SendChatMessage(7, "spam") {
			sent++
		}
	}
	if sent != 5 {
		t.Errorf("transmitted = %d, want burst of 5", sent)
	}
	// Control frames are not rate limited.
	if !client.Ping() {
		t.Error("Ping() blocked by message rate limit")
	}
}

func TestRateLimitDisabled(t *testing.T) {
	spy := &spyTransport{connected: true}
	client := NewClient(spy, config.ChatConfig{SendRatePerMinute: 0}, zap.NewNop())

	for i := 0; i < 20; i++ {
		if !client.SendChatMessage(7, "burst") {
			t.Fatalf("message %d blocked with limiter disabled", i)
		}
	}
}
