package wire

import (
	"reflect"
	"testing"
)

func TestParseInbound(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  Inbound
	}{
		{
			name:  "connection established",
			frame: `{"type":"connection_established","user_id":42,"timestamp":"2026-02-10T12:00:00Z"}`,
			want:  ConnectionEstablished{UserID: 42, Timestamp: "2026-02-10T12:00:00Z"},
		},
		{
			name:  "chat list",
			frame: `{"type":"chats","chats":[{"id":1,"customer_id":10,"executor_id":20,"customer_name":"Ivan"}]}`,
			want: ChatList{Chats: []Chat{
				{ID: 1, CustomerID: 10, ExecutorID: 20, CustomerName: "Ivan"},
			}},
		},
		{
			name:  "empty chat list",
			frame: `{"type":"chats","chats":[]}`,
			want:  ChatList{Chats: []Chat{}},
		},
		{
			name:  "malformed chat list degrades to empty",
			frame: `{"type":"chats","chats":"oops"}`,
			want:  ChatList{Chats: []Chat{}},
		},
		{
			name:  "missing chat list degrades to empty",
			frame: `{"type":"chats"}`,
			want:  ChatList{Chats: []Chat{}},
		},
		{
			name:  "message history",
			frame: `{"type":"messages","chat_id":7,"messages":[{"id":101,"text":"hi","sender_id":10}]}`,
			want: MessageHistory{ChatID: 7, Messages: []Message{
				{ID: 101, Text: "hi", SenderID: 10},
			}},
		},
		{
			name:  "history with legacy chatId alias",
			frame: `{"type":"messages","chatId":7,"messages":[]}`,
			want:  MessageHistory{ChatID: 7, Messages: []Message{}},
		},
		{
			name:  "new message",
			frame: `{"type":"new_message","chat_id":7,"message":{"id":102,"text":"hello","sender_id":20}}`,
			want: NewMessage{ChatID: 7, Message: Message{
				ID: 102, Text: "hello", SenderID: 20,
			}},
		},
		{
			name:  "new message with legacy chatId alias",
			frame: `{"type":"new_message","chatId":7,"message":{"id":102,"text":"hello"}}`,
			want:  NewMessage{ChatID: 7, Message: Message{ID: 102, Text: "hello"}},
		},
		{
			name:  "new message without chat reference",
			frame: `{"type":"new_message","message":{"id":102,"text":"hello"}}`,
			want:  NewMessage{ChatID: 0, Message: Message{ID: 102, Text: "hello"}},
		},
		{
			name:  "new message without body",
			frame: `{"type":"new_message","chat_id":7}`,
			want:  NewMessage{},
		},
		{
			name:  "offer message",
			frame: `{"type":"new_message","chat_id":7,"message":{"id":103,"text":"deal?","type":"offer","order_id":55,"offer_price":1500,"offer_currency":"RUB"}}`,
			want: NewMessage{ChatID: 7, Message: Message{
				ID: 103, Text: "deal?", Type: MessageTypeOffer,
				OrderID: 55, OfferPrice: 1500, OfferCurrency: "RUB",
			}},
		},
		{
			name:  "notification keeps raw frame",
			frame: `{"type":"notification","title":"New order response"}`,
			want:  Notification{Raw: `{"type":"notification","title":"New order response"}`},
		},
		{
			name:  "moderation with sanitized text",
			frame: `{"type":"moderation","message":"bad words","sanitized":"*** words"}`,
			want: Moderation{
				Message:   "bad words",
				Sanitized: "*** words",
				Raw:       `{"type":"moderation","message":"bad words","sanitized":"*** words"}`,
			},
		},
		{
			name:  "moderation falls back to message",
			frame: `{"type":"moderation","message":"held for review"}`,
			want: Moderation{
				Message:   "held for review",
				Sanitized: "held for review",
				Raw:       `{"type":"moderation","message":"held for review"}`,
			},
		},
		{
			name:  "server error",
			frame: `{"type":"error","message":"chat not found"}`,
			want:  ServerError{Message: "chat not found"},
		},
		{
			name:  "pong",
			frame: `{"type":"pong","timestamp":"t1"}`,
			want:  Pong{Timestamp: "t1"},
		},
		{
			name:  "unknown tag is tolerated",
			frame: `{"type":"typing_indicator","chat_id":7}`,
			want:  Unknown{Type: "typing_indicator"},
		},
		{
			name:  "missing tag is tolerated",
			frame: `{"user_id":1}`,
			want:  Unknown{Type: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInbound([]byte(tt.frame))
			if err != nil {
				t.Fatalf("ParseInbound() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseInbound() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseInboundMalformed(t *testing.T) {
	frames := []string{
		"this is not json",
		"",
		`{"type":`,
		`[1,2,3]`,
	}
	for _, frame := range frames {
		if _, err := ParseInbound([]byte(frame)); err == nil {
			t.Errorf("ParseInbound(%q) expected error", frame)
		}
	}
}

func TestMessageIsOffer(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"offer with order", Message{Type: MessageTypeOffer, OrderID: 5}, true},
		{"offer without order", Message{Type: MessageTypeOffer}, false},
		{"plain text", Message{Type: MessageTypeText, OrderID: 5}, false},
		{"untyped", Message{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.IsOffer(); got != tt.want {
				t.Errorf("IsOffer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChatPartnerOf(t *testing.T) {
	chat := Chat{
		ID: 1, CustomerID: 10, ExecutorID: 20,
		CustomerName: "Ivan", ExecutorNickname: "masterpro",
	}
	if got := chat.PartnerOf(10); got != "masterpro" {
		t.Errorf("PartnerOf(customer) = %q, want executor nickname", got)
	}
	if got := chat.PartnerOf(20); got != "Ivan" {
		t.Errorf("PartnerOf(executor) = %q, want customer name", got)
	}
}
