package wire

import "testing"

func TestEncodeOutbound(t *testing.T) {
	tests := []struct {
		name string
		evt  Outbound
		want string
	}{
		{
			name: "join chat",
			evt:  JoinChat{ChatID: 7},
			want: `{"type":"joinChat","chat_id":7}`,
		},
		{
			name: "leave chat",
			evt:  LeaveChat{ChatID: 7},
			want: `{"type":"leaveChat","chat_id":7}`,
		},
		{
			name: "send message",
			evt:  SendMessage{ChatID: 7, Message: "hello"},
			want: `{"type":"sendMessage","chat_id":7,"message":"hello"}`,
		},
		{
			name: "get chats",
			evt:  GetChats{},
			want: `{"type":"getChats"}`,
		},
		{
			name: "get messages",
			evt:  GetMessages{ChatID: 7},
			want: `{"type":"getMessages","chat_id":7}`,
		},
		{
			name: "get messages after cursor",
			evt:  GetMessages{ChatID: 7, AfterID: 100},
			want: `{"type":"getMessages","chat_id":7,"after_id":100}`,
		},
		{
			name: "user message",
			evt:  UserMessage{UserID: 30, Message: "hi there"},
			want: `{"type":"user_message","user_id":30,"message":"hi there"}`,
		},
		{
			name: "ping",
			evt:  Ping{},
			want: `{"type":"ping"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeOutbound(tt.evt)
			if err != nil {
				t.Fatalf("EncodeOutbound() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("EncodeOutbound() = %s, want %s", got, tt.want)
			}
		})
	}
}
