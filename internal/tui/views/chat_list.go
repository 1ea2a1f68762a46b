package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/wire"
)

// ChatList is the main chat list table.
type ChatList struct {
	*tview.Table
	chats      []wire.Chat
	selfID     int64
	selectedFn func() (int, int)
}

// NewChatList creates a new chat list table.
func NewChatList() *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Chats ")

	cl := &ChatList{Table: table}
	cl.selectedFn = table.GetSelection
	return cl
}

// Update refreshes the table. selfID decides whose name labels each
// row: the other participant's.
func (cl *ChatList) Update(chats []wire.Chat, selfID int64) {
	cl.chats = chats
	cl.selfID = selfID
	cl.Clear()

	cl.SetCell(0, 0, tview.NewTableCell(" Partner").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 1, tview.NewTableCell(" Last Message").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))
	cl.SetCell(0, 2, tview.NewTableCell(" Time").SetSelectable(false).SetTextColor(tview.Styles.SecondaryTextColor))

	for i := range chats {
		chat := &chats[i]
		row := i + 1

		name := chat.PartnerOf(selfID)
		if name == "" {
			name = fmt.Sprintf("chat #%d", chat.ID)
		}

		preview, ts := "", ""
		if chat.LastMessage != nil {
			preview = previewText(chat.LastMessage)
			ts = formatTimestamp(chat.LastMessage.CreatedAt)
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+sanitizeForTerminal(name)).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+sanitizeForTerminal(preview)).SetMaxWidth(40).SetExpansion(2))
		cl.SetCell(row, 2, tview.NewTableCell(" "+ts).SetMaxWidth(12))
	}
}

// SelectedChat returns the id of the currently selected chat, zero if
// none.
func (cl *ChatList) SelectedChat() int64 {
	row, _ := cl.selectedFn()
	idx := row - 1 // account for header
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].ID
	}
	return 0
}

func previewText(m *wire.Message) string {
	switch {
	case m.IsDeleted:
		return "(deleted)"
	case m.IsOffer():
		return fmt.Sprintf("offer: %.0f %s", m.OfferPrice, m.OfferCurrency)
	default:
		return m.Text
	}
}

// formatTimestamp renders a backend RFC 3339 time compactly: clock
// time today, date otherwise. Unparseable input is shown as is.
func formatTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	t = t.Local()
	now := time.Now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04")
	}
	return t.Format("02.01")
}
