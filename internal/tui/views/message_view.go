package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/wire"
)

// MessageView displays the message history of a single chat.
type MessageView struct {
	*tview.TextView
}

// NewMessageView creates a new message view.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	return &MessageView{TextView: tv}
}

// SetChatTitle updates the border title with the partner name.
func (mv *MessageView) SetChatTitle(name string) {
	mv.SetTitle(fmt.Sprintf(" %s ", sanitizeForTerminal(name)))
}

// Update rerenders the history. Messages arrive in backend order and
// are displayed as received; loaded is false while no history snapshot
// has arrived yet.
func (mv *MessageView) Update(msgs []wire.Message, selfID int64, loaded bool) {
	mv.Clear()

	if !loaded && len(msgs) == 0 {
		fmt.Fprint(mv, "[::d]Loading messages...[-:-:-]\n")
		return
	}

	for i := range msgs {
		m := &msgs[i]
		sender := m.Sender()
		if m.SenderID == selfID {
			sender = "You"
		}
		ts := formatTimestamp(m.CreatedAt)

		fmt.Fprintf(mv, "[::b]%s[-:-:-] [::d]%s%s[-:-:-]\n", sanitizeForTerminal(sender), ts, editMark(m))
		switch {
		case m.IsDeleted:
			fmt.Fprint(mv, "[::d](message deleted)[-:-:-]\n\n")
		case m.IsOffer():
			fmt.Fprintf(mv, "[green]Offer: %.0f %s for order #%d[-]\n%s\n\n",
				m.OfferPrice, m.OfferCurrency, m.OrderID, sanitizeForTerminal(m.Text))
		default:
			fmt.Fprintf(mv, "%s\n\n", sanitizeForTerminal(m.Text))
		}
	}

	mv.ScrollToEnd()
}

func editMark(m *wire.Message) string {
	if m.IsEdited && !m.IsDeleted {
		return " (edited)"
	}
	return ""
}
