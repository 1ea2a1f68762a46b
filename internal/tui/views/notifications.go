package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/state"
)

// NotificationView lists pending notifications, newest first. Opening
// the view acknowledges them all.
type NotificationView struct {
	*tview.TextView
}

// NewNotificationView creates a new notification view.
func NewNotificationView() *NotificationView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Notifications ")

	return &NotificationView{TextView: tv}
}

// Update rerenders the queue.
func (nv *NotificationView) Update(notes []state.Notification) {
	nv.Clear()

	if len(notes) == 0 {
		fmt.Fprint(nv, "[::d]No notifications.[-:-:-]\n")
		return
	}

	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		fmt.Fprintf(nv, "[::d]%s[-:-:-]\n%s\n\n",
			n.ReceivedAt.Format("15:04:05"),
			sanitizeForTerminal(n.Text))
	}
}
