package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/status"
)

// StatusBar displays the profile, connection status, unread badge, key
// hints for the current page and a transient flash message.
type StatusBar struct {
	*tview.TextView
	profile string
	conn    status.State
	unread  int
	hints   string
	flash   string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, conn: status.Disconnected}
}

// SetProfile updates the profile name display.
func (sb *StatusBar) SetProfile(name string) {
	sb.profile = name
	sb.render()
}

// SetConnStatus updates the connection indicator.
func (sb *StatusBar) SetConnStatus(s status.State) {
	sb.conn = s
	sb.render()
}

// SetUnread updates the notification badge.
func (sb *StatusBar) SetUnread(count int) {
	sb.unread = count
	sb.render()
}

// SetHints updates the key hints for the front page.
func (sb *StatusBar) SetHints(hints []string) {
	sb.hints = strings.Join(hints, "  ")
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	badge := ""
	if sb.unread > 0 {
		badge = fmt.Sprintf(" | [yellow]%d new[-]", sb.unread)
	}

	clock := time.Now().Format("15:04")

	line := fmt.Sprintf(" [::b]%s[-:-:-] | %s%s | %s", sb.profile, connLabel(sb.conn), badge, clock)
	if sb.hints != "" {
		line += fmt.Sprintf(" | [::d]%s[-:-:-]", sb.hints)
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb, line)
}

func connLabel(s status.State) string {
	switch s {
	case status.Connected:
		return "[green]connected[-]"
	case status.Connecting:
		return "[yellow]connecting[-]"
	case status.Error:
		return "[red]error[-]"
	default:
		return "[red]disconnected[-]"
	}
}
