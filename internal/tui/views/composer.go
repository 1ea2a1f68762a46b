package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the text input for sending messages. The input clears
// only when the send callback confirms the message actually left the
// process, so nothing typed is lost to a dead connection.
type Composer struct {
	*tview.InputField
	onSend func(text string) bool
}

// NewComposer creates a new message composer.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || c.onSend == nil {
			return
		}
		text := c.GetText()
		if text != "" && c.onSend(text) {
			c.SetText("")
		}
	})

	return c
}

// SetOnSend sets the send callback. It must return whether the
// message was transmitted.
func (c *Composer) SetOnSend(fn func(text string) bool) {
	c.onSend = fn
}
