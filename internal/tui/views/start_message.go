package views

import (
	"strconv"
	"strings"

	"github.com/rivo/tview"
)

// StartMessageView is a small form that starts a direct conversation
// by target user id; the backend creates or resolves the chat.
type StartMessageView struct {
	*tview.Form
	onSend func(userID int64, text string) bool
	status *tview.TextView
}

// NewStartMessageView creates the direct-message form.
func NewStartMessageView() *StartMessageView {
	v := &StartMessageView{
		Form:   tview.NewForm(),
		status: tview.NewTextView().SetDynamicColors(true),
	}
	v.SetBorder(true).SetTitle(" New Direct Message ")

	v.AddInputField("User ID", "", 12, acceptDigits, nil)
	v.AddInputField("Message", "", 0, nil, nil)
	v.AddButton("Send", v.submit)

	return v
}

// SetOnSend sets the send callback; it returns whether the message was
// transmitted.
func (v *StartMessageView) SetOnSend(fn func(userID int64, text string) bool) {
	v.onSend = fn
}

// Reset clears the form for the next use.
func (v *StartMessageView) Reset() {
	v.field(0).SetText("")
	v.field(1).SetText("")
	v.SetFocus(0)
}

func (v *StartMessageView) submit() {
	if v.onSend == nil {
		return
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(v.field(0).GetText()), 10, 64)
	if err != nil || userID <= 0 {
		return
	}
	text := v.field(1).GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	if v.onSend(userID, text) {
		v.Reset()
	}
}

func (v *StartMessageView) field(i int) *tview.InputField {
	return v.GetFormItem(i).(*tview.InputField)
}

func acceptDigits(textToCheck string, lastChar rune) bool {
	return lastChar >= '0' && lastChar <= '9'
}
