package views

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/slvrxyzz/tvoizakaz/internal/rest"
)

// OrderPanel shows the order an offer message references, fetched from
// the REST API on demand.
type OrderPanel struct {
	*tview.TextView
}

// NewOrderPanel creates a new order panel.
func NewOrderPanel() *OrderPanel {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Order ")

	return &OrderPanel{TextView: tv}
}

// ShowLoading displays a placeholder while the fetch is in flight.
func (op *OrderPanel) ShowLoading(orderID int64) {
	op.Clear()
	op.SetTitle(fmt.Sprintf(" Order #%d ", orderID))
	fmt.Fprint(op, "[::d]Loading order...[-:-:-]\n")
}

// ShowError displays a fetch failure.
func (op *OrderPanel) ShowError(err error) {
	op.Clear()
	fmt.Fprintf(op, "[red]Could not load order: %v[-]\n", err)
}

// Show renders the fetched order.
func (op *OrderPanel) Show(order *rest.Order) {
	op.Clear()
	op.SetTitle(fmt.Sprintf(" Order #%d ", order.ID))

	fmt.Fprintf(op, "[::b]%s[-:-:-]\n\n", sanitizeForTerminal(order.Title))
	fmt.Fprintf(op, "Price:    %.0f %s\n", order.Price, order.Currency)
	if order.Term > 0 {
		fmt.Fprintf(op, "Term:     %d days\n", order.Term)
	}
	if order.Status != "" {
		fmt.Fprintf(op, "Status:   %s\n", order.Status)
	}
	if order.CategoryName != "" {
		fmt.Fprintf(op, "Category: %s\n", sanitizeForTerminal(order.CategoryName))
	}
	customer := order.CustomerName
	if customer == "" {
		customer = order.CustomerNickname
	}
	if customer != "" {
		fmt.Fprintf(op, "Customer: %s\n", sanitizeForTerminal(customer))
	}
	if order.Description != "" {
		fmt.Fprintf(op, "\n%s\n", sanitizeForTerminal(order.Description))
	}
}
