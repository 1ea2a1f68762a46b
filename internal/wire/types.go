// Package wire defines the JSON frame vocabulary of the marketplace
// chat protocol: the data transfer objects shared by both directions
// and the tagged inbound/outbound event unions.
package wire

// Message types carried in the optional type discriminant. Anything
// else renders as plain text.
const (
	MessageTypeText  = "text"
	MessageTypeOffer = "offer"
)

// Chat is a two-party conversation between a customer and an executor.
// The roles are fixed per chat; ids and names come straight from the
// backend.
type Chat struct {
	ID               int64    `json:"id"`
	CustomerID       int64    `json:"customer_id"`
	ExecutorID       int64    `json:"executor_id"`
	CustomerName     string   `json:"customer_name"`
	CustomerNickname string   `json:"customer_nickname"`
	ExecutorName     string   `json:"executor_name"`
	ExecutorNickname string   `json:"executor_nickname"`
	CreatedAt        string   `json:"created_at"`
	LastMessage      *Message `json:"last_message,omitempty"`
}

// Message is one chat message. Offer messages additionally carry a
// price proposal bound to an order.
type Message struct {
	ID             int64   `json:"id"`
	ChatID         int64   `json:"chat_id,omitempty"`
	Text           string  `json:"text"`
	SenderID       int64   `json:"sender_id"`
	SenderName     string  `json:"sender_name"`
	SenderNickname string  `json:"sender_nickname"`
	CreatedAt      string  `json:"created_at"`
	Type           string  `json:"type,omitempty"`
	OrderID        int64   `json:"order_id,omitempty"`
	OfferPrice     float64 `json:"offer_price,omitempty"`
	OfferCurrency  string  `json:"offer_currency,omitempty"`
	FileName       string  `json:"file_name,omitempty"`
	FileSize       int64   `json:"file_size,omitempty"`
	IsEdited       bool    `json:"is_edited,omitempty"`
	IsDeleted      bool    `json:"is_deleted,omitempty"`
	EditedAt       string  `json:"edited_at,omitempty"`
}

// IsOffer reports whether the message is a price proposal tied to an
// order. Offer frames without an order id are rendered as plain text.
func (m *Message) IsOffer() bool {
	return m.Type == MessageTypeOffer && m.OrderID > 0
}

// Sender returns the display name of the message author, falling back
// to the nickname when the name is empty.
func (m *Message) Sender() string {
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.SenderNickname
}

// PartnerOf returns the name of the chat participant that is not the
// given user.
func (c *Chat) PartnerOf(userID int64) string {
	if userID == c.CustomerID {
		if c.ExecutorName != "" {
			return c.ExecutorName
		}
		return c.ExecutorNickname
	}
	if c.CustomerName != "" {
		return c.CustomerName
	}
	return c.CustomerNickname
}
