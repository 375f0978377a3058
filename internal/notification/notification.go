package notification

import "context"

// OrderLine is one purchased line rendered into the confirmation mail.
type OrderLine struct {
	Name     string
	Quantity int
	Price    int
}

// OrderConfirmation carries everything the confirmation template needs.
type OrderConfirmation struct {
	To          string
	DisplayName string
	OrderID     int
	Lines       []OrderLine
	TotalAmount int
	ShipTo      string
}

// Sender delivers buyer-facing notifications. Failures never affect order
// state; callers log and move on.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, confirmation OrderConfirmation) error
}

// NopSender is used when email delivery is disabled.
type NopSender struct{}

func (NopSender) SendOrderConfirmation(context.Context, OrderConfirmation) error { return nil }
