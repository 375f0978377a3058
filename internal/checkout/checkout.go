package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrAddressNotFound      = errors.New("shipping address not found")
	ErrSessionNotFound      = errors.New("checkout session not found")
	ErrPaymentNotCompleted  = errors.New("payment has not completed")
	ErrNothingToMaterialize = errors.New("no cart lines to materialize")
)

// LineValidationError marks one cart line that blocks checkout: the product
// went inactive or stock dropped below the requested quantity since the line
// was added.
type LineValidationError struct {
	ProductName string
	Reason      string
}

func (e *LineValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.ProductName, e.Reason)
}

// Session is what the client needs to hand the buyer off to hosted checkout.
type Session struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
