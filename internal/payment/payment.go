package payment

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrInvalidSignature = errors.New("malformed signature header")
)

// PaymentStatus values reported by the gateway on a checkout session.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Webhook event types this service reacts to.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

// Metadata is what we stash on a checkout session at creation and read back
// when the gateway confirms payment. It is the only link between the gateway
// session and our domain.
type Metadata struct {
	UserID    int
	AddressID int
}

// ParseMetadata converts the gateway's string map back into typed IDs.
// Sessions created outside this service, or with tampered metadata, fail here.
func ParseMetadata(raw map[string]string) (Metadata, error) {
	userID, err := strconv.Atoi(raw["userId"])
	if err != nil || userID <= 0 {
		return Metadata{}, fmt.Errorf("invalid userId metadata %q", raw["userId"])
	}
	addressID, err := strconv.Atoi(raw["addressId"])
	if err != nil || addressID <= 0 {
		return Metadata{}, fmt.Errorf("invalid addressId metadata %q", raw["addressId"])
	}
	return Metadata{UserID: userID, AddressID: addressID}, nil
}

func (m Metadata) toMap() map[string]string {
	return map[string]string{
		"userId":    strconv.Itoa(m.UserID),
		"addressId": strconv.Itoa(m.AddressID),
	}
}

// CheckoutSession mirrors the gateway's hosted checkout session object.
type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntentID string            `json:"payment_intent"`
	AmountTotal     int               `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
}

// LineItem is one priced line sent to the gateway. UnitAmount is in the
// currency's smallest billing unit, not in yen.
type LineItem struct {
	Name       string
	UnitAmount int
	Quantity   int
}

// CreateSessionParams carries everything needed to open a hosted checkout.
type CreateSessionParams struct {
	SuccessURL string
	CancelURL  string
	Metadata   Metadata
	LineItems  []LineItem
}

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe api error (%d %s): %s", e.StatusCode, e.Type, e.Message)
}
