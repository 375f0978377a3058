package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateCheckoutSessionSendsFormEncodedRequest(t *testing.T) {
	var captured *http.Request
	var form map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		form = r.PostForm
		json.NewEncoder(w).Encode(map[string]any{
			"id":             "cs_test_123",
			"url":            "https://checkout.stripe.test/pay/cs_test_123",
			"status":         "open",
			"payment_status": "unpaid",
		})
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_key", srv.URL)
	session, err := client.CreateCheckoutSession(context.Background(), CreateSessionParams{
		SuccessURL: "https://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.test/cart",
		Metadata:   Metadata{UserID: 7, AddressID: 3},
		LineItems: []LineItem{
			{Name: "Dorayaki Set", UnitAmount: 100000, Quantity: 2},
			{Name: "Green Tea", UnitAmount: 250000, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if session.ID != "cs_test_123" {
		t.Errorf("session id = %q", session.ID)
	}

	if captured.Method != http.MethodPost || captured.URL.Path != "/v1/checkout/sessions" {
		t.Errorf("request = %s %s", captured.Method, captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk_test_key" {
		t.Errorf("authorization = %q", got)
	}
	if captured.Header.Get("Idempotency-Key") == "" {
		t.Error("missing Idempotency-Key header")
	}

	want := map[string]string{
		"mode":                "payment",
		"metadata[userId]":    "7",
		"metadata[addressId]": "3",
		"line_items[0][price_data][currency]":           "jpy",
		"line_items[0][price_data][unit_amount]":        "100000",
		"line_items[0][price_data][product_data][name]": "Dorayaki Set",
		"line_items[0][quantity]":                       "2",
		"line_items[1][price_data][unit_amount]":        "250000",
		"line_items[1][quantity]":                       "1",
	}
	for key, value := range want {
		if got := form[key]; len(got) != 1 || got[0] != value {
			t.Errorf("form[%q] = %v, want %q", key, got, value)
		}
	}
}

func TestGetCheckoutSessionNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_key", srv.URL)
	_, err := client.GetCheckoutSession(context.Background(), "cs_missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "invalid_request_error", "message": "missing line items"},
		})
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_key", srv.URL)
	_, err := client.CreateCheckoutSession(context.Background(), CreateSessionParams{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "missing line items" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
