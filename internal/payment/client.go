package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the gateway surface checkout depends on. Tests substitute a stub.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
}

// StripeClient talks to the Stripe REST API with form-encoded requests.
type StripeClient struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

func NewStripeClient(secretKey, baseURL string) *StripeClient {
	return &StripeClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

var _ Client = (*StripeClient)(nil)

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CreateSessionParams) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for key, value := range params.Metadata.toMap() {
		form.Set("metadata["+key+"]", value)
	}
	for i, item := range params.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", "jpy")
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(item.UnitAmount))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Retries of the same HTTP call must not open two sessions.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	return c.do(req)
}

func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return CheckoutSession{}, err
	}
	return c.do(req)
}

func (c *StripeClient) do(req *http.Request) (CheckoutSession, error) {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return CheckoutSession{}, ErrSessionNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return CheckoutSession{}, &APIError{
			StatusCode: resp.StatusCode,
			Type:       body.Error.Type,
			Message:    body.Error.Message,
		}
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode stripe response: %w", err)
	}
	return session, nil
}
