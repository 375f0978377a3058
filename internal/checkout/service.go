package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ichiba-dev/ichiba-backend/internal/address"
	"github.com/ichiba-dev/ichiba-backend/internal/cart"
	"github.com/ichiba-dev/ichiba-backend/internal/database"
	"github.com/ichiba-dev/ichiba-backend/internal/notification"
	"github.com/ichiba-dev/ichiba-backend/internal/order"
	"github.com/ichiba-dev/ichiba-backend/internal/payment"
	"github.com/ichiba-dev/ichiba-backend/internal/product"
	"github.com/ichiba-dev/ichiba-backend/internal/user"
)

// Service orchestrates the checkout flow: opening hosted sessions against the
// payment gateway and, once the gateway reports payment, materializing the
// cart into an order exactly once.
type Service struct {
	carts       cart.ServiceInterface
	products    product.ServiceInterface
	addresses   address.ServiceInterface
	users       user.ServiceInterface
	orders      order.Repository
	gateway     payment.Client
	notifier    notification.Sender
	frontendURL string
}

func NewService(
	carts cart.ServiceInterface,
	products product.ServiceInterface,
	addresses address.ServiceInterface,
	users user.ServiceInterface,
	orders order.Repository,
	gateway payment.Client,
	notifier notification.Sender,
	frontendURL string,
) *Service {
	return &Service{
		carts:       carts,
		products:    products,
		addresses:   addresses,
		users:       users,
		orders:      orders,
		gateway:     gateway,
		notifier:    notifier,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// CreateSession validates the cart against live product state and opens a
// hosted checkout session. No order row is written here; orders exist only
// after the gateway confirms payment.
func (s *Service) CreateSession(ctx context.Context, userID, addressID int) (Session, error) {
	if _, err := s.addresses.GetByID(userID, addressID); err != nil {
		if err == address.ErrNotFound {
			return Session{}, ErrAddressNotFound
		}
		return Session{}, err
	}

	view, err := s.carts.GetWithItems(userID)
	if err != nil {
		return Session{}, err
	}
	if len(view.Items) == 0 {
		return Session{}, ErrEmptyCart
	}

	lineItems := make([]payment.LineItem, 0, len(view.Items))
	for _, item := range view.Items {
		p, err := s.validateLine(item.ProductID, item.Quantity)
		if err != nil {
			return Session{}, err
		}
		lineItems = append(lineItems, payment.LineItem{
			Name: p.Name,
			// gateway billing unit is 1/100 yen
			UnitAmount: p.Price * 100,
			Quantity:   item.Quantity,
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CreateSessionParams{
		SuccessURL: s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.frontendURL + "/checkout/cancel",
		Metadata:   payment.Metadata{UserID: userID, AddressID: addressID},
		LineItems:  lineItems,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	return Session{SessionID: session.ID, URL: session.URL}, nil
}

// ConfirmBySessionID is the client-driven confirmation path. It asks the
// gateway for the session's current state, so a forged or unpaid session id
// cannot produce an order.
func (s *Service) ConfirmBySessionID(ctx context.Context, userID int, sessionID string) (order.WithItems, error) {
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if err == payment.ErrSessionNotFound {
			return order.WithItems{}, ErrSessionNotFound
		}
		return order.WithItems{}, err
	}
	if session.PaymentStatus != payment.PaymentStatusPaid {
		return order.WithItems{}, ErrPaymentNotCompleted
	}

	meta, err := payment.ParseMetadata(session.Metadata)
	if err != nil {
		return order.WithItems{}, ErrSessionNotFound
	}
	// Sessions belonging to other users are indistinguishable from missing.
	if meta.UserID != userID {
		return order.WithItems{}, ErrSessionNotFound
	}

	return s.Materialize(ctx, session.ID, session.PaymentIntentID, meta)
}

// Materialize turns the user's current cart into a confirmed order for a paid
// session. It is idempotent on session id: the webhook push and the client
// confirm pull race freely and exactly one order results.
func (s *Service) Materialize(ctx context.Context, sessionID, paymentIntentID string, meta payment.Metadata) (order.WithItems, error) {
	if existing, err := s.orders.FindBySessionID(ctx, sessionID); err == nil {
		return existing, nil
	} else if err != order.ErrNotFound {
		return order.WithItems{}, err
	}

	view, err := s.carts.GetWithItems(meta.UserID)
	if err != nil {
		return order.WithItems{}, err
	}
	if len(view.Items) == 0 {
		return order.WithItems{}, ErrNothingToMaterialize
	}

	items := make([]order.Item, 0, len(view.Items))
	total := 0
	for _, line := range view.Items {
		p, err := s.validateLine(line.ProductID, line.Quantity)
		if err != nil {
			return order.WithItems{}, err
		}
		items = append(items, order.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
		total += p.Price * line.Quantity
	}

	created, err := s.orders.Create(ctx, order.Order{
		UserID:                meta.UserID,
		AddressID:             meta.AddressID,
		TotalAmount:           total,
		PaymentMethod:         "stripe",
		StripeSessionID:       sessionID,
		StripePaymentIntentID: paymentIntentID,
	}, items)
	if err != nil {
		// Lost the race against a concurrent materialization of the
		// same session. The winner's order is the answer.
		if database.IsUniqueViolation(err) {
			return s.orders.FindBySessionID(ctx, sessionID)
		}
		return order.WithItems{}, err
	}

	s.sendConfirmation(ctx, created)
	return created, nil
}

// HandleWebhook processes a gateway push. Signature failures are returned to
// the handler; domain failures after a verified payment are logged and
// swallowed so the gateway stops retrying a delivery that can never succeed.
func (s *Service) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader, webhookSecret string) error {
	event, err := payment.ConstructEvent(rawBody, signatureHeader, webhookSecret)
	if err != nil {
		return err
	}

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		session, err := event.Session()
		if err != nil {
			log.Printf("webhook %s: undecodable session payload: %v", event.ID, err)
			return nil
		}
		if session.PaymentStatus != payment.PaymentStatusPaid {
			log.Printf("webhook %s: session %s completed but not paid", event.ID, session.ID)
			return nil
		}
		meta, err := payment.ParseMetadata(session.Metadata)
		if err != nil {
			log.Printf("webhook %s: session %s has bad metadata: %v", event.ID, session.ID, err)
			return nil
		}

		_, err = s.Materialize(ctx, session.ID, session.PaymentIntentID, meta)
		switch {
		case err == nil:
			return nil
		case database.IsTransient(err):
			// Worth a gateway retry.
			return err
		default:
			log.Printf("webhook %s: materialize session %s: %v", event.ID, session.ID, err)
			return nil
		}
	case payment.EventPaymentIntentSucceeded:
		log.Printf("webhook %s: payment intent succeeded", event.ID)
		return nil
	case payment.EventPaymentIntentFailed:
		log.Printf("webhook %s: payment intent failed", event.ID)
		return nil
	default:
		return nil
	}
}

func (s *Service) validateLine(productID, quantity int) (product.Product, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		if err == product.ErrNotFound {
			return product.Product{}, &LineValidationError{ProductName: fmt.Sprintf("product %d", productID), Reason: "no longer available"}
		}
		return product.Product{}, err
	}
	if !p.IsActive {
		return product.Product{}, &LineValidationError{ProductName: p.Name, Reason: "no longer available"}
	}
	if p.Stock < quantity {
		return product.Product{}, &LineValidationError{ProductName: p.Name, Reason: fmt.Sprintf("only %d left in stock", p.Stock)}
	}
	return p, nil
}

func (s *Service) sendConfirmation(ctx context.Context, ord order.WithItems) {
	u, err := s.users.GetByID(ord.UserID)
	if err != nil {
		log.Printf("order %d: lookup user for confirmation: %v", ord.ID, err)
		return
	}
	addr, err := s.addresses.GetByID(ord.UserID, ord.AddressID)
	if err != nil {
		log.Printf("order %d: lookup address for confirmation: %v", ord.ID, err)
		return
	}

	lines := make([]notification.OrderLine, 0, len(ord.Items))
	for _, it := range ord.Items {
		lines = append(lines, notification.OrderLine{Name: it.ProductName, Quantity: it.Quantity, Price: it.Price})
	}

	err = s.notifier.SendOrderConfirmation(ctx, notification.OrderConfirmation{
		To:          u.Email,
		DisplayName: u.DisplayName,
		OrderID:     ord.ID,
		Lines:       lines,
		TotalAmount: ord.TotalAmount,
		ShipTo:      formatShipTo(addr),
	})
	if err != nil {
		log.Printf("order %d: send confirmation: %v", ord.ID, err)
	}
}

func formatShipTo(a address.Address) string {
	parts := []string{"〒" + a.PostalCode, a.Prefecture + a.City + a.AddressLine}
	if a.Building != nil && *a.Building != "" {
		parts = append(parts, *a.Building)
	}
	parts = append(parts, a.FullName)
	return strings.Join(parts, " ")
}
