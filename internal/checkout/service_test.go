package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/ichiba-dev/ichiba-backend/internal/address"
	"github.com/ichiba-dev/ichiba-backend/internal/cart"
	"github.com/ichiba-dev/ichiba-backend/internal/notification"
	"github.com/ichiba-dev/ichiba-backend/internal/order"
	"github.com/ichiba-dev/ichiba-backend/internal/payment"
	"github.com/ichiba-dev/ichiba-backend/internal/product"
	"github.com/ichiba-dev/ichiba-backend/internal/user"
)

const (
	testUserID    = 7
	testAddressID = 3
	webhookSecret = "whsec_test"
)

type fakeGateway struct {
	sessions map[string]payment.CheckoutSession
	created  []payment.CreateSessionParams
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params payment.CreateSessionParams) (payment.CheckoutSession, error) {
	g.created = append(g.created, params)
	return payment.CheckoutSession{ID: "cs_test_new", URL: "https://checkout.test/pay/cs_test_new"}, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, sessionID string) (payment.CheckoutSession, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return payment.CheckoutSession{}, payment.ErrSessionNotFound
	}
	return session, nil
}

type fakeNotifier struct {
	sent []notification.OrderConfirmation
	err  error
}

func (n *fakeNotifier) SendOrderConfirmation(_ context.Context, confirmation notification.OrderConfirmation) error {
	n.sent = append(n.sent, confirmation)
	return n.err
}

// clearingOrderRepo mirrors the production repository contract: a successful
// Create also empties the buyer's cart.
type clearingOrderRepo struct {
	*order.InMemoryRepository
	carts cart.Repository
}

func (r *clearingOrderRepo) Create(ctx context.Context, ord order.Order, items []order.Item) (order.WithItems, error) {
	out, err := r.InMemoryRepository.Create(ctx, ord, items)
	if err != nil {
		return out, err
	}
	_ = r.carts.Clear(ord.UserID)
	return out, nil
}

type fixture struct {
	service  *Service
	products *product.InMemoryRepository
	carts    *cart.InMemoryRepository
	orders   *clearingOrderRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Dorayaki Set", Price: 1000, Stock: 5, IsActive: true},
		{ID: 2, Name: "Green Tea", Price: 2500, Stock: 3, IsActive: true},
	})
	carts := cart.NewInMemoryRepository()
	orders := &clearingOrderRepo{InMemoryRepository: order.NewInMemoryRepository(), carts: carts}
	gateway := &fakeGateway{sessions: map[string]payment.CheckoutSession{}}
	notifier := &fakeNotifier{}

	users := user.NewInMemoryRepository([]user.User{
		{ID: testUserID, Email: "taro@example.com", DisplayName: "Taro"},
	})
	addresses := address.NewInMemoryRepository(map[int][]address.Address{
		testUserID: {{ID: testAddressID, FullName: "Taro Yamada", PostalCode: "100-0001",
			Prefecture: "東京都", City: "千代田区", AddressLine: "1-1-1", PhoneNumber: "090-0000-0000"}},
	})

	service := NewService(
		cart.NewService(carts),
		product.NewService(products),
		address.NewService(addresses),
		user.NewService(users),
		orders,
		gateway,
		notifier,
		"https://shop.test/",
	)
	return &fixture{service: service, products: products, carts: carts, orders: orders, gateway: gateway, notifier: notifier}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	if _, err := f.carts.AddItem(testUserID, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := f.carts.AddItem(testUserID, 2, 1); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) paidSession(id string) payment.CheckoutSession {
	session := payment.CheckoutSession{
		ID:              id,
		Status:          "complete",
		PaymentStatus:   payment.PaymentStatusPaid,
		PaymentIntentID: "pi_test_1",
		Metadata:        map[string]string{"userId": "7", "addressId": "3"},
	}
	f.gateway.sessions[id] = session
	return session
}

func TestCreateSessionBuildsGatewayRequest(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	session, err := f.service.CreateSession(context.Background(), testUserID, testAddressID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.SessionID != "cs_test_new" || session.URL == "" {
		t.Errorf("session = %+v", session)
	}

	if len(f.gateway.created) != 1 {
		t.Fatalf("gateway calls = %d, want 1", len(f.gateway.created))
	}
	params := f.gateway.created[0]
	if params.SuccessURL != "https://shop.test/checkout/success?session_id={CHECKOUT_SESSION_ID}" {
		t.Errorf("success url = %q", params.SuccessURL)
	}
	if params.CancelURL != "https://shop.test/checkout/cancel" {
		t.Errorf("cancel url = %q", params.CancelURL)
	}
	if params.Metadata != (payment.Metadata{UserID: testUserID, AddressID: testAddressID}) {
		t.Errorf("metadata = %+v", params.Metadata)
	}
	if len(params.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(params.LineItems))
	}
	// prices in yen become gateway units of 1/100 yen
	if params.LineItems[0].UnitAmount != 100000 || params.LineItems[0].Quantity != 2 {
		t.Errorf("line 0 = %+v", params.LineItems[0])
	}
	if params.LineItems[1].UnitAmount != 250000 || params.LineItems[1].Quantity != 1 {
		t.Errorf("line 1 = %+v", params.LineItems[1])
	}

	// no order exists until payment confirms
	if _, err := f.orders.FindBySessionID(context.Background(), "cs_test_new"); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("order should not exist yet, err = %v", err)
	}
}

func TestCreateSessionRejectsForeignAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	if _, err := f.service.CreateSession(context.Background(), testUserID, 99); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("err = %v, want ErrAddressNotFound", err)
	}
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.CreateSession(context.Background(), testUserID, testAddressID); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestCreateSessionStockShortfallNeverReachesGateway(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.products.SetStock(1, 1) // cart wants 2

	_, err := f.service.CreateSession(context.Background(), testUserID, testAddressID)
	var lineErr *LineValidationError
	if !errors.As(err, &lineErr) {
		t.Fatalf("err = %v, want LineValidationError", err)
	}
	if lineErr.ProductName != "Dorayaki Set" {
		t.Errorf("product = %q", lineErr.ProductName)
	}
	if len(f.gateway.created) != 0 {
		t.Errorf("gateway calls = %d, want 0", len(f.gateway.created))
	}
}

func TestCreateSessionRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	if err := f.products.Deactivate(2); err != nil {
		t.Fatal(err)
	}

	_, err := f.service.CreateSession(context.Background(), testUserID, testAddressID)
	var lineErr *LineValidationError
	if !errors.As(err, &lineErr) {
		t.Fatalf("err = %v, want LineValidationError", err)
	}
	if lineErr.ProductName != "Green Tea" {
		t.Errorf("product = %q", lineErr.ProductName)
	}
}

func TestConfirmMaterializesPaidSession(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.paidSession("cs_test_paid")

	ord, err := f.service.ConfirmBySessionID(context.Background(), testUserID, "cs_test_paid")
	if err != nil {
		t.Fatalf("ConfirmBySessionID: %v", err)
	}
	if ord.Status != order.StatusConfirmed {
		t.Errorf("status = %q", ord.Status)
	}
	if ord.TotalAmount != 4500 {
		t.Errorf("total = %d, want 4500", ord.TotalAmount)
	}
	if len(ord.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(ord.Items))
	}
	// unit prices frozen in yen on the order lines
	if ord.Items[0].Price != 1000 || ord.Items[1].Price != 2500 {
		t.Errorf("frozen prices = %d, %d", ord.Items[0].Price, ord.Items[1].Price)
	}

	view, err := f.carts.GetWithItems(testUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 0 {
		t.Errorf("cart items after materialization = %d, want 0", len(view.Items))
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.sent))
	}
	if f.notifier.sent[0].To != "taro@example.com" || f.notifier.sent[0].TotalAmount != 4500 {
		t.Errorf("confirmation = %+v", f.notifier.sent[0])
	}
}

func TestConfirmRejectsUnpaidSession(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.gateway.sessions["cs_test_open"] = payment.CheckoutSession{
		ID:            "cs_test_open",
		Status:        "open",
		PaymentStatus: payment.PaymentStatusUnpaid,
		Metadata:      map[string]string{"userId": "7", "addressId": "3"},
	}

	if _, err := f.service.ConfirmBySessionID(context.Background(), testUserID, "cs_test_open"); !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("err = %v, want ErrPaymentNotCompleted", err)
	}
}

func TestConfirmHidesForeignSession(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.paidSession("cs_test_paid")

	if _, err := f.service.ConfirmBySessionID(context.Background(), 999, "cs_test_paid"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestConfirmUnknownSession(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.ConfirmBySessionID(context.Background(), testUserID, "cs_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestMaterializeIsIdempotentPerSession(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	meta := payment.Metadata{UserID: testUserID, AddressID: testAddressID}

	first, err := f.service.Materialize(context.Background(), "cs_test_once", "pi_1", meta)
	if err != nil {
		t.Fatalf("first Materialize: %v", err)
	}
	second, err := f.service.Materialize(context.Background(), "cs_test_once", "pi_1", meta)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("order ids differ: %d vs %d", first.ID, second.ID)
	}

	orders, err := f.orders.ListByUser(context.Background(), testUserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 {
		t.Errorf("orders = %d, want 1", len(orders))
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("notifications = %d, want 1", len(f.notifier.sent))
	}
}

// racingOrderRepo simulates a concurrent materialization that lands between
// the existence check and the insert: the first lookup misses, the insert
// hits the unique index, the second lookup finds the winner.
type racingOrderRepo struct {
	order.Repository
	missedOnce bool
}

func (r *racingOrderRepo) FindBySessionID(ctx context.Context, sessionID string) (order.WithItems, error) {
	if !r.missedOnce {
		r.missedOnce = true
		return order.WithItems{}, order.ErrNotFound
	}
	return r.Repository.FindBySessionID(ctx, sessionID)
}

// A lost insert race must resolve to the winner's order instead of an error.
func TestMaterializeLostRaceRefetchesWinner(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	meta := payment.Metadata{UserID: testUserID, AddressID: testAddressID}

	// seed the winner; the racing repo hides it from the first lookup so
	// the insert collides on the session id
	winner, err := f.orders.InMemoryRepository.Create(context.Background(), order.Order{
		UserID: testUserID, AddressID: testAddressID, TotalAmount: 4500,
		PaymentMethod: "stripe", StripeSessionID: "cs_test_race",
	}, []order.Item{{ProductID: 1, Quantity: 2, Price: 1000}})
	if err != nil {
		t.Fatal(err)
	}

	service := NewService(
		cart.NewService(f.carts),
		product.NewService(f.products),
		f.service.addresses,
		f.service.users,
		&racingOrderRepo{Repository: f.orders},
		f.gateway,
		f.notifier,
		"https://shop.test",
	)

	got, err := service.Materialize(context.Background(), "cs_test_race", "pi_1", meta)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if got.ID != winner.ID {
		t.Errorf("order id = %d, want winner %d", got.ID, winner.ID)
	}
}

func TestMaterializeEmptyCartIsNoOp(t *testing.T) {
	f := newFixture(t)
	meta := payment.Metadata{UserID: testUserID, AddressID: testAddressID}

	if _, err := f.service.Materialize(context.Background(), "cs_test_empty", "pi_1", meta); !errors.Is(err, ErrNothingToMaterialize) {
		t.Fatalf("err = %v, want ErrNothingToMaterialize", err)
	}
}

func TestMaterializeTotalMatchesLineSubtotals(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for run := 0; run < 20; run++ {
		f := newFixture(t)
		lines := rng.Intn(5) + 1
		want := 0
		for i := 0; i < lines; i++ {
			price := rng.Intn(10000) + 1
			quantity := rng.Intn(4) + 1
			p, err := f.products.Create(product.Product{
				Name: fmt.Sprintf("item-%d", i), Price: price, Stock: quantity + rng.Intn(3), IsActive: true,
			})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := f.carts.AddItem(testUserID, p.ID, quantity); err != nil {
				t.Fatal(err)
			}
			want += price * quantity
		}

		ord, err := f.service.Materialize(context.Background(), fmt.Sprintf("cs_rand_%d", run), "pi_1",
			payment.Metadata{UserID: testUserID, AddressID: testAddressID})
		if err != nil {
			t.Fatalf("run %d: Materialize: %v", run, err)
		}

		sum := 0
		for _, it := range ord.Items {
			sum += it.Price * it.Quantity
		}
		if ord.TotalAmount != want || sum != want {
			t.Errorf("run %d: total = %d, line sum = %d, want %d", run, ord.TotalAmount, sum, want)
		}
	}
}

func TestMaterializeSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	f.notifier.err = errors.New("smtp down")
	meta := payment.Metadata{UserID: testUserID, AddressID: testAddressID}

	ord, err := f.service.Materialize(context.Background(), "cs_test_mailfail", "pi_1", meta)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if ord.TotalAmount != 4500 {
		t.Errorf("total = %d", ord.TotalAmount)
	}
}

func signedEvent(t *testing.T, session payment.CheckoutSession) ([]byte, string) {
	t.Helper()
	object, err := json.Marshal(session)
	if err != nil {
		t.Fatal(err)
	}
	body := []byte(`{"id":"evt_test_1","type":"checkout.session.completed","data":{"object":` + string(object) + `}}`)
	return body, payment.SignPayload(body, webhookSecret, time.Now())
}

func TestWebhookMaterializesPaidSession(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	body, header := signedEvent(t, f.paidSession("cs_test_hook"))

	if err := f.service.HandleWebhook(context.Background(), body, header, webhookSecret); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	ord, err := f.orders.FindBySessionID(context.Background(), "cs_test_hook")
	if err != nil {
		t.Fatalf("order missing after webhook: %v", err)
	}
	if ord.TotalAmount != 4500 {
		t.Errorf("total = %d, want 4500", ord.TotalAmount)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	body, _ := signedEvent(t, f.paidSession("cs_test_hook"))
	header := payment.SignPayload(body, "whsec_wrong", time.Now())

	err := f.service.HandleWebhook(context.Background(), body, header, webhookSecret)
	if !errors.Is(err, payment.ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

// Terminal domain failures are acknowledged so the gateway stops retrying.
func TestWebhookSwallowsTerminalFailures(t *testing.T) {
	f := newFixture(t)
	// empty cart: materialization can never succeed for this delivery
	body, header := signedEvent(t, f.paidSession("cs_test_hook"))

	if err := f.service.HandleWebhook(context.Background(), body, header, webhookSecret); err != nil {
		t.Fatalf("HandleWebhook should ack terminal failure, got %v", err)
	}
}

func TestWebhookIgnoresUnpaidCompletion(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	body, header := signedEvent(t, payment.CheckoutSession{
		ID:            "cs_test_unpaid",
		PaymentStatus: payment.PaymentStatusUnpaid,
		Metadata:      map[string]string{"userId": "7", "addressId": "3"},
	})

	if err := f.service.HandleWebhook(context.Background(), body, header, webhookSecret); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if _, err := f.orders.FindBySessionID(context.Background(), "cs_test_unpaid"); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("unpaid session must not materialize, err = %v", err)
	}
}

func TestWebhookIgnoresUnknownEventTypes(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"id":"evt_test_2","type":"customer.created","data":{"object":{}}}`)
	header := payment.SignPayload(body, webhookSecret, time.Now())

	if err := f.service.HandleWebhook(context.Background(), body, header, webhookSecret); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
}
