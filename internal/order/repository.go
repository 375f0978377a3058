package order

import (
	"context"
	"sort"
	"sync"

	"github.com/lib/pq"
)

// Repository persists orders. Create runs the whole materialization as one
// unit: order row, order items, stock decrements and cart clearing either all
// happen or none do.
type Repository interface {
	Create(ctx context.Context, ord Order, items []Item) (WithItems, error)
	FindBySessionID(ctx context.Context, sessionID string) (WithItems, error)
	FindByID(ctx context.Context, userID, orderID int) (WithItems, error)
	ListByUser(ctx context.Context, userID int) ([]Order, error)
}

// InMemoryRepository backs tests. Stock accounting is left to the caller;
// it only enforces the one-order-per-session guarantee.
type InMemoryRepository struct {
	mu        sync.RWMutex
	nextID    int
	orders    map[int]WithItems
	bySession map[string]int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:    1,
		orders:    map[int]WithItems{},
		bySession: map[string]int{},
	}
}

func (r *InMemoryRepository) Create(_ context.Context, ord Order, items []Item) (WithItems, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ord.StripeSessionID != "" {
		if _, ok := r.bySession[ord.StripeSessionID]; ok {
			return WithItems{}, &pq.Error{Code: "23505", Constraint: "orders_stripe_session_id_key"}
		}
	}

	ord.ID = r.nextID
	r.nextID++
	ord.Status = StatusConfirmed

	stored := make([]Item, len(items))
	for i, it := range items {
		it.ID = i + 1
		it.OrderID = ord.ID
		stored[i] = it
	}

	out := WithItems{Order: ord, Items: stored}
	r.orders[ord.ID] = out
	if ord.StripeSessionID != "" {
		r.bySession[ord.StripeSessionID] = ord.ID
	}
	return out, nil
}

func (r *InMemoryRepository) FindBySessionID(_ context.Context, sessionID string) (WithItems, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySession[sessionID]
	if !ok {
		return WithItems{}, ErrNotFound
	}
	return r.orders[id], nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, userID, orderID int) (WithItems, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ord, ok := r.orders[orderID]
	if !ok || ord.UserID != userID {
		return WithItems{}, ErrNotFound
	}
	return ord, nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord.Order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
