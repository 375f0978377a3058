package cart

import "sync"

// Repository provides access to cart storage. Quantity validation is the
// caller's job; stock is never checked here.
type Repository interface {
	GetOrCreate(userID int) (Cart, error)
	GetWithItems(userID int) (View, error)
	AddItem(userID, productID, quantity int) (Item, error)
	UpdateItemQuantity(userID, itemID, quantity int) (*Item, error)
	RemoveItem(userID, itemID int) (bool, error)
	Clear(userID int) error
}

// InMemoryRepository backs tests.
type InMemoryRepository struct {
	mu         sync.Mutex
	nextCartID int
	nextItemID int
	carts      map[int]*View // keyed by userID
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextCartID: 1, nextItemID: 1, carts: map[int]*View{}}
}

func (r *InMemoryRepository) getOrCreateLocked(userID int) *View {
	if v, ok := r.carts[userID]; ok {
		return v
	}
	v := &View{Cart: Cart{ID: r.nextCartID, UserID: userID}, Items: []Item{}}
	r.nextCartID++
	r.carts[userID] = v
	return v
}

func (r *InMemoryRepository) GetOrCreate(userID int) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(userID).Cart, nil
}

func (r *InMemoryRepository) GetWithItems(userID int) (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.getOrCreateLocked(userID)
	out := View{Cart: v.Cart, Items: make([]Item, len(v.Items))}
	copy(out.Items, v.Items)
	return out, nil
}

func (r *InMemoryRepository) AddItem(userID, productID, quantity int) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.getOrCreateLocked(userID)
	for i := range v.Items {
		if v.Items[i].ProductID == productID {
			v.Items[i].Quantity += quantity
			return v.Items[i], nil
		}
	}
	item := Item{ID: r.nextItemID, CartID: v.Cart.ID, ProductID: productID, Quantity: quantity}
	r.nextItemID++
	v.Items = append(v.Items, item)
	return item, nil
}

func (r *InMemoryRepository) UpdateItemQuantity(userID, itemID, quantity int) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.getOrCreateLocked(userID)
	for i := range v.Items {
		if v.Items[i].ID == itemID {
			v.Items[i].Quantity = quantity
			item := v.Items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) RemoveItem(userID, itemID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.getOrCreateLocked(userID)
	for i := range v.Items {
		if v.Items[i].ID == itemID {
			v.Items = append(v.Items[:i], v.Items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.getOrCreateLocked(userID)
	v.Items = v.Items[:0]
	return nil
}
