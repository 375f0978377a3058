package recommended

import "sync"

type Repository interface {
	RecordView(userID, productID int) error
	ByAffinity(userID, limit int) ([]Item, error)
	Popular(limit int) ([]Item, error)
}

// InMemoryRepository backs tests with a view counter only; ranking queries
// return whatever the test seeds.
type InMemoryRepository struct {
	mu       sync.Mutex
	Views    map[[2]int]int // (userID, productID) -> count
	Affinity []Item
	Top      []Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{Views: map[[2]int]int{}}
}

func (r *InMemoryRepository) RecordView(userID, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Views[[2]int{userID, productID}]++
	return nil
}

func (r *InMemoryRepository) ByAffinity(userID, limit int) ([]Item, error) {
	if limit < len(r.Affinity) {
		return r.Affinity[:limit], nil
	}
	return r.Affinity, nil
}

func (r *InMemoryRepository) Popular(limit int) ([]Item, error) {
	if limit < len(r.Top) {
		return r.Top[:limit], nil
	}
	return r.Top, nil
}
