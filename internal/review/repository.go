package review

import "sync"

type Repository interface {
	ListByProduct(productID int) (Summary, error)
	Create(r Review) (Review, error)
	Update(userID, reviewID int, rating int, comment *string) (Review, error)
	Delete(userID, reviewID int) error
}

type InMemoryRepository struct {
	mu      sync.Mutex
	nextID  int
	reviews []Review
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) ListByProduct(productID int) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := Summary{Reviews: []Review{}}
	total := 0
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out.Reviews = append(out.Reviews, rv)
			total += rv.Rating
		}
	}
	out.ReviewCount = len(out.Reviews)
	if out.ReviewCount > 0 {
		out.AverageRating = float64(total) / float64(out.ReviewCount)
	}
	return out, nil
}

func (r *InMemoryRepository) Create(rv Review) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.ProductID == rv.ProductID && existing.UserID == rv.UserID {
			return Review{}, ErrAlreadyExists
		}
	}
	rv.ID = r.nextID
	r.nextID++
	r.reviews = append(r.reviews, rv)
	return rv, nil
}

func (r *InMemoryRepository) Update(userID, reviewID int, rating int, comment *string) (Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if r.reviews[i].ID == reviewID && r.reviews[i].UserID == userID {
			r.reviews[i].Rating = rating
			r.reviews[i].Comment = comment
			return r.reviews[i], nil
		}
	}
	return Review{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(userID, reviewID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reviews {
		if r.reviews[i].ID == reviewID && r.reviews[i].UserID == userID {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
