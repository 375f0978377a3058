package review

type ServiceInterface interface {
	ListByProduct(productID int) (Summary, error)
	Create(userID, productID, rating int, comment *string) (Review, error)
	Update(userID, reviewID, rating int, comment *string) (Review, error)
	Delete(userID, reviewID int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) ListByProduct(productID int) (Summary, error) {
	return s.repo.ListByProduct(productID)
}

func (s *Service) Create(userID, productID, rating int, comment *string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrBadRating
	}
	return s.repo.Create(Review{ProductID: productID, UserID: userID, Rating: rating, Comment: comment})
}

func (s *Service) Update(userID, reviewID, rating int, comment *string) (Review, error) {
	if rating < 1 || rating > 5 {
		return Review{}, ErrBadRating
	}
	return s.repo.Update(userID, reviewID, rating, comment)
}

func (s *Service) Delete(userID, reviewID int) error {
	return s.repo.Delete(userID, reviewID)
}
