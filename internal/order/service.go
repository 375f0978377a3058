package order

import "context"

type ServiceInterface interface {
	List(ctx context.Context, userID int) ([]Order, error)
	GetByID(ctx context.Context, userID, orderID int) (WithItems, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) List(ctx context.Context, userID int) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetByID is user-scoped: an order belonging to another user is reported as
// not found rather than forbidden.
func (s *Service) GetByID(ctx context.Context, userID, orderID int) (WithItems, error) {
	return s.repo.FindByID(ctx, userID, orderID)
}
