package recommended

const defaultLimit = 8

type ServiceInterface interface {
	RecordView(userID, productID int) error
	ForUser(userID int) ([]Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) RecordView(userID, productID int) error {
	if userID <= 0 || productID <= 0 {
		return nil
	}
	return s.repo.RecordView(userID, productID)
}

// ForUser prefers category-affinity picks and falls back to overall best
// sellers for users with no browsing history.
func (s *Service) ForUser(userID int) ([]Item, error) {
	items, err := s.repo.ByAffinity(userID, defaultLimit)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}
	return s.repo.Popular(defaultLimit)
}
