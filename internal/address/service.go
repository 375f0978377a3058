package address

// ServiceInterface lets checkout verify address ownership without importing
// the concrete service.
type ServiceInterface interface {
	List(userID int) ([]Address, error)
	GetByID(userID, addressID int) (Address, error)
	Create(a Address) (Address, error)
	Update(userID, addressID int, a Address) (Address, error)
	Delete(userID, addressID int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) List(userID int) ([]Address, error) {
	return s.repo.List(userID)
}

// GetByID returns ErrNotFound for addresses that exist but belong to another
// user; callers use it as an ownership check.
func (s *Service) GetByID(userID, addressID int) (Address, error) {
	if userID <= 0 || addressID <= 0 {
		return Address{}, ErrNotFound
	}
	return s.repo.GetByID(userID, addressID)
}

func (s *Service) Create(a Address) (Address, error) {
	return s.repo.Create(a)
}

func (s *Service) Update(userID, addressID int, a Address) (Address, error) {
	return s.repo.Update(userID, addressID, a)
}

func (s *Service) Delete(userID, addressID int) error {
	return s.repo.Delete(userID, addressID)
}
