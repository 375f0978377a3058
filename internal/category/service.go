package category

type ServiceInterface interface {
	List() ([]Category, error)
	GetByID(id int) (Category, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) List() ([]Category, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Category, error) {
	if id <= 0 {
		return Category{}, ErrNotFound
	}
	return s.repo.GetByID(id)
}
