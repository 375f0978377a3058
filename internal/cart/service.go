package cart

// ServiceInterface is what the checkout orchestrator depends on.
type ServiceInterface interface {
	GetWithItems(userID int) (View, error)
	AddItem(userID, productID, quantity int) (Item, error)
	UpdateItemQuantity(userID, itemID, quantity int) (*Item, error)
	RemoveItem(userID, itemID int) (bool, error)
	Clear(userID int) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var _ ServiceInterface = (*Service)(nil)

func (s *Service) GetWithItems(userID int) (View, error) {
	if userID <= 0 {
		return View{}, ErrUserNotFound
	}
	return s.repo.GetWithItems(userID)
}

// AddItem increments an existing line or inserts a new one. Stock is not
// checked here; staleness is caught at checkout and again at materialization.
func (s *Service) AddItem(userID, productID, quantity int) (Item, error) {
	if userID <= 0 {
		return Item{}, ErrUserNotFound
	}
	if quantity <= 0 {
		return Item{}, ErrBadQuantity
	}
	return s.repo.AddItem(userID, productID, quantity)
}

func (s *Service) UpdateItemQuantity(userID, itemID, quantity int) (*Item, error) {
	if userID <= 0 {
		return nil, ErrUserNotFound
	}
	if quantity <= 0 {
		return nil, ErrBadQuantity
	}
	return s.repo.UpdateItemQuantity(userID, itemID, quantity)
}

func (s *Service) RemoveItem(userID, itemID int) (bool, error) {
	if userID <= 0 {
		return false, ErrUserNotFound
	}
	return s.repo.RemoveItem(userID, itemID)
}

func (s *Service) Clear(userID int) error {
	if userID <= 0 {
		return ErrUserNotFound
	}
	return s.repo.Clear(userID)
}
