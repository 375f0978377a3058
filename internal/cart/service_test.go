package cart

import "testing"

func TestAddItemValidatesQuantity(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	if _, err := service.AddItem(7, 1, 0); err != ErrBadQuantity {
		t.Fatalf("err = %v, want ErrBadQuantity", err)
	}
	if _, err := service.AddItem(7, 1, -2); err != ErrBadQuantity {
		t.Fatalf("err = %v, want ErrBadQuantity", err)
	}
	if _, err := service.AddItem(0, 1, 1); err != ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	if _, err := service.AddItem(7, 1, 2); err != nil {
		t.Fatal(err)
	}
	item, err := service.AddItem(7, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if item.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", item.Quantity)
	}

	view, err := service.GetWithItems(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 1 {
		t.Errorf("lines = %d, want 1", len(view.Items))
	}
}

func TestUpdateItemQuantityUnknownLine(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	item, err := service.UpdateItemQuantity(7, 999, 2)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if item != nil {
		t.Errorf("item = %+v, want nil for unknown line", item)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	if _, err := service.AddItem(7, 1, 2); err != nil {
		t.Fatal(err)
	}
	if err := service.Clear(7); err != nil {
		t.Fatal(err)
	}
	if err := service.Clear(7); err != nil {
		t.Fatalf("second Clear: %v", err)
	}

	view, err := service.GetWithItems(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 0 {
		t.Errorf("lines = %d, want 0", len(view.Items))
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	service := NewService(NewInMemoryRepository())

	if _, err := service.AddItem(7, 1, 2); err != nil {
		t.Fatal(err)
	}
	view, err := service.GetWithItems(8)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 0 {
		t.Errorf("user 8 cart lines = %d, want 0", len(view.Items))
	}
}
