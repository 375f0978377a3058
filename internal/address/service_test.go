package address

import "testing"

func TestGetByIDIsOwnerScoped(t *testing.T) {
	repo := NewInMemoryRepository(map[int][]Address{
		7: {{ID: 3, FullName: "Taro Yamada", PostalCode: "100-0001", Prefecture: "東京都",
			City: "千代田区", AddressLine: "1-1-1", PhoneNumber: "090-0000-0000"}},
	})
	service := NewService(repo)

	if _, err := service.GetByID(7, 3); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}
	if _, err := service.GetByID(8, 3); err != ErrNotFound {
		t.Fatalf("foreign lookup err = %v, want ErrNotFound", err)
	}
	if _, err := service.GetByID(7, 99); err != ErrNotFound {
		t.Fatalf("unknown id err = %v, want ErrNotFound", err)
	}
	if _, err := service.GetByID(0, 3); err != ErrNotFound {
		t.Fatalf("zero user err = %v, want ErrNotFound", err)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))

	created, err := service.Create(Address{UserID: 7, FullName: "Taro Yamada", PostalCode: "100-0001",
		Prefecture: "東京都", City: "千代田区", AddressLine: "1-1-1", PhoneNumber: "090-0000-0000"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := service.Update(7, created.ID, Address{FullName: "Hanako Yamada", PostalCode: "100-0001",
		Prefecture: "東京都", City: "千代田区", AddressLine: "2-2-2", PhoneNumber: "090-1111-1111"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FullName != "Hanako Yamada" || updated.ID != created.ID {
		t.Errorf("updated = %+v", updated)
	}

	if err := service.Delete(8, created.ID); err != ErrNotFound {
		t.Fatalf("foreign delete err = %v, want ErrNotFound", err)
	}
	if err := service.Delete(7, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	addrs, err := service.List(7)
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 0 {
		t.Errorf("addresses = %d, want 0", len(addrs))
	}
}
