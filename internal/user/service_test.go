package user

import (
	"testing"
)

func TestRegisterHashesPassword(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)

	created, err := service.Register("j@example.com", "secret123", "Jenny")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned id")
	}
	if created.PasswordHash == "secret123" || created.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)

	if _, err := service.Register("j@example.com", "secret123", "Jenny"); err != nil {
		t.Fatal(err)
	}
	if _, err := service.Register("j@example.com", "other", "Other"); err != ErrEmailExists {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)

	if _, err := service.Register("j@example.com", "secret123", "Jenny"); err != nil {
		t.Fatal(err)
	}

	u, err := service.Authenticate("j@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Email != "j@example.com" {
		t.Errorf("email = %q", u.Email)
	}

	if _, err := service.Authenticate("j@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := service.Authenticate("missing@example.com", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}
