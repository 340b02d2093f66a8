package service_test

import (
	"context"
	"errors"
	"testing"

	"unimarket/internal/domain"
	"unimarket/internal/service"
)

func TestAdminService_DeleteUser(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewAdminService(db.Users(), db.Stats())
	ctx := context.Background()

	admin := createUser(t, db, "aadmin@example.com", domain.RoleAdmin)
	victim := createUser(t, db, "avictim@example.com", domain.RoleUser)
	listing := createListing(t, db, victim.ID)

	if err := svc.DeleteUser(ctx, admin, victim.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := db.Users().GetByID(ctx, victim.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	// Their listings cascade.
	if _, err := db.Listings().GetByID(ctx, listing.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected listing gone, got %v", err)
	}
}

func TestAdminService_DeleteUser_Self(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewAdminService(db.Users(), db.Stats())
	ctx := context.Background()

	admin := createUser(t, db, "aself@example.com", domain.RoleAdmin)

	err := svc.DeleteUser(ctx, admin, admin.ID)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-delete, got %v", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewAdminService(db.Users(), db.Stats())
	ctx := context.Background()

	createUser(t, db, "astats@example.com", domain.RoleUser)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Users != 1 {
		t.Fatalf("expected 1 user, got %d", stats.Users)
	}
}
