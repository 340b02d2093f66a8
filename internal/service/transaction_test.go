package service_test

import (
	"context"
	"errors"
	"testing"

	"unimarket/internal/domain"
	"unimarket/internal/service"
)

func TestTransactionService_Record_Defaults(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	seller := createUser(t, db, "tseller@example.com", domain.RoleUser)
	buyer := createUser(t, db, "tbuyer@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	// Empty status and payment id get defaults.
	tx, err := svc.Record(ctx, buyer.ID, listing.ID, "", 25, "card", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if tx.Status != domain.TransactionStatusPending {
		t.Fatalf("expected pending status, got %q", tx.Status)
	}
	if tx.PaymentID == "" {
		t.Fatal("expected a generated payment id")
	}

	found, err := db.Listings().GetByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetByID listing: %v", err)
	}
	if found.Status != domain.ListingStatusActive {
		t.Fatalf("expected listing to stay active, got %q", found.Status)
	}
}

func TestTransactionService_Record_CompletedMarksSold(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	seller := createUser(t, db, "tseller2@example.com", domain.RoleUser)
	buyer := createUser(t, db, "tbuyer2@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	_, err := svc.Record(ctx, buyer.ID, listing.ID, "pay-1", 25, "card", domain.TransactionStatusCompleted)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	found, err := db.Listings().GetByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetByID listing: %v", err)
	}
	if found.Status != domain.ListingStatusSold {
		t.Fatalf("expected listing sold, got %q", found.Status)
	}
}

func TestTransactionService_Record_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	buyer := createUser(t, db, "tbuyer3@example.com", domain.RoleUser)

	if _, err := svc.Record(ctx, buyer.ID, 1, "", 0, "card", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero amount, got %v", err)
	}
	if _, err := svc.Record(ctx, buyer.ID, 1, "", 10, "", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty method, got %v", err)
	}
	if _, err := svc.Record(ctx, buyer.ID, 1, "", 10, "card", "bogus"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestTransactionService_Get_OwnerOrAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	seller := createUser(t, db, "tseller4@example.com", domain.RoleUser)
	buyer := createUser(t, db, "tbuyer4@example.com", domain.RoleUser)
	stranger := createUser(t, db, "tstranger4@example.com", domain.RoleUser)
	admin := createUser(t, db, "tadmin4@example.com", domain.RoleAdmin)
	listing := createListing(t, db, seller.ID)

	tx, err := svc.Record(ctx, buyer.ID, listing.ID, "pay-get", 10, "cash", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := svc.Get(ctx, buyer, tx.ID); err != nil {
		t.Fatalf("Get by owner: %v", err)
	}
	if _, err := svc.Get(ctx, admin, tx.ID); err != nil {
		t.Fatalf("Get by admin: %v", err)
	}
	if _, err := svc.Get(ctx, stranger, tx.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestTransactionService_ListAll_AdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	user := createUser(t, db, "tuser5@example.com", domain.RoleUser)
	admin := createUser(t, db, "tadmin5@example.com", domain.RoleAdmin)

	if _, err := svc.ListAll(ctx, user); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain user, got %v", err)
	}
	if _, err := svc.ListAll(ctx, admin); err != nil {
		t.Fatalf("ListAll by admin: %v", err)
	}
}

func TestTransactionService_UpdateStatus_AdminOnly(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewTransactionService(db.Transactions())
	ctx := context.Background()

	seller := createUser(t, db, "tseller6@example.com", domain.RoleUser)
	buyer := createUser(t, db, "tbuyer6@example.com", domain.RoleUser)
	admin := createUser(t, db, "tadmin6@example.com", domain.RoleAdmin)
	listing := createListing(t, db, seller.ID)

	tx, err := svc.Record(ctx, buyer.ID, listing.ID, "pay-upd", 30, "card", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, buyer, tx.ID, domain.TransactionStatusCompleted); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, admin, tx.ID, domain.TransactionStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus by admin: %v", err)
	}
	if updated.Status != domain.TransactionStatusCompleted {
		t.Fatalf("expected completed, got %q", updated.Status)
	}

	// Completing flipped the listing.
	found, err := db.Listings().GetByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetByID listing: %v", err)
	}
	if found.Status != domain.ListingStatusSold {
		t.Fatalf("expected listing sold, got %q", found.Status)
	}
}
