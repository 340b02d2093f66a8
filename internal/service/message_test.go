package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"unimarket/internal/domain"
	"unimarket/internal/repository/sqlite"
	"unimarket/internal/service"
)

// captureRelay records pushes instead of delivering them.
type captureRelay struct {
	receiverID int64
	msg        *domain.Message
}

func (r *captureRelay) PushMessage(receiverID int64, msg *domain.Message) {
	r.receiverID = receiverID
	r.msg = msg
}

func createListing(t *testing.T, db *sqlite.DB, ownerID int64) *domain.Listing {
	t.Helper()
	listing := &domain.Listing{OwnerID: ownerID, Title: "Desk Lamp", Price: 12}
	if err := db.Listings().Create(context.Background(), listing); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func TestMessageService_Send(t *testing.T) {
	db := newTestDB(t)
	relay := &captureRelay{}
	svc := service.NewMessageService(db.Messages(), relay)
	ctx := context.Background()

	seller := createUser(t, db, "mseller@example.com", domain.RoleUser)
	buyer := createUser(t, db, "mbuyer@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	msg, err := svc.Send(ctx, buyer.ID, seller.ID, listing.ID, "Is this available?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if msg.ID == 0 {
		t.Fatal("expected message ID to be set")
	}
	if msg.Read {
		t.Fatal("expected new message to be unread")
	}

	// The receiver's live connections got the push.
	if relay.receiverID != seller.ID {
		t.Fatalf("expected push to receiver %d, got %d", seller.ID, relay.receiverID)
	}
	if relay.msg == nil || relay.msg.ID != msg.ID {
		t.Fatalf("expected pushed message %d, got %+v", msg.ID, relay.msg)
	}
}

func TestMessageService_Send_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewMessageService(db.Messages(), nil)
	ctx := context.Background()

	seller := createUser(t, db, "vseller@example.com", domain.RoleUser)
	buyer := createUser(t, db, "vbuyer@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	// Empty content.
	if _, err := svc.Send(ctx, buyer.ID, seller.ID, listing.ID, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty content, got %v", err)
	}

	// Messaging yourself.
	if _, err := svc.Send(ctx, buyer.ID, buyer.ID, listing.ID, "hi me"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self-message, got %v", err)
	}

	// Over the length limit.
	long := strings.Repeat("x", 2001)
	if _, err := svc.Send(ctx, buyer.ID, seller.ID, listing.ID, long); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for long content, got %v", err)
	}

	// Unknown listing surfaces as not found.
	if _, err := svc.Send(ctx, buyer.ID, seller.ID, 99999, "hello"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown listing, got %v", err)
	}
}

func TestMessageService_History_MarksRead(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewMessageService(db.Messages(), nil)
	ctx := context.Background()

	seller := createUser(t, db, "hseller@example.com", domain.RoleUser)
	buyer := createUser(t, db, "hbuyer@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	if _, err := svc.Send(ctx, buyer.ID, seller.ID, listing.ID, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(ctx, seller.ID, buyer.ID, listing.ID, "second"); err != nil {
		t.Fatalf("Send reply: %v", err)
	}

	// The seller opens the thread; the buyer's message flips to read.
	msgs, err := svc.History(ctx, seller.ID, listing.ID, buyer.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "first" {
		t.Fatalf("expected oldest-first, got %q first", msgs[0].Content)
	}
	if !msgs[0].Read {
		t.Fatal("expected buyer's message marked read for the seller")
	}
	if msgs[1].Read {
		t.Fatal("expected seller's own message to stay unread")
	}
}

func TestMessageService_Conversations(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewMessageService(db.Messages(), nil)
	ctx := context.Background()

	seller := createUser(t, db, "cseller@example.com", domain.RoleUser)
	buyer := createUser(t, db, "cbuyer@example.com", domain.RoleUser)
	listing := createListing(t, db, seller.ID)

	if _, err := svc.Send(ctx, buyer.ID, seller.ID, listing.ID, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	convs, err := svc.Conversations(ctx, seller.ID)
	if err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs))
	}
	if convs[0].OtherUserID != buyer.ID {
		t.Fatalf("expected other user %d, got %d", buyer.ID, convs[0].OtherUserID)
	}
	if convs[0].UnreadCount != 1 {
		t.Fatalf("expected 1 unread, got %d", convs[0].UnreadCount)
	}
}
