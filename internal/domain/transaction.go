package domain

import (
	"context"
	"time"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusRefunded  = "refunded"
)

// Transaction records a payment confirmation against a listing.
type Transaction struct {
	ID        int64
	UserID    int64
	ListingID int64
	PaymentID string
	Amount    float64
	Method    string
	Status    string
	CreatedAt time.Time
}

// ValidTransactionStatus reports whether s is a known status value.
func ValidTransactionStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusRefunded:
		return true
	}
	return false
}

// TransactionRepository defines persistence operations for transactions.
type TransactionRepository interface {
	// Create persists the transaction. A completed transaction also
	// flips the referenced listing to sold, in the same store
	// transaction.
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	ListByUser(ctx context.Context, userID int64) ([]Transaction, error)
	ListAll(ctx context.Context) ([]Transaction, error)
	// UpdateStatus changes the status. Moving to completed also flips
	// the listing to sold, atomically with the status write.
	UpdateStatus(ctx context.Context, id int64, status string) error
}
