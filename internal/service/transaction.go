package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"unimarket/internal/domain"
)

// TransactionService records payment confirmations and exposes the
// read paths. A completed payment flips its listing to sold inside a
// single store transaction.
type TransactionService struct {
	transactions domain.TransactionRepository
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(transactions domain.TransactionRepository) *TransactionService {
	return &TransactionService{transactions: transactions}
}

// Record persists a payment confirmation. An empty status defaults to
// pending; an empty payment id gets a generated one so the row is
// always traceable.
func (s *TransactionService) Record(ctx context.Context, userID, listingID int64, paymentID string, amount float64, method, status string) (*domain.Transaction, error) {
	if listingID <= 0 {
		return nil, fmt.Errorf("%w: listing is required", domain.ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidInput)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrInvalidInput)
	}
	if status == "" {
		status = domain.TransactionStatusPending
	}
	if !domain.ValidTransactionStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	if paymentID == "" {
		paymentID = uuid.NewString()
	}

	tx := &domain.Transaction{
		UserID:    userID,
		ListingID: listingID,
		PaymentID: paymentID,
		Amount:    amount,
		Method:    method,
		Status:    status,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	return tx, nil
}

// ListMine returns the caller's transactions, newest first.
func (s *TransactionService) ListMine(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	return s.transactions.ListByUser(ctx, userID)
}

// ListAll returns every transaction. Admin only.
func (s *TransactionService) ListAll(ctx context.Context, caller *domain.User) ([]domain.Transaction, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.transactions.ListAll(ctx)
}

// Get returns a single transaction, visible to its owner or an admin.
func (s *TransactionService) Get(ctx context.Context, caller *domain.User, id int64) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != caller.ID && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return tx, nil
}

// UpdateStatus changes a transaction's status. Admin only; completing
// flips the listing to sold atomically with the status write.
func (s *TransactionService) UpdateStatus(ctx context.Context, caller *domain.User, id int64, status string) (*domain.Transaction, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidTransactionStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	if err := s.transactions.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.transactions.GetByID(ctx, id)
}
