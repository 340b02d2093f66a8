package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"unimarket/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// SQLite.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new SQLite-backed
// TransactionRepository.
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db.SqlDB}
}

// Create persists the transaction. When the status is completed the
// listing flips to sold in the same database transaction, so a crash
// can never leave a completed payment against an active listing.
func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, listing_id, payment_id, amount, method, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.ListingID, t.PaymentID, t.Amount, t.Method, t.Status, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if t.Status == domain.TransactionStatusCompleted {
		if err := markListingSold(ctx, tx, t.ListingID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	t.ID = id
	t.CreatedAt = now
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, listing_id, payment_id, amount, method, status, created_at
		 FROM transactions WHERE id = ?`, id,
	).Scan(&t.ID, &t.UserID, &t.ListingID, &t.PaymentID, &t.Amount, &t.Method, &t.Status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query transaction by id: %w", err)
	}
	return t, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	return r.list(ctx,
		`SELECT id, user_id, listing_id, payment_id, amount, method, status, created_at
		 FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *TransactionRepository) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	return r.list(ctx,
		`SELECT id, user_id, listing_id, payment_id, amount, method, status, created_at
		 FROM transactions ORDER BY created_at DESC, id DESC`)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.ListingID, &t.PaymentID,
			&t.Amount, &t.Method, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// UpdateStatus changes the transaction status. Completing also flips
// the listing to sold, atomically with the status write.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var listingID int64
	err = tx.QueryRowContext(ctx,
		"SELECT listing_id FROM transactions WHERE id = ?", id,
	).Scan(&listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("query transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE transactions SET status = ? WHERE id = ?", status, id); err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	if status == domain.TransactionStatusCompleted {
		if err := markListingSold(ctx, tx, listingID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func markListingSold(ctx context.Context, tx *sql.Tx, listingID int64) error {
	result, err := tx.ExecContext(ctx,
		"UPDATE listings SET status = ?, updated_at = ? WHERE id = ?",
		domain.ListingStatusSold, time.Now().UTC(), listingID,
	)
	if err != nil {
		return fmt.Errorf("mark listing sold: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
