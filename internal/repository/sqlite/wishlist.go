package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unimarket/internal/domain"
)

// WishlistRepository implements domain.WishlistRepository using SQLite.
type WishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new SQLite-backed WishlistRepository.
func NewWishlistRepository(db *DB) *WishlistRepository {
	return &WishlistRepository{db: db.SqlDB}
}

// Toggle flips wishlist membership for the pair inside a single
// transaction. The (user_id, listing_id) primary key makes concurrent
// toggles collapse to a constraint violation instead of a duplicate
// row.
func (r *WishlistRepository) Toggle(ctx context.Context, userID, listingID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM wishlist_entries WHERE user_id = ? AND listing_id = ?",
		userID, listingID,
	)
	if err != nil {
		return false, fmt.Errorf("delete wishlist entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if rows > 0 {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wishlist_entries (user_id, listing_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, listing_id) DO NOTHING`,
		userID, listingID, time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("insert wishlist entry: %w", err)
	}

	return true, tx.Commit()
}

func (r *WishlistRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.owner_id, l.title, l.description, l.price, l.category, l.condition, l.location, l.status, l.views, l.created_at, l.updated_at
		 FROM wishlist_entries w
		 JOIN listings l ON l.id = w.listing_id
		 WHERE w.user_id = ?
		 ORDER BY w.created_at DESC, l.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var (
		listings []domain.Listing
		ids      []int64
	)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description,
			&l.Price, &l.Category, &l.Condition, &l.Location,
			&l.Status, &l.Views, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := listingImagesFor(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].Images = images[listings[i].ID]
	}
	return listings, nil
}
