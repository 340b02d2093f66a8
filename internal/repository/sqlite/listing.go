package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"unimarket/internal/domain"
)

// ListingRepository implements domain.ListingRepository using SQLite.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new SQLite-backed ListingRepository.
func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db.SqlDB}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	now := time.Now().UTC()
	if listing.Status == "" {
		listing.Status = domain.ListingStatusActive
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO listings (owner_id, title, description, price, category, condition, location, status, views, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		listing.OwnerID, listing.Title, listing.Description, listing.Price,
		listing.Category, listing.Condition, listing.Location, listing.Status, now, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert listing: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	listing.ID = id

	if err := insertImages(ctx, tx, id, listing.Images); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	listing.CreatedAt = now
	listing.UpdatedAt = now
	for i := range listing.Images {
		listing.Images[i].ListingID = id
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	listing := &domain.Listing{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, price, category, condition, location, status, views, created_at, updated_at
		 FROM listings WHERE id = ?`, id,
	).Scan(&listing.ID, &listing.OwnerID, &listing.Title, &listing.Description,
		&listing.Price, &listing.Category, &listing.Condition, &listing.Location,
		&listing.Status, &listing.Views, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query listing by id: %w", err)
	}

	images, err := listingImagesFor(ctx, r.db, []int64{id})
	if err != nil {
		return nil, err
	}
	listing.Images = images[id]
	return listing, nil
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Condition != "" {
		conds = append(conds, "condition = ?")
		args = append(args, filter.Condition)
	}
	if filter.Location != "" {
		conds = append(conds, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	query := `SELECT id, owner_id, title, description, price, category, condition, location, status, views, created_at, updated_at
		 FROM listings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
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

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing, replaceImages bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE listings SET title = ?, description = ?, price = ?, category = ?, condition = ?, location = ?, updated_at = ?
		 WHERE id = ?`,
		listing.Title, listing.Description, listing.Price, listing.Category,
		listing.Condition, listing.Location, time.Now().UTC(), listing.ID,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	if replaceImages {
		if _, err := tx.ExecContext(ctx, "DELETE FROM listing_images WHERE listing_id = ?", listing.ID); err != nil {
			return fmt.Errorf("delete old images: %w", err)
		}
		if err := insertImages(ctx, tx, listing.ID, listing.Images); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
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

func (r *ListingRepository) SetStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE listings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set listing status: %w", err)
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

func (r *ListingRepository) IncrementViews(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE listings SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
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

// listingImagesFor loads image rows for the given listing ids, keyed
// by listing id and ordered by sort order.
func listingImagesFor(ctx context.Context, db *sql.DB, ids []int64) (map[int64][]domain.ListingImage, error) {
	result := make(map[int64][]domain.ListingImage)
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, listing_id, storage_key, content_type, size, sort_order
		 FROM listing_images WHERE listing_id IN (`+placeholders+`) ORDER BY listing_id, sort_order`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query listing images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.ListingImage
		if err := rows.Scan(&img.ID, &img.ListingID, &img.StorageKey,
			&img.ContentType, &img.Size, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scan listing image: %w", err)
		}
		result[img.ListingID] = append(result[img.ListingID], img)
	}
	return result, rows.Err()
}

func insertImages(ctx context.Context, tx *sql.Tx, listingID int64, images []domain.ListingImage) error {
	for i := range images {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO listing_images (listing_id, storage_key, content_type, size, sort_order)
			 VALUES (?, ?, ?, ?, ?)`,
			listingID, images[i].StorageKey, images[i].ContentType, images[i].Size, i,
		)
		if err != nil {
			return fmt.Errorf("insert listing image: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
		images[i].ID = id
		images[i].SortOrder = i
	}
	return nil
}
