package domain

import (
	"context"
	"time"
)

const (
	ListingStatusActive = "active"
	ListingStatusSold   = "sold"
)

// Listing is a marketplace item offered by a user.
type Listing struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
	Status      string
	Views       int64
	Images      []ListingImage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListingImage holds metadata about an image attached to a listing.
// Bytes live in the FileStore under StorageKey.
type ListingImage struct {
	ID          int64
	ListingID   int64
	StorageKey  string
	ContentType string
	Size        int64
	SortOrder   int
}

// ListingFilter narrows List results. Zero values mean "no filter".
type ListingFilter struct {
	Category  string
	Condition string
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	Limit     int
	Offset    int
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id int64) (*Listing, error)
	// List returns listings newest-first, narrowed by filter.
	List(ctx context.Context, filter ListingFilter) ([]Listing, error)
	// Update persists mutable fields. When replaceImages is true the
	// image rows are replaced with listing.Images; otherwise they are
	// left untouched.
	Update(ctx context.Context, listing *Listing, replaceImages bool) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	// IncrementViews bumps the view counter by one.
	IncrementViews(ctx context.Context, id int64) error
}
