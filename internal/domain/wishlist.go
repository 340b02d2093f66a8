package domain

import (
	"context"
	"time"
)

// WishlistEntry marks a listing as saved by a user. The (user, listing)
// pair is unique at the store.
type WishlistEntry struct {
	UserID    int64
	ListingID int64
	CreatedAt time.Time
}

// WishlistRepository defines persistence operations for wishlists.
type WishlistRepository interface {
	// Toggle removes the entry if present, inserts it otherwise, as a
	// single store transaction. Returns true when the entry was added.
	Toggle(ctx context.Context, userID, listingID int64) (added bool, err error)
	// ListByUser returns the listings the user has saved, newest save
	// first.
	ListByUser(ctx context.Context, userID int64) ([]Listing, error)
}
