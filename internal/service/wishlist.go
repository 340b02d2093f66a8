package service

import (
	"context"
	"fmt"

	"unimarket/internal/domain"
)

const (
	WishlistAdded   = "added"
	WishlistRemoved = "removed"
)

// WishlistService toggles and lists a user's saved listings.
type WishlistService struct {
	wishlist domain.WishlistRepository
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlist domain.WishlistRepository) *WishlistService {
	return &WishlistService{wishlist: wishlist}
}

// Toggle flips wishlist membership for the (user, listing) pair and
// reports the action taken. The store enforces pair uniqueness, so
// concurrent toggles cannot create duplicates.
func (s *WishlistService) Toggle(ctx context.Context, userID, listingID int64) (string, error) {
	added, err := s.wishlist.Toggle(ctx, userID, listingID)
	if err != nil {
		return "", fmt.Errorf("toggle wishlist: %w", err)
	}
	if added {
		return WishlistAdded, nil
	}
	return WishlistRemoved, nil
}

// List returns the user's saved listings, newest save first.
func (s *WishlistService) List(ctx context.Context, userID int64) ([]domain.Listing, error) {
	return s.wishlist.ListByUser(ctx, userID)
}
