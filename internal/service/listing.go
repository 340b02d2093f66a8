package service

import (
	"context"
	"fmt"

	"unimarket/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// ListingService handles marketplace listing operations. Mutations are
// gated on the caller being the owner or an admin.
type ListingService struct {
	listings domain.ListingRepository
	images   *ImageService
}

// NewListingService creates a new ListingService.
func NewListingService(listings domain.ListingRepository, images *ImageService) *ListingService {
	return &ListingService{listings: listings, images: images}
}

// ListingInput carries the mutable listing fields.
type ListingInput struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Condition   string
	Location    string
}

func (in ListingInput) validate() error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", domain.ErrInvalidInput)
	}
	return nil
}

// Create persists a new active listing owned by ownerID with zero
// views, storing any uploaded images.
func (s *ListingService) Create(ctx context.Context, ownerID int64, in ListingInput, uploads []ImageUpload) (*domain.Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	images, err := s.images.StoreListingImages(ctx, uploads)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Condition:   in.Condition,
		Location:    in.Location,
		Status:      domain.ListingStatusActive,
		Images:      images,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		s.images.DeleteImages(ctx, images)
		return nil, fmt.Errorf("create listing: %w", err)
	}

	return listing, nil
}

// List returns listings newest-first, narrowed by filter. Page size
// defaults to 50 and is capped at 100.
func (s *ListingService) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.listings.List(ctx, filter)
}

// Get returns the listing after bumping its view counter. The read is
// deliberately non-idempotent.
func (s *ListingService) Get(ctx context.Context, id int64) (*domain.Listing, error) {
	if err := s.listings.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.listings.GetByID(ctx, id)
}

// Update mutates the listing fields. The image list is replaced only
// when new uploads are supplied; otherwise the existing images are
// retained.
func (s *ListingService) Update(ctx context.Context, caller *domain.User, id int64, in ListingInput, uploads []ImageUpload) (*domain.Listing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	listing := *existing
	listing.Title = in.Title
	listing.Description = in.Description
	listing.Price = in.Price
	listing.Category = in.Category
	listing.Condition = in.Condition
	listing.Location = in.Location

	replaceImages := len(uploads) > 0
	if replaceImages {
		images, err := s.images.StoreListingImages(ctx, uploads)
		if err != nil {
			return nil, err
		}
		listing.Images = images
	}

	if err := s.listings.Update(ctx, &listing, replaceImages); err != nil {
		if replaceImages {
			s.images.DeleteImages(ctx, listing.Images)
		}
		return nil, fmt.Errorf("update listing: %w", err)
	}

	// The superseded blobs are unreferenced once the image rows are
	// replaced.
	if replaceImages {
		s.images.DeleteImages(ctx, existing.Images)
	}

	return s.listings.GetByID(ctx, id)
}

// Delete removes the listing. Messages, wishlist entries, images, and
// transactions referencing it cascade at the store; the image blobs
// are cleaned up here.
func (s *ListingService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	existing, err := s.authorize(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	s.images.DeleteImages(ctx, existing.Images)
	return nil
}

// MarkSold flips the listing status to sold. Repeat calls are
// harmless.
func (s *ListingService) MarkSold(ctx context.Context, caller *domain.User, id int64) error {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	return s.listings.SetStatus(ctx, id, domain.ListingStatusSold)
}

// authorize loads the listing and checks the owner-or-admin rule.
func (s *ListingService) authorize(ctx context.Context, caller *domain.User, id int64) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != caller.ID && !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return listing, nil
}
