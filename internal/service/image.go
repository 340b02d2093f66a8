package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"unimarket/internal/domain"
)

const (
	maxImageSize        = 10 * 1024 * 1024 // 10MB
	maxImagesPerListing = 8

	imageURLPrefix = "/images/"
)

// ImageService validates and stores uploaded image bytes for listings
// and avatars. Bytes live behind domain.FileStore; records reference
// them by storage key, exposed as /images/{key} URLs.
type ImageService struct {
	files domain.FileStore
	users domain.UserRepository
}

// NewImageService creates a new ImageService.
func NewImageService(files domain.FileStore, users domain.UserRepository) *ImageService {
	return &ImageService{files: files, users: users}
}

// ImageUpload is one file received from a multipart form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// URLForKey returns the public URL for a storage key.
func URLForKey(key string) string {
	return imageURLPrefix + key
}

// StoreListingImages validates every upload and stores the bytes,
// returning image metadata in upload order. On any failure the blobs
// already written are cleaned up best-effort.
func (s *ImageService) StoreListingImages(ctx context.Context, uploads []ImageUpload) ([]domain.ListingImage, error) {
	if len(uploads) > maxImagesPerListing {
		return nil, fmt.Errorf("%w: maximum %d images per listing", domain.ErrInvalidInput, maxImagesPerListing)
	}

	images := make([]domain.ListingImage, 0, len(uploads))
	for _, up := range uploads {
		key, err := s.store(ctx, up)
		if err != nil {
			s.DeleteImages(ctx, images)
			return nil, err
		}
		images = append(images, domain.ListingImage{
			StorageKey:  key,
			ContentType: up.ContentType,
			Size:        int64(len(up.Data)),
			SortOrder:   len(images),
		})
	}
	return images, nil
}

// DeleteImages removes stored bytes for the given images, best-effort.
func (s *ImageService) DeleteImages(ctx context.Context, images []domain.ListingImage) {
	for _, img := range images {
		if err := s.files.Delete(ctx, img.StorageKey); err != nil {
			slog.Error("delete image blob", "key", img.StorageKey, "error", err)
		}
	}
}

// GetFile returns stored bytes and their content type. Listing images
// and avatars are public, so no ownership check applies.
func (s *ImageService) GetFile(ctx context.Context, key string) ([]byte, string, error) {
	return s.files.Get(ctx, key)
}

// SetAvatar stores a new avatar for the user and returns its URL. The
// previous avatar blob, if any, is deleted best-effort.
func (s *ImageService) SetAvatar(ctx context.Context, userID int64, up ImageUpload) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	key, err := s.store(ctx, up)
	if err != nil {
		return "", err
	}

	url := URLForKey(key)
	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		s.files.Delete(ctx, key)
		return "", fmt.Errorf("update avatar: %w", err)
	}

	if old := strings.TrimPrefix(user.AvatarURL, imageURLPrefix); old != "" && old != user.AvatarURL {
		if err := s.files.Delete(ctx, old); err != nil {
			slog.Error("delete old avatar blob", "key", old, "error", err)
		}
	}

	return url, nil
}

// store validates a single upload and writes its bytes under a fresh
// storage key.
func (s *ImageService) store(ctx context.Context, up ImageUpload) (string, error) {
	if up.ContentType != "image/jpeg" && up.ContentType != "image/png" {
		return "", fmt.Errorf("%w: only JPEG and PNG images are accepted", domain.ErrInvalidInput)
	}
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: empty image file", domain.ErrInvalidInput)
	}
	if len(up.Data) > maxImageSize {
		return "", fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}

	key := uuid.NewString()
	if err := s.files.Save(ctx, key, up.ContentType, up.Data); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return key, nil
}
