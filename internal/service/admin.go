package service

import (
	"context"
	"fmt"

	"unimarket/internal/domain"
)

// AdminService exposes the admin-only surface: marketplace stats, the
// user directory, and user removal.
type AdminService struct {
	users domain.UserRepository
	stats domain.StatsRepository
}

// NewAdminService creates a new AdminService.
func NewAdminService(users domain.UserRepository, stats domain.StatsRepository) *AdminService {
	return &AdminService{users: users, stats: stats}
}

// Stats returns marketplace-wide aggregate counts.
func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.stats.Collect(ctx)
}

// ListUsers returns every registered user, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes a user. Their listings cascade, which in turn
// removes dependent messages, wishlist entries, and transactions.
// Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, caller *domain.User, id int64) error {
	if id == caller.ID {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrInvalidInput)
	}
	return s.users.Delete(ctx, id)
}
