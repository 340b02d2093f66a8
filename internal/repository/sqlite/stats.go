package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"unimarket/internal/domain"
)

// StatsRepository implements domain.StatsRepository using SQLite.
type StatsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new SQLite-backed StatsRepository.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db.SqlDB}
}

func (r *StatsRepository) Collect(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM listings WHERE status = 'active'),
			(SELECT COUNT(*) FROM listings WHERE status = 'sold'),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'completed')
	`).Scan(&stats.Users, &stats.ActiveListings, &stats.SoldListings,
		&stats.Messages, &stats.Transactions, &stats.CompletedVolume)
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}
	return stats, nil
}
