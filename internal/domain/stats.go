package domain

import "context"

// Stats aggregates marketplace-wide counts for the admin dashboard.
type Stats struct {
	Users           int64
	ActiveListings  int64
	SoldListings    int64
	Messages        int64
	Transactions    int64
	CompletedVolume float64
}

// StatsRepository collects aggregate counts from the store.
type StatsRepository interface {
	Collect(ctx context.Context) (*Stats, error)
}
