package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"unimarket/internal/domain"
	"unimarket/internal/repository/sqlite/migrations"
)

// DB wraps a SQLite database handle and hands out repositories bound
// to it. It implements domain.Database.
type DB struct {
	SqlDB *sql.DB
}

// New opens a SQLite database at the given path and configures it for
// use. It enables WAL mode and foreign keys.
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Enable foreign key enforcement; listing and user deletes rely on
	// ON DELETE CASCADE.
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Set a reasonable connection pool for SQLite.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies all pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, d.SqlDB)
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

func (d *DB) Users() domain.UserRepository               { return NewUserRepository(d) }
func (d *DB) Listings() domain.ListingRepository         { return NewListingRepository(d) }
func (d *DB) Messages() domain.MessageRepository         { return NewMessageRepository(d) }
func (d *DB) Wishlist() domain.WishlistRepository        { return NewWishlistRepository(d) }
func (d *DB) Transactions() domain.TransactionRepository { return NewTransactionRepository(d) }
func (d *DB) Stats() domain.StatsRepository              { return NewStatsRepository(d) }
func (d *DB) FileStore() domain.FileStore                { return &fileStore{db: d.SqlDB} }

// isUniqueConstraintError checks if the error is a SQLite unique
// constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && containsString(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a SQLite foreign key
// constraint violation, which means a referenced row does not exist.
func isForeignKeyError(err error) bool {
	return err != nil && containsString(err.Error(), "FOREIGN KEY constraint failed")
}

func containsString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
