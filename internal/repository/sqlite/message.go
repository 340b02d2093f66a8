package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"unimarket/internal/domain"
)

// MessageRepository implements domain.MessageRepository using SQLite.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite-backed MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db.SqlDB}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (listing_id, sender_id, receiver_id, content, is_read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		msg.ListingID, msg.SenderID, msg.ReceiverID, msg.Content, now,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	msg.Read = false
	msg.CreatedAt = now
	return nil
}

func (r *MessageRepository) Between(ctx context.Context, listingID, userA, userB int64) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, listing_id, sender_id, receiver_id, content, is_read, created_at
		 FROM messages
		 WHERE listing_id = ?
		   AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		 ORDER BY created_at, id`,
		listingID, userA, userB, userB, userA,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ListingID, &m.SenderID, &m.ReceiverID,
			&m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) MarkRead(ctx context.Context, listingID, readerID, senderID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = 1
		 WHERE listing_id = ? AND receiver_id = ? AND sender_id = ? AND is_read = 0`,
		listingID, readerID, senderID,
	)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	return nil
}

// Conversations groups the user's messages into one row per distinct
// (other party, listing) pair, each carrying the latest message, the
// other party's profile, and the unread count.
func (r *MessageRepository) Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.listing_id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at,
		        l.title, u.id, u.display_name, u.avatar_url,
		        (SELECT COUNT(*) FROM messages
		          WHERE listing_id = m.listing_id AND receiver_id = ? AND sender_id = u.id AND is_read = 0)
		 FROM messages m
		 JOIN (
		     SELECT listing_id,
		            CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS other_id,
		            MAX(id) AS last_id
		     FROM messages
		     WHERE sender_id = ? OR receiver_id = ?
		     GROUP BY listing_id, other_id
		 ) last ON m.id = last.last_id
		 JOIN listings l ON l.id = m.listing_id
		 JOIN users u ON u.id = last.other_id
		 ORDER BY m.created_at DESC, m.id DESC`,
		userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.LastMessage.ID, &c.LastMessage.ListingID,
			&c.LastMessage.SenderID, &c.LastMessage.ReceiverID,
			&c.LastMessage.Content, &c.LastMessage.Read, &c.LastMessage.CreatedAt,
			&c.ListingTitle, &c.OtherUserID, &c.OtherDisplayName, &c.OtherAvatarURL,
			&c.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.ListingID = c.LastMessage.ListingID
		convs = append(convs, c)
	}
	return convs, rows.Err()
}
