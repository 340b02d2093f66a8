package domain

import (
	"context"
	"time"
)

// Message is a single buyer-seller message tied to a listing.
type Message struct {
	ID         int64
	ListingID  int64
	SenderID   int64
	ReceiverID int64
	Content    string
	Read       bool
	CreatedAt  time.Time
}

// Conversation is one distinct (other party, listing) pair, annotated
// with its most recent message.
type Conversation struct {
	ListingID        int64
	ListingTitle     string
	OtherUserID      int64
	OtherDisplayName string
	OtherAvatarURL   string
	LastMessage      Message
	UnreadCount      int64
}

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// Between returns the messages exchanged by the two users for the
	// listing, ordered oldest-first.
	Between(ctx context.Context, listingID, userA, userB int64) ([]Message, error)
	// MarkRead flips the read flag on messages for the listing sent by
	// senderID to readerID.
	MarkRead(ctx context.Context, listingID, readerID, senderID int64) error
	Conversations(ctx context.Context, userID int64) ([]Conversation, error)
}
