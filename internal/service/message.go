package service

import (
	"context"
	"fmt"

	"unimarket/internal/domain"
)

const maxMessageLength = 2000

// Relay delivers events to live connections. Delivery is best-effort:
// an offline receiver is not an error, the store is the durable
// record.
type Relay interface {
	PushMessage(receiverID int64, msg *domain.Message)
}

// MessageService persists buyer-seller messages and relays them to
// connected participants.
type MessageService struct {
	messages domain.MessageRepository
	relay    Relay
}

// NewMessageService creates a new MessageService. relay may be nil.
func NewMessageService(messages domain.MessageRepository, relay Relay) *MessageService {
	return &MessageService{messages: messages, relay: relay}
}

// Send persists a message with read=false and pushes it to the
// receiver's live connections, if any.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, listingID int64, content string) (*domain.Message, error) {
	if senderID <= 0 || receiverID <= 0 || listingID <= 0 || content == "" {
		return nil, fmt.Errorf("%w: sender, receiver, listing, and content are required", domain.ErrInvalidInput)
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalidInput)
	}
	if len(content) > maxMessageLength {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	msg := &domain.Message{
		ListingID:  listingID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if s.relay != nil {
		s.relay.PushMessage(receiverID, msg)
	}

	return msg, nil
}

// History returns the conversation between the requester and the other
// user for the listing, oldest-first. Messages addressed to the
// requester are marked read as a side effect.
func (s *MessageService) History(ctx context.Context, requesterID, listingID, otherID int64) ([]domain.Message, error) {
	if err := s.messages.MarkRead(ctx, listingID, requesterID, otherID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	msgs, err := s.messages.Between(ctx, listingID, requesterID, otherID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return msgs, nil
}

// Conversations returns one entry per distinct (other party, listing)
// pair for the user, each annotated with its most recent message.
func (s *MessageService) Conversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}
