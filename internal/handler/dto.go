package handler

import (
	"time"

	"unimarket/internal/domain"
	"unimarket/internal/service"
)

// UserDTO is the JSON representation of a user. The password hash
// never leaves the server.
type UserDTO struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatarUrl"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// ListingDTO is the JSON representation of a listing. Images are
// exposed as ordered public URLs.
type ListingDTO struct {
	ID          int64    `json:"id"`
	OwnerID     int64    `json:"ownerId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Location    string   `json:"location"`
	Status      string   `json:"status"`
	Views       int64    `json:"views"`
	Images      []string `json:"images"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toListingDTO(l *domain.Listing) ListingDTO {
	images := make([]string, len(l.Images))
	for i, img := range l.Images {
		images[i] = service.URLForKey(img.StorageKey)
	}
	return ListingDTO{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Condition:   l.Condition,
		Location:    l.Location,
		Status:      l.Status,
		Views:       l.Views,
		Images:      images,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}

func toListingDTOs(listings []domain.Listing) []ListingDTO {
	dtos := make([]ListingDTO, len(listings))
	for i := range listings {
		dtos[i] = toListingDTO(&listings[i])
	}
	return dtos
}

// MessageDTO is the JSON representation of a message.
type MessageDTO struct {
	ID         int64  `json:"id"`
	ListingID  int64  `json:"listingId"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"createdAt"`
}

func toMessageDTO(m *domain.Message) MessageDTO {
	return MessageDTO{
		ID:         m.ID,
		ListingID:  m.ListingID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

func toMessageDTOs(msgs []domain.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(msgs))
	for i := range msgs {
		dtos[i] = toMessageDTO(&msgs[i])
	}
	return dtos
}

// ConversationDTO is one (other party, listing) pair with its latest
// message.
type ConversationDTO struct {
	ListingID        int64      `json:"listingId"`
	ListingTitle     string     `json:"listingTitle"`
	OtherUserID      int64      `json:"otherUserId"`
	OtherDisplayName string     `json:"otherDisplayName"`
	OtherAvatarURL   string     `json:"otherAvatarUrl"`
	LastMessage      MessageDTO `json:"lastMessage"`
	UnreadCount      int64      `json:"unreadCount"`
}

func toConversationDTOs(convs []domain.Conversation) []ConversationDTO {
	dtos := make([]ConversationDTO, len(convs))
	for i, c := range convs {
		dtos[i] = ConversationDTO{
			ListingID:        c.ListingID,
			ListingTitle:     c.ListingTitle,
			OtherUserID:      c.OtherUserID,
			OtherDisplayName: c.OtherDisplayName,
			OtherAvatarURL:   c.OtherAvatarURL,
			LastMessage:      toMessageDTO(&c.LastMessage),
			UnreadCount:      c.UnreadCount,
		}
	}
	return dtos
}

// TransactionDTO is the JSON representation of a transaction.
type TransactionDTO struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	ListingID int64   `json:"listingId"`
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

func toTransactionDTO(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        t.ID,
		UserID:    t.UserID,
		ListingID: t.ListingID,
		PaymentID: t.PaymentID,
		Amount:    t.Amount,
		Method:    t.Method,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(txs []domain.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i := range txs {
		dtos[i] = toTransactionDTO(&txs[i])
	}
	return dtos
}

// StatsDTO is the JSON representation of marketplace stats.
type StatsDTO struct {
	Users           int64   `json:"users"`
	ActiveListings  int64   `json:"activeListings"`
	SoldListings    int64   `json:"soldListings"`
	Messages        int64   `json:"messages"`
	Transactions    int64   `json:"transactions"`
	CompletedVolume float64 `json:"completedVolume"`
}

func toStatsDTO(s *domain.Stats) StatsDTO {
	return StatsDTO{
		Users:           s.Users,
		ActiveListings:  s.ActiveListings,
		SoldListings:    s.SoldListings,
		Messages:        s.Messages,
		Transactions:    s.Transactions,
		CompletedVolume: s.CompletedVolume,
	}
}
