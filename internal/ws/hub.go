package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"unimarket/internal/domain"
)

// Hub maintains the set of live client connections, keyed by user id
// so the messaging service can push to a specific receiver. It
// implements service.Relay. Delivery is at-most-once, best-effort: a
// user with no live connection is simply skipped.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	mu          sync.Mutex
	userClients map[int64][]*Client
}

// NewHub creates a new Hub. Run must be started on its own goroutine.
func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		userClients: make(map[int64][]*Client),
	}
}

// Run processes register/unregister requests until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.userClients[client.userID] = append(h.userClients[client.userID], client)
	count := len(h.userClients[client.userID])
	h.mu.Unlock()

	slog.Info("ws client connected", "user_id", client.userID, "connections", count)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	conns := h.userClients[client.userID]
	for i, c := range conns {
		if c == client {
			h.userClients[client.userID] = append(conns[:i], conns[i+1:]...)
			close(client.send)
			break
		}
	}
	count := len(h.userClients[client.userID])
	if count == 0 {
		delete(h.userClients, client.userID)
	}
	h.mu.Unlock()

	slog.Info("ws client disconnected", "user_id", client.userID, "connections", count)
}

// SendToUser delivers data to every live connection of the user. A
// client whose send buffer is full is dropped.
func (h *Hub) SendToUser(userID int64, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer; the write pump will notice the closed
			// channel and tear the connection down.
		}
	}
}

// PushMessage implements service.Relay: it emits a chat event to the
// receiver's live connections.
func (h *Hub) PushMessage(receiverID int64, msg *domain.Message) {
	data, err := json.Marshal(Event{
		Type:    EventChat,
		Message: toMessagePayload(msg),
	})
	if err != nil {
		slog.Error("marshal chat event", "error", err)
		return
	}
	h.SendToUser(receiverID, data)
}

// Event types carried on the websocket channel.
const (
	EventChat      = "chat"
	EventJoinRoom  = "join_room"
	EventLeaveRoom = "leave_room"
	EventError     = "error"
)

// Event is the wire format for both directions of the channel.
type Event struct {
	Type        string          `json:"type"`
	ListingID   int64           `json:"listing_id,omitempty"`
	ReceiverID  int64           `json:"receiver_id,omitempty"`
	OtherUserID int64           `json:"other_user_id,omitempty"`
	Content     string          `json:"content,omitempty"`
	Message     *MessagePayload `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// MessagePayload is the JSON shape of a persisted message pushed over
// the channel.
type MessagePayload struct {
	ID         int64  `json:"id"`
	ListingID  int64  `json:"listingId"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"createdAt"`
}

func toMessagePayload(m *domain.Message) *MessagePayload {
	return &MessagePayload{
		ID:         m.ID,
		ListingID:  m.ListingID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}
