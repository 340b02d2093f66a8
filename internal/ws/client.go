package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"unimarket/internal/domain"
	"unimarket/internal/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   int64
	messages *service.MessageService

	// Active room tracking: a room is a (listing, other user) pair.
	mu            sync.Mutex
	activeListing int64
	activePeer    int64
}

// NewClient wraps an upgraded connection for the authenticated user.
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, messages *service.MessageService) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 64),
		userID:   userID,
		messages: messages,
	}
}

// Start registers the client with the hub and launches its pumps.
func (c *Client) Start() {
	c.hub.Register <- c
	go c.writePump()
	go c.readPump()
}

// readPump pumps events from the websocket connection to the services.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("ws read", "user_id", c.userID, "error", err)
			}
			return
		}
		c.handleEvent(data)
	}
}

// writePump pumps data from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleEvent(data []byte) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		c.sendError("malformed event")
		return
	}

	switch event.Type {
	case EventJoinRoom:
		c.mu.Lock()
		c.activeListing = event.ListingID
		c.activePeer = event.OtherUserID
		c.mu.Unlock()
	case EventLeaveRoom:
		c.mu.Lock()
		c.activeListing = 0
		c.activePeer = 0
		c.mu.Unlock()
	case EventChat:
		c.handleChat(&event)
	default:
		c.sendError("unknown event type")
	}
}

// handleChat persists the message through the messaging service, which
// also pushes it to the receiver. The sender gets an echo carrying the
// assigned id.
func (c *Client) handleChat(event *Event) {
	listingID, receiverID := event.ListingID, event.ReceiverID
	if listingID == 0 || receiverID == 0 {
		// Fall back to the joined room.
		c.mu.Lock()
		if listingID == 0 {
			listingID = c.activeListing
		}
		if receiverID == 0 {
			receiverID = c.activePeer
		}
		c.mu.Unlock()
	}

	msg, err := c.messages.Send(context.Background(), c.userID, receiverID, listingID, event.Content)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			c.sendError(err.Error())
			return
		}
		slog.Error("ws send message", "user_id", c.userID, "error", err)
		c.sendError("message could not be delivered")
		return
	}

	echo, err := json.Marshal(Event{Type: EventChat, Message: toMessagePayload(msg)})
	if err != nil {
		return
	}
	select {
	case c.send <- echo:
	default:
	}
}

func (c *Client) sendError(msg string) {
	data, err := json.Marshal(Event{Type: EventError, Error: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
