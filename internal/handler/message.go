package handler

import (
	"net/http"

	"unimarket/internal/service"
)

// MessageHandler handles the REST side of buyer-seller messaging. The
// live channel is served separately over websocket.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// HandleConversations lists the caller's conversations, most recent
// activity first.
// GET /api/messages/conversations
func (h *MessageHandler) HandleConversations(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	convs, err := h.messages.Conversations(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": toConversationDTOs(convs),
	})
}

// HandleHistory returns the caller's thread with another user about a
// listing, oldest-first. Fetching marks messages addressed to the
// caller as read.
// GET /api/messages/{listingID}/{otherUserID}
func (h *MessageHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}
	otherID, ok := pathID(w, r, "otherUserID")
	if !ok {
		return
	}

	msgs, err := h.messages.History(r.Context(), user.ID, listingID, otherID)
	if err != nil {
		writeServiceError(w, "load message history", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": toMessageDTOs(msgs),
	})
}

// HandleSend persists a message and pushes it to the receiver's live
// connections.
// POST /api/messages
// Request: {"listingId":1,"receiverId":2,"content":"..."}
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req struct {
		ListingID  int64  `json:"listingId"`
		ReceiverID int64  `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	msg, err := h.messages.Send(r.Context(), user.ID, req.ReceiverID, req.ListingID, req.Content)
	if err != nil {
		writeServiceError(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": toMessageDTO(msg),
	})
}
