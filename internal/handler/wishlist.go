package handler

import (
	"net/http"

	"unimarket/internal/service"
)

// WishlistHandler handles wishlist requests.
type WishlistHandler struct {
	wishlist *service.WishlistService
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlist *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// HandleList returns the caller's saved listings, newest save first.
// GET /api/wishlist
func (h *WishlistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	listings, err := h.wishlist.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list wishlist", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": toListingDTOs(listings),
	})
}

// HandleToggle flips wishlist membership for a listing and reports
// which way it went.
// POST /api/wishlist/{listingID}
// Response: {"action":"added"} or {"action":"removed"}
func (h *WishlistHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	listingID, ok := pathID(w, r, "listingID")
	if !ok {
		return
	}

	action, err := h.wishlist.Toggle(r.Context(), user.ID, listingID)
	if err != nil {
		writeServiceError(w, "toggle wishlist", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"action": action})
}
