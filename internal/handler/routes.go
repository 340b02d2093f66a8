package handler

import (
	"net/http"

	"unimarket/internal/service"
	"unimarket/internal/ws"
)

// Services bundles everything the HTTP surface needs.
type Services struct {
	Auth         *service.AuthService
	Listings     *service.ListingService
	Messages     *service.MessageService
	Wishlist     *service.WishlistService
	Transactions *service.TransactionService
	Images       *service.ImageService
	Admin        *service.AdminService
	Hub          *ws.Hub
	AuthLimiter  *service.FixedWindowLimiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s Services) {
	authH := NewAuthHandler(s.Auth, s.Images)
	listingH := NewListingHandler(s.Listings)
	messageH := NewMessageHandler(s.Messages)
	wishlistH := NewWishlistHandler(s.Wishlist)
	txH := NewTransactionHandler(s.Transactions)
	imageH := NewImageHandler(s.Images)
	adminH := NewAdminHandler(s.Admin)
	wsH := NewWSHandler(s.Hub, s.Auth, s.Messages)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(s.Auth, h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdmin(s.Auth, h)
	}
	throttle := func(h http.HandlerFunc) http.Handler {
		return RateLimit(s.AuthLimiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Credential endpoints are rate-limited per client IP.
	mux.Handle("POST /api/auth/register", throttle(authH.HandleRegister))
	mux.Handle("POST /api/auth/login", throttle(authH.HandleLogin))

	mux.Handle("GET /api/users/me", protect(authH.HandleMe))
	mux.Handle("POST /api/users/me/avatar", protect(authH.HandleAvatarUpload))

	// Browsing is public; mutation requires a login.
	mux.HandleFunc("GET /api/listings", listingH.HandleList)
	mux.HandleFunc("GET /api/listings/{id}", listingH.HandleGet)
	mux.Handle("POST /api/listings", protect(listingH.HandleCreate))
	mux.Handle("PUT /api/listings/{id}", protect(listingH.HandleUpdate))
	mux.Handle("DELETE /api/listings/{id}", protect(listingH.HandleDelete))
	mux.Handle("PUT /api/listings/{id}/sold", protect(listingH.HandleMarkSold))

	mux.Handle("GET /api/messages/conversations", protect(messageH.HandleConversations))
	mux.Handle("GET /api/messages/{listingID}/{otherUserID}", protect(messageH.HandleHistory))
	mux.Handle("POST /api/messages", protect(messageH.HandleSend))
	mux.HandleFunc("GET /api/ws", wsH.HandleConnect)

	mux.Handle("GET /api/wishlist", protect(wishlistH.HandleList))
	mux.Handle("POST /api/wishlist/{listingID}", protect(wishlistH.HandleToggle))

	mux.Handle("POST /api/transactions", protect(txH.HandleRecord))
	mux.Handle("GET /api/transactions", protect(txH.HandleListMine))
	mux.Handle("GET /api/transactions/{id}", protect(txH.HandleGet))

	mux.Handle("GET /api/admin/stats", admin(adminH.HandleStats))
	mux.Handle("GET /api/admin/users", admin(adminH.HandleListUsers))
	mux.Handle("DELETE /api/admin/users/{id}", admin(adminH.HandleDeleteUser))
	mux.Handle("GET /api/admin/transactions", admin(txH.HandleListAll))
	mux.Handle("PUT /api/admin/transactions/{id}/status", admin(txH.HandleUpdateStatus))

	mux.HandleFunc("GET /images/{key}", imageH.HandleServe)
}
