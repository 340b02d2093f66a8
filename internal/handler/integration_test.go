package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
)

// jpegBytes is a minimal payload that sniffs as image/jpeg.
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createListingMultipart(t *testing.T, srvURL, token, title string, price float64, withImage bool) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", title)
	mw.WriteField("description", "integration test listing")
	mw.WriteField("price", fmt.Sprintf("%v", price))
	mw.WriteField("category", "books")
	mw.WriteField("condition", "good")
	mw.WriteField("location", "North Campus")
	if withImage {
		fw, err := mw.CreateFormFile("images", "photo.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(jpegBytes)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, srvURL+"/api/listings", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/listings: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("create listing: expected 201, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Listing map[string]any `json:"listing"`
	}
	decodeBody(t, resp, &result)
	return result.Listing
}

func TestIntegration_MarketplaceFlow(t *testing.T) {
	env := newTestEnv(t)

	// 1. The seller registers over HTTP.
	resp := doJSON(t, http.MethodPost, env.srv.URL+"/api/auth/register", "", map[string]string{
		"email":       "seller@example.com",
		"displayName": "Seller",
		"password":    "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate registration conflicts.
	resp = doJSON(t, http.MethodPost, env.srv.URL+"/api/auth/register", "", map[string]string{
		"email":       "seller@example.com",
		"displayName": "Imposter",
		"password":    "password456",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// 2. Login returns a token.
	resp = doJSON(t, http.MethodPost, env.srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "seller@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var login struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatal("expected a token from login")
	}
	sellerToken := login.Token
	sellerID := int64(login.User["id"].(float64))

	// 3. The seller posts a listing with a photo.
	listing := createListingMultipart(t, env.srv.URL, sellerToken, "Calculus Textbook", 25, true)
	listingID := int64(listing["id"].(float64))
	images := listing["images"].([]any)
	if len(images) != 1 {
		t.Fatalf("expected 1 image URL, got %d", len(images))
	}
	imageURL := images[0].(string)

	// 4. Browsing is public and the detail read counts a view.
	resp, err := http.Get(env.srv.URL + "/api/listings")
	if err != nil {
		t.Fatalf("GET /api/listings: %v", err)
	}
	var list struct {
		Listings []map[string]any `json:"listings"`
	}
	decodeBody(t, resp, &list)
	if len(list.Listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(list.Listings))
	}

	resp, err = http.Get(fmt.Sprintf("%s/api/listings/%d", env.srv.URL, listingID))
	if err != nil {
		t.Fatalf("GET listing: %v", err)
	}
	var detail struct {
		Listing map[string]any `json:"listing"`
	}
	decodeBody(t, resp, &detail)
	if views := detail.Listing["views"].(float64); views != 1 {
		t.Fatalf("expected 1 view after detail read, got %v", views)
	}

	// 5. The stored photo is served publicly.
	resp, err = http.Get(env.srv.URL + imageURL)
	if err != nil {
		t.Fatalf("GET %s: %v", imageURL, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("image: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", ct)
	}
	if !bytes.Equal(body, jpegBytes) {
		t.Fatal("image bytes do not round-trip")
	}

	// 6. A buyer messages the seller about the listing.
	buyerResp := doJSON(t, http.MethodPost, env.srv.URL+"/api/auth/register", "", map[string]string{
		"email":       "buyer@example.com",
		"displayName": "Buyer",
		"password":    "password123",
	})
	buyerResp.Body.Close()
	resp = doJSON(t, http.MethodPost, env.srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
	})
	var buyerLogin struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	decodeBody(t, resp, &buyerLogin)
	buyerToken := buyerLogin.Token

	resp = doJSON(t, http.MethodPost, env.srv.URL+"/api/messages", buyerToken, map[string]any{
		"listingId":  listingID,
		"receiverId": sellerID,
		"content":    "Is this still available?",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send message: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The seller sees the conversation with one unread message.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/messages/conversations", sellerToken, nil)
	var convs struct {
		Conversations []map[string]any `json:"conversations"`
	}
	decodeBody(t, resp, &convs)
	if len(convs.Conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(convs.Conversations))
	}
	if unread := convs.Conversations[0]["unreadCount"].(float64); unread != 1 {
		t.Fatalf("expected 1 unread, got %v", unread)
	}

	// 7. The buyer saves the listing, then un-saves it.
	resp = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/wishlist/%d", env.srv.URL, listingID), buyerToken, nil)
	var toggle struct {
		Action string `json:"action"`
	}
	decodeBody(t, resp, &toggle)
	if toggle.Action != "added" {
		t.Fatalf("expected added, got %q", toggle.Action)
	}

	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/wishlist", buyerToken, nil)
	var saved struct {
		Listings []map[string]any `json:"listings"`
	}
	decodeBody(t, resp, &saved)
	if len(saved.Listings) != 1 {
		t.Fatalf("expected 1 saved listing, got %d", len(saved.Listings))
	}

	// 8. A completed payment flips the listing to sold.
	resp = doJSON(t, http.MethodPost, env.srv.URL+"/api/transactions", buyerToken, map[string]any{
		"listingId": listingID,
		"amount":    25,
		"method":    "card",
		"status":    "completed",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("record transaction: expected 201, got %d", resp.StatusCode)
	}
	var recorded struct {
		Transaction map[string]any `json:"transaction"`
	}
	decodeBody(t, resp, &recorded)
	if recorded.Transaction["paymentId"].(string) == "" {
		t.Fatal("expected a generated payment id")
	}

	resp, err = http.Get(fmt.Sprintf("%s/api/listings/%d", env.srv.URL, listingID))
	if err != nil {
		t.Fatalf("GET listing after sale: %v", err)
	}
	decodeBody(t, resp, &detail)
	if status := detail.Listing["status"].(string); status != "sold" {
		t.Fatalf("expected listing sold after completed payment, got %q", status)
	}

	// The buyer sees their own transaction list.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/transactions", buyerToken, nil)
	var mine struct {
		Transactions []map[string]any `json:"transactions"`
	}
	decodeBody(t, resp, &mine)
	if len(mine.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(mine.Transactions))
	}
}

func TestIntegration_AdminSurface(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.auth.EnsureAdmin(ctx, "admin@example.com", "admin-password"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	adminToken, _, err := env.auth.Login(ctx, "admin@example.com", "admin-password")
	if err != nil {
		t.Fatalf("Login admin: %v", err)
	}

	userToken := env.registerAndLogin(t, "citizen@example.com")

	// Stats reflect the user directory.
	resp := doJSON(t, http.MethodGet, env.srv.URL+"/api/admin/stats", adminToken, nil)
	var stats struct {
		Stats map[string]any `json:"stats"`
	}
	decodeBody(t, resp, &stats)
	if users := stats.Stats["users"].(float64); users != 2 {
		t.Fatalf("expected 2 users in stats, got %v", users)
	}

	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/admin/users", adminToken, nil)
	var directory struct {
		Users []map[string]any `json:"users"`
	}
	decodeBody(t, resp, &directory)
	if len(directory.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(directory.Users))
	}

	// Find the plain user and delete them.
	var victimID int64
	for _, u := range directory.Users {
		if u["email"].(string) == "citizen@example.com" {
			victimID = int64(u["id"].(float64))
		}
	}
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d", env.srv.URL, victimID), adminToken, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete user: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The deleted user's token now fails the store lookup.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/users/me", userToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for deleted user, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "validator@example.com")

	// Malformed JSON body.
	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/messages", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/messages: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}

	// Unknown listing id path.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/listings/99999", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown listing, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Non-numeric path id.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/listings/abc", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestIntegration_AvatarUpload(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "face@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("avatar", "me.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(jpegBytes)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST avatar: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("avatar upload: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		AvatarURL string `json:"avatarUrl"`
	}
	decodeBody(t, resp, &result)
	if !strings.HasPrefix(result.AvatarURL, "/images/") {
		t.Fatalf("expected /images/ url, got %q", result.AvatarURL)
	}

	// The profile now carries the URL and the bytes are served.
	resp = doJSON(t, http.MethodGet, env.srv.URL+"/api/users/me", token, nil)
	var me struct {
		User map[string]any `json:"user"`
	}
	decodeBody(t, resp, &me)
	if me.User["avatarUrl"].(string) != result.AvatarURL {
		t.Fatalf("expected profile avatar %q, got %v", result.AvatarURL, me.User["avatarUrl"])
	}
}
