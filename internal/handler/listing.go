package handler

import (
	"net/http"
	"strconv"

	"unimarket/internal/domain"
	"unimarket/internal/service"
)

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// HandleList returns listings newest-first, narrowed by query filters.
// GET /api/listings?category=&condition=&location=&minPrice=&maxPrice=&limit=&offset=
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListingFilter{
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
		Location:  q.Get("location"),
	}
	if v := q.Get("minPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid minPrice.")
			return
		}
		filter.MinPrice = &p
	}
	if v := q.Get("maxPrice"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid maxPrice.")
			return
		}
		filter.MaxPrice = &p
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	listings, err := h.listings.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, "list listings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listings": toListingDTOs(listings),
	})
}

// HandleGet returns one listing. Each successful read bumps the view
// counter.
// GET /api/listings/{id}
func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.listings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get listing", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listing": toListingDTO(listing),
	})
}

// HandleCreate creates a listing from a multipart form with optional
// "images" files.
// POST /api/listings
func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	input, uploads, ok := readListingForm(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.Create(r.Context(), user.ID, input, uploads)
	if err != nil {
		writeServiceError(w, "create listing", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"listing": toListingDTO(listing),
	})
}

// HandleUpdate mutates a listing. The image list is replaced only when
// new "images" files are supplied.
// PUT /api/listings/{id}
func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	input, uploads, ok := readListingForm(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.Update(r.Context(), user, id, input, uploads)
	if err != nil {
		writeServiceError(w, "update listing", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"listing": toListingDTO(listing),
	})
}

// HandleDelete removes a listing and everything referencing it.
// DELETE /api/listings/{id}
func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.listings.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, "delete listing", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMarkSold flips a listing to sold.
// PUT /api/listings/{id}/sold
func (h *ListingHandler) HandleMarkSold(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.listings.MarkSold(r.Context(), user, id); err != nil {
		writeServiceError(w, "mark listing sold", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": domain.ListingStatusSold})
}

// readListingForm parses the shared multipart shape of create/update.
func readListingForm(w http.ResponseWriter, r *http.Request) (service.ListingInput, []service.ImageUpload, bool) {
	uploads, err := readImageFiles(r, "images")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return service.ListingInput{}, nil, false
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid price.")
		return service.ListingInput{}, nil, false
	}

	input := service.ListingInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       price,
		Category:    r.FormValue("category"),
		Condition:   r.FormValue("condition"),
		Location:    r.FormValue("location"),
	}
	return input, uploads, true
}

// pathID parses a positive int64 path parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}
