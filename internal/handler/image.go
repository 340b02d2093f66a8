package handler

import (
	"net/http"
	"strconv"

	"unimarket/internal/service"
)

// ImageHandler serves stored image bytes. Listing images and avatars
// are public.
type ImageHandler struct {
	images *service.ImageService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(images *service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// HandleServe streams a stored image.
// GET /images/{key}
func (h *ImageHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Invalid image key.")
		return
	}

	data, contentType, err := h.images.GetFile(r.Context(), key)
	if err != nil {
		writeServiceError(w, "serve image", err)
		return
	}

	// Keys are immutable, so the bytes can be cached hard.
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
