package handler

import (
	"net/http"

	"unimarket/internal/service"
)

// AdminHandler handles the admin-only surface.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// HandleStats returns marketplace-wide aggregate counts.
// GET /api/admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "collect stats", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": toStatsDTO(stats),
	})
}

// HandleListUsers returns every registered user, newest first.
// GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": toUserDTOs(users),
	})
}

// HandleDeleteUser removes a user and their dependent records.
// DELETE /api/admin/users/{id}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := UserFromContext(r.Context())

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(r.Context(), caller, id); err != nil {
		writeServiceError(w, "delete user", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
