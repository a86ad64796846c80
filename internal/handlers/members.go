package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/members"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/rs/zerolog"
)

type MembersHandler struct {
	members *members.Service
	logger  zerolog.Logger
}

func NewMembersHandler(svc *members.Service, logger zerolog.Logger) *MembersHandler {
	return &MembersHandler{members: svc, logger: logger}
}

func (h *MembersHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	list, err := h.members.List(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateMemberRole changes a member's role, subject to the creator and
// last-management protections enforced by the service.
func (h *MembersHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	userID, _ := authz.UserIDFromRequest(r)
	membershipID := mux.Vars(r)["id"]

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	role := models.ParseRole(req.Role)
	if !models.IsValidRole(role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	updated, err := h.members.UpdateRole(r.Context(), orgID, membershipID, role, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *MembersHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	userID, _ := authz.UserIDFromRequest(r)
	membershipID := mux.Vars(r)["id"]

	if err := h.members.Remove(r.Context(), orgID, membershipID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
