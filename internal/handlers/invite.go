package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/invites"
	"github.com/hourlyx/hourlyx-api/internal/limits"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/rs/zerolog"
)

type InviteHandler struct {
	ledger  *invites.Ledger
	limiter *limits.Limiter
	guard   *Guard
	logger  zerolog.Logger
}

type createInviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewInviteHandler(ledger *invites.Ledger, limiter *limits.Limiter, guard *Guard, logger zerolog.Logger) *InviteHandler {
	return &InviteHandler{ledger: ledger, limiter: limiter, guard: guard, logger: logger}
}

// CreateInvite issues an invitation from the caller's organization. Requires
// management role (middleware), write access and a free trial slot.
func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	userID, _ := authz.UserIDFromRequest(r)

	decision, err := h.guard.Decision(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !decision.CanInvite {
		http.Error(w, "trial ended or no active subscription; invitations are disabled", http.StatusForbidden)
		return
	}
	if err := h.limiter.Require(r.Context(), decision, limits.ResourceInvitation, orgID); err != nil {
		writeError(w, err)
		return
	}

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	role := models.RoleEmployee
	if strings.TrimSpace(req.Role) != "" {
		role = models.ParseRole(req.Role)
		if !models.IsValidRole(role) {
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		}
	}

	inv, token, err := h.ledger.Issue(r.Context(), orgID, req.Email, role, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The raw token is returned exactly once.
	writeJSON(w, http.StatusCreated, struct {
		ID        string      `json:"id"`
		Email     string      `json:"email"`
		Role      models.Role `json:"role"`
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expires_at"`
	}{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role,
		Token:     token,
		ExpiresAt: inv.ExpiresAt,
	})
}

// PreviewInvite is the unauthenticated token check used by the signup page.
func (h *InviteHandler) PreviewInvite(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	preview, err := h.ledger.CheckToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// ListInvites returns the organization's invitations for management.
func (h *InviteHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	invitations, err := h.ledger.List(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

// CancelInvite cancels a pending invitation of the caller's organization.
func (h *InviteHandler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	id := mux.Vars(r)["id"]

	if err := h.ledger.Cancel(r.Context(), id, orgID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
