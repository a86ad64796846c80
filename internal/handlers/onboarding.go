package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/assigner"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/rs/zerolog"
)

type OnboardingHandler struct {
	assigner *assigner.Service
	logger   zerolog.Logger
}

type assignRequest struct {
	InviteToken      string `json:"invite_token"`
	OrganizationCode string `json:"organization_code"`
	OrganizationName string `json:"organization_name"`
}

func NewOnboardingHandler(svc *assigner.Service, logger zerolog.Logger) *OnboardingHandler {
	return &OnboardingHandler{assigner: svc, logger: logger}
}

// Assign resolves the authenticated caller to an organization and role.
// Safe to retry: a second call after success takes the idempotent branch.
func (h *OnboardingHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserIDFromRequest(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	email, _ := authz.EmailFromRequest(r)

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	identity := assigner.Identity{
		UserID:        userID,
		Email:         email,
		EmailVerified: authz.EmailVerifiedFromRequest(r),
	}
	result, err := h.assigner.Assign(r.Context(), identity, assigner.Input{
		InviteToken:      req.InviteToken,
		OrganizationCode: req.OrganizationCode,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
