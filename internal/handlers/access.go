package handlers

import (
	"context"
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/limits"
	"github.com/hourlyx/hourlyx-api/internal/policy"
	"github.com/rs/zerolog"
)

type AccessHandler struct {
	guard   *Guard
	limiter *limits.Limiter
	logger  zerolog.Logger
}

func NewAccessHandler(guard *Guard, limiter *limits.Limiter, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{guard: guard, limiter: limiter, logger: logger}
}

type accessResponse struct {
	policy.Decision
	Limits limitsSnapshot `json:"limits"`
}

// limitsSnapshot reports remaining trial headroom; nil means unlimited.
type limitsSnapshot struct {
	Apply                bool `json:"apply"`
	RemainingEmployees   *int `json:"remaining_employees"`
	RemainingTimeEntries *int `json:"remaining_time_entries"`
	RemainingInvitations *int `json:"remaining_invitations"`
}

// GetAccess evaluates the caller's current access decision. Computed fresh
// per request.
func (h *AccessHandler) GetAccess(w http.ResponseWriter, r *http.Request) {
	orgID, ok := authz.OrgIDFromRequest(r)
	if !ok {
		writeJSON(w, http.StatusOK, accessResponse{Decision: policy.Decision{Access: policy.AccessBlocked}})
		return
	}

	decision, err := h.guard.Decision(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}

	snapshot := limitsSnapshot{Apply: decision.LimitsApply()}
	if snapshot.Apply {
		var err error
		if snapshot.RemainingEmployees, err = h.remaining(r.Context(), decision, limits.ResourceEmployee, orgID); err != nil {
			writeError(w, err)
			return
		}
		if snapshot.RemainingTimeEntries, err = h.remaining(r.Context(), decision, limits.ResourceTimeEntry, orgID); err != nil {
			writeError(w, err)
			return
		}
		if snapshot.RemainingInvitations, err = h.remaining(r.Context(), decision, limits.ResourceInvitation, orgID); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, accessResponse{Decision: decision, Limits: snapshot})
}

func (h *AccessHandler) remaining(ctx context.Context, decision policy.Decision, kind limits.ResourceKind, orgID string) (*int, error) {
	remaining, err := h.limiter.Remaining(ctx, decision, kind, orgID)
	if err != nil {
		return nil, err
	}
	if remaining == limits.Unlimited {
		return nil, nil
	}
	return &remaining, nil
}
