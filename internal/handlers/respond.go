package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string      `json:"error"`
	Kind  models.Kind `json:"kind,omitempty"`
}

// statusForKind maps the stable error kinds onto HTTP statuses. Handlers
// never inspect error strings.
func statusForKind(kind models.Kind) int {
	switch kind {
	case models.KindNotAuthenticated:
		return http.StatusUnauthorized
	case models.KindInvitationNotFound:
		return http.StatusNotFound
	case models.KindInvitationExpired:
		return http.StatusGone
	case models.KindInvitationAlreadyUsed,
		models.KindOrganizationCodeTaken,
		models.KindDuplicatePendingInvite,
		models.KindAlreadyOrgMember,
		models.KindLastManagementUser,
		models.KindCreatorRoleProtected:
		return http.StatusConflict
	case models.KindEmailMismatch, models.KindOrganizationCodeInvalid:
		return http.StatusBadRequest
	case models.KindTrialLimitReached:
		return http.StatusForbidden
	case models.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	if kind := models.KindOf(err); kind != "" {
		writeJSON(w, statusForKind(kind), errorResponse{Error: err.Error(), Kind: kind})
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
