package handlers

import (
	"net/http"
	"strconv"

	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/rs/zerolog"
)

type ActivityHandler struct {
	activity repository.ActivityRepository
	logger   zerolog.Logger
}

func NewActivityHandler(activity repository.ActivityRepository, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, logger: logger}
}

// ListActivity returns the organization's audit log for management.
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.activity.ListActivityByOrganization(r.Context(), orgID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
