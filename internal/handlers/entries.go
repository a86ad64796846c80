package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/activity"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/limits"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/rs/zerolog"
)

type EntriesHandler struct {
	entries  repository.TimeEntryRepository
	limiter  *limits.Limiter
	guard    *Guard
	recorder *activity.Recorder
	logger   zerolog.Logger
}

type createEntryRequest struct {
	EntryDate   string  `json:"entry_date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func NewEntriesHandler(entries repository.TimeEntryRepository, limiter *limits.Limiter, guard *Guard, recorder *activity.Recorder, logger zerolog.Logger) *EntriesHandler {
	return &EntriesHandler{entries: entries, limiter: limiter, guard: guard, recorder: recorder, logger: logger}
}

// CreateEntry logs hours for the caller, gated by write access and the trial
// entry cap.
func (h *EntriesHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	userID, _ := authz.UserIDFromRequest(r)

	decision, err := h.guard.Decision(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !decision.CanWrite {
		http.Error(w, "trial ended or no active subscription; account is read-only", http.StatusForbidden)
		return
	}
	if err := h.limiter.Require(r.Context(), decision, limits.ResourceTimeEntry, orgID); err != nil {
		writeError(w, err)
		return
	}

	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	entryDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.EntryDate))
	if err != nil {
		http.Error(w, "entry_date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if req.Hours <= 0 || req.Hours > 24 {
		http.Error(w, "hours must be between 0 and 24", http.StatusBadRequest)
		return
	}

	entry, err := h.entries.CreateTimeEntry(r.Context(), models.TimeEntry{
		OrganizationID: orgID,
		UserID:         userID,
		EntryDate:      entryDate,
		Hours:          req.Hours,
		Description:    strings.TrimSpace(req.Description),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.recorder.Record(r.Context(), orgID, userID, "time_entry_created", "Time entry logged", map[string]interface{}{
		"entry_id": entry.ID,
		"hours":    entry.Hours,
	})

	writeJSON(w, http.StatusCreated, entry)
}

// ListEntries returns the caller's own entries; management sees the whole
// organization.
func (h *EntriesHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	userID, _ := authz.UserIDFromRequest(r)
	role, _ := authz.RoleFromRequest(r)

	var (
		entries []models.TimeEntry
		err     error
	)
	if role == models.RoleManagement {
		entries, err = h.entries.ListTimeEntriesByOrganization(r.Context(), orgID)
	} else {
		entries, err = h.entries.ListTimeEntriesByUser(r.Context(), orgID, userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
