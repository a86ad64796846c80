// Package activity appends audit-log entries for state transitions. Recording
// is best effort: failures are logged and swallowed so the audit trail never
// blocks the action it describes.
package activity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/rs/zerolog"
)

// DefaultCooldown collapses duplicate (action, user) events fired in quick
// succession, e.g. a session rehydration re-triggering a login event.
const DefaultCooldown = 30 * time.Second

// Recorder writes audit entries with in-memory duplicate suppression. The
// cooldown state is per process and lost on restart, which is acceptable.
type Recorder struct {
	repo     repository.ActivityRepository
	logger   zerolog.Logger
	cooldown time.Duration

	mu       sync.Mutex
	lastSeen map[string]time.Time

	now func() time.Time
}

func NewRecorder(repo repository.ActivityRepository, logger zerolog.Logger, cooldown time.Duration) *Recorder {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Recorder{
		repo:     repo,
		logger:   logger.With().Str("component", "activity").Logger(),
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Record appends one audit entry unless an identical (actionType, userID)
// pair was recorded within the cooldown window.
func (r *Recorder) Record(ctx context.Context, orgID, userID, actionType, description string, metadata map[string]interface{}) {
	if !r.shouldRecord(actionType, userID) {
		return
	}

	var raw json.RawMessage
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			r.logger.Warn().Err(err).Str("action_type", actionType).Msg("failed to encode activity metadata")
		} else {
			raw = encoded
		}
	}

	entry := models.ActivityEntry{
		OrganizationID: orgID,
		UserID:         userID,
		ActionType:     actionType,
		Description:    description,
		Metadata:       raw,
	}
	if err := r.repo.InsertActivity(ctx, entry); err != nil {
		r.logger.Warn().Err(err).
			Str("action_type", actionType).
			Str("user_id", userID).
			Msg("failed to record activity")
	}
}

func (r *Recorder) shouldRecord(actionType, userID string) bool {
	key := actionType + "|" + userID
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.lastSeen[key]; ok && now.Sub(last) < r.cooldown {
		return false
	}
	r.lastSeen[key] = now
	r.evictStale(now)
	return true
}

// evictStale drops entries older than the cooldown so the map stays bounded
// to recent activity. Called under the mutex.
func (r *Recorder) evictStale(now time.Time) {
	for key, seen := range r.lastSeen {
		if now.Sub(seen) >= r.cooldown {
			delete(r.lastSeen, key)
		}
	}
}
