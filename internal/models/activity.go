package models

import (
	"encoding/json"
	"time"
)

// ActivityEntry is one immutable row of the per-organization audit log.
type ActivityEntry struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	UserID         string          `json:"user_id"`
	ActionType     string          `json:"action_type"`
	Description    string          `json:"description"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
