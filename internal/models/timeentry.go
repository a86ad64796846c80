package models

import "time"

// TimeEntry is one logged block of work, scoped to an organization.
type TimeEntry struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	EntryDate      time.Time `json:"entry_date"`
	Hours          float64   `json:"hours"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}
