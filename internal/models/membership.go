package models

import "time"

// Membership binds one profile to exactly one organization with a role.
// The storage layer enforces at most one membership per profile.
type Membership struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Role           Role      `json:"role"`
	IsOrgCreator   bool      `json:"is_org_creator"`
	CreatedAt      time.Time `json:"created_at"`
}
