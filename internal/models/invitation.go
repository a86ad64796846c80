package models

import "time"

// InvitationStatus tracks the lifecycle of an invitation. A pending
// invitation moves to exactly one terminal state and never back.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Invitation is a single-use, token-redeemable offer to join an organization
// with a proposed role. Only the SHA-256 hash of the token is persisted; the
// raw token is returned once at issue time and acts as a bearer credential.
type Invitation struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organization_id"`
	Email          string           `json:"email"`
	Role           Role             `json:"role"`
	TokenHash      string           `json:"-"`
	Status         InvitationStatus `json:"status"`
	InvitedBy      *string          `json:"invited_by,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// IsExpired computes expiry lazily from the stored deadline. A persisted
// "expired" status and this check must agree; the deadline wins.
func (i Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsPending reports whether the invitation can still be redeemed, ignoring
// expiry.
func (i Invitation) IsPending() bool {
	return i.Status == InvitationPending
}
