package models

import "time"

// SubscriptionStatus mirrors the payment provider's view of an organization.
// Only "active" is authoritative for access decisions; "trial" and "inactive"
// are informational mirrors of state the policy engine derives from dates.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrial    SubscriptionStatus = "trial"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Subscription is the one-to-one billing record for an organization.
type Subscription struct {
	ID                     string             `json:"id"`
	OrganizationID         string             `json:"organization_id"`
	Status                 SubscriptionStatus `json:"status"`
	ProviderSubscriptionID *string            `json:"provider_subscription_id,omitempty"`
	ProviderCustomerID     *string            `json:"provider_customer_id,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// IsActive reports whether a paid subscription is in force.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionActive
}
