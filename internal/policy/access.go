// Package policy computes the graduated access level for an organization from
// its trial window and subscription record. Evaluate is a pure function of its
// inputs and a clock; it carries no I/O and must be re-run on every
// access-sensitive action, because trial expiry is a moving boundary that
// crosses without any state-change event.
package policy

import (
	"math"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
)

// AccessLevel is the graduated permission state of an organization.
type AccessLevel string

const (
	AccessFull     AccessLevel = "full"
	AccessViewOnly AccessLevel = "view_only"
	AccessBlocked  AccessLevel = "blocked"
)

// Decision is the ephemeral, per-request access verdict. It is derived, never
// persisted.
type Decision struct {
	Access                AccessLevel `json:"access"`
	CanWrite              bool        `json:"can_write"`
	CanInvite             bool        `json:"can_invite"`
	IsTrialActive         bool        `json:"is_trial_active"`
	IsTrialExpired        bool        `json:"is_trial_expired"`
	HasActiveSubscription bool        `json:"has_active_subscription"`
	TrialDaysRemaining    int         `json:"trial_days_remaining"`
	TrialEndAt            *time.Time  `json:"trial_end_at,omitempty"`
	HasOrganization       bool        `json:"has_organization"`
}

// LimitsApply reports whether trial resource caps are in force. The trial
// limiter must use this exact flag rather than re-deriving it, so the two
// components can never disagree.
func (d Decision) LimitsApply() bool {
	return d.IsTrialActive && !d.HasActiveSubscription
}

// Evaluate applies the decision table: active subscription wins, then active
// trial, then expired trial (view-only), otherwise blocked. First match wins.
func Evaluate(org *models.Organization, sub *models.Subscription, now time.Time) Decision {
	if org == nil {
		return Decision{Access: AccessBlocked}
	}

	trialEnd := org.TrialEndAt
	isTrialActive := !trialEnd.IsZero() && trialEnd.After(now)
	isTrialExpired := !trialEnd.IsZero() && !trialEnd.After(now)
	hasActive := sub.IsActive()

	d := Decision{
		IsTrialActive:         isTrialActive,
		IsTrialExpired:        isTrialExpired,
		HasActiveSubscription: hasActive,
		HasOrganization:       true,
	}
	if !trialEnd.IsZero() {
		d.TrialEndAt = &trialEnd
	}

	switch {
	case hasActive:
		d.Access = AccessFull
	case isTrialActive:
		d.Access = AccessFull
		d.TrialDaysRemaining = int(math.Ceil(trialEnd.Sub(now).Hours() / 24))
	case isTrialExpired:
		d.Access = AccessViewOnly
	default:
		d.Access = AccessBlocked
	}

	d.CanWrite = d.Access == AccessFull
	d.CanInvite = d.Access == AccessFull
	return d
}
