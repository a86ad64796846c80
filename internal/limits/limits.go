// Package limits enforces the trial resource caps. The caps are a soft,
// UX-level gate; the authoritative boundary is the datastore's row-level
// policy layer, and a brief check-then-act overshoot under concurrency is
// tolerated.
package limits

import (
	"context"
	"math"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/policy"
)

// ResourceKind names a trial-capped resource.
type ResourceKind string

const (
	ResourceEmployee   ResourceKind = "employee"
	ResourceTimeEntry  ResourceKind = "time_entry"
	ResourceInvitation ResourceKind = "invitation"
)

// Unlimited is the remaining-count sentinel when caps do not apply.
const Unlimited = math.MaxInt

// UsageRepository reports current per-organization resource totals.
// Invitations count pending plus accepted; cancelled and expired invitations
// do not count against the cap.
type UsageRepository interface {
	CountEmployees(ctx context.Context, orgID string) (int, error)
	CountTimeEntries(ctx context.Context, orgID string) (int, error)
	CountOpenInvitations(ctx context.Context, orgID string) (int, error)
}

// Caps holds the fixed trial maxima.
type Caps struct {
	MaxEmployees   int
	MaxTimeEntries int
	MaxInvitations int
}

// Limiter compares current usage against the trial caps. Caps apply only
// while the policy decision reports an active trial without a paid
// subscription.
type Limiter struct {
	usage UsageRepository
	caps  Caps
}

func NewLimiter(usage UsageRepository, caps Caps) *Limiter {
	return &Limiter{usage: usage, caps: caps}
}

func (l *Limiter) cap(kind ResourceKind) int {
	switch kind {
	case ResourceEmployee:
		return l.caps.MaxEmployees
	case ResourceTimeEntry:
		return l.caps.MaxTimeEntries
	case ResourceInvitation:
		return l.caps.MaxInvitations
	default:
		return 0
	}
}

func (l *Limiter) count(ctx context.Context, kind ResourceKind, orgID string) (int, error) {
	switch kind {
	case ResourceEmployee:
		return l.usage.CountEmployees(ctx, orgID)
	case ResourceTimeEntry:
		return l.usage.CountTimeEntries(ctx, orgID)
	case ResourceInvitation:
		return l.usage.CountOpenInvitations(ctx, orgID)
	default:
		return 0, nil
	}
}

// CheckLimit reports whether one more resource of the given kind may be
// created. It passes unconditionally when the decision says caps do not
// apply.
func (l *Limiter) CheckLimit(ctx context.Context, decision policy.Decision, kind ResourceKind, orgID string) (bool, error) {
	if !decision.LimitsApply() {
		return true, nil
	}
	current, err := l.count(ctx, kind, orgID)
	if err != nil {
		return false, err
	}
	return current < l.cap(kind), nil
}

// Remaining returns how many more resources of the given kind the trial
// allows, or Unlimited when caps do not apply.
func (l *Limiter) Remaining(ctx context.Context, decision policy.Decision, kind ResourceKind, orgID string) (int, error) {
	if !decision.LimitsApply() {
		return Unlimited, nil
	}
	current, err := l.count(ctx, kind, orgID)
	if err != nil {
		return 0, err
	}
	remaining := l.cap(kind) - current
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Require is CheckLimit with a typed failure for mutation paths.
func (l *Limiter) Require(ctx context.Context, decision policy.Decision, kind ResourceKind, orgID string) error {
	ok, err := l.CheckLimit(ctx, decision, kind, orgID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewError(models.KindTrialLimitReached, "trial limit reached for "+string(kind))
	}
	return nil
}
