package handlers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/policy"
	"github.com/hourlyx/hourlyx-api/internal/repository"
)

// Guard loads the organization and subscription records and evaluates the
// access decision for them. It is invoked on every access-sensitive request;
// the decision is never cached across requests, because trial expiry moves
// on its own.
type Guard struct {
	orgs repository.OrganizationRepository
	subs repository.SubscriptionRepository
}

func NewGuard(orgs repository.OrganizationRepository, subs repository.SubscriptionRepository) *Guard {
	return &Guard{orgs: orgs, subs: subs}
}

// Decision computes the current access decision for the organization.
func (g *Guard) Decision(ctx context.Context, orgID string) (policy.Decision, error) {
	org, err := g.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return policy.Evaluate(nil, nil, time.Now()), nil
		}
		return policy.Decision{}, err
	}

	var sub *models.Subscription
	if s, err := g.subs.GetSubscriptionByOrganization(ctx, orgID); err == nil {
		sub = &s
	} else if !errors.Is(err, sql.ErrNoRows) {
		return policy.Decision{}, err
	}

	return policy.Evaluate(&org, sub, time.Now()), nil
}
