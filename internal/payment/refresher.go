package payment

import (
	"context"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	refreshTimeout     = 5 * time.Second
	refreshMaxRetries  = 1
	refreshInitialWait = 500 * time.Millisecond
)

// Refresher re-reads the webhook-maintained subscription record. A slow
// datastore gets one bounded retry with backoff before surfacing a typed
// timeout; there are no silent retry loops.
type Refresher struct {
	subscriptions repository.SubscriptionRepository
	logger        zerolog.Logger
}

func NewRefresher(subscriptions repository.SubscriptionRepository, logger zerolog.Logger) *Refresher {
	return &Refresher{
		subscriptions: subscriptions,
		logger:        logger.With().Str("component", "payment").Logger(),
	}
}

// RefreshSubscriptionStatus returns the current subscription record for the
// organization, retrying once on timeout.
func (r *Refresher) RefreshSubscriptionStatus(ctx context.Context, orgID string) (models.Subscription, error) {
	var sub models.Subscription

	backoff := retry.WithMaxRetries(refreshMaxRetries, retry.NewExponential(refreshInitialWait))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()

		var err error
		sub, err = r.subscriptions.GetSubscriptionByOrganization(attemptCtx, orgID)
		if errors.Is(err, context.DeadlineExceeded) {
			r.logger.Warn().Str("organization_id", orgID).Msg("subscription refresh timed out; retrying")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Subscription{}, models.NewError(models.KindTimeout, "subscription status refresh timed out")
		}
		return models.Subscription{}, err
	}
	return sub, nil
}
