package repository

import (
	"context"
	"database/sql"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, orgID string, status models.SubscriptionStatus) (models.Subscription, error)
	GetSubscriptionByOrganization(ctx context.Context, orgID string) (models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, orgID string, status models.SubscriptionStatus, providerSubID, providerCustomerID *string) (models.Subscription, error)
}

type subscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, organization_id, status, provider_subscription_id, provider_customer_id, created_at, updated_at`

func scanSubscription(row *sql.Row) (models.Subscription, error) {
	var (
		sub         models.Subscription
		providerSub sql.NullString
		providerCus sql.NullString
	)
	err := row.Scan(&sub.ID, &sub.OrganizationID, &sub.Status, &providerSub, &providerCus, &sub.CreatedAt, &sub.UpdatedAt)
	if providerSub.Valid {
		sub.ProviderSubscriptionID = &providerSub.String
	}
	if providerCus.Valid {
		sub.ProviderCustomerID = &providerCus.String
	}
	return sub, err
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, orgID string, status models.SubscriptionStatus) (models.Subscription, error) {
	const query = `
		INSERT INTO subscriptions (organization_id, status)
		VALUES ($1, $2)
		ON CONFLICT (organization_id) DO NOTHING
		RETURNING ` + subscriptionColumns + `;
	`
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, orgID, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row already existed; hand back the current record.
			return r.GetSubscriptionByOrganization(ctx, orgID)
		}
		return models.Subscription{}, errors.Wrap(err, "create subscription")
	}
	return sub, nil
}

func (r *subscriptionRepository) GetSubscriptionByOrganization(ctx context.Context, orgID string) (models.Subscription, error) {
	const query = `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE organization_id = $1;
	`
	return scanSubscription(r.db.QueryRowContext(ctx, query, orgID))
}

func (r *subscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, orgID string, status models.SubscriptionStatus, providerSubID, providerCustomerID *string) (models.Subscription, error) {
	const query = `
		UPDATE subscriptions
		SET status = $2,
		    provider_subscription_id = COALESCE($3, provider_subscription_id),
		    provider_customer_id = COALESCE($4, provider_customer_id),
		    updated_at = now()
		WHERE organization_id = $1
		RETURNING ` + subscriptionColumns + `;
	`
	var subID, cusID interface{}
	if providerSubID != nil {
		subID = *providerSubID
	}
	if providerCustomerID != nil {
		cusID = *providerCustomerID
	}
	return scanSubscription(r.db.QueryRowContext(ctx, query, orgID, status, subID, cusID))
}
