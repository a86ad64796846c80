// Package payment is the boundary to the payment provider. Provider
// internals stay out of this core: checkout and portal sessions are hosted
// URLs, and subscription status flows back through a signature-verified
// webhook into the subscriptions table the policy engine reads.
package payment

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// Provider creates redirect URLs for the hosted checkout and billing portal.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, orgID, email string) (string, error)
	CreateBillingPortalSession(ctx context.Context, orgID, email string) (string, error)
}

// HostedProvider builds session URLs from configured hosted-page bases,
// tagging them with the organization reference so the provider's webhook can
// attribute events back to the tenant.
type HostedProvider struct {
	checkoutURL string
	portalURL   string
}

func NewHostedProvider(checkoutURL, portalURL string) (*HostedProvider, error) {
	if checkoutURL == "" || portalURL == "" {
		return nil, errors.New("billing checkout_url and portal_url must be configured")
	}
	return &HostedProvider{checkoutURL: checkoutURL, portalURL: portalURL}, nil
}

func (p *HostedProvider) CreateCheckoutSession(_ context.Context, orgID, email string) (string, error) {
	return buildSessionURL(p.checkoutURL, orgID, email)
}

func (p *HostedProvider) CreateBillingPortalSession(_ context.Context, orgID, email string) (string, error) {
	return buildSessionURL(p.portalURL, orgID, email)
}

func buildSessionURL(base, orgID, email string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "parse billing url")
	}
	q := u.Query()
	q.Set("client_reference_id", orgID)
	if email != "" {
		q.Set("prefilled_email", email)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
