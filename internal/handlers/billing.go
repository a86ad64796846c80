package handlers

import (
	"net/http"

	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/payment"
	"github.com/rs/zerolog"
)

type BillingHandler struct {
	provider  payment.Provider
	refresher *payment.Refresher
	logger    zerolog.Logger
}

func NewBillingHandler(provider payment.Provider, refresher *payment.Refresher, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{provider: provider, refresher: refresher, logger: logger}
}

// CreateCheckout returns the hosted checkout redirect URL.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	email, _ := authz.EmailFromRequest(r)

	url, err := h.provider.CreateCheckoutSession(r.Context(), orgID, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// CreateBillingPortal returns the hosted billing portal redirect URL.
func (h *BillingHandler) CreateBillingPortal(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)
	email, _ := authz.EmailFromRequest(r)

	url, err := h.provider.CreateBillingPortalSession(r.Context(), orgID, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// RefreshSubscription re-reads the webhook-maintained subscription record.
func (h *BillingHandler) RefreshSubscription(w http.ResponseWriter, r *http.Request) {
	orgID, _ := authz.OrgIDFromRequest(r)

	sub, err := h.refresher.RefreshSubscriptionStatus(r.Context(), orgID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
