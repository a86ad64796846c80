package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/rs/zerolog"
)

// BillingWebhookHandler receives subscription lifecycle events from the
// payment provider and mirrors them into the subscriptions table that the
// access policy engine reads.
type BillingWebhookHandler struct {
	secret        string
	subscriptions repository.SubscriptionRepository
	logger        zerolog.Logger
}

type billingEvent struct {
	EventType      string `json:"event_type"`
	OrganizationID string `json:"organization_id"`
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
}

func NewBillingWebhookHandler(secret string, subscriptions repository.SubscriptionRepository, logger zerolog.Logger) *BillingWebhookHandler {
	return &BillingWebhookHandler{secret: secret, subscriptions: subscriptions, logger: logger}
}

func (h *BillingWebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if !h.verifySignature(r, body) {
		h.logger.Warn().Msg("billing webhook with invalid signature rejected")
		http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
		return
	}

	var event billingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "invalid webhook payload", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(event.OrganizationID); err != nil {
		http.Error(w, "organization_id must be a valid UUID", http.StatusBadRequest)
		return
	}

	var status models.SubscriptionStatus
	switch event.EventType {
	case "subscription.activated", "subscription.updated":
		status = models.SubscriptionActive
	case "subscription.canceled", "subscription.expired":
		status = models.SubscriptionInactive
	default:
		h.logger.Info().Str("event_type", event.EventType).Msg("ignoring unhandled billing event")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	var subID, cusID *string
	if event.SubscriptionID != "" {
		subID = &event.SubscriptionID
	}
	if event.CustomerID != "" {
		cusID = &event.CustomerID
	}

	if _, err := h.subscriptions.UpdateSubscriptionStatus(r.Context(), event.OrganizationID, status, subID, cusID); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info().
		Str("organization_id", event.OrganizationID).
		Str("event_type", event.EventType).
		Str("status", string(status)).
		Msg("subscription status updated from webhook")
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// verifySignature checks the hex HMAC-SHA256 of the raw body against the
// shared webhook secret, in constant time.
func (h *BillingWebhookHandler) verifySignature(r *http.Request, body []byte) bool {
	if h.secret == "" {
		return false
	}
	signature := r.Header.Get("X-Webhook-Signature")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
