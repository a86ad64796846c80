package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/handlers"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Onboarding *handlers.OnboardingHandler
	Access     *handlers.AccessHandler
	Invites    *handlers.InviteHandler
	Members    *handlers.MembersHandler
	Entries    *handlers.EntriesHandler
	Billing    *handlers.BillingHandler
	Activity   *handlers.ActivityHandler
	Webhook    *handlers.BillingWebhookHandler
}

// NewRouter sets up the API routes.
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	// Public endpoints
	router.HandleFunc("/api/signup", h.Auth.SignUp).Methods(http.MethodPost)
	router.HandleFunc("/api/login", h.Auth.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/invites/preview/{token}", h.Invites.PreviewInvite).Methods(http.MethodGet)
	router.HandleFunc("/api/webhooks/billing", h.Webhook.HandleEvent).Methods(http.MethodPost)

	// Authenticated endpoints
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(h.Auth.JWTMiddleware)

	authed.HandleFunc("/onboarding/assign", h.Onboarding.Assign).Methods(http.MethodPost)

	// Member endpoints: any role within an organization
	member := authed.NewRoute().Subrouter()
	member.Use(authz.RequireMember)
	member.HandleFunc("/access", h.Access.GetAccess).Methods(http.MethodGet)
	member.HandleFunc("/entries", h.Entries.CreateEntry).Methods(http.MethodPost)
	member.HandleFunc("/entries", h.Entries.ListEntries).Methods(http.MethodGet)

	// Management endpoints
	mgmt := authed.NewRoute().Subrouter()
	mgmt.Use(authz.RequireManagement)
	mgmt.HandleFunc("/invites", h.Invites.CreateInvite).Methods(http.MethodPost)
	mgmt.HandleFunc("/invites", h.Invites.ListInvites).Methods(http.MethodGet)
	mgmt.HandleFunc("/invites/{id}", h.Invites.CancelInvite).Methods(http.MethodDelete)
	mgmt.HandleFunc("/members", h.Members.ListMembers).Methods(http.MethodGet)
	mgmt.HandleFunc("/members/{id}/role", h.Members.UpdateMemberRole).Methods(http.MethodPut)
	mgmt.HandleFunc("/members/{id}", h.Members.RemoveMember).Methods(http.MethodDelete)
	mgmt.HandleFunc("/billing/checkout", h.Billing.CreateCheckout).Methods(http.MethodPost)
	mgmt.HandleFunc("/billing/portal", h.Billing.CreateBillingPortal).Methods(http.MethodPost)
	mgmt.HandleFunc("/billing/subscription", h.Billing.RefreshSubscription).Methods(http.MethodGet)
	mgmt.HandleFunc("/activity", h.Activity.ListActivity).Methods(http.MethodGet)

	return router
}
