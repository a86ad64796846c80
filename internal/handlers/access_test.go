package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/authz"
	"github.com/hourlyx/hourlyx-api/internal/limits"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/policy"
	"github.com/rs/zerolog"
)

type fakeOrganizations struct {
	byID map[string]models.Organization
}

func (f *fakeOrganizations) CreateOrganization(ctx context.Context, code, name string, trialStart, trialEnd time.Time) (models.Organization, error) {
	org := models.Organization{ID: "org-" + code, Code: code, Name: name, TrialStartAt: trialStart, TrialEndAt: trialEnd}
	f.byID[org.ID] = org
	return org, nil
}

func (f *fakeOrganizations) GetOrganizationByID(ctx context.Context, id string) (models.Organization, error) {
	org, ok := f.byID[id]
	if !ok {
		return models.Organization{}, sql.ErrNoRows
	}
	return org, nil
}

func (f *fakeOrganizations) GetOrganizationByCode(ctx context.Context, code string) (models.Organization, error) {
	for _, org := range f.byID {
		if org.Code == code {
			return org, nil
		}
	}
	return models.Organization{}, sql.ErrNoRows
}

type fixedUsage struct {
	employees   int
	timeEntries int
	invitations int
}

func (f fixedUsage) CountEmployees(ctx context.Context, orgID string) (int, error) {
	return f.employees, nil
}

func (f fixedUsage) CountTimeEntries(ctx context.Context, orgID string) (int, error) {
	return f.timeEntries, nil
}

func (f fixedUsage) CountOpenInvitations(ctx context.Context, orgID string) (int, error) {
	return f.invitations, nil
}

func accessFixture(org models.Organization, sub *models.Subscription, usage fixedUsage) *AccessHandler {
	orgs := &fakeOrganizations{byID: map[string]models.Organization{org.ID: org}}
	subs := &fakeSubscriptions{byOrg: map[string]models.Subscription{}}
	if sub != nil {
		subs.byOrg[org.ID] = *sub
	}
	limiter := limits.NewLimiter(usage, limits.Caps{MaxEmployees: 3, MaxTimeEntries: 50, MaxInvitations: 5})
	return NewAccessHandler(NewGuard(orgs, subs), limiter, zerolog.Nop())
}

func accessRequest(orgID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/access", nil)
	ctx := authz.WithIdentity(req.Context(), "user-1", "a@example.com", true, orgID, models.RoleEmployee)
	return req.WithContext(ctx)
}

func decodeAccess(t *testing.T, rec *httptest.ResponseRecorder) accessResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp accessResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestGetAccessDuringTrial(t *testing.T) {
	org := models.Organization{ID: "org-1", Code: "acme", TrialStartAt: time.Now().Add(-time.Hour), TrialEndAt: time.Now().Add(71 * time.Hour)}
	h := accessFixture(org, nil, fixedUsage{employees: 1, timeEntries: 10, invitations: 5})

	rec := httptest.NewRecorder()
	h.GetAccess(rec, accessRequest("org-1"))
	resp := decodeAccess(t, rec)

	if resp.Access != policy.AccessFull || !resp.CanWrite {
		t.Errorf("decision = %+v", resp.Decision)
	}
	if !resp.Limits.Apply {
		t.Fatal("limits should apply during an unpaid trial")
	}
	if resp.Limits.RemainingEmployees == nil || *resp.Limits.RemainingEmployees != 2 {
		t.Errorf("remaining employees = %v, want 2", resp.Limits.RemainingEmployees)
	}
	if resp.Limits.RemainingInvitations == nil || *resp.Limits.RemainingInvitations != 0 {
		t.Errorf("remaining invitations = %v, want 0", resp.Limits.RemainingInvitations)
	}
}

func TestGetAccessWithActiveSubscription(t *testing.T) {
	org := models.Organization{ID: "org-1", Code: "acme", TrialStartAt: time.Now().Add(-100 * time.Hour), TrialEndAt: time.Now().Add(-28 * time.Hour)}
	sub := &models.Subscription{ID: "sub-1", OrganizationID: "org-1", Status: models.SubscriptionActive}
	h := accessFixture(org, sub, fixedUsage{employees: 100})

	rec := httptest.NewRecorder()
	h.GetAccess(rec, accessRequest("org-1"))
	resp := decodeAccess(t, rec)

	if resp.Access != policy.AccessFull {
		t.Errorf("access = %q, want full", resp.Access)
	}
	if resp.Limits.Apply {
		t.Error("limits must not apply with an active subscription")
	}
	if resp.Limits.RemainingEmployees != nil {
		t.Errorf("remaining employees = %v, want null (unlimited)", *resp.Limits.RemainingEmployees)
	}
}

func TestGetAccessExpiredTrial(t *testing.T) {
	org := models.Organization{ID: "org-1", Code: "acme", TrialStartAt: time.Now().Add(-100 * time.Hour), TrialEndAt: time.Now().Add(-time.Hour)}
	h := accessFixture(org, nil, fixedUsage{})

	rec := httptest.NewRecorder()
	h.GetAccess(rec, accessRequest("org-1"))
	resp := decodeAccess(t, rec)

	if resp.Access != policy.AccessViewOnly || resp.CanWrite {
		t.Errorf("decision = %+v", resp.Decision)
	}
}

func TestGetAccessWithoutOrganization(t *testing.T) {
	h := accessFixture(models.Organization{ID: "org-1"}, nil, fixedUsage{})

	// No organization in the identity at all.
	req := httptest.NewRequest(http.MethodGet, "/api/access", nil)
	req = req.WithContext(authz.WithIdentity(req.Context(), "user-1", "a@example.com", true, "", ""))
	rec := httptest.NewRecorder()
	h.GetAccess(rec, req)
	if resp := decodeAccess(t, rec); resp.Access != policy.AccessBlocked {
		t.Errorf("access = %q, want blocked", resp.Access)
	}

	// Organization id that no longer resolves.
	rec = httptest.NewRecorder()
	h.GetAccess(rec, accessRequest("org-gone"))
	if resp := decodeAccess(t, rec); resp.Access != policy.AccessBlocked {
		t.Errorf("dangling org: access = %q, want blocked", resp.Access)
	}
}
