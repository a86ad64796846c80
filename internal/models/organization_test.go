package models

import (
	"testing"
	"time"
)

func TestNormalizeOrgCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"acme", "acme", false},
		{"  Acme-Co  ", "acme-co", false},
		{"TEAM42", "team42", false},
		{"ab", "", true},
		{"", "", true},
		{"has space", "", true},
		{"under_score", "", true},
		{"dots.not.ok", "", true},
	}
	for _, tc := range tests {
		got, err := NormalizeOrgCode(tc.in)
		if tc.wantErr {
			if !IsKind(err, KindOrganizationCodeInvalid) {
				t.Errorf("NormalizeOrgCode(%q) err = %v, want KindOrganizationCodeInvalid", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeOrgCode(%q) err = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeOrgCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInvitationExpiryBoundary(t *testing.T) {
	deadline := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	inv := Invitation{ExpiresAt: deadline}

	if inv.IsExpired(deadline.Add(-time.Second)) {
		t.Error("one second before the deadline should not be expired")
	}
	if !inv.IsExpired(deadline) {
		t.Error("the deadline instant itself counts as expired")
	}
	if !inv.IsExpired(deadline.Add(time.Second)) {
		t.Error("past the deadline should be expired")
	}
}

func TestSubscriptionIsActiveNilSafe(t *testing.T) {
	var sub *Subscription
	if sub.IsActive() {
		t.Error("nil subscription reported active")
	}
	if (&Subscription{Status: SubscriptionTrial}).IsActive() {
		t.Error("trial status reported active")
	}
	if !(&Subscription{Status: SubscriptionActive}).IsActive() {
		t.Error("active status not reported active")
	}
}
