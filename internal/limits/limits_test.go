package limits

import (
	"context"
	"testing"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/policy"
)

type fakeUsage struct {
	employees   int
	timeEntries int
	invitations int
}

func (f *fakeUsage) CountEmployees(ctx context.Context, orgID string) (int, error) {
	return f.employees, nil
}

func (f *fakeUsage) CountTimeEntries(ctx context.Context, orgID string) (int, error) {
	return f.timeEntries, nil
}

func (f *fakeUsage) CountOpenInvitations(ctx context.Context, orgID string) (int, error) {
	return f.invitations, nil
}

func trialDecision() policy.Decision {
	return policy.Decision{Access: policy.AccessFull, IsTrialActive: true, HasOrganization: true}
}

func paidDecision() policy.Decision {
	return policy.Decision{Access: policy.AccessFull, HasActiveSubscription: true, HasOrganization: true}
}

func testCaps() Caps {
	return Caps{MaxEmployees: 3, MaxTimeEntries: 50, MaxInvitations: 5}
}

func TestCheckLimitUnderTrial(t *testing.T) {
	tests := []struct {
		name  string
		usage fakeUsage
		kind  ResourceKind
		want  bool
	}{
		{"employees below cap", fakeUsage{employees: 2}, ResourceEmployee, true},
		{"employees at cap", fakeUsage{employees: 3}, ResourceEmployee, false},
		{"employees above cap", fakeUsage{employees: 4}, ResourceEmployee, false},
		{"entries below cap", fakeUsage{timeEntries: 49}, ResourceTimeEntry, true},
		{"entries at cap", fakeUsage{timeEntries: 50}, ResourceTimeEntry, false},
		{"invitations below cap", fakeUsage{invitations: 4}, ResourceInvitation, true},
		{"invitations at cap", fakeUsage{invitations: 5}, ResourceInvitation, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLimiter(&tc.usage, testCaps())
			ok, err := l.CheckLimit(context.Background(), trialDecision(), tc.kind, "org-1")
			if err != nil {
				t.Fatalf("CheckLimit: %v", err)
			}
			if ok != tc.want {
				t.Errorf("CheckLimit = %v, want %v", ok, tc.want)
			}
		})
	}
}

func TestCheckLimitSkippedWhenCapsLifted(t *testing.T) {
	// Usage far past every cap; a paid subscription still passes.
	l := NewLimiter(&fakeUsage{employees: 100, timeEntries: 1000, invitations: 100}, testCaps())

	for _, kind := range []ResourceKind{ResourceEmployee, ResourceTimeEntry, ResourceInvitation} {
		ok, err := l.CheckLimit(context.Background(), paidDecision(), kind, "org-1")
		if err != nil {
			t.Fatalf("CheckLimit(%s): %v", kind, err)
		}
		if !ok {
			t.Errorf("CheckLimit(%s) = false with caps lifted", kind)
		}
	}
}

func TestRemaining(t *testing.T) {
	l := NewLimiter(&fakeUsage{employees: 1, timeEntries: 60, invitations: 5}, testCaps())
	ctx := context.Background()

	if got, _ := l.Remaining(ctx, trialDecision(), ResourceEmployee, "org-1"); got != 2 {
		t.Errorf("Remaining(employee) = %d, want 2", got)
	}
	// Overshoot clamps to zero rather than going negative.
	if got, _ := l.Remaining(ctx, trialDecision(), ResourceTimeEntry, "org-1"); got != 0 {
		t.Errorf("Remaining(time_entry) = %d, want 0", got)
	}
	if got, _ := l.Remaining(ctx, trialDecision(), ResourceInvitation, "org-1"); got != 0 {
		t.Errorf("Remaining(invitation) = %d, want 0", got)
	}
	if got, _ := l.Remaining(ctx, paidDecision(), ResourceEmployee, "org-1"); got != Unlimited {
		t.Errorf("Remaining with caps lifted = %d, want Unlimited", got)
	}
}

func TestRequireReturnsTypedError(t *testing.T) {
	l := NewLimiter(&fakeUsage{invitations: 5}, testCaps())

	err := l.Require(context.Background(), trialDecision(), ResourceInvitation, "org-1")
	if !models.IsKind(err, models.KindTrialLimitReached) {
		t.Fatalf("Require = %v, want KindTrialLimitReached", err)
	}

	if err := l.Require(context.Background(), paidDecision(), ResourceInvitation, "org-1"); err != nil {
		t.Fatalf("Require with caps lifted = %v, want nil", err)
	}
}
