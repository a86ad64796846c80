// Package assigner resolves a newly authenticated identity to exactly one
// organization and role, either by redeeming an invitation or by creating a
// new organization with a fresh trial window.
package assigner

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/invites"
	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Identity is the authenticated caller, threaded in explicitly rather than
// read from ambient state.
type Identity struct {
	UserID        string
	Email         string
	FullName      string
	EmailVerified bool
}

// Input selects one of the two mutually exclusive assignment paths.
type Input struct {
	InviteToken      string
	OrganizationCode string
	OrganizationName string
}

// Result describes the resolved binding. AlreadyAssigned marks the
// idempotent branch: the identity had a membership before this call and
// nothing was modified.
type Result struct {
	OrganizationID  string      `json:"organization_id"`
	Role            models.Role `json:"role"`
	IsNewOrg        bool        `json:"is_new_org"`
	AlreadyAssigned bool        `json:"already_assigned"`
}

// ActivityRecorder is the audit sink; recording never fails the assignment.
type ActivityRecorder interface {
	Record(ctx context.Context, orgID, userID, actionType, description string, metadata map[string]interface{})
}

type Service struct {
	orgs          repository.OrganizationRepository
	memberships   repository.MembershipRepository
	invitations   repository.InvitationRepository
	subscriptions repository.SubscriptionRepository
	recorder      ActivityRecorder

	ownerEmail           string
	requireVerifiedEmail bool
	trialDuration        time.Duration
	logger               zerolog.Logger
	now                  func() time.Time
}

func NewService(
	orgs repository.OrganizationRepository,
	memberships repository.MembershipRepository,
	invitations repository.InvitationRepository,
	subscriptions repository.SubscriptionRepository,
	recorder ActivityRecorder,
	ownerEmail string,
	requireVerifiedEmail bool,
	trialDuration time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		orgs:                 orgs,
		memberships:          memberships,
		invitations:          invitations,
		subscriptions:        subscriptions,
		recorder:             recorder,
		ownerEmail:           strings.ToLower(strings.TrimSpace(ownerEmail)),
		requireVerifiedEmail: requireVerifiedEmail,
		trialDuration:        trialDuration,
		logger:               logger.With().Str("component", "assigner").Logger(),
		now:                  time.Now,
	}
}

// Assign resolves the identity to one organization and role. Calling it again
// for an already-assigned identity is a no-op success, which guards against
// duplicate submits and page-refresh retries.
func (s *Service) Assign(ctx context.Context, identity Identity, input Input) (Result, error) {
	if identity.UserID == "" {
		return Result{}, models.NewError(models.KindNotAuthenticated, "authentication required")
	}
	if s.requireVerifiedEmail && !identity.EmailVerified {
		return Result{}, models.NewError(models.KindNotAuthenticated, "email address must be verified first")
	}

	if existing, err := s.memberships.GetMembershipByUserID(ctx, identity.UserID); err == nil {
		return Result{
			OrganizationID:  existing.OrganizationID,
			Role:            existing.Role,
			AlreadyAssigned: true,
		}, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return Result{}, errors.Wrap(err, "look up existing membership")
	}

	var (
		orgID      string
		role       models.Role
		isNewOrg   bool
		redeemedID string
	)

	if input.InviteToken != "" {
		inv, err := s.redeemInvitation(ctx, identity, input.InviteToken)
		if err != nil {
			if res, ok := s.recheckAssigned(ctx, identity, err); ok {
				return res, nil
			}
			return Result{}, err
		}
		orgID = inv.OrganizationID
		role = inv.Role
		redeemedID = inv.ID
	} else {
		org, err := s.createOrganization(ctx, input)
		if err != nil {
			if res, ok := s.recheckAssigned(ctx, identity, err); ok {
				return res, nil
			}
			return Result{}, err
		}
		orgID = org.ID
		role = models.RoleManagement
		isNewOrg = true
	}

	// Operational escape hatch: the configured owner account is always
	// management, regardless of path.
	if s.ownerEmail != "" && strings.EqualFold(identity.Email, s.ownerEmail) {
		role = models.RoleManagement
	}

	membership, err := s.memberships.CreateMembership(ctx, identity.UserID, orgID, role, isNewOrg)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a double-submit race; the storage-level uniqueness
			// constraint is the authoritative guard. Observe the winner.
			existing, lookupErr := s.memberships.GetMembershipByUserID(ctx, identity.UserID)
			if lookupErr != nil {
				return Result{}, errors.Wrap(lookupErr, "look up membership after duplicate insert")
			}
			return Result{
				OrganizationID:  existing.OrganizationID,
				Role:            existing.Role,
				AlreadyAssigned: true,
			}, nil
		}
		if redeemedID != "" {
			// The invitation was consumed but no membership materialized;
			// put it back so the token stays redeemable.
			if revertErr := s.invitations.ReopenInvitation(ctx, redeemedID); revertErr != nil {
				s.logger.Error().Err(revertErr).Str("invitation_id", redeemedID).Msg("failed to reopen invitation after membership insert failure")
			}
		}
		return Result{}, errors.Wrap(err, "create membership")
	}

	if isNewOrg {
		if _, err := s.subscriptions.CreateSubscription(ctx, orgID, models.SubscriptionTrial); err != nil {
			s.logger.Error().Err(err).Str("organization_id", orgID).Msg("failed to create trial subscription")
		}
	}

	actionType := "user_registered"
	description := "User " + displayName(identity) + " created organization"
	if input.InviteToken != "" {
		actionType = "invitation_accepted"
		description = "User " + displayName(identity) + " joined via invitation"
	}
	s.recorder.Record(ctx, orgID, identity.UserID, actionType, description, map[string]interface{}{
		"is_new_org":      isNewOrg,
		"role":            membership.Role,
		"from_invitation": input.InviteToken != "",
	})

	s.logger.Info().
		Str("user_id", identity.UserID).
		Str("organization_id", orgID).
		Str("role", string(membership.Role)).
		Bool("is_new_org", isNewOrg).
		Msg("identity assigned to organization")

	return Result{
		OrganizationID: orgID,
		Role:           membership.Role,
		IsNewOrg:       isNewOrg,
	}, nil
}

// recheckAssigned re-reads the membership after an assignment path failed
// with a kind a lost double-submit race can produce. The fast-path lookup may
// observe stale state; if a concurrent call for the same identity won in the
// meantime, this call must still resolve to the idempotent success rather
// than surface the loser's error.
func (s *Service) recheckAssigned(ctx context.Context, identity Identity, cause error) (Result, bool) {
	switch models.KindOf(cause) {
	case models.KindOrganizationCodeTaken, models.KindInvitationAlreadyUsed:
	default:
		return Result{}, false
	}
	existing, err := s.memberships.GetMembershipByUserID(ctx, identity.UserID)
	if err != nil {
		return Result{}, false
	}
	return Result{
		OrganizationID:  existing.OrganizationID,
		Role:            existing.Role,
		AlreadyAssigned: true,
	}, true
}

func (s *Service) redeemInvitation(ctx context.Context, identity Identity, token string) (models.Invitation, error) {
	inv, err := s.invitations.GetInvitationByTokenHash(ctx, invites.HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invitation{}, models.NewError(models.KindInvitationNotFound, "invitation does not exist")
		}
		return models.Invitation{}, errors.Wrap(err, "look up invitation")
	}

	if !inv.IsPending() {
		return models.Invitation{}, models.NewError(models.KindInvitationAlreadyUsed, "invitation was already used or cancelled")
	}
	if inv.IsExpired(s.now()) {
		return models.Invitation{}, models.NewError(models.KindInvitationExpired, "invitation has expired")
	}
	if !strings.EqualFold(inv.Email, identity.Email) {
		return models.Invitation{}, models.NewError(models.KindEmailMismatch, "email does not match the invitation")
	}

	// Conditional update on status='pending': exactly one concurrent
	// redemption wins, the rest land here with no rows.
	accepted, err := s.invitations.AcceptPendingInvitation(ctx, inv.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invitation{}, models.NewError(models.KindInvitationAlreadyUsed, "invitation was already used")
		}
		return models.Invitation{}, errors.Wrap(err, "accept invitation")
	}
	return accepted, nil
}

func (s *Service) createOrganization(ctx context.Context, input Input) (models.Organization, error) {
	code, err := models.NormalizeOrgCode(input.OrganizationCode)
	if err != nil {
		return models.Organization{}, err
	}

	// Joining an existing organization by code alone is disallowed: tenant
	// access requires an invitation.
	if _, err := s.orgs.GetOrganizationByCode(ctx, code); err == nil {
		return models.Organization{}, models.NewError(models.KindOrganizationCodeTaken, "organization code is already taken; joining requires an invitation")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.Organization{}, errors.Wrap(err, "look up organization by code")
	}

	name := strings.TrimSpace(input.OrganizationName)
	if name == "" {
		name = code
	}

	now := s.now()
	org, err := s.orgs.CreateOrganization(ctx, code, name, now, now.Add(s.trialDuration))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Organization{}, models.NewError(models.KindOrganizationCodeTaken, "organization code is already taken; joining requires an invitation")
		}
		return models.Organization{}, errors.Wrap(err, "create organization")
	}
	return org, nil
}

func displayName(identity Identity) string {
	if identity.FullName != "" {
		return identity.FullName
	}
	return identity.Email
}
