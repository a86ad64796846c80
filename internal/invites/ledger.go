// Package invites issues, previews and cancels single-use invitation tokens.
package invites

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/notification"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Preview is the unauthenticated-safe view of an invitation, exposing only
// what the signup UI needs to render. Missing, used, expired and cancelled
// tokens are all reported uniformly as invalid with a reason.
type Preview struct {
	Valid            bool        `json:"valid"`
	Reason           string      `json:"reason,omitempty"`
	Email            string      `json:"email,omitempty"`
	Role             models.Role `json:"role,omitempty"`
	OrganizationName string      `json:"organization_name,omitempty"`
}

type Ledger struct {
	invitations repository.InvitationRepository
	memberships repository.MembershipRepository
	profiles    repository.ProfileRepository
	orgs        repository.OrganizationRepository
	mailer      notification.InviteMailer
	urlTpl      string
	ttl         time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

func NewLedger(
	invitations repository.InvitationRepository,
	memberships repository.MembershipRepository,
	profiles repository.ProfileRepository,
	orgs repository.OrganizationRepository,
	mailer notification.InviteMailer,
	inviteURLTemplate string,
	ttl time.Duration,
	logger zerolog.Logger,
) *Ledger {
	if inviteURLTemplate == "" {
		inviteURLTemplate = "https://app.hourlyx.app/auth?invite=%s"
	}
	return &Ledger{
		invitations: invitations,
		memberships: memberships,
		profiles:    profiles,
		orgs:        orgs,
		mailer:      mailer,
		urlTpl:      inviteURLTemplate,
		ttl:         ttl,
		logger:      logger.With().Str("component", "invites").Logger(),
		now:         time.Now,
	}
}

// Issue creates a pending invitation and emails the redemption link. Email
// delivery failure does not roll the invitation back; the token can still be
// shared manually. The raw token is returned once and never stored.
func (l *Ledger) Issue(ctx context.Context, orgID, email string, role models.Role, issuedBy string) (models.Invitation, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.Invitation{}, "", errors.New("email is required")
	}
	if !models.IsValidRole(role) {
		return models.Invitation{}, "", errors.New("invalid role")
	}

	org, err := l.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return models.Invitation{}, "", errors.Wrap(err, "load organization")
	}

	if err := l.rejectExistingMember(ctx, orgID, email); err != nil {
		return models.Invitation{}, "", err
	}

	token, err := GenerateToken()
	if err != nil {
		return models.Invitation{}, "", errors.Wrap(err, "generate invitation token")
	}

	var invitedBy *string
	if issuedBy != "" {
		invitedBy = &issuedBy
	}

	inv, err := l.invitations.CreateInvitation(ctx, models.Invitation{
		OrganizationID: orgID,
		Email:          email,
		Role:           role,
		TokenHash:      HashToken(token),
		InvitedBy:      invitedBy,
		ExpiresAt:      l.now().Add(l.ttl),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Invitation{}, "", models.NewError(models.KindDuplicatePendingInvite, "a pending invitation already exists for this email")
		}
		return models.Invitation{}, "", err
	}

	inviteURL := fmt.Sprintf(l.urlTpl, token)
	if err := l.mailer.SendInvite(inv.Email, org.Name, string(inv.Role), inviteURL); err != nil {
		l.logger.Warn().Err(err).
			Str("invitation_id", inv.ID).
			Str("email", inv.Email).
			Msg("invitation email delivery failed; invitation kept")
	}

	return inv, token, nil
}

func (l *Ledger) rejectExistingMember(ctx context.Context, orgID, email string) error {
	profile, err := l.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return errors.Wrap(err, "look up profile by email")
	}

	membership, err := l.memberships.GetMembershipByUserID(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return errors.Wrap(err, "look up membership")
	}
	if membership.OrganizationID == orgID {
		return models.NewError(models.KindAlreadyOrgMember, "a member with this email already belongs to the organization")
	}
	return nil
}

// CheckToken is a read-only preview used by the signup UI before
// registration. It never returns an error for invalid tokens.
func (l *Ledger) CheckToken(ctx context.Context, token string) (Preview, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Preview{Reason: "invitation token is missing"}, nil
	}

	inv, err := l.invitations.GetInvitationByTokenHash(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Preview{Reason: "invitation does not exist"}, nil
		}
		return Preview{}, errors.Wrap(err, "look up invitation")
	}

	if !inv.IsPending() {
		return Preview{Reason: "invitation was already used or cancelled"}, nil
	}
	if inv.IsExpired(l.now()) {
		return Preview{Reason: "invitation has expired"}, nil
	}

	org, err := l.orgs.GetOrganizationByID(ctx, inv.OrganizationID)
	if err != nil {
		return Preview{}, errors.Wrap(err, "load organization")
	}

	return Preview{
		Valid:            true,
		Email:            inv.Email,
		Role:             inv.Role,
		OrganizationName: org.Name,
	}, nil
}

// Cancel moves a pending invitation to cancelled. Callers enforce that only
// management members of the invitation's organization reach this.
func (l *Ledger) Cancel(ctx context.Context, id, orgID string) error {
	if err := l.invitations.CancelPendingInvitation(ctx, id, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewError(models.KindInvitationNotFound, "invitation not found or no longer pending")
		}
		return errors.Wrap(err, "cancel invitation")
	}
	return nil
}

// List returns the organization's invitations for the management dashboard.
func (l *Ledger) List(ctx context.Context, orgID string) ([]models.Invitation, error) {
	return l.invitations.ListInvitationsByOrganization(ctx, orgID)
}
