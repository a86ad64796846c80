// Package members performs role mutations under the organization's
// protection rules: the org creator's management role is permanently
// immutable, and no mutation may leave the organization without a management
// member. Both rules are enforced here, at the layer that performs the
// mutation, not only in the UI.
package members

import (
	"context"
	"database/sql"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/hourlyx/hourlyx-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type ActivityRecorder interface {
	Record(ctx context.Context, orgID, userID, actionType, description string, metadata map[string]interface{})
}

type Service struct {
	memberships repository.MembershipRepository
	recorder    ActivityRecorder
	logger      zerolog.Logger
}

func NewService(memberships repository.MembershipRepository, recorder ActivityRecorder, logger zerolog.Logger) *Service {
	return &Service{
		memberships: memberships,
		recorder:    recorder,
		logger:      logger.With().Str("component", "members").Logger(),
	}
}

// List returns the memberships of the caller's organization.
func (s *Service) List(ctx context.Context, orgID string) ([]models.Membership, error) {
	return s.memberships.ListMembershipsByOrganization(ctx, orgID)
}

// UpdateRole changes a member's role. The membership must belong to the
// caller's organization; memberships of other tenants are indistinguishable
// from missing ones.
func (s *Service) UpdateRole(ctx context.Context, callerOrgID, membershipID string, newRole models.Role, actorUserID string) (models.Membership, error) {
	if !models.IsValidRole(newRole) {
		return models.Membership{}, errors.New("invalid role")
	}

	m, err := s.memberships.GetMembershipByID(ctx, membershipID)
	if err != nil || m.OrganizationID != callerOrgID {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			return models.Membership{}, sql.ErrNoRows
		}
		return models.Membership{}, errors.Wrap(err, "load membership")
	}

	if m.Role == newRole {
		return m, nil
	}

	if err := s.guardDemotion(ctx, m, newRole); err != nil {
		return models.Membership{}, err
	}

	updated, err := s.memberships.UpdateMembershipRole(ctx, membershipID, newRole)
	if err != nil {
		return models.Membership{}, errors.Wrap(err, "update role")
	}

	s.recorder.Record(ctx, m.OrganizationID, actorUserID, "member_role_changed", "Member role changed", map[string]interface{}{
		"membership_id": membershipID,
		"old_role":      m.Role,
		"new_role":      newRole,
	})
	return updated, nil
}

// Remove deletes a membership under the same protections as a demotion.
func (s *Service) Remove(ctx context.Context, callerOrgID, membershipID, actorUserID string) error {
	m, err := s.memberships.GetMembershipByID(ctx, membershipID)
	if err != nil || m.OrganizationID != callerOrgID {
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return errors.Wrap(err, "load membership")
	}

	if err := s.guardDemotion(ctx, m, models.RoleEmployee); err != nil {
		return err
	}

	if err := s.memberships.DeleteMembership(ctx, membershipID); err != nil {
		return errors.Wrap(err, "delete membership")
	}

	s.recorder.Record(ctx, m.OrganizationID, actorUserID, "member_removed", "Member removed from organization", map[string]interface{}{
		"membership_id": membershipID,
		"role":          m.Role,
	})
	return nil
}

// guardDemotion rejects any change that strips management from the org
// creator or would leave the organization without a management member.
func (s *Service) guardDemotion(ctx context.Context, m models.Membership, newRole models.Role) error {
	if newRole == models.RoleManagement {
		return nil
	}
	if m.IsOrgCreator {
		return models.NewError(models.KindCreatorRoleProtected, "the organization creator's role cannot be changed")
	}
	if m.Role == models.RoleManagement {
		count, err := s.memberships.CountManagementMembers(ctx, m.OrganizationID)
		if err != nil {
			return errors.Wrap(err, "count management members")
		}
		if count <= 1 {
			return models.NewError(models.KindLastManagementUser, "the organization must retain at least one management member")
		}
	}
	return nil
}
