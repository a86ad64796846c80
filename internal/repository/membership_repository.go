package repository

import (
	"context"
	"database/sql"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

// MembershipRepository persists the one-membership-per-profile binding. The
// user_id uniqueness constraint at the storage layer is the authoritative
// guard against double assignment; CreateMembership surfaces it as
// ErrDuplicate so callers can take the idempotent branch.
type MembershipRepository interface {
	CreateMembership(ctx context.Context, userID, orgID string, role models.Role, isOrgCreator bool) (models.Membership, error)
	GetMembershipByUserID(ctx context.Context, userID string) (models.Membership, error)
	GetMembershipByID(ctx context.Context, id string) (models.Membership, error)
	ListMembershipsByOrganization(ctx context.Context, orgID string) ([]models.Membership, error)
	CountManagementMembers(ctx context.Context, orgID string) (int, error)
	UpdateMembershipRole(ctx context.Context, id string, role models.Role) (models.Membership, error)
	DeleteMembership(ctx context.Context, id string) error
}

type membershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

const membershipColumns = `id, user_id, organization_id, role, is_org_creator, created_at`

func scanMembership(row *sql.Row) (models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.IsOrgCreator, &m.CreatedAt)
	return m, err
}

func (r *membershipRepository) CreateMembership(ctx context.Context, userID, orgID string, role models.Role, isOrgCreator bool) (models.Membership, error) {
	const query = `
		INSERT INTO memberships (user_id, organization_id, role, is_org_creator)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + membershipColumns + `;
	`
	m, err := scanMembership(r.db.QueryRowContext(ctx, query, userID, orgID, role, isOrgCreator))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Membership{}, ErrDuplicate
		}
		return models.Membership{}, errors.Wrap(err, "create membership")
	}
	return m, nil
}

func (r *membershipRepository) GetMembershipByUserID(ctx context.Context, userID string) (models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE user_id = $1;
	`
	return scanMembership(r.db.QueryRowContext(ctx, query, userID))
}

func (r *membershipRepository) GetMembershipByID(ctx context.Context, id string) (models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE id = $1;
	`
	return scanMembership(r.db.QueryRowContext(ctx, query, id))
}

func (r *membershipRepository) ListMembershipsByOrganization(ctx context.Context, orgID string) ([]models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE organization_id = $1
		ORDER BY created_at;
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.IsOrgCreator, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepository) CountManagementMembers(ctx context.Context, orgID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM memberships
		WHERE organization_id = $1 AND role = $2;
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID, models.RoleManagement).Scan(&count)
	return count, err
}

func (r *membershipRepository) UpdateMembershipRole(ctx context.Context, id string, role models.Role) (models.Membership, error) {
	const query = `
		UPDATE memberships
		SET role = $2
		WHERE id = $1
		RETURNING ` + membershipColumns + `;
	`
	return scanMembership(r.db.QueryRowContext(ctx, query, id, role))
}

func (r *membershipRepository) DeleteMembership(ctx context.Context, id string) error {
	const query = `
		DELETE FROM memberships
		WHERE id = $1;
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
