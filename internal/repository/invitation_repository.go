package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

// InvitationRepository persists invitations. AcceptPendingInvitation is a
// conditional update on status='pending': under concurrent redemption exactly
// one caller wins and the rest observe sql.ErrNoRows. Duplicate pending
// invitations per (organization, email) are rejected by a partial unique
// index and surface as ErrDuplicate.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, tokenHash string) (models.Invitation, error)
	AcceptPendingInvitation(ctx context.Context, id string) (models.Invitation, error)
	ReopenInvitation(ctx context.Context, id string) error
	CancelPendingInvitation(ctx context.Context, id, orgID string) error
	ListInvitationsByOrganization(ctx context.Context, orgID string) ([]models.Invitation, error)
}

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

const invitationColumns = `id, organization_id, email, role, token_hash, status, invited_by, expires_at, accepted_at, created_at, updated_at`

func scanInvitation(row *sql.Row) (models.Invitation, error) {
	var (
		inv       models.Invitation
		invitedBy sql.NullString
	)
	err := row.Scan(
		&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.TokenHash,
		&inv.Status, &invitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if invitedBy.Valid {
		inv.InvitedBy = &invitedBy.String
	}
	return inv, err
}

func (r *invitationRepository) CreateInvitation(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	const query = `
		INSERT INTO invitations (organization_id, email, role, token_hash, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + invitationColumns + `;
	`
	var invitedBy interface{}
	if inv.InvitedBy != nil && *inv.InvitedBy != "" {
		invitedBy = *inv.InvitedBy
	}

	created, err := scanInvitation(r.db.QueryRowContext(ctx, query,
		inv.OrganizationID,
		strings.ToLower(strings.TrimSpace(inv.Email)),
		inv.Role,
		inv.TokenHash,
		invitedBy,
		inv.ExpiresAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Invitation{}, ErrDuplicate
		}
		return models.Invitation{}, errors.Wrap(err, "create invitation")
	}
	return created, nil
}

func (r *invitationRepository) GetInvitationByTokenHash(ctx context.Context, tokenHash string) (models.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE token_hash = $1;
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, tokenHash))
}

func (r *invitationRepository) AcceptPendingInvitation(ctx context.Context, id string) (models.Invitation, error) {
	const query = `
		UPDATE invitations
		SET status = 'accepted', accepted_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + invitationColumns + `;
	`
	return scanInvitation(r.db.QueryRowContext(ctx, query, id))
}

// ReopenInvitation reverts an accepted invitation to pending. Used as the
// compensating step when the membership insert after redemption fails, so
// the token is not consumed without a membership existing.
func (r *invitationRepository) ReopenInvitation(ctx context.Context, id string) error {
	const query = `
		UPDATE invitations
		SET status = 'pending', accepted_at = NULL, updated_at = now()
		WHERE id = $1 AND status = 'accepted';
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

func (r *invitationRepository) CancelPendingInvitation(ctx context.Context, id, orgID string) error {
	const query = `
		UPDATE invitations
		SET status = 'cancelled', updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND status = 'pending';
	`
	result, err := r.db.ExecContext(ctx, query, id, orgID)
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

func (r *invitationRepository) ListInvitationsByOrganization(ctx context.Context, orgID string) ([]models.Invitation, error) {
	const query = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE organization_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var (
			inv       models.Invitation
			invitedBy sql.NullString
		)
		if err := rows.Scan(
			&inv.ID, &inv.OrganizationID, &inv.Email, &inv.Role, &inv.TokenHash,
			&inv.Status, &invitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if invitedBy.Valid {
			inv.InvitedBy = &invitedBy.String
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}
