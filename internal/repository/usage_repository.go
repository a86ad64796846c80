package repository

import (
	"context"
	"database/sql"
)

// UsageRepository reports the per-organization resource totals the trial
// limiter compares against its caps.
type UsageRepository interface {
	CountEmployees(ctx context.Context, orgID string) (int, error)
	CountTimeEntries(ctx context.Context, orgID string) (int, error)
	CountOpenInvitations(ctx context.Context, orgID string) (int, error)
}

type usageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) CountEmployees(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM memberships WHERE organization_id = $1;`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}

func (r *usageRepository) CountTimeEntries(ctx context.Context, orgID string) (int, error) {
	const query = `SELECT COUNT(*) FROM time_entries WHERE organization_id = $1;`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}

// CountOpenInvitations counts pending and accepted invitations; cancelled and
// expired ones do not count against the trial cap.
func (r *usageRepository) CountOpenInvitations(ctx context.Context, orgID string) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM invitations
		WHERE organization_id = $1 AND status IN ('pending', 'accepted');
	`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
