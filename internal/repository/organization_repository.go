package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, code, name string, trialStart, trialEnd time.Time) (models.Organization, error)
	GetOrganizationByID(ctx context.Context, id string) (models.Organization, error)
	GetOrganizationByCode(ctx context.Context, code string) (models.Organization, error)
}

type organizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) CreateOrganization(ctx context.Context, code, name string, trialStart, trialEnd time.Time) (models.Organization, error) {
	const query = `
		INSERT INTO organizations (code, name, trial_start_at, trial_end_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, code, name, trial_start_at, trial_end_at, created_at, updated_at;
	`
	var org models.Organization
	err := r.db.QueryRowContext(ctx, query, code, name, trialStart, trialEnd).Scan(
		&org.ID, &org.Code, &org.Name, &org.TrialStartAt, &org.TrialEndAt, &org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Organization{}, ErrDuplicate
		}
		return models.Organization{}, errors.Wrap(err, "create organization")
	}
	return org, nil
}

func (r *organizationRepository) GetOrganizationByID(ctx context.Context, id string) (models.Organization, error) {
	const query = `
		SELECT id, code, name, trial_start_at, trial_end_at, created_at, updated_at
		FROM organizations
		WHERE id = $1;
	`
	var org models.Organization
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Code, &org.Name, &org.TrialStartAt, &org.TrialEndAt, &org.CreatedAt, &org.UpdatedAt,
	)
	return org, err
}

func (r *organizationRepository) GetOrganizationByCode(ctx context.Context, code string) (models.Organization, error) {
	const query = `
		SELECT id, code, name, trial_start_at, trial_end_at, created_at, updated_at
		FROM organizations
		WHERE code = $1;
	`
	var org models.Organization
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&org.ID, &org.Code, &org.Name, &org.TrialStartAt, &org.TrialEndAt, &org.CreatedAt, &org.UpdatedAt,
	)
	return org, err
}
