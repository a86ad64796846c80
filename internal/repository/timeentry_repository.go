package repository

import (
	"context"
	"database/sql"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

type TimeEntryRepository interface {
	CreateTimeEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error)
	ListTimeEntriesByUser(ctx context.Context, orgID, userID string) ([]models.TimeEntry, error)
	ListTimeEntriesByOrganization(ctx context.Context, orgID string) ([]models.TimeEntry, error)
}

type timeEntryRepository struct {
	db *sql.DB
}

func NewTimeEntryRepository(db *sql.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

const timeEntryColumns = `id, organization_id, user_id, entry_date, hours, description, created_at`

func (r *timeEntryRepository) CreateTimeEntry(ctx context.Context, entry models.TimeEntry) (models.TimeEntry, error) {
	const query = `
		INSERT INTO time_entries (organization_id, user_id, entry_date, hours, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + timeEntryColumns + `;
	`
	var created models.TimeEntry
	err := r.db.QueryRowContext(ctx, query, entry.OrganizationID, entry.UserID, entry.EntryDate, entry.Hours, entry.Description).Scan(
		&created.ID, &created.OrganizationID, &created.UserID, &created.EntryDate, &created.Hours, &created.Description, &created.CreatedAt,
	)
	if err != nil {
		return models.TimeEntry{}, errors.Wrap(err, "create time entry")
	}
	return created, nil
}

func (r *timeEntryRepository) ListTimeEntriesByUser(ctx context.Context, orgID, userID string) ([]models.TimeEntry, error) {
	const query = `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE organization_id = $1 AND user_id = $2
		ORDER BY entry_date DESC, created_at DESC;
	`
	return r.queryEntries(ctx, query, orgID, userID)
}

func (r *timeEntryRepository) ListTimeEntriesByOrganization(ctx context.Context, orgID string) ([]models.TimeEntry, error) {
	const query = `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE organization_id = $1
		ORDER BY entry_date DESC, created_at DESC;
	`
	return r.queryEntries(ctx, query, orgID)
}

func (r *timeEntryRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]models.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.EntryDate, &e.Hours, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
