package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/hourlyx/hourlyx-api/internal/models"
	"github.com/pkg/errors"
)

type ActivityRepository interface {
	InsertActivity(ctx context.Context, entry models.ActivityEntry) error
	ListActivityByOrganization(ctx context.Context, orgID string, limit int) ([]models.ActivityEntry, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) InsertActivity(ctx context.Context, entry models.ActivityEntry) error {
	const query = `
		INSERT INTO activity_log (organization_id, user_id, action_type, description, metadata)
		VALUES ($1, $2, $3, $4, $5);
	`
	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	_, err := r.db.ExecContext(ctx, query, entry.OrganizationID, entry.UserID, entry.ActionType, entry.Description, metadata)
	return errors.Wrap(err, "insert activity")
}

func (r *activityRepository) ListActivityByOrganization(ctx context.Context, orgID string, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `
		SELECT id, organization_id, user_id, action_type, description, metadata, created_at
		FROM activity_log
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.UserID, &e.ActionType, &e.Description, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
