package repository

import (
	"context"
	"encoding/json"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
)

type ActivityLogRepository struct {
	DB *db.Postgres
}

type CreateActivityLogInput struct {
	UserID     *int64
	Action     string
	EntityType string
	EntityID   *int64
	Metadata   map[string]any
}

func (r ActivityLogRepository) Create(ctx context.Context, in CreateActivityLogInput) (int64, error) {
	var metadata []byte
	if in.Metadata != nil {
		metadata, _ = json.Marshal(in.Metadata)
	}
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO activity_logs (user_id, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5, now())
		RETURNING id
	`, in.UserID, in.Action, in.EntityType, in.EntityID, metadata).Scan(&id)
	return id, err
}

func (r ActivityLogRepository) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, user_id, action, COALESCE(entity_type,''), entity_id, metadata, created_at
		FROM activity_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		var metadata []byte
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &metadata, &l.CreatedAt); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &l.Metadata)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
