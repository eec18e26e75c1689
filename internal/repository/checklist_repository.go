package repository

import (
	"context"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
)

type ChecklistRepository struct {
	DB *db.Postgres
}

func (r ChecklistRepository) ListByProject(ctx context.Context, projectID int64) ([]domain.ProjectChecklist, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, project_id, title, is_done, updated_by, created_at, updated_at
		FROM project_checklists
		WHERE project_id=$1
		ORDER BY created_at ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ProjectChecklist
	for rows.Next() {
		var c domain.ProjectChecklist
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.IsDone, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r ChecklistRepository) Create(ctx context.Context, projectID int64, title string, updatedBy *int64) (*domain.ProjectChecklist, error) {
	var c domain.ProjectChecklist
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO project_checklists (project_id, title, is_done, updated_by, created_at, updated_at)
		VALUES ($1,$2,false,$3, now(), now())
		RETURNING id, project_id, title, is_done, updated_by, created_at, updated_at
	`, projectID, title, updatedBy).Scan(&c.ID, &c.ProjectID, &c.Title, &c.IsDone, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r ChecklistRepository) SetDone(ctx context.Context, id int64, done bool, updatedBy *int64) (int64, error) {
	var projectID int64
	err := r.DB.Pool.QueryRow(ctx, `
		UPDATE project_checklists SET is_done=$2, updated_by=$3, updated_at=now()
		WHERE id=$1
		RETURNING project_id
	`, id, done, updatedBy).Scan(&projectID)
	return projectID, err
}

func (r ChecklistRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.DB.Pool.QueryRow(ctx, `
		DELETE FROM project_checklists WHERE id=$1 RETURNING project_id
	`, id).Scan(&projectID)
	return projectID, err
}
