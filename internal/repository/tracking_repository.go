package repository

import (
	"context"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
)

// TrackingRepository reads the append-only developer_payments_tracking
// collection. Rows are only ever written by ProjectRepository.MarkDone.
type TrackingRepository struct {
	DB *db.Postgres
}

func (r TrackingRepository) ListByDeveloper(ctx context.Context, developerID int64) ([]domain.DeveloperPayment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, project_id, developer_id, amount_paid, paid_at, COALESCE(notes,'')
		FROM developer_payments_tracking
		WHERE developer_id=$1
		ORDER BY paid_at DESC, id DESC
	`, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.DeveloperPayment
	for rows.Next() {
		var p domain.DeveloperPayment
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.DeveloperID, &p.AmountPaid, &p.PaidAt, &p.Notes); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r TrackingRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM developer_payments_tracking WHERE project_id=$1
	`, projectID).Scan(&n)
	return n, err
}
