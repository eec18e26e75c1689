package repository

import (
	"context"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/shopspring/decimal"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	ActiveProjects int64
	ActiveClients  int64
	UnpaidInvoices int64
}

type MonthlyPoint struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type StatusCount struct {
	Status string
	Count  int64
}

func (r DashboardRepository) Summary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE((SELECT SUM(nominal) FROM finances WHERE tipe='income'), 0),
			COALESCE((SELECT SUM(nominal) FROM finances WHERE tipe='expense'), 0),
			(SELECT COUNT(*) FROM projects WHERE status <> 'selesai' AND is_archived = false),
			(SELECT COUNT(*) FROM clients WHERE status = 'aktif' AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM invoices WHERE status NOT IN ('lunas','batal','draft'))
	`).Scan(&s.TotalIncome, &s.TotalExpense, &s.ActiveProjects, &s.ActiveClients, &s.UnpaidInvoices)
	return s, err
}

// MonthlySeries returns income/expense totals per month for the trailing
// window of months.
func (r DashboardRepository) MonthlySeries(ctx context.Context, months int) ([]MonthlyPoint, error) {
	start := time.Now().AddDate(0, -months+1, 0).Format("2006-01") + "-01"
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT to_char(tanggal, 'YYYY-MM') AS bulan,
		       COALESCE(SUM(nominal) FILTER (WHERE tipe='income'), 0),
		       COALESCE(SUM(nominal) FILTER (WHERE tipe='expense'), 0)
		FROM finances
		WHERE tanggal >= $1::date
		GROUP BY bulan
		ORDER BY bulan ASC
	`, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Income, &p.Expense); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r DashboardRepository) ProjectStatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM projects
		WHERE is_archived = false
		GROUP BY status
		ORDER BY status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
