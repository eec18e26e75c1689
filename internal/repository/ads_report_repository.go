package repository

import (
	"context"
	"errors"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type AdsReportRepository struct {
	DB *db.Postgres
}

type AdsReportInput struct {
	ReportDate    time.Time
	Revenue       decimal.Decimal
	FeePayment    decimal.Decimal
	NetRevenue    decimal.Decimal
	AdsSpend      decimal.Decimal
	Leads         int
	TotalPurchase int
	CreatedBy     *int64
}

const adsColumns = `id, report_date, revenue, fee_payment, net_revenue, ads_spend, leads, total_purchase,
	week, COALESCE(month,''), created_by, created_at`

func (r AdsReportRepository) Create(ctx context.Context, in AdsReportInput) (*domain.AdsReport, error) {
	week := isoWeek(in.ReportDate)
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO ads_reports (report_date, revenue, fee_payment, net_revenue, ads_spend, leads, total_purchase, week, month, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, now())
		RETURNING `+adsColumns,
		in.ReportDate.Format("2006-01-02"), in.Revenue, in.FeePayment, in.NetRevenue, in.AdsSpend,
		in.Leads, in.TotalPurchase, week, in.ReportDate.Format("2006-01"), in.CreatedBy)
	return scanAdsReport(row)
}

func (r AdsReportRepository) List(ctx context.Context, start, end *time.Time) ([]domain.AdsReport, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+adsColumns+`
		FROM ads_reports
		WHERE ($1::date IS NULL OR report_date >= $1)
		  AND ($2::date IS NULL OR report_date <= $2)
		ORDER BY report_date DESC, id DESC
	`, dateArg(start), dateArg(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AdsReport
	for rows.Next() {
		rep, err := scanAdsReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	return items, rows.Err()
}

// Update edits the report figures only. The ledger row posted at creation is
// deliberately left alone.
func (r AdsReportRepository) Update(ctx context.Context, id int64, in AdsReportInput) (*domain.AdsReport, error) {
	week := isoWeek(in.ReportDate)
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE ads_reports
		SET report_date=$2, revenue=$3, fee_payment=$4, net_revenue=$5, ads_spend=$6, leads=$7, total_purchase=$8, week=$9, month=$10
		WHERE id=$1
		RETURNING `+adsColumns,
		id, in.ReportDate.Format("2006-01-02"), in.Revenue, in.FeePayment, in.NetRevenue, in.AdsSpend,
		in.Leads, in.TotalPurchase, week, in.ReportDate.Format("2006-01"))
	rep, err := scanAdsReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

func (r AdsReportRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM ads_reports WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isoWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

func scanAdsReport(row pgx.Row) (*domain.AdsReport, error) {
	var rep domain.AdsReport
	if err := row.Scan(&rep.ID, &rep.ReportDate, &rep.Revenue, &rep.FeePayment, &rep.NetRevenue, &rep.AdsSpend,
		&rep.Leads, &rep.TotalPurchase, &rep.Week, &rep.Month, &rep.CreatedBy, &rep.CreatedAt); err != nil {
		return nil, err
	}
	return &rep, nil
}
