package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
)

type AdsReportStore interface {
	Create(ctx context.Context, in repository.AdsReportInput) (*domain.AdsReport, error)
	List(ctx context.Context, start, end *time.Time) ([]domain.AdsReport, error)
	Update(ctx context.Context, id int64, in repository.AdsReportInput) (*domain.AdsReport, error)
	Delete(ctx context.Context, id int64) error
}

type ExpensePoster interface {
	Create(ctx context.Context, in repository.CreateFinanceInput) (*domain.FinanceEntry, error)
}

// AdsReportService stores daily ad-performance reports and mirrors the ad
// spend into the finance ledger. The mirroring happens only at creation:
// updating or deleting a report leaves the once-posted expense untouched,
// so corrections to spend are made in the ledger directly.
type AdsReportService struct {
	Reports AdsReportStore
	Ledger  ExpensePoster
	Logger  *slog.Logger
}

// Create stores the report and, when ads_spend is positive, posts the iklan
// expense. A failed posting does not roll the report back; the caller gets
// the saved report plus a warning.
func (s AdsReportService) Create(ctx context.Context, actor authctx.CurrentUser, in repository.AdsReportInput) (*domain.AdsReport, *Warning, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return nil, nil, ErrForbidden
	}
	in.CreatedBy = &actor.ID

	report, err := s.Reports.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	if !report.AdsSpend.IsPositive() {
		return report, nil, nil
	}
	_, err = s.Ledger.Create(ctx, repository.CreateFinanceInput{
		Tipe:       domain.FinanceExpense,
		Kategori:   domain.KategoriIklan,
		Nominal:    report.AdsSpend,
		Keterangan: fmt.Sprintf("Biaya iklan %s", report.ReportDate.Format("02-01-2006")),
		Tanggal:    report.ReportDate,
		CreatedBy:  &actor.ID,
	})
	if err != nil {
		s.Logger.Warn("ads expense posting failed", "report_id", report.ID, "err", err)
		return report, &Warning{Message: "laporan tersimpan, tapi pencatatan biaya iklan gagal: " + err.Error()}, nil
	}
	ledgerPostings.WithLabelValues("ads_spend").Inc()
	return report, nil, nil
}

func (s AdsReportService) List(ctx context.Context, actor authctx.CurrentUser, start, end *time.Time) ([]domain.AdsReport, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return nil, ErrForbidden
	}
	return s.Reports.List(ctx, start, end)
}

// Update rewrites the report fields only. The ledger row posted at creation
// is deliberately left alone.
func (s AdsReportService) Update(ctx context.Context, actor authctx.CurrentUser, id int64, in repository.AdsReportInput) (*domain.AdsReport, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return nil, ErrForbidden
	}
	return s.Reports.Update(ctx, id, in)
}

// Delete removes the report only; see Update.
func (s AdsReportService) Delete(ctx context.Context, actor authctx.CurrentUser, id int64) error {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return ErrForbidden
	}
	return s.Reports.Delete(ctx, id)
}
