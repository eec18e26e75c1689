package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
	"github.com/shopspring/decimal"
)

func newAdsFixture() (AdsReportService, *fakeAdsReports, *fakeLedger) {
	reports := newFakeAdsReports()
	ledger := &fakeLedger{}
	svc := AdsReportService{
		Reports: reports,
		Ledger:  ledger,
		Logger:  discardLogger(),
	}
	return svc, reports, ledger
}

var financeActor = authctx.CurrentUser{ID: 3, Role: domain.RoleFinance}

func TestCreateReportPostsAdsExpense(t *testing.T) {
	svc, _, ledger := newAdsFixture()
	date := time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)

	rep, warning, err := svc.Create(context.Background(), financeActor, repository.AdsReportInput{
		ReportDate: date,
		Revenue:    dec(10000000),
		AdsSpend:   dec(1500000),
		Leads:      40,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warning != nil {
		t.Errorf("warning = %s", warning.Message)
	}
	if rep.ID == 0 {
		t.Fatal("report not stored")
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(ledger.entries))
	}
	row := ledger.entries[0]
	if row.Tipe != domain.FinanceExpense || row.Kategori != domain.KategoriIklan {
		t.Errorf("row typed %s/%s, want expense/iklan", row.Tipe, row.Kategori)
	}
	if !row.Nominal.Equal(dec(1500000)) {
		t.Errorf("nominal = %s, want ads spend", row.Nominal)
	}
	if !row.Tanggal.Equal(date) {
		t.Errorf("tanggal = %s, want report date", row.Tanggal)
	}
}

func TestCreateReportZeroSpendSkipsLedger(t *testing.T) {
	svc, _, ledger := newAdsFixture()

	_, warning, err := svc.Create(context.Background(), financeActor, repository.AdsReportInput{
		ReportDate: time.Now(),
		Revenue:    dec(2000000),
		AdsSpend:   decimal.Zero,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warning != nil {
		t.Errorf("warning = %s", warning.Message)
	}
	if len(ledger.entries) != 0 {
		t.Errorf("zero spend posted %d entries", len(ledger.entries))
	}
}

func TestCreateReportSurvivesLedgerFailure(t *testing.T) {
	svc, reports, ledger := newAdsFixture()
	ledger.createErr = errors.New("connection reset")

	rep, warning, err := svc.Create(context.Background(), financeActor, repository.AdsReportInput{
		ReportDate: time.Now(),
		AdsSpend:   dec(1000000),
	})
	if err != nil {
		t.Fatalf("Create must not fail when only the posting fails: %v", err)
	}
	if warning == nil {
		t.Fatal("expected partial-success warning")
	}
	if _, ok := reports.reports[rep.ID]; !ok {
		t.Error("report rolled back")
	}
	if len(ledger.entries) != 0 {
		t.Error("ledger unexpectedly written")
	}
}

func TestUpdateAndDeleteNeverTouchLedger(t *testing.T) {
	svc, _, ledger := newAdsFixture()
	ctx := context.Background()

	rep, _, err := svc.Create(ctx, financeActor, repository.AdsReportInput{
		ReportDate: time.Now(),
		AdsSpend:   dec(1000000),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(ledger.entries) != 1 {
		t.Fatalf("setup: entries = %d", len(ledger.entries))
	}

	if _, err := svc.Update(ctx, financeActor, rep.ID, repository.AdsReportInput{
		ReportDate: time.Now(),
		AdsSpend:   dec(9000000),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(ctx, financeActor, rep.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// The original posting is still there, untouched and unmatched.
	if len(ledger.entries) != 1 || !ledger.entries[0].Nominal.Equal(dec(1000000)) {
		t.Errorf("ledger changed by update/delete: %+v", ledger.entries)
	}
}

func TestAdsReportRoleGate(t *testing.T) {
	svc, _, _ := newAdsFixture()
	cs := authctx.CurrentUser{ID: 2, Role: domain.RoleCS}

	if _, _, err := svc.Create(context.Background(), cs, repository.AdsReportInput{ReportDate: time.Now()}); !errors.Is(err, ErrForbidden) {
		t.Errorf("cs create: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.List(context.Background(), cs, nil, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("cs list: err = %v, want ErrForbidden", err)
	}
}
