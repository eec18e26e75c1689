package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
)

func newInvoiceFixture() (InvoiceService, *fakeInvoices, *fakeLedger, *fakeNotifier) {
	devID := int64(7)
	invoices := newFakeInvoices()
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	projects := newFakeProjects()
	projects.projects[1] = domain.Project{
		ID: 1, ClientID: 1, DeveloperID: &devID, NamaProyek: "Toko Online",
		Status: domain.ProjectLaunch, FeeDeveloper: dec(500000),
	}
	projects.projects[2] = domain.Project{ID: 2, ClientID: 1, NamaProyek: "Landing Page", Status: domain.ProjectLaunch}

	users := &fakeUsers{users: map[int64]domain.User{
		7: {ID: 7, FullName: "Budi Santoso", Phone: "6281234567890", Role: domain.RoleDeveloper},
	}}
	svc := InvoiceService{
		Invoices: invoices,
		Ledger:   ledger,
		Projects: projects,
		Users:    users,
		Notifier: notifier,
		Activity: &fakeActivity{},
		Logger:   discardLogger(),
	}
	return svc, invoices, ledger, notifier
}

func createInvoice(t *testing.T, svc InvoiceService, projectID int64) *domain.Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), adminActor, repository.InvoiceInput{
		ProjectID:     projectID,
		Amount:        dec(5000000),
		Status:        domain.InvoiceDraft,
		TanggalTerbit: time.Now(),
		JatuhTempo:    time.Now().AddDate(0, 0, 14),
	})
	if err != nil {
		t.Fatalf("Create invoice: %v", err)
	}
	return inv
}

func TestCreateInvoiceGeneratesNumber(t *testing.T) {
	svc, _, _, _ := newInvoiceFixture()
	inv := createInvoice(t, svc, 1)

	pattern := regexp.MustCompile(`^INV-\d{8}-\d{4}$`)
	if !pattern.MatchString(inv.InvoiceNumber) {
		t.Errorf("invoice number %q does not match INV-YYYYMMDD-NNNN", inv.InvoiceNumber)
	}
}

func TestCreateInvoiceRetriesOnCollision(t *testing.T) {
	svc, invoices, _, _ := newInvoiceFixture()
	invoices.dupFirst = 2

	inv := createInvoice(t, svc, 1)
	if inv.InvoiceNumber == "" {
		t.Error("retry did not produce an invoice")
	}
}

func TestLunasPostsSingleIncomeRow(t *testing.T) {
	svc, _, ledger, notifier := newInvoiceFixture()
	ctx := context.Background()
	inv := createInvoice(t, svc, 1)

	paid, warning, err := svc.SetStatus(ctx, adminActor, inv.ID, domain.InvoiceLunas)
	if err != nil {
		t.Fatalf("SetStatus lunas: %v", err)
	}
	if warning != nil {
		t.Errorf("unexpected warning: %s", warning.Message)
	}
	if paid.PaidAt == nil {
		t.Error("paid_at not stamped")
	}

	linked := ledger.byInvoice(inv.ID)
	if len(linked) != 1 {
		t.Fatalf("linked ledger rows = %d, want 1", len(linked))
	}
	row := linked[0]
	if row.Tipe != domain.FinanceIncome || row.Kategori != domain.KategoriPendapatan {
		t.Errorf("row typed %s/%s, want income/pendapatan", row.Tipe, row.Kategori)
	}
	if !row.Nominal.Equal(dec(5000000)) {
		t.Errorf("nominal = %s, want invoice amount", row.Nominal)
	}
	want := "Pemasukan Lunas Invoice #" + inv.InvoiceNumber + " (Toko Online)"
	if row.Keterangan != want {
		t.Errorf("keterangan = %q, want %q", row.Keterangan, want)
	}

	// Developer with fee gets the transfer notification.
	if len(notifier.sent) != 1 || !strings.Contains(notifier.sent[0].Message, "Fee proyek") {
		t.Errorf("notifications = %+v", notifier.sent)
	}
}

func TestLunasToggleKeepsAtMostOneRow(t *testing.T) {
	svc, _, ledger, _ := newInvoiceFixture()
	ctx := context.Background()
	inv := createInvoice(t, svc, 1)

	for _, status := range []domain.InvoiceStatus{
		domain.InvoiceLunas,
		domain.InvoiceMenungguPelunasan,
		domain.InvoiceLunas,
		domain.InvoiceLunas,
	} {
		if _, _, err := svc.SetStatus(ctx, adminActor, inv.ID, status); err != nil {
			t.Fatalf("SetStatus %s: %v", status, err)
		}
	}
	if linked := ledger.byInvoice(inv.ID); len(linked) != 1 {
		t.Errorf("linked rows after toggling = %d, want 1", len(linked))
	}

	// Leaving lunas removes the income and clears paid_at.
	left, _, err := svc.SetStatus(ctx, adminActor, inv.ID, domain.InvoiceBatal)
	if err != nil {
		t.Fatalf("SetStatus batal: %v", err)
	}
	if linked := ledger.byInvoice(inv.ID); len(linked) != 0 {
		t.Errorf("linked rows after leaving lunas = %d, want 0", len(linked))
	}
	if left.PaidAt != nil {
		t.Error("paid_at not cleared")
	}
}

func TestLunasWithoutDeveloperSkipsNotification(t *testing.T) {
	svc, _, _, notifier := newInvoiceFixture()
	inv := createInvoice(t, svc, 2)

	_, warning, err := svc.SetStatus(context.Background(), adminActor, inv.ID, domain.InvoiceLunas)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if warning != nil {
		t.Errorf("warning = %s", warning.Message)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("notified despite missing developer fee")
	}
}

func TestLunasNotificationFailureIsWarning(t *testing.T) {
	svc, _, ledger, notifier := newInvoiceFixture()
	notifier.fail = true
	inv := createInvoice(t, svc, 1)

	_, warning, err := svc.SetStatus(context.Background(), adminActor, inv.ID, domain.InvoiceLunas)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if warning == nil {
		t.Fatal("expected delivery warning")
	}
	// The ledger posting stands regardless.
	if linked := ledger.byInvoice(inv.ID); len(linked) != 1 {
		t.Errorf("linked rows = %d, want 1", len(linked))
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newInvoiceFixture()
	inv := createInvoice(t, svc, 1)

	if _, _, err := svc.SetStatus(context.Background(), adminActor, inv.ID, "paid"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestInvoiceRoleGate(t *testing.T) {
	svc, _, _, _ := newInvoiceFixture()
	dev := authctx.CurrentUser{ID: 7, Role: domain.RoleDeveloper}

	if _, err := svc.Create(context.Background(), dev, repository.InvoiceInput{ProjectID: 1}); !errors.Is(err, ErrForbidden) {
		t.Errorf("developer create: err = %v, want ErrForbidden", err)
	}
	inv := createInvoice(t, svc, 1)
	if _, _, err := svc.SetStatus(context.Background(), dev, inv.ID, domain.InvoiceLunas); !errors.Is(err, ErrForbidden) {
		t.Errorf("developer set status: err = %v, want ErrForbidden", err)
	}
}
