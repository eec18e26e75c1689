package service

import (
	"context"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/notify"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// In-memory fakes shared by the service tests.

type fakeUsers struct {
	users map[int64]domain.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLedger struct {
	entries   []domain.FinanceEntry
	nextID    int64
	createErr error
}

func (f *fakeLedger) ListByCategory(_ context.Context, kategori domain.FinanceCategory) ([]domain.FinanceEntry, error) {
	var out []domain.FinanceEntry
	for _, e := range f.entries {
		if e.Kategori == kategori {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) Create(_ context.Context, in repository.CreateFinanceInput) (*domain.FinanceEntry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	e := domain.FinanceEntry{
		ID:         f.nextID,
		Tipe:       in.Tipe,
		Kategori:   in.Kategori,
		Nominal:    in.Nominal,
		Keterangan: in.Keterangan,
		Tanggal:    in.Tanggal,
		InvoiceID:  in.InvoiceID,
		CreatedBy:  in.CreatedBy,
	}
	f.entries = append(f.entries, e)
	return &e, nil
}

func (f *fakeLedger) CreateTx(ctx context.Context, _ pgx.Tx, in repository.CreateFinanceInput) (*domain.FinanceEntry, error) {
	return f.Create(ctx, in)
}

func (f *fakeLedger) DeleteByInvoiceTx(_ context.Context, _ pgx.Tx, invoiceID int64) (int64, error) {
	var kept []domain.FinanceEntry
	var removed int64
	for _, e := range f.entries {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return removed, nil
}

func (f *fakeLedger) byInvoice(invoiceID int64) []domain.FinanceEntry {
	var out []domain.FinanceEntry
	for _, e := range f.entries {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out
}

type fakeProjects struct {
	projects map[int64]domain.Project
	payments []domain.DeveloperPayment
	progress map[int64]int
	nextID   int64
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		projects: map[int64]domain.Project{},
		progress: map[int64]int{},
	}
}

func (f *fakeProjects) Create(_ context.Context, in repository.ProjectInput) (*domain.Project, error) {
	f.nextID++
	p := projectFromInput(f.nextID, in)
	f.projects[p.ID] = p
	return &p, nil
}

func (f *fakeProjects) Update(_ context.Context, id int64, in repository.ProjectInput) (*domain.Project, error) {
	if _, ok := f.projects[id]; !ok {
		return nil, repository.ErrNotFound
	}
	p := projectFromInput(id, in)
	f.projects[id] = p
	return &p, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProjects) List(_ context.Context) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) ListByDeveloper(_ context.Context, developerID int64) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range f.projects {
		if p.DeveloperID != nil && *p.DeveloperID == developerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) MarkDone(_ context.Context, id int64, completedOn time.Time, notes string) (*domain.Project, *domain.DeveloperPayment, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil, repository.ErrNotFound
	}
	if p.Status == domain.ProjectSelesai {
		return nil, nil, repository.ErrAlreadyCompleted
	}
	p.Status = domain.ProjectSelesai
	p.TanggalSelesai = &completedOn
	f.projects[id] = p

	var payment *domain.DeveloperPayment
	if p.DeveloperID != nil && p.FeeDeveloper.IsPositive() {
		pay := domain.DeveloperPayment{
			ID:          int64(len(f.payments) + 1),
			ProjectID:   id,
			DeveloperID: *p.DeveloperID,
			AmountPaid:  p.FeeDeveloper,
			PaidAt:      completedOn,
			Notes:       notes,
		}
		f.payments = append(f.payments, pay)
		payment = &pay
	}
	return &p, payment, nil
}

func (f *fakeProjects) SetArchived(_ context.Context, id int64, archived bool) error {
	p, ok := f.projects[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsArchived = archived
	f.projects[id] = p
	return nil
}

func (f *fakeProjects) SetProgress(_ context.Context, id int64, progress int) error {
	f.progress[id] = progress
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func projectFromInput(id int64, in repository.ProjectInput) domain.Project {
	return domain.Project{
		ID:             id,
		ClientID:       in.ClientID,
		DeveloperID:    in.DeveloperID,
		PackageID:      in.PackageID,
		NamaProyek:     in.NamaProyek,
		RuangLingkup:   in.RuangLingkup,
		Harga:          in.Harga,
		FeeDeveloper:   in.FeeDeveloper,
		Status:         in.Status,
		TanggalMulai:   in.TanggalMulai,
		TanggalSelesai: in.TanggalSelesai,
		EstimasiHari:   in.EstimasiHari,
	}
}

type fakeTracking struct {
	payments []domain.DeveloperPayment
}

func (f *fakeTracking) ListByDeveloper(_ context.Context, developerID int64) ([]domain.DeveloperPayment, error) {
	var out []domain.DeveloperPayment
	for _, p := range f.payments {
		if p.DeveloperID == developerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeChecklists struct {
	items  map[int64]domain.ProjectChecklist
	nextID int64
}

func newFakeChecklists() *fakeChecklists {
	return &fakeChecklists{items: map[int64]domain.ProjectChecklist{}}
}

func (f *fakeChecklists) ListByProject(_ context.Context, projectID int64) ([]domain.ProjectChecklist, error) {
	var out []domain.ProjectChecklist
	for _, it := range f.items {
		if it.ProjectID == projectID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeChecklists) Create(_ context.Context, projectID int64, title string, updatedBy *int64) (*domain.ProjectChecklist, error) {
	f.nextID++
	it := domain.ProjectChecklist{ID: f.nextID, ProjectID: projectID, Title: title, UpdatedBy: updatedBy}
	f.items[it.ID] = it
	return &it, nil
}

func (f *fakeChecklists) SetDone(_ context.Context, id int64, done bool, updatedBy *int64) (int64, error) {
	it, ok := f.items[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	it.IsDone = done
	it.UpdatedBy = updatedBy
	f.items[id] = it
	return it.ProjectID, nil
}

func (f *fakeChecklists) Delete(_ context.Context, id int64) (int64, error) {
	it, ok := f.items[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	delete(f.items, id)
	return it.ProjectID, nil
}

type sentMessage struct {
	Target  string
	Message string
}

type fakeNotifier struct {
	sent []sentMessage
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, target, message string) notify.Result {
	f.sent = append(f.sent, sentMessage{Target: target, Message: message})
	if f.fail {
		return notify.Result{Success: false, Message: "gateway down"}
	}
	return notify.Result{Success: true, Message: "sent"}
}

type fakeActivity struct {
	logs []repository.CreateActivityLogInput
}

func (f *fakeActivity) Create(_ context.Context, in repository.CreateActivityLogInput) (int64, error) {
	f.logs = append(f.logs, in)
	return int64(len(f.logs)), nil
}

type fakeInvoices struct {
	invoices map[int64]domain.Invoice
	nextID   int64
	dupFirst int // number of Create calls to fail with a duplicate error
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{invoices: map[int64]domain.Invoice{}}
}

var errDuplicate = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

func (f *fakeInvoices) Create(_ context.Context, in repository.InvoiceInput) (*domain.Invoice, error) {
	if f.dupFirst > 0 {
		f.dupFirst--
		return nil, errDuplicate
	}
	f.nextID++
	inv := domain.Invoice{
		ID:            f.nextID,
		ProjectID:     in.ProjectID,
		InvoiceNumber: in.InvoiceNumber,
		Amount:        in.Amount,
		Status:        in.Status,
		TanggalTerbit: in.TanggalTerbit,
		JatuhTempo:    in.JatuhTempo,
		CreatedBy:     in.CreatedBy,
	}
	f.invoices[inv.ID] = inv
	return &inv, nil
}

func (f *fakeInvoices) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &inv, nil
}

func (f *fakeInvoices) List(_ context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range f.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeInvoices) Update(_ context.Context, id int64, in repository.InvoiceInput) (*domain.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	inv.ProjectID = in.ProjectID
	inv.Amount = in.Amount
	inv.TanggalTerbit = in.TanggalTerbit
	inv.JatuhTempo = in.JatuhTempo
	f.invoices[id] = inv
	return &inv, nil
}

func (f *fakeInvoices) SetStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time, ledger func(ctx context.Context, tx pgx.Tx) error) (*domain.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if ledger != nil {
		if err := ledger(ctx, nil); err != nil {
			return nil, err
		}
	}
	inv.Status = status
	inv.PaidAt = paidAt
	f.invoices[id] = inv
	return &inv, nil
}

func (f *fakeInvoices) Delete(_ context.Context, id int64) error {
	if _, ok := f.invoices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.invoices, id)
	return nil
}

type fakeAdsReports struct {
	reports map[int64]domain.AdsReport
	nextID  int64
}

func newFakeAdsReports() *fakeAdsReports {
	return &fakeAdsReports{reports: map[int64]domain.AdsReport{}}
}

func (f *fakeAdsReports) Create(_ context.Context, in repository.AdsReportInput) (*domain.AdsReport, error) {
	f.nextID++
	rep := domain.AdsReport{
		ID:            f.nextID,
		ReportDate:    in.ReportDate,
		Revenue:       in.Revenue,
		FeePayment:    in.FeePayment,
		NetRevenue:    in.NetRevenue,
		AdsSpend:      in.AdsSpend,
		Leads:         in.Leads,
		TotalPurchase: in.TotalPurchase,
		CreatedBy:     in.CreatedBy,
	}
	f.reports[rep.ID] = rep
	return &rep, nil
}

func (f *fakeAdsReports) List(_ context.Context, _, _ *time.Time) ([]domain.AdsReport, error) {
	var out []domain.AdsReport
	for _, rep := range f.reports {
		out = append(out, rep)
	}
	return out, nil
}

func (f *fakeAdsReports) Update(_ context.Context, id int64, in repository.AdsReportInput) (*domain.AdsReport, error) {
	rep, ok := f.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rep.Revenue = in.Revenue
	rep.AdsSpend = in.AdsSpend
	rep.Leads = in.Leads
	rep.TotalPurchase = in.TotalPurchase
	f.reports[id] = rep
	return &rep, nil
}

func (f *fakeAdsReports) Delete(_ context.Context, id int64) error {
	if _, ok := f.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}
