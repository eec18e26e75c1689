package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
	"github.com/jackc/pgx/v5"
)

type InvoiceStore interface {
	Create(ctx context.Context, in repository.InvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
	Update(ctx context.Context, id int64, in repository.InvoiceInput) (*domain.Invoice, error)
	SetStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time, ledger func(ctx context.Context, tx pgx.Tx) error) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) error
}

type InvoiceLedger interface {
	CreateTx(ctx context.Context, tx pgx.Tx, in repository.CreateFinanceInput) (*domain.FinanceEntry, error)
	DeleteByInvoiceTx(ctx context.Context, tx pgx.Tx, invoiceID int64) (int64, error)
}

// InvoiceService drives invoice lifecycle. The lunas transition swaps the
// linked ledger rows atomically: whatever income the invoice posted before
// is deleted and one fresh pendapatan row is written, inside the same
// transaction that flips the status. An invoice therefore has at most one
// linked income row at any moment.
type InvoiceService struct {
	Invoices InvoiceStore
	Ledger   InvoiceLedger
	Projects ProjectStore
	Users    UserReader
	Notifier Notifier
	Activity ActivityRecorder
	Logger   *slog.Logger
}

// Create stores a new invoice. The invoice number is generated here, never
// accepted from the client.
func (s InvoiceService) Create(ctx context.Context, actor authctx.CurrentUser, in repository.InvoiceInput) (*domain.Invoice, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS, domain.RoleFinance) {
		return nil, ErrForbidden
	}
	if in.Status == "" {
		in.Status = domain.InvoiceDraft
	}
	if !domain.ValidInvoiceStatus(in.Status) {
		return nil, fmt.Errorf("status invoice tidak dikenal: %q", in.Status)
	}
	in.CreatedBy = &actor.ID

	// Collisions on the random suffix are rare; retry a few times before
	// giving up.
	var invoice *domain.Invoice
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		in.InvoiceNumber = GenerateNumber("INV", time.Now())
		invoice, err = s.Invoices.Create(ctx, in)
		if err == nil {
			break
		}
		if !repository.IsDuplicate(err) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("generate invoice number: %w", err)
	}

	s.logActivity(ctx, actor, "create", "invoice", invoice.ID, map[string]any{"invoice_number": invoice.InvoiceNumber})
	return invoice, nil
}

func (s InvoiceService) Update(ctx context.Context, actor authctx.CurrentUser, id int64, in repository.InvoiceInput) (*domain.Invoice, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS, domain.RoleFinance) {
		return nil, ErrForbidden
	}
	invoice, err := s.Invoices.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.logActivity(ctx, actor, "update", "invoice", id, nil)
	return invoice, nil
}

func (s InvoiceService) Delete(ctx context.Context, actor authctx.CurrentUser, id int64) error {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return ErrForbidden
	}
	if err := s.Invoices.Delete(ctx, id); err != nil {
		return err
	}
	s.logActivity(ctx, actor, "delete", "invoice", id, nil)
	return nil
}

// SetStatus moves the invoice to status. Entering lunas records the income
// and stamps paid_at; leaving lunas removes the income and clears paid_at.
// The fee-paid WhatsApp goes out after commit, best effort.
func (s InvoiceService) SetStatus(ctx context.Context, actor authctx.CurrentUser, id int64, status domain.InvoiceStatus) (*domain.Invoice, *Warning, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS, domain.RoleFinance) {
		return nil, nil, ErrForbidden
	}
	if !domain.ValidInvoiceStatus(status) {
		return nil, nil, fmt.Errorf("status invoice tidak dikenal: %q", status)
	}

	current, err := s.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.Projects.GetByID(ctx, current.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	var paidAt *time.Time
	ledger := func(ctx context.Context, tx pgx.Tx) error {
		// Always clear first so repeated transitions through lunas never
		// stack income rows.
		if _, err := s.Ledger.DeleteByInvoiceTx(ctx, tx, id); err != nil {
			return err
		}
		if status != domain.InvoiceLunas {
			return nil
		}
		_, err := s.Ledger.CreateTx(ctx, tx, repository.CreateFinanceInput{
			Tipe:       domain.FinanceIncome,
			Kategori:   domain.KategoriPendapatan,
			Nominal:    current.Amount,
			Keterangan: fmt.Sprintf("Pemasukan Lunas Invoice #%s (%s)", current.InvoiceNumber, project.NamaProyek),
			Tanggal:    time.Now(),
			InvoiceID:  &id,
			CreatedBy:  &actor.ID,
		})
		return err
	}
	if status == domain.InvoiceLunas {
		now := time.Now()
		paidAt = &now
	}

	invoice, err := s.Invoices.SetStatus(ctx, id, status, paidAt, ledger)
	if err != nil {
		return nil, nil, err
	}
	if status == domain.InvoiceLunas {
		ledgerPostings.WithLabelValues("invoice_paid").Inc()
	}
	s.logActivity(ctx, actor, "set_status", "invoice", id, map[string]any{"status": string(status)})

	var warning *Warning
	if status == domain.InvoiceLunas {
		warning = s.notifyFeePaid(ctx, project)
	}
	return invoice, warning, nil
}

// notifyFeePaid tells the assigned developer their fee for this project has
// been transferred. Only fires when a developer with a positive fee exists.
func (s InvoiceService) notifyFeePaid(ctx context.Context, project *domain.Project) *Warning {
	if project.DeveloperID == nil || !project.FeeDeveloper.IsPositive() {
		return nil
	}
	dev, err := s.Users.GetByID(ctx, *project.DeveloperID)
	if err != nil {
		return &Warning{Message: "invoice lunas tercatat, notifikasi gagal: developer tidak ditemukan"}
	}
	if dev.Phone == "" {
		return &Warning{Message: fmt.Sprintf("invoice lunas tercatat, %s belum punya nomor WA", dev.FullName)}
	}

	msg := fmt.Sprintf("💰 Fee proyek *%s* sebesar *%s* telah ditransfer. Terima kasih atas kerja samanya!",
		project.NamaProyek, FormatRupiah(project.FeeDeveloper))
	res := s.Notifier.Send(ctx, dev.Phone, msg)
	if !res.Success {
		s.Logger.Warn("fee-paid notification failed", "project_id", project.ID, "developer_id", dev.ID, "reason", res.Message)
		return &Warning{Message: "invoice lunas tercatat, notifikasi WA gagal: " + res.Message}
	}
	return nil
}

func (s InvoiceService) logActivity(ctx context.Context, actor authctx.CurrentUser, action, entity string, entityID int64, meta map[string]any) {
	if s.Activity == nil {
		return
	}
	if _, err := s.Activity.Create(ctx, repository.CreateActivityLogInput{
		UserID:     &actor.ID,
		Action:     action,
		EntityType: entity,
		EntityID:   &entityID,
		Metadata:   meta,
	}); err != nil {
		s.Logger.Warn("activity log write failed", "action", action, "entity", entity, "err", err)
	}
}
