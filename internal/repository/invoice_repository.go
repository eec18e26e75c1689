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

type InvoiceRepository struct {
	DB *db.Postgres
}

type InvoiceInput struct {
	ProjectID     int64
	InvoiceNumber string
	Amount        decimal.Decimal
	Status        domain.InvoiceStatus
	TanggalTerbit time.Time
	JatuhTempo    time.Time
	CreatedBy     *int64
}

const invoiceColumns = `id, project_id, invoice_number, amount, status, tanggal_terbit, jatuh_tempo,
	paid_at, COALESCE(pdf_url,''), created_by, created_at, updated_at`

func (r InvoiceRepository) Create(ctx context.Context, in InvoiceInput) (*domain.Invoice, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO invoices (project_id, invoice_number, amount, status, tanggal_terbit, jatuh_tempo, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING `+invoiceColumns,
		in.ProjectID, in.InvoiceNumber, in.Amount, string(in.Status),
		in.TanggalTerbit.Format("2006-01-02"), in.JatuhTempo.Format("2006-01-02"), in.CreatedBy)
	return scanInvoice(row)
}

func (r InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices ORDER BY tanggal_terbit DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	return items, rows.Err()
}

func (r InvoiceRepository) Update(ctx context.Context, id int64, in InvoiceInput) (*domain.Invoice, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE invoices
		SET project_id=$2, amount=$3, tanggal_terbit=$4, jatuh_tempo=$5, updated_at=now()
		WHERE id=$1
		RETURNING `+invoiceColumns,
		id, in.ProjectID, in.Amount, in.TanggalTerbit.Format("2006-01-02"), in.JatuhTempo.Format("2006-01-02"))
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// SetStatus updates the payment status and runs the ledger side effects the
// caller supplies inside the same transaction, so an invoice is lunas iff its
// income row exists.
func (r InvoiceRepository) SetStatus(ctx context.Context, id int64, status domain.InvoiceStatus, paidAt *time.Time, ledger func(ctx context.Context, tx pgx.Tx) error) (*domain.Invoice, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE invoices SET status=$2, paid_at=$3, updated_at=now()
		WHERE id=$1
		RETURNING `+invoiceColumns, id, string(status), paidAt)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if ledger != nil {
		if err := ledger(ctx, tx); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes the invoice and any ledger rows still linked to it.
func (r InvoiceRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM finances WHERE invoice_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var status string
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InvoiceNumber, &inv.Amount, &status,
		&inv.TanggalTerbit, &inv.JatuhTempo, &inv.PaidAt, &inv.PDFURL, &inv.CreatedBy,
		&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatus(status)
	return &inv, nil
}
