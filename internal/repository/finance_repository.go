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

type FinanceRepository struct {
	DB *db.Postgres
}

type CreateFinanceInput struct {
	Tipe       domain.FinanceType
	Kategori   domain.FinanceCategory
	Nominal    decimal.Decimal
	Keterangan string
	Tanggal    time.Time
	InvoiceID  *int64
	CreatedBy  *int64
}

const financeColumns = `id, tipe, kategori, nominal, keterangan, tanggal, invoice_id, created_by, created_at, updated_at`

func (r FinanceRepository) Create(ctx context.Context, in CreateFinanceInput) (*domain.FinanceEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO finances (tipe, kategori, nominal, keterangan, tanggal, invoice_id, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING `+financeColumns,
		string(in.Tipe), string(in.Kategori), in.Nominal, in.Keterangan, in.Tanggal.Format("2006-01-02"), in.InvoiceID, in.CreatedBy)
	return scanFinance(row)
}

// CreateTx inserts a ledger row inside a caller-owned transaction. Used by
// flows that must post the entry atomically with a primary write.
func (r FinanceRepository) CreateTx(ctx context.Context, tx pgx.Tx, in CreateFinanceInput) (*domain.FinanceEntry, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO finances (tipe, kategori, nominal, keterangan, tanggal, invoice_id, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, now(), now())
		RETURNING `+financeColumns,
		string(in.Tipe), string(in.Kategori), in.Nominal, in.Keterangan, in.Tanggal.Format("2006-01-02"), in.InvoiceID, in.CreatedBy)
	return scanFinance(row)
}

func (r FinanceRepository) GetByID(ctx context.Context, id int64) (*domain.FinanceEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+financeColumns+` FROM finances WHERE id=$1`, id)
	fe, err := scanFinance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fe, nil
}

func (r FinanceRepository) List(ctx context.Context, limit int) ([]domain.FinanceEntry, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+financeColumns+`
		FROM finances
		ORDER BY tanggal DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectFinances(rows)
}

func (r FinanceRepository) ListFiltered(ctx context.Context, start, end *time.Time) ([]domain.FinanceEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+financeColumns+`
		FROM finances
		WHERE ($1::date IS NULL OR tanggal >= $1)
		  AND ($2::date IS NULL OR tanggal <= $2)
		ORDER BY tanggal DESC, id DESC
	`, dateArg(start), dateArg(end))
	if err != nil {
		return nil, err
	}
	return collectFinances(rows)
}

// ListByCategory returns every ledger row tagged with kategori. The
// reconciliation engine filters these by exact keterangan match.
func (r FinanceRepository) ListByCategory(ctx context.Context, kategori domain.FinanceCategory) ([]domain.FinanceEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+financeColumns+`
		FROM finances
		WHERE kategori=$1
		ORDER BY tanggal DESC, id DESC
	`, string(kategori))
	if err != nil {
		return nil, err
	}
	return collectFinances(rows)
}

func (r FinanceRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]domain.FinanceEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+financeColumns+` FROM finances WHERE invoice_id=$1 ORDER BY id ASC
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	return collectFinances(rows)
}

func (r FinanceRepository) Update(ctx context.Context, id int64, in CreateFinanceInput) (*domain.FinanceEntry, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE finances
		SET tipe=$2, kategori=$3, nominal=$4, keterangan=$5, tanggal=$6, updated_at=now()
		WHERE id=$1
		RETURNING `+financeColumns,
		id, string(in.Tipe), string(in.Kategori), in.Nominal, in.Keterangan, in.Tanggal.Format("2006-01-02"))
	fe, err := scanFinance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return fe, nil
}

func (r FinanceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM finances WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByInvoiceTx removes every ledger row linked to an invoice, inside the
// caller's transaction. Returns the number of rows removed.
func (r FinanceRepository) DeleteByInvoiceTx(ctx context.Context, tx pgx.Tx, invoiceID int64) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM finances WHERE invoice_id=$1`, invoiceID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Summary sums income and expense over an optional date window.
func (r FinanceRepository) Summary(ctx context.Context, start, end *time.Time) (income, expense decimal.Decimal, err error) {
	err = r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(nominal) FILTER (WHERE tipe='income'), 0),
			COALESCE(SUM(nominal) FILTER (WHERE tipe='expense'), 0)
		FROM finances
		WHERE ($1::date IS NULL OR tanggal >= $1)
		  AND ($2::date IS NULL OR tanggal <= $2)
	`, dateArg(start), dateArg(end)).Scan(&income, &expense)
	return income, expense, err
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}

func collectFinances(rows pgx.Rows) ([]domain.FinanceEntry, error) {
	defer rows.Close()
	var items []domain.FinanceEntry
	for rows.Next() {
		fe, err := scanFinance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *fe)
	}
	return items, rows.Err()
}

func scanFinance(row pgx.Row) (*domain.FinanceEntry, error) {
	var fe domain.FinanceEntry
	var tipe, kategori string
	var keterangan *string
	if err := row.Scan(&fe.ID, &tipe, &kategori, &fe.Nominal, &keterangan, &fe.Tanggal, &fe.InvoiceID, &fe.CreatedBy, &fe.CreatedAt, &fe.UpdatedAt); err != nil {
		return nil, err
	}
	fe.Tipe = domain.FinanceType(tipe)
	fe.Kategori = domain.FinanceCategory(kategori)
	if keterangan != nil {
		fe.Keterangan = *keterangan
	}
	return &fe, nil
}
