package repository

import (
	"context"
	"errors"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
)

type SPKRepository struct {
	DB *db.Postgres
}

type SPKInput struct {
	ProjectID       int64
	SPKNumber       string
	PaymentTerms    string
	TermsConditions string
	CreatedBy       *int64
}

const spkColumns = `id, project_id, spk_number, COALESCE(payment_terms,''), COALESCE(terms_conditions,''), COALESCE(pdf_url,''), created_by, created_at, updated_at`

func (r SPKRepository) Create(ctx context.Context, in SPKInput) (*domain.SPK, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO spks (project_id, spk_number, payment_terms, terms_conditions, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+spkColumns,
		in.ProjectID, in.SPKNumber, in.PaymentTerms, in.TermsConditions, in.CreatedBy)
	return scanSPK(row)
}

func (r SPKRepository) GetByID(ctx context.Context, id int64) (*domain.SPK, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+spkColumns+` FROM spks WHERE id=$1`, id)
	s, err := scanSPK(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r SPKRepository) List(ctx context.Context) ([]domain.SPK, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+spkColumns+` FROM spks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SPK
	for rows.Next() {
		s, err := scanSPK(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r SPKRepository) Update(ctx context.Context, id int64, paymentTerms, termsConditions string) (*domain.SPK, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE spks SET payment_terms=$2, terms_conditions=$3, updated_at=now()
		WHERE id=$1
		RETURNING `+spkColumns, id, paymentTerms, termsConditions)
	s, err := scanSPK(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r SPKRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM spks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSPK(row pgx.Row) (*domain.SPK, error) {
	var s domain.SPK
	if err := row.Scan(&s.ID, &s.ProjectID, &s.SPKNumber, &s.PaymentTerms, &s.TermsConditions, &s.PDFURL, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
