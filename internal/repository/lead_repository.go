package repository

import (
	"context"
	"errors"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
)

type LeadRepository struct {
	DB *db.Postgres
}

type LeadInput struct {
	Nama      string
	Kontak    string
	Sumber    domain.LeadSource
	Status    domain.LeadStatus
	Catatan   string
	CreatedBy *int64
}

const leadColumns = `id, nama, kontak, sumber, status, COALESCE(catatan,''), client_id, converted_at, created_by, created_at, updated_at`

func (r LeadRepository) Create(ctx context.Context, in LeadInput) (*domain.Lead, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO leads (nama, kontak, sumber, status, catatan, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING `+leadColumns,
		in.Nama, in.Kontak, string(in.Sumber), string(in.Status), in.Catatan, in.CreatedBy)
	return scanLead(row)
}

func (r LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id=$1`, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r LeadRepository) List(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	return items, rows.Err()
}

func (r LeadRepository) Update(ctx context.Context, id int64, in LeadInput) (*domain.Lead, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE leads SET nama=$2, kontak=$3, sumber=$4, status=$5, catatan=$6, updated_at=now()
		WHERE id=$1
		RETURNING `+leadColumns,
		id, in.Nama, in.Kontak, string(in.Sumber), string(in.Status), in.Catatan)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// Convert creates a client from the lead and stamps the lead as converted,
// in one transaction.
func (r LeadRepository) Convert(ctx context.Context, id int64, client ClientInput) (*domain.Lead, *domain.Client, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO clients (nama, bisnis, email, phone, whatsapp, alamat, status, catatan, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		RETURNING `+clientColumns,
		client.Nama, client.Bisnis, client.Email, client.Phone, client.Whatsapp, client.Alamat, string(client.Status), client.Catatan, client.CreatedBy)
	c, err := scanClient(row)
	if err != nil {
		return nil, nil, err
	}

	leadRow := tx.QueryRow(ctx, `
		UPDATE leads SET status='deal', client_id=$2, converted_at=now(), updated_at=now()
		WHERE id=$1 AND converted_at IS NULL
		RETURNING `+leadColumns, id, c.ID)
	l, err := scanLead(leadRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return l, c, nil
}

func (r LeadRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	var sumber, status string
	if err := row.Scan(&l.ID, &l.Nama, &l.Kontak, &sumber, &status, &l.Catatan, &l.ClientID,
		&l.ConvertedAt, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Sumber = domain.LeadSource(sumber)
	l.Status = domain.LeadStatus(status)
	return &l, nil
}
