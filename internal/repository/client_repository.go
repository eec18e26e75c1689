package repository

import (
	"context"
	"errors"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ClientRepository struct {
	DB *db.Postgres
}

type ClientInput struct {
	Nama        string
	Bisnis      string
	Email       string
	Phone       string
	Whatsapp    string
	Alamat      string
	Status      domain.ClientStatus
	RenewalDate *time.Time
	Catatan     string
	CreatedBy   *int64
}

const clientColumns = `id, nama, COALESCE(bisnis,''), COALESCE(email,''), COALESCE(phone,''),
	COALESCE(whatsapp,''), COALESCE(alamat,''), status, renewal_date, COALESCE(catatan,''),
	created_by, created_at, updated_at`

func (r ClientRepository) Create(ctx context.Context, in ClientInput) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO clients (nama, bisnis, email, phone, whatsapp, alamat, status, renewal_date, catatan, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, now(), now())
		RETURNING `+clientColumns,
		in.Nama, in.Bisnis, in.Email, in.Phone, in.Whatsapp, in.Alamat, string(in.Status), dateArg(in.RenewalDate), in.Catatan, in.CreatedBy)
	return scanClient(row)
}

func (r ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id=$1 AND deleted_at IS NULL`, id)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+clientColumns+` FROM clients WHERE deleted_at IS NULL ORDER BY nama ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r ClientRepository) Update(ctx context.Context, id int64, in ClientInput) (*domain.Client, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE clients
		SET nama=$2, bisnis=$3, email=$4, phone=$5, whatsapp=$6, alamat=$7, status=$8, renewal_date=$9, catatan=$10, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+clientColumns,
		id, in.Nama, in.Bisnis, in.Email, in.Phone, in.Whatsapp, in.Alamat, string(in.Status), dateArg(in.RenewalDate), in.Catatan)
	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r ClientRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE clients SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	var status string
	if err := row.Scan(&c.ID, &c.Nama, &c.Bisnis, &c.Email, &c.Phone, &c.Whatsapp, &c.Alamat,
		&status, &c.RenewalDate, &c.Catatan, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.ClientStatus(status)
	return &c, nil
}
