package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PackageRepository struct {
	DB *db.Postgres
}

type PackageInput struct {
	Nama         string
	Deskripsi    string
	Harga        decimal.Decimal
	EstimasiHari *int
	Fitur        []string
	IsActive     bool
}

const packageColumns = `id, nama, COALESCE(deskripsi,''), harga, estimasi_hari, COALESCE(fitur,'[]'::jsonb), COALESCE(is_active,true), created_at, updated_at`

func (r PackageRepository) Create(ctx context.Context, in PackageInput) (*domain.Package, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO packages (nama, deskripsi, harga, estimasi_hari, fitur, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING `+packageColumns,
		in.Nama, in.Deskripsi, in.Harga, in.EstimasiHari, fiturJSON(in.Fitur), in.IsActive)
	return scanPackage(row)
}

func (r PackageRepository) List(ctx context.Context, activeOnly bool) ([]domain.Package, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+packageColumns+`
		FROM packages
		WHERE ($1 = false OR is_active = true)
		ORDER BY harga ASC
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r PackageRepository) Update(ctx context.Context, id int64, in PackageInput) (*domain.Package, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE packages
		SET nama=$2, deskripsi=$3, harga=$4, estimasi_hari=$5, fitur=$6, is_active=$7, updated_at=now()
		WHERE id=$1
		RETURNING `+packageColumns,
		id, in.Nama, in.Deskripsi, in.Harga, in.EstimasiHari, fiturJSON(in.Fitur), in.IsActive)
	p, err := scanPackage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r PackageRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM packages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func fiturJSON(fitur []string) []byte {
	if fitur == nil {
		fitur = []string{}
	}
	b, _ := json.Marshal(fitur)
	return b
}

func scanPackage(row pgx.Row) (*domain.Package, error) {
	var p domain.Package
	var fitur []byte
	if err := row.Scan(&p.ID, &p.Nama, &p.Deskripsi, &p.Harga, &p.EstimasiHari, &fitur, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(fitur) > 0 {
		_ = json.Unmarshal(fitur, &p.Fitur)
	}
	return &p, nil
}
