package repository

import (
	"context"
	"errors"

	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	FullName     string
	Email        string
	Phone        string
	Role         domain.UserRole
	PasswordHash *string
}

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	query := `
		INSERT INTO users (full_name, email, phone, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING id, full_name, email, phone, avatar_url, role, password_hash, created_at, updated_at
	`
	row := r.DB.Pool.QueryRow(ctx, query, p.FullName, p.Email, p.Phone, p.Role, p.PasswordHash)
	return scanUser(row)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, full_name, email, phone, avatar_url, role, password_hash, created_at, updated_at
		FROM users
		WHERE email=$1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, email)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, full_name, email, phone, avatar_url, role, password_hash, created_at, updated_at
		FROM users
		WHERE id=$1 AND deleted_at IS NULL
	`
	return r.getOne(ctx, query, id)
}

// ListByRole returns all active users holding the given role, ordered by name.
func (r UserRepository) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, full_name, email, phone, avatar_url, role, password_hash, created_at, updated_at
		FROM users
		WHERE role=$1 AND deleted_at IS NULL
		ORDER BY full_name ASC
	`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, fullName, phone, avatarURL string) (*domain.User, error) {
	query := `
		UPDATE users SET full_name=$2, phone=$3, avatar_url=$4, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING id, full_name, email, phone, avatar_url, role, password_hash, created_at, updated_at
	`
	return r.getOne(ctx, query, id, fullName, phone, avatarURL)
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1 AND deleted_at IS NULL
	`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r UserRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(r.DB.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	var avatar *string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &avatar, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if avatar != nil {
		u.AvatarURL = *avatar
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}
