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

type ProjectRepository struct {
	DB *db.Postgres
}

// ErrAlreadyCompleted guards the completion trigger: a project that is
// already selesai cannot fire fee realization a second time.
var ErrAlreadyCompleted = errors.New("project already completed")

type ProjectInput struct {
	ClientID       int64
	DeveloperID    *int64
	PackageID      *int64
	NamaProyek     string
	RuangLingkup   string
	Harga          decimal.Decimal
	FeeDeveloper   decimal.Decimal
	Status         domain.ProjectStatus
	TanggalMulai   *time.Time
	TanggalSelesai *time.Time
	EstimasiHari   *int
}

const projectColumns = `p.id, p.client_id, c.nama, p.developer_id, p.package_id, p.nama_proyek,
	COALESCE(p.ruang_lingkup,''), p.harga, COALESCE(p.fee_developer,0), p.status, p.is_archived,
	COALESCE(p.progress,0), COALESCE(p.progress_notes,''), p.tanggal_mulai, p.tanggal_selesai,
	p.estimasi_hari, p.created_at, p.updated_at`

func (r ProjectRepository) Create(ctx context.Context, in ProjectInput) (*domain.Project, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO projects
		(client_id, developer_id, package_id, nama_proyek, ruang_lingkup, harga, fee_developer,
		 status, is_archived, progress, tanggal_mulai, tanggal_selesai, estimasi_hari, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,0,$9,$10,$11, now(), now())
		RETURNING id
	`, in.ClientID, in.DeveloperID, in.PackageID, in.NamaProyek, in.RuangLingkup, in.Harga, in.FeeDeveloper,
		string(in.Status), dateArg(in.TanggalMulai), dateArg(in.TanggalSelesai), in.EstimasiHari).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r ProjectRepository) Update(ctx context.Context, id int64, in ProjectInput) (*domain.Project, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE projects
		SET client_id=$2, developer_id=$3, package_id=$4, nama_proyek=$5, ruang_lingkup=$6,
		    harga=$7, fee_developer=$8, status=$9, tanggal_mulai=$10, tanggal_selesai=$11,
		    estimasi_hari=$12, updated_at=now()
		WHERE id=$1
	`, id, in.ClientID, in.DeveloperID, in.PackageID, in.NamaProyek, in.RuangLingkup,
		in.Harga, in.FeeDeveloper, string(in.Status), dateArg(in.TanggalMulai), dateArg(in.TanggalSelesai), in.EstimasiHari)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN clients c ON c.id = p.client_id
		WHERE p.id=$1
	`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN clients c ON c.id = p.client_id
		ORDER BY p.created_at DESC, p.id DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// ListByDeveloper returns every project currently assigned to the developer,
// regardless of status. The reconciliation engine partitions them itself.
func (r ProjectRepository) ListByDeveloper(ctx context.Context, developerID int64) ([]domain.Project, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects p JOIN clients c ON c.id = p.client_id
		WHERE p.developer_id=$1
		ORDER BY p.created_at DESC, p.id DESC
	`, developerID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// MarkDone flips the project to selesai and, when a developer is assigned
// with a positive fee, records the earned fee in the same transaction. The
// status guard in the UPDATE makes the transition fire at most once.
func (r ProjectRepository) MarkDone(ctx context.Context, id int64, completedOn time.Time, notes string) (*domain.Project, *domain.DeveloperPayment, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var developerID *int64
	var fee decimal.Decimal
	err = tx.QueryRow(ctx, `
		UPDATE projects
		SET status='selesai', tanggal_selesai=$2, updated_at=now()
		WHERE id=$1 AND status <> 'selesai'
		RETURNING developer_id, COALESCE(fee_developer,0)
	`, id, completedOn.Format("2006-01-02")).Scan(&developerID, &fee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either missing or already selesai; disambiguate for the caller.
			var exists bool
			if checkErr := r.DB.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id=$1)`, id).Scan(&exists); checkErr == nil && exists {
				return nil, nil, ErrAlreadyCompleted
			}
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var payment *domain.DeveloperPayment
	if developerID != nil && fee.IsPositive() {
		var pay domain.DeveloperPayment
		err = tx.QueryRow(ctx, `
			INSERT INTO developer_payments_tracking (project_id, developer_id, amount_paid, paid_at, notes)
			VALUES ($1,$2,$3, now(), $4)
			RETURNING id, project_id, developer_id, amount_paid, paid_at, COALESCE(notes,'')
		`, id, *developerID, fee, notes).Scan(&pay.ID, &pay.ProjectID, &pay.DeveloperID, &pay.AmountPaid, &pay.PaidAt, &pay.Notes)
		if err != nil {
			return nil, nil, err
		}
		payment = &pay
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, payment, err
	}
	return project, payment, nil
}

func (r ProjectRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE projects SET is_archived=$2, updated_at=now() WHERE id=$1
	`, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r ProjectRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM project_checklists WHERE project_id=$1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// SetProgress stores the checklist-derived completion percentage.
func (r ProjectRepository) SetProgress(ctx context.Context, id int64, progress int) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE projects SET progress=$2, updated_at=now() WHERE id=$1
	`, id, progress)
	return err
}

func collectProjects(rows pgx.Rows) ([]domain.Project, error) {
	defer rows.Close()
	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var status string
	if err := row.Scan(&p.ID, &p.ClientID, &p.ClientNama, &p.DeveloperID, &p.PackageID, &p.NamaProyek,
		&p.RuangLingkup, &p.Harga, &p.FeeDeveloper, &status, &p.IsArchived,
		&p.Progress, &p.ProgressNotes, &p.TanggalMulai, &p.TanggalSelesai,
		&p.EstimasiHari, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	return &p, nil
}
