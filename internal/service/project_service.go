package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/notify"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
)

type ProjectStore interface {
	Create(ctx context.Context, in repository.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id int64, in repository.ProjectInput) (*domain.Project, error)
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	ListByDeveloper(ctx context.Context, developerID int64) ([]domain.Project, error)
	MarkDone(ctx context.Context, id int64, completedOn time.Time, notes string) (*domain.Project, *domain.DeveloperPayment, error)
	SetArchived(ctx context.Context, id int64, archived bool) error
	SetProgress(ctx context.Context, id int64, progress int) error
	Delete(ctx context.Context, id int64) error
}

type ChecklistStore interface {
	ListByProject(ctx context.Context, projectID int64) ([]domain.ProjectChecklist, error)
	Create(ctx context.Context, projectID int64, title string, updatedBy *int64) (*domain.ProjectChecklist, error)
	SetDone(ctx context.Context, id int64, done bool, updatedBy *int64) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Notifier is the WhatsApp delivery seam. A failed send surfaces as a
// Result with Success=false, never as an error.
type Notifier interface {
	Send(ctx context.Context, target, message string) notify.Result
}

type ActivityRecorder interface {
	Create(ctx context.Context, in repository.CreateActivityLogInput) (int64, error)
}

// ProjectService owns project lifecycle transitions. CRUD on the record is
// thin; the interesting parts are the assignment notification on developer
// change, the completion transition that realizes the developer fee, and
// the checklist-derived progress recomputation.
type ProjectService struct {
	Projects   ProjectStore
	Checklists ChecklistStore
	Users      UserReader
	Notifier   Notifier
	Activity   ActivityRecorder
	Logger     *slog.Logger

	// ArchiveAfterDays moves completed projects to the archive view this
	// many days after tanggal_selesai. Zero falls back to 30.
	ArchiveAfterDays int
}

func (s ProjectService) archiveDays() int {
	if s.ArchiveAfterDays <= 0 {
		return 30
	}
	return s.ArchiveAfterDays
}

// Create stores the project and, when a developer is assigned up front,
// sends the assignment notification. The notification result never blocks
// the write.
func (s ProjectService) Create(ctx context.Context, actor authctx.CurrentUser, in repository.ProjectInput) (*domain.Project, *Warning, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return nil, nil, ErrForbidden
	}
	if !domain.ValidProjectStatus(in.Status) {
		return nil, nil, fmt.Errorf("status proyek tidak dikenal: %q", in.Status)
	}

	project, err := s.Projects.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	s.logActivity(ctx, actor, "create", "project", project.ID, map[string]any{"nama_proyek": project.NamaProyek})

	warning := s.notifyAssignment(ctx, project, nil)
	return project, warning, nil
}

// Update rewrites the project. A newly set or changed developer triggers
// the assignment notification; reassigning the same developer does not.
func (s ProjectService) Update(ctx context.Context, actor authctx.CurrentUser, id int64, in repository.ProjectInput) (*domain.Project, *Warning, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return nil, nil, ErrForbidden
	}
	if !domain.ValidProjectStatus(in.Status) {
		return nil, nil, fmt.Errorf("status proyek tidak dikenal: %q", in.Status)
	}

	before, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.Projects.Update(ctx, id, in)
	if err != nil {
		return nil, nil, err
	}
	s.logActivity(ctx, actor, "update", "project", project.ID, nil)

	warning := s.notifyAssignment(ctx, project, before.DeveloperID)
	return project, warning, nil
}

// notifyAssignment sends the task notification when the developer changed
// from prev. Any delivery problem comes back as a warning.
func (s ProjectService) notifyAssignment(ctx context.Context, project *domain.Project, prev *int64) *Warning {
	if project.DeveloperID == nil {
		return nil
	}
	if prev != nil && *prev == *project.DeveloperID {
		return nil
	}

	dev, err := s.Users.GetByID(ctx, *project.DeveloperID)
	if err != nil {
		return &Warning{Message: "proyek tersimpan, notifikasi gagal: developer tidak ditemukan"}
	}
	if dev.Phone == "" {
		return &Warning{Message: fmt.Sprintf("proyek tersimpan, notifikasi tidak terkirim: %s belum punya nomor WA", dev.FullName)}
	}

	deadline := "Belum Ditentukan"
	if project.TanggalSelesai != nil {
		deadline = project.TanggalSelesai.Format("02-01-2006")
	}
	msg := fmt.Sprintf("👨‍💻 Kamu mendapat tugas baru: *%s* dari *%s*. Deadline: *%s*. Silakan cek di dashboard developer kamu.",
		project.NamaProyek, project.ClientNama, deadline)

	res := s.Notifier.Send(ctx, dev.Phone, msg)
	if !res.Success {
		s.Logger.Warn("assignment notification failed", "project_id", project.ID, "developer_id", dev.ID, "reason", res.Message)
		return &Warning{Message: "proyek tersimpan, notifikasi WA gagal: " + res.Message}
	}
	return nil
}

// MarkDone completes the project. Admin and cs may complete any project;
// a developer only their own. The tracking insert rides the same
// transaction as the status flip, so the fee is realized exactly once.
func (s ProjectService) MarkDone(ctx context.Context, actor authctx.CurrentUser, id int64) (*domain.Project, *domain.DeveloperPayment, error) {
	project, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		if actor.Role != domain.RoleDeveloper || project.DeveloperID == nil || *project.DeveloperID != actor.ID {
			return nil, nil, ErrForbidden
		}
	}

	notes := fmt.Sprintf("Fee proyek %s", project.NamaProyek)
	done, payment, err := s.Projects.MarkDone(ctx, id, time.Now(), notes)
	if err != nil {
		return nil, nil, err
	}
	meta := map[string]any{"nama_proyek": done.NamaProyek}
	if payment != nil {
		meta["fee_recorded"] = payment.AmountPaid.String()
	}
	s.logActivity(ctx, actor, "complete", "project", id, meta)
	return done, payment, nil
}

func (s ProjectService) SetArchived(ctx context.Context, actor authctx.CurrentUser, id int64, archived bool) error {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return ErrForbidden
	}
	if err := s.Projects.SetArchived(ctx, id, archived); err != nil {
		return err
	}
	action := "archive"
	if !archived {
		action = "unarchive"
	}
	s.logActivity(ctx, actor, action, "project", id, nil)
	return nil
}

func (s ProjectService) Delete(ctx context.Context, actor authctx.CurrentUser, id int64) error {
	if !actor.HasAnyRole(domain.RoleAdmin) {
		return ErrForbidden
	}
	if err := s.Projects.Delete(ctx, id); err != nil {
		return err
	}
	s.logActivity(ctx, actor, "delete", "project", id, nil)
	return nil
}

// List returns projects for the actor. Developers see only their own;
// archived=false hides anything in the archive window, archived=true shows
// only that. The window is evaluated at read time against the clock.
func (s ProjectService) List(ctx context.Context, actor authctx.CurrentUser, archived bool) ([]domain.Project, error) {
	var (
		projects []domain.Project
		err      error
	)
	if actor.Role == domain.RoleDeveloper {
		projects, err = s.Projects.ListByDeveloper(ctx, actor.ID)
	} else {
		projects, err = s.Projects.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := projects[:0]
	for _, p := range projects {
		if p.InArchive(now, s.archiveDays()) == archived {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s ProjectService) Get(ctx context.Context, actor authctx.CurrentUser, id int64) (*domain.Project, error) {
	project, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleDeveloper && (project.DeveloperID == nil || *project.DeveloperID != actor.ID) {
		return nil, ErrForbidden
	}
	return project, nil
}

// Checklist mutations recompute the stored progress from the surviving
// items after every change.

func (s ProjectService) AddChecklistItem(ctx context.Context, actor authctx.CurrentUser, projectID int64, title string) (*domain.ProjectChecklist, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return nil, ErrForbidden
	}
	item, err := s.Checklists.Create(ctx, projectID, title, &actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeProgress(ctx, projectID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s ProjectService) SetChecklistDone(ctx context.Context, actor authctx.CurrentUser, projectID, itemID int64, done bool) error {
	if actor.Role == domain.RoleDeveloper {
		project, err := s.Projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		if project.DeveloperID == nil || *project.DeveloperID != actor.ID {
			return ErrForbidden
		}
	} else if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return ErrForbidden
	}
	if _, err := s.Checklists.SetDone(ctx, itemID, done, &actor.ID); err != nil {
		return err
	}
	return s.recomputeProgress(ctx, projectID)
}

func (s ProjectService) DeleteChecklistItem(ctx context.Context, actor authctx.CurrentUser, itemID int64) error {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleCS) {
		return ErrForbidden
	}
	projectID, err := s.Checklists.Delete(ctx, itemID)
	if err != nil {
		return err
	}
	return s.recomputeProgress(ctx, projectID)
}

func (s ProjectService) Checklist(ctx context.Context, projectID int64) ([]domain.ProjectChecklist, error) {
	return s.Checklists.ListByProject(ctx, projectID)
}

func (s ProjectService) recomputeProgress(ctx context.Context, projectID int64) error {
	items, err := s.Checklists.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	return s.Projects.SetProgress(ctx, projectID, domain.ChecklistProgress(items))
}

func (s ProjectService) logActivity(ctx context.Context, actor authctx.CurrentUser, action, entity string, entityID int64, meta map[string]any) {
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
