package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
)

func newProjectFixture() (ProjectService, *fakeProjects, *fakeChecklists, *fakeNotifier, *fakeActivity) {
	projects := newFakeProjects()
	checklists := newFakeChecklists()
	notifier := &fakeNotifier{}
	activity := &fakeActivity{}
	users := &fakeUsers{users: map[int64]domain.User{
		7: {ID: 7, FullName: "Budi Santoso", Phone: "6281234567890", Role: domain.RoleDeveloper},
		8: {ID: 8, FullName: "Sari Dewi", Role: domain.RoleDeveloper}, // no phone
	}}
	svc := ProjectService{
		Projects:         projects,
		Checklists:       checklists,
		Users:            users,
		Notifier:         notifier,
		Activity:         activity,
		Logger:           discardLogger(),
		ArchiveAfterDays: 30,
	}
	return svc, projects, checklists, notifier, activity
}

func TestCreateProjectNotifiesAssignedDeveloper(t *testing.T) {
	svc, _, _, notifier, _ := newProjectFixture()
	devID := int64(7)

	_, warning, err := svc.Create(context.Background(), adminActor, repository.ProjectInput{
		ClientID:     1,
		DeveloperID:  &devID,
		NamaProyek:   "Toko Online",
		Status:       domain.ProjectBriefing,
		FeeDeveloper: dec(500000),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warning != nil {
		t.Errorf("unexpected warning: %s", warning.Message)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.Target != "6281234567890" {
		t.Errorf("target = %s", msg.Target)
	}
	if !strings.Contains(msg.Message, "Toko Online") || !strings.Contains(msg.Message, "Belum Ditentukan") {
		t.Errorf("unexpected message: %q", msg.Message)
	}
}

func TestUpdateProjectNotifiesOnlyOnDeveloperChange(t *testing.T) {
	svc, _, _, notifier, _ := newProjectFixture()
	ctx := context.Background()
	devA, devB := int64(7), int64(8)

	p, _, err := svc.Create(ctx, adminActor, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devA, NamaProyek: "Toko Online", Status: domain.ProjectBriefing,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("after create: %d notifications", len(notifier.sent))
	}

	// Same developer: no new notification.
	if _, _, err := svc.Update(ctx, adminActor, p.ID, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devA, NamaProyek: "Toko Online v2", Status: domain.ProjectDesain,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("unchanged developer triggered a notification")
	}

	// Changed developer: notification attempt. Sari has no phone, so the
	// write succeeds with a warning.
	_, warning, err := svc.Update(ctx, adminActor, p.ID, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devB, NamaProyek: "Toko Online v2", Status: domain.ProjectDesain,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if warning == nil {
		t.Error("expected missing-phone warning")
	}
	if len(notifier.sent) != 1 {
		t.Errorf("missing phone should short-circuit the send")
	}
}

func TestCreateProjectDeliveryFailureIsWarning(t *testing.T) {
	svc, projects, _, notifier, _ := newProjectFixture()
	notifier.fail = true
	devID := int64(7)

	p, warning, err := svc.Create(context.Background(), adminActor, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devID, NamaProyek: "Toko Online", Status: domain.ProjectBriefing,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if warning == nil || !strings.Contains(warning.Message, "gagal") {
		t.Errorf("warning = %+v", warning)
	}
	if _, ok := projects.projects[p.ID]; !ok {
		t.Error("project write must survive a failed notification")
	}
}

func TestMarkDoneRecordsFeeExactlyOnce(t *testing.T) {
	svc, projects, _, notifier, _ := newProjectFixture()
	ctx := context.Background()
	devID := int64(7)

	p, _, err := svc.Create(ctx, adminActor, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devID, NamaProyek: "Toko Online",
		Status: domain.ProjectLaunch, FeeDeveloper: dec(500000),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, payment, err := svc.MarkDone(ctx, adminActor, p.ID)
	if err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if done.Status != domain.ProjectSelesai {
		t.Errorf("status = %s", done.Status)
	}
	if payment == nil || !payment.AmountPaid.Equal(dec(500000)) {
		t.Fatalf("payment = %+v", payment)
	}
	if len(projects.payments) != 1 {
		t.Fatalf("tracking rows = %d, want 1", len(projects.payments))
	}

	// Completing again is rejected and records nothing.
	if _, _, err := svc.MarkDone(ctx, adminActor, p.ID); !errors.Is(err, repository.ErrAlreadyCompleted) {
		t.Errorf("second MarkDone: err = %v, want ErrAlreadyCompleted", err)
	}
	if len(projects.payments) != 1 {
		t.Errorf("tracking rows after retry = %d, want 1", len(projects.payments))
	}

	// Completion itself never notifies.
	countBefore := len(notifier.sent)
	if countBefore != 1 {
		t.Errorf("notifications = %d, want only the assignment one", countBefore)
	}
}

func TestMarkDoneWithoutDeveloperRecordsNothing(t *testing.T) {
	svc, projects, _, _, _ := newProjectFixture()
	ctx := context.Background()

	p, _, err := svc.Create(ctx, adminActor, repository.ProjectInput{
		ClientID: 1, NamaProyek: "Landing Page", Status: domain.ProjectLaunch, FeeDeveloper: dec(500000),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, payment, err := svc.MarkDone(ctx, adminActor, p.ID)
	if err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if payment != nil || len(projects.payments) != 0 {
		t.Errorf("fee recorded for a project without developer")
	}
}

func TestMarkDoneRoleGate(t *testing.T) {
	svc, _, _, _, _ := newProjectFixture()
	ctx := context.Background()
	devID := int64(7)

	p, _, err := svc.Create(ctx, adminActor, repository.ProjectInput{
		ClientID: 1, DeveloperID: &devID, NamaProyek: "Toko Online", Status: domain.ProjectLaunch,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another developer cannot complete it.
	other := authctx.CurrentUser{ID: 8, Role: domain.RoleDeveloper}
	if _, _, err := svc.MarkDone(ctx, other, p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("other developer: err = %v, want ErrForbidden", err)
	}
	// The assigned developer can.
	assigned := authctx.CurrentUser{ID: 7, Role: domain.RoleDeveloper}
	if _, _, err := svc.MarkDone(ctx, assigned, p.ID); err != nil {
		t.Errorf("assigned developer: %v", err)
	}
}

func TestListAppliesArchiveWindow(t *testing.T) {
	svc, projects, _, _, _ := newProjectFixture()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -45)
	recent := time.Now().AddDate(0, 0, -5)
	projects.projects[1] = domain.Project{ID: 1, ClientID: 1, NamaProyek: "Lama", Status: domain.ProjectSelesai, TanggalSelesai: &old}
	projects.projects[2] = domain.Project{ID: 2, ClientID: 1, NamaProyek: "Baru", Status: domain.ProjectSelesai, TanggalSelesai: &recent}
	projects.projects[3] = domain.Project{ID: 3, ClientID: 1, NamaProyek: "Manual", Status: domain.ProjectDesain, IsArchived: true}
	projects.projects[4] = domain.Project{ID: 4, ClientID: 1, NamaProyek: "Aktif", Status: domain.ProjectDevelopment}

	active, err := svc.List(ctx, adminActor, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	archived, err := svc.List(ctx, adminActor, true)
	if err != nil {
		t.Fatalf("List archived: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active = %d projects, want 2 (recent selesai stays visible)", len(active))
	}
	if len(archived) != 2 {
		t.Errorf("archived = %d projects, want 2 (old selesai + manual)", len(archived))
	}
}

func TestChecklistMutationsRecomputeProgress(t *testing.T) {
	svc, projects, _, _, _ := newProjectFixture()
	ctx := context.Background()

	p, _, err := svc.Create(ctx, adminActor, repository.ProjectInput{
		ClientID: 1, NamaProyek: "Toko Online", Status: domain.ProjectBriefing,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err := svc.AddChecklistItem(ctx, adminActor, p.ID, "Desain halaman")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	b, err := svc.AddChecklistItem(ctx, adminActor, p.ID, "Setup hosting")
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}
	if projects.progress[p.ID] != 0 {
		t.Errorf("progress = %d, want 0", projects.progress[p.ID])
	}

	if err := svc.SetChecklistDone(ctx, adminActor, p.ID, a.ID, true); err != nil {
		t.Fatalf("SetChecklistDone: %v", err)
	}
	if projects.progress[p.ID] != 50 {
		t.Errorf("progress = %d, want 50", projects.progress[p.ID])
	}

	if err := svc.DeleteChecklistItem(ctx, adminActor, b.ID); err != nil {
		t.Fatalf("DeleteChecklistItem: %v", err)
	}
	if projects.progress[p.ID] != 100 {
		t.Errorf("progress = %d, want 100", projects.progress[p.ID])
	}
}

func TestProjectWritesAreLogged(t *testing.T) {
	svc, _, _, _, activity := newProjectFixture()

	p, _, err := svc.Create(context.Background(), adminActor, repository.ProjectInput{
		ClientID: 1, NamaProyek: "Toko Online", Status: domain.ProjectBriefing,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := svc.MarkDone(context.Background(), adminActor, p.ID); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}

	if len(activity.logs) != 2 {
		t.Fatalf("activity logs = %d, want 2", len(activity.logs))
	}
	if activity.logs[0].Action != "create" || activity.logs[1].Action != "complete" {
		t.Errorf("actions = %s, %s", activity.logs[0].Action, activity.logs[1].Action)
	}
}
