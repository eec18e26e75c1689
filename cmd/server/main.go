package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielranggabani/erp.maswebsite/internal/config"
	"github.com/danielranggabani/erp.maswebsite/internal/db"
	"github.com/danielranggabani/erp.maswebsite/internal/handler"
	"github.com/danielranggabani/erp.maswebsite/internal/notify"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	whatsapp := notify.NewClient(cfg.FonnteBaseURL, cfg.FonnteAPIKey)
	if cfg.FonnteAPIKey == "" {
		logger.Warn("FONNTE_API_KEY not set, WhatsApp notifications disabled")
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	clientRepo := repository.ClientRepository{DB: pg}
	leadRepo := repository.LeadRepository{DB: pg}
	packageRepo := repository.PackageRepository{DB: pg}
	projectRepo := repository.ProjectRepository{DB: pg}
	checklistRepo := repository.ChecklistRepository{DB: pg}
	trackingRepo := repository.TrackingRepository{DB: pg}
	financeRepo := repository.FinanceRepository{DB: pg}
	invoiceRepo := repository.InvoiceRepository{DB: pg}
	spkRepo := repository.SPKRepository{DB: pg}
	adsRepo := repository.AdsReportRepository{DB: pg}
	activityRepo := repository.ActivityLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	projectSvc := service.ProjectService{
		Projects:         projectRepo,
		Checklists:       checklistRepo,
		Users:            userRepo,
		Notifier:         whatsapp,
		Activity:         activityRepo,
		Logger:           logger,
		ArchiveAfterDays: cfg.ArchiveAfterDays,
	}
	invoiceSvc := service.InvoiceService{
		Invoices: invoiceRepo,
		Ledger:   financeRepo,
		Projects: projectRepo,
		Users:    userRepo,
		Notifier: whatsapp,
		Activity: activityRepo,
		Logger:   logger,
	}
	reconSvc := service.ReconciliationService{
		Users:    userRepo,
		Projects: projectRepo,
		Tracking: trackingRepo,
		Ledger:   financeRepo,
		Logger:   logger,
	}
	adsSvc := service.AdsReportService{
		Reports: adsRepo,
		Ledger:  financeRepo,
		Logger:  logger,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	clientHandler := handler.ClientHandler{Repo: clientRepo}
	leadHandler := handler.LeadHandler{Repo: leadRepo}
	packageHandler := handler.PackageHandler{Repo: packageRepo}
	projectHandler := handler.ProjectHandler{Service: projectSvc}
	invoiceHandler := handler.InvoiceHandler{Service: invoiceSvc, Repo: invoiceRepo}
	spkHandler := handler.SPKHandler{Repo: spkRepo}
	financeHandler := handler.FinanceHandler{Repo: financeRepo}
	developerHandler := handler.DeveloperHandler{Service: reconSvc}
	adsHandler := handler.AdsReportHandler{Service: adsSvc}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo}
	activityHandler := handler.ActivityLogHandler{Repo: activityRepo}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, clientHandler, leadHandler, packageHandler,
		projectHandler, invoiceHandler, spkHandler, financeHandler,
		developerHandler, adsHandler, dashboardHandler, activityHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
