package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/config"
	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	clients handler.ClientHandler,
	leads handler.LeadHandler,
	packages handler.PackageHandler,
	projects handler.ProjectHandler,
	invoices handler.InvoiceHandler,
	spks handler.SPKHandler,
	finances handler.FinanceHandler,
	developers handler.DeveloperHandler,
	adsReports handler.AdsReportHandler,
	dashboard handler.DashboardHandler,
	activityLogs handler.ActivityLogHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		auth.RegisterProtectedRoutes(pr)

		// crm-level (admin/cs)
		pr.Group(func(cr chi.Router) {
			cr.Use(RequireRole(domain.RoleAdmin, domain.RoleCS))
			clients.RegisterRoutes(cr)
			leads.RegisterRoutes(cr)
			packages.RegisterRoutes(cr)
			spks.RegisterRoutes(cr)
		})
		// projects are shared with developers; the service narrows what a
		// developer can see and do.
		pr.Group(func(dr chi.Router) {
			dr.Use(RequireRole(domain.RoleAdmin, domain.RoleCS, domain.RoleDeveloper))
			projects.RegisterRoutes(dr)
		})
		// finance-level (admin/finance); developer stat reads are gated
		// inside ReconciliationService so developers can reach their own.
		pr.Group(func(fr chi.Router) {
			fr.Use(RequireRole(domain.RoleAdmin, domain.RoleFinance, domain.RoleCS))
			invoices.RegisterRoutes(fr)
		})
		pr.Group(func(fr chi.Router) {
			fr.Use(RequireRole(domain.RoleAdmin, domain.RoleFinance))
			finances.RegisterRoutes(fr)
			adsReports.RegisterRoutes(fr)
			dashboard.RegisterRoutes(fr)
			activityLogs.RegisterRoutes(fr)
		})
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleFinance, domain.RoleDeveloper))
			developers.RegisterRoutes(sr)
		})
	})

	return r
}
