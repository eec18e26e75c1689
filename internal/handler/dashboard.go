package handler

import (
	"net/http"
	"strconv"

	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	Repo repository.DashboardRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/monthly", h.monthly)
	r.Get("/dashboard/project-status", h.projectStatus)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Summary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalIncome":    s.TotalIncome,
		"totalExpense":   s.TotalExpense,
		"balance":        s.TotalIncome.Sub(s.TotalExpense),
		"activeProjects": s.ActiveProjects,
		"activeClients":  s.ActiveClients,
		"unpaidInvoices": s.UnpaidInvoices,
	})
}

func (h DashboardHandler) monthly(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 36 {
			writeError(w, http.StatusBadRequest, "invalid months")
			return
		}
		months = n
	}
	points, err := h.Repo.MonthlySeries(r.Context(), months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(points))
	for _, p := range points {
		resp = append(resp, map[string]any{
			"month":   p.Month,
			"income":  p.Income,
			"expense": p.Expense,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h DashboardHandler) projectStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Repo.ProjectStatusCounts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		resp = append(resp, map[string]any{
			"status": c.Status,
			"count":  c.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
