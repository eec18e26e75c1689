package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
	"github.com/go-chi/chi/v5"
)

// DeveloperHandler exposes the fee reconciliation views and the payout
// action.
type DeveloperHandler struct {
	Service service.ReconciliationService
}

func (h DeveloperHandler) RegisterRoutes(r chi.Router) {
	r.Get("/developers/stats", h.statsAll)
	r.Get("/developers/{id}/stats", h.statsOne)
	r.Post("/developers/{id}/pay", h.pay)
}

func (h DeveloperHandler) statsAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	stats, totals, err := h.Service.StatsAll(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		resp = append(resp, statPayload(st))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"developers": resp,
		"totals": map[string]any{
			"pendingFee":    totals.Pending,
			"unpaidBalance": totals.Unpaid,
			"totalPaid":     totals.Paid,
		},
	})
}

func (h DeveloperHandler) statsOne(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	st, err := h.Service.StatsFor(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statPayload(*st))
}

func (h DeveloperHandler) pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	res, err := h.Service.PayOutstanding(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"paid":    res.Paid,
		"amount":  res.Amount,
		"message": res.Message,
	})
}

func statPayload(st domain.DeveloperStat) map[string]any {
	records := make([]map[string]any, 0, len(st.PaymentRecords))
	for _, p := range st.PaymentRecords {
		records = append(records, map[string]any{
			"projectId": p.ProjectID,
			"amount":    p.AmountPaid,
			"paidAt":    p.PaidAt.Format(time.RFC3339),
			"notes":     p.Notes,
		})
	}
	return map[string]any{
		"developerId":       st.DeveloperID,
		"fullName":          st.FullName,
		"activeProjects":    st.ActiveProjects,
		"completedProjects": st.CompletedProjects,
		"pendingFee":        st.PendingFee,
		"totalEarned":       st.TotalEarned,
		"totalPaid":         st.TotalPaid,
		"unpaidBalance":     st.UnpaidBalance,
		"paymentRecords":    records,
	}
}
