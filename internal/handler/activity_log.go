package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/go-chi/chi/v5"
)

type ActivityLogHandler struct {
	Repo repository.ActivityLogRepository
}

func (h ActivityLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity-logs", h.list)
}

func (h ActivityLogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		entry := map[string]any{
			"id":         l.ID,
			"action":     l.Action,
			"entityType": l.EntityType,
			"createdAt":  l.CreatedAt.Format(time.RFC3339),
		}
		if l.UserID != nil {
			entry["userId"] = *l.UserID
		}
		if l.EntityID != nil {
			entry["entityId"] = *l.EntityID
		}
		if l.Metadata != nil {
			entry["metadata"] = l.Metadata
		}
		resp = append(resp, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}
