package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
	"github.com/go-chi/chi/v5"
)

// SPKHandler manages work orders. Numbers are generated server-side like
// invoice numbers.
type SPKHandler struct {
	Repo repository.SPKRepository
}

func (h SPKHandler) RegisterRoutes(r chi.Router) {
	r.Get("/spks", h.list)
	r.Post("/spks", h.create)
	r.Get("/spks/{id}", h.get)
	r.Put("/spks/{id}", h.update)
	r.Delete("/spks/{id}", h.delete)
}

func (h SPKHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, spkPayload(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SPKHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	s, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spkPayload(*s))
}

func (h SPKHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID       int64  `json:"projectId"`
		PaymentTerms    string `json:"paymentTerms"`
		TermsConditions string `json:"termsConditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ProjectID == 0 {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	var s *domain.SPK
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		s, err = h.Repo.Create(r.Context(), repository.SPKInput{
			ProjectID:       req.ProjectID,
			SPKNumber:       service.GenerateNumber("SPK", time.Now()),
			PaymentTerms:    req.PaymentTerms,
			TermsConditions: req.TermsConditions,
			CreatedBy:       actorID(r),
		})
		if err == nil || !repository.IsDuplicate(err) {
			break
		}
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, spkPayload(*s))
}

func (h SPKHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		PaymentTerms    string `json:"paymentTerms"`
		TermsConditions string `json:"termsConditions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s, err := h.Repo.Update(r.Context(), id, req.PaymentTerms, req.TermsConditions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spkPayload(*s))
}

func (h SPKHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func spkPayload(s domain.SPK) map[string]any {
	out := map[string]any{
		"id":              s.ID,
		"projectId":       s.ProjectID,
		"spkNumber":       s.SPKNumber,
		"paymentTerms":    s.PaymentTerms,
		"termsConditions": s.TermsConditions,
	}
	if s.PDFURL != "" {
		out["pdfUrl"] = s.PDFURL
	}
	return out
}
