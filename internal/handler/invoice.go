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
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	Service service.InvoiceService
	Repo    repository.InvoiceRepository
}

func (h InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/invoices", h.list)
	r.Post("/invoices", h.create)
	r.Get("/invoices/{id}", h.get)
	r.Put("/invoices/{id}", h.update)
	r.Patch("/invoices/{id}/status", h.setStatus)
	r.Delete("/invoices/{id}", h.delete)
}

type invoiceRequest struct {
	ProjectID     int64           `json:"projectId"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	TanggalTerbit string          `json:"tanggalTerbit"`
	JatuhTempo    string          `json:"jatuhTempo"`
}

func (req invoiceRequest) toInput() (repository.InvoiceInput, error) {
	in := repository.InvoiceInput{
		ProjectID: req.ProjectID,
		Amount:    req.Amount,
		Status:    domain.InvoiceStatus(req.Status),
	}
	now := time.Now()
	in.TanggalTerbit = now
	in.JatuhTempo = now.AddDate(0, 0, 14)
	if req.TanggalTerbit != "" {
		t, err := time.Parse(dateLayout, req.TanggalTerbit)
		if err != nil {
			return in, err
		}
		in.TanggalTerbit = t
	}
	if req.JatuhTempo != "" {
		t, err := time.Parse(dateLayout, req.JatuhTempo)
		if err != nil {
			return in, err
		}
		in.JatuhTempo = t
	}
	return in, nil
}

func (h InvoiceHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, inv := range items {
		resp = append(resp, invoicePayload(inv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h InvoiceHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	inv, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoicePayload(*inv))
}

func (h InvoiceHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ProjectID == 0 {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	inv, err := h.Service.Create(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoicePayload(*inv))
}

func (h InvoiceHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req invoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	inv, err := h.Service.Update(r.Context(), actor, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invoicePayload(*inv))
}

// setStatus drives the payment lifecycle; entering lunas posts the income
// row and may notify the developer (surfaced as a warning on failure).
func (h InvoiceHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	inv, warning, err := h.Service.SetStatus(r.Context(), actor, id, domain.InvoiceStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONWarning(w, http.StatusOK, invoicePayload(*inv), warning)
}

func (h InvoiceHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func invoicePayload(inv domain.Invoice) map[string]any {
	out := map[string]any{
		"id":            inv.ID,
		"projectId":     inv.ProjectID,
		"invoiceNumber": inv.InvoiceNumber,
		"amount":        inv.Amount,
		"status":        string(inv.Status),
		"tanggalTerbit": inv.TanggalTerbit.Format(dateLayout),
		"jatuhTempo":    inv.JatuhTempo.Format(dateLayout),
	}
	if inv.PaidAt != nil {
		out["paidAt"] = inv.PaidAt.Format(time.RFC3339)
	}
	if inv.PDFURL != "" {
		out["pdfUrl"] = inv.PDFURL
	}
	return out
}
