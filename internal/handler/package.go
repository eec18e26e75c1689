package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PackageHandler struct {
	Repo repository.PackageRepository
}

func (h PackageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/packages", h.list)
	r.Post("/packages", h.create)
	r.Put("/packages/{id}", h.update)
	r.Delete("/packages/{id}", h.delete)
}

type packageRequest struct {
	Nama         string          `json:"nama"`
	Deskripsi    string          `json:"deskripsi"`
	Harga        decimal.Decimal `json:"harga"`
	EstimasiHari *int            `json:"estimasiHari"`
	Fitur        []string        `json:"fitur"`
	IsActive     *bool           `json:"isActive"`
}

func (req packageRequest) toInput() repository.PackageInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return repository.PackageInput{
		Nama:         req.Nama,
		Deskripsi:    req.Deskripsi,
		Harga:        req.Harga,
		EstimasiHari: req.EstimasiHari,
		Fitur:        req.Fitur,
		IsActive:     active,
	}
}

func (h PackageHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	items, err := h.Repo.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, p := range items {
		resp = append(resp, packagePayload(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h PackageHandler) create(w http.ResponseWriter, r *http.Request) {
	var req packageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Nama == "" {
		writeError(w, http.StatusBadRequest, "nama is required")
		return
	}
	p, err := h.Repo.Create(r.Context(), req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, packagePayload(*p))
}

func (h PackageHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req packageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	p, err := h.Repo.Update(r.Context(), id, req.toInput())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packagePayload(*p))
}

func (h PackageHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func packagePayload(p domain.Package) map[string]any {
	out := map[string]any{
		"id":        p.ID,
		"nama":      p.Nama,
		"deskripsi": p.Deskripsi,
		"harga":     p.Harga,
		"fitur":     p.Fitur,
		"isActive":  p.IsActive,
	}
	if p.EstimasiHari != nil {
		out["estimasiHari"] = *p.EstimasiHari
	}
	return out
}
