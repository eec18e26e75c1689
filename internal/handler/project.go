package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProjectHandler struct {
	Service service.ProjectService
}

func (h ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.list)
	r.Post("/projects", h.create)
	r.Get("/projects/{id}", h.get)
	r.Put("/projects/{id}", h.update)
	r.Delete("/projects/{id}", h.delete)
	r.Post("/projects/{id}/done", h.markDone)
	r.Post("/projects/{id}/archive", h.archive)
	r.Get("/projects/{id}/checklists", h.checklist)
	r.Post("/projects/{id}/checklists", h.addChecklistItem)
	r.Put("/projects/{id}/checklists/{itemID}", h.setChecklistDone)
	r.Delete("/projects/{id}/checklists/{itemID}", h.deleteChecklistItem)
}

type projectRequest struct {
	ClientID       int64           `json:"clientId"`
	DeveloperID    *int64          `json:"developerId"`
	PackageID      *int64          `json:"packageId"`
	NamaProyek     string          `json:"namaProyek"`
	RuangLingkup   string          `json:"ruangLingkup"`
	Harga          decimal.Decimal `json:"harga"`
	FeeDeveloper   decimal.Decimal `json:"feeDeveloper"`
	Status         string          `json:"status"`
	TanggalMulai   string          `json:"tanggalMulai"`
	TanggalSelesai string          `json:"tanggalSelesai"`
	EstimasiHari   *int            `json:"estimasiHari"`
}

func (req projectRequest) toInput() (repository.ProjectInput, error) {
	in := repository.ProjectInput{
		ClientID:     req.ClientID,
		DeveloperID:  req.DeveloperID,
		PackageID:    req.PackageID,
		NamaProyek:   req.NamaProyek,
		RuangLingkup: req.RuangLingkup,
		Harga:        req.Harga,
		FeeDeveloper: req.FeeDeveloper,
		Status:       domain.ProjectStatus(req.Status),
		EstimasiHari: req.EstimasiHari,
	}
	if in.Status == "" {
		in.Status = domain.ProjectBriefing
	}
	for _, d := range []struct {
		raw  string
		dest **time.Time
	}{
		{req.TanggalMulai, &in.TanggalMulai},
		{req.TanggalSelesai, &in.TanggalSelesai},
	} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, d.raw)
		if err != nil {
			return in, err
		}
		*d.dest = &t
	}
	return in, nil
}

func (h ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	archived := r.URL.Query().Get("archived") == "true"
	items, err := h.Service.List(r.Context(), actor, archived)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, p := range items {
		resp = append(resp, projectPayload(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ProjectHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectPayload(*p))
}

func (h ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.NamaProyek == "" || req.ClientID == 0 {
		writeError(w, http.StatusBadRequest, "namaProyek and clientId are required")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	p, warning, err := h.Service.Create(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONWarning(w, http.StatusCreated, projectPayload(*p), warning)
}

func (h ProjectHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	p, warning, err := h.Service.Update(r.Context(), actor, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONWarning(w, http.StatusOK, projectPayload(*p), warning)
}

func (h ProjectHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h ProjectHandler) markDone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, payment, err := h.Service.MarkDone(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := map[string]any{"project": projectPayload(*p)}
	if payment != nil {
		resp["feeRecorded"] = map[string]any{
			"amount": payment.AmountPaid,
			"paidAt": payment.PaidAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ProjectHandler) archive(w http.ResponseWriter, r *http.Request) {
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
		Archived bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Service.SetArchived(r.Context(), actor, id, req.Archived); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived": req.Archived})
}

func (h ProjectHandler) checklist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.Service.Checklist(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, map[string]any{
			"id":     it.ID,
			"title":  it.Title,
			"isDone": it.IsDone,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":    resp,
		"progress": domain.ChecklistProgress(items),
	})
}

func (h ProjectHandler) addChecklistItem(w http.ResponseWriter, r *http.Request) {
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
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	item, err := h.Service.AddChecklistItem(r.Context(), actor, id, req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     item.ID,
		"title":  item.Title,
		"isDone": item.IsDone,
	})
}

func (h ProjectHandler) setChecklistDone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	projectID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	var req struct {
		IsDone bool `json:"isDone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Service.SetChecklistDone(r.Context(), actor, projectID, itemID, req.IsDone); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"isDone": req.IsDone})
}

func (h ProjectHandler) deleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := h.Service.DeleteChecklistItem(r.Context(), actor, itemID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func projectPayload(p domain.Project) map[string]any {
	out := map[string]any{
		"id":            p.ID,
		"clientId":      p.ClientID,
		"clientNama":    p.ClientNama,
		"namaProyek":    p.NamaProyek,
		"ruangLingkup":  p.RuangLingkup,
		"harga":         p.Harga,
		"feeDeveloper":  p.FeeDeveloper,
		"status":        string(p.Status),
		"isArchived":    p.IsArchived,
		"progress":      p.Progress,
		"progressNotes": p.ProgressNotes,
	}
	if p.DeveloperID != nil {
		out["developerId"] = *p.DeveloperID
	}
	if p.PackageID != nil {
		out["packageId"] = *p.PackageID
	}
	if p.TanggalMulai != nil {
		out["tanggalMulai"] = p.TanggalMulai.Format(dateLayout)
	}
	if p.TanggalSelesai != nil {
		out["tanggalSelesai"] = p.TanggalSelesai.Format(dateLayout)
	}
	if p.EstimasiHari != nil {
		out["estimasiHari"] = *p.EstimasiHari
	}
	return out
}

// requireActor resolves the authenticated user or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (authctx.CurrentUser, bool) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return authctx.CurrentUser{}, false
	}
	return *user, true
}
