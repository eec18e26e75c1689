package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/go-chi/chi/v5"
)

type LeadHandler struct {
	Repo repository.LeadRepository
}

func (h LeadHandler) RegisterRoutes(r chi.Router) {
	r.Get("/leads", h.list)
	r.Post("/leads", h.create)
	r.Put("/leads/{id}", h.update)
	r.Post("/leads/{id}/convert", h.convert)
	r.Delete("/leads/{id}", h.delete)
}

type leadRequest struct {
	Nama    string `json:"nama"`
	Kontak  string `json:"kontak"`
	Sumber  string `json:"sumber"`
	Status  string `json:"status"`
	Catatan string `json:"catatan"`
}

func (req leadRequest) toInput(createdBy *int64) repository.LeadInput {
	in := repository.LeadInput{
		Nama:      req.Nama,
		Kontak:    req.Kontak,
		Sumber:    domain.LeadSource(req.Sumber),
		Status:    domain.LeadStatus(req.Status),
		Catatan:   req.Catatan,
		CreatedBy: createdBy,
	}
	if in.Sumber == "" {
		in.Sumber = domain.SourceLainnya
	}
	if in.Status == "" {
		in.Status = domain.LeadBaru
	}
	return in
}

func (h LeadHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, l := range items {
		resp = append(resp, leadPayload(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LeadHandler) create(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Nama == "" {
		writeError(w, http.StatusBadRequest, "nama is required")
		return
	}
	l, err := h.Repo.Create(r.Context(), req.toInput(actorID(r)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, leadPayload(*l))
}

func (h LeadHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	l, err := h.Repo.Update(r.Context(), id, req.toInput(nil))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leadPayload(*l))
}

// convert turns the lead into a client. The lead moves to deal with
// converted_at stamped; converting twice fails.
func (h LeadHandler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid renewalDate")
		return
	}
	if in.Status == domain.ClientProspek {
		in.Status = domain.ClientDeal
	}
	lead, client, err := h.Repo.Convert(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lead":   leadPayload(*lead),
		"client": clientPayload(*client),
	})
}

func (h LeadHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func leadPayload(l domain.Lead) map[string]any {
	out := map[string]any{
		"id":      l.ID,
		"nama":    l.Nama,
		"kontak":  l.Kontak,
		"sumber":  string(l.Sumber),
		"status":  string(l.Status),
		"catatan": l.Catatan,
	}
	if l.ClientID != nil {
		out["clientId"] = *l.ClientID
	}
	if l.ConvertedAt != nil {
		out["convertedAt"] = l.ConvertedAt.Format(dateLayout)
	}
	return out
}
