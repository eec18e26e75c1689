package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
	"github.com/go-chi/chi/v5"
)

type ClientHandler struct {
	Repo repository.ClientRepository
}

func (h ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/clients", h.list)
	r.Post("/clients", h.create)
	r.Get("/clients/{id}", h.get)
	r.Put("/clients/{id}", h.update)
	r.Delete("/clients/{id}", h.delete)
}

type clientRequest struct {
	Nama        string `json:"nama"`
	Bisnis      string `json:"bisnis"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Whatsapp    string `json:"whatsapp"`
	Alamat      string `json:"alamat"`
	Status      string `json:"status"`
	RenewalDate string `json:"renewalDate"`
	Catatan     string `json:"catatan"`
}

func (req clientRequest) toInput(createdBy *int64) (repository.ClientInput, error) {
	in := repository.ClientInput{
		Nama:      req.Nama,
		Bisnis:    req.Bisnis,
		Email:     req.Email,
		Phone:     req.Phone,
		Whatsapp:  req.Whatsapp,
		Alamat:    req.Alamat,
		Status:    domain.ClientStatus(req.Status),
		Catatan:   req.Catatan,
		CreatedBy: createdBy,
	}
	if in.Status == "" {
		in.Status = domain.ClientProspek
	}
	if req.RenewalDate != "" {
		t, err := time.Parse(dateLayout, req.RenewalDate)
		if err != nil {
			return in, err
		}
		in.RenewalDate = &t
	}
	return in, nil
}

func (h ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, clientPayload(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientPayload(*c))
}

func (h ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Nama == "" {
		writeError(w, http.StatusBadRequest, "nama is required")
		return
	}
	in, err := req.toInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid renewalDate")
		return
	}
	c, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, clientPayload(*c))
}

func (h ClientHandler) update(w http.ResponseWriter, r *http.Request) {
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
	in, err := req.toInput(nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid renewalDate")
		return
	}
	c, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clientPayload(*c))
}

func (h ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func clientPayload(c domain.Client) map[string]any {
	out := map[string]any{
		"id":       c.ID,
		"nama":     c.Nama,
		"bisnis":   c.Bisnis,
		"email":    c.Email,
		"phone":    c.Phone,
		"whatsapp": c.Whatsapp,
		"alamat":   c.Alamat,
		"status":   string(c.Status),
		"catatan":  c.Catatan,
	}
	if c.RenewalDate != nil {
		out["renewalDate"] = c.RenewalDate.Format(dateLayout)
	}
	return out
}

// actorID pulls the authenticated user's id for created_by stamping.
func actorID(r *http.Request) *int64 {
	if user := authctx.FromContext(r.Context()); user != nil {
		return &user.ID
	}
	return nil
}
