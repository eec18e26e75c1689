package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Warning string    `json:"warning,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeRawJSON(w, status, apiResponse{
		Status: "ok",
		Data:   payload,
	})
}

// writeJSONWarning is writeJSON for partial successes: the operation
// succeeded but a secondary effect did not.
func writeJSONWarning(w http.ResponseWriter, status int, payload any, warning *service.Warning) {
	resp := apiResponse{
		Status: "ok",
		Data:   payload,
	}
	if warning != nil {
		resp.Warning = warning.Message
	}
	writeRawJSON(w, status, resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeServiceError maps the well-known service and repository sentinels to
// HTTP statuses; everything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case repository.IsDuplicate(err):
		writeError(w, http.StatusConflict, err.Error())
	case repository.IsReferenced(err):
		writeError(w, http.StatusConflict, "record is still referenced")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
