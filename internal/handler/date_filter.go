package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseDateRange reads startDate/endDate and validates their ordering.
func parseDateRange(r *http.Request) (start, end *time.Time, ok bool) {
	var err error
	start, err = parseDateQuery(r, "startDate")
	if err != nil {
		return nil, nil, false
	}
	end, err = parseDateQuery(r, "endDate")
	if err != nil {
		return nil, nil, false
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, false
	}
	return start, end, true
}
