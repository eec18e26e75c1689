// Package notify delivers WhatsApp messages through the Fonnte gateway.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrNotConfigured = errors.New("fonnte api key not configured")

var (
	sendAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsapp_send_attempts_total",
		Help: "WhatsApp notification attempts by outcome.",
	}, []string{"outcome"})
)

// Result is what the transition controllers surface to the caller: delivery
// failure is a warning, never a blocking error.
type Result struct {
	Success bool
	Message string
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CleanTarget strips non-digits from a phone number. Fonnte expects numbers
// in international format with a leading 62.
func CleanTarget(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if !strings.HasPrefix(cleaned, "62") {
		return "", fmt.Errorf("nomor target tidak valid (harus 62xxxx): %q", phone)
	}
	return cleaned, nil
}

// Send delivers one message. Invalid targets and configuration gaps are
// reported synchronously in the Result; only transport-level behavior is
// wrapped, no retries.
func (c *Client) Send(ctx context.Context, target, message string) Result {
	if c.APIKey == "" {
		sendAttempts.WithLabelValues("unconfigured").Inc()
		return Result{Success: false, Message: ErrNotConfigured.Error()}
	}
	cleaned, err := CleanTarget(target)
	if err != nil {
		sendAttempts.WithLabelValues("invalid_target").Inc()
		return Result{Success: false, Message: err.Error()}
	}

	payload, _ := json.Marshal(map[string]string{
		"target":  cleaned,
		"message": message,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		sendAttempts.WithLabelValues("error").Inc()
		return Result{Success: false, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		sendAttempts.WithLabelValues("error").Inc()
		return Result{Success: false, Message: "koneksi error: " + err.Error()}
	}
	defer resp.Body.Close()

	var body struct {
		Status  any    `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		sendAttempts.WithLabelValues("error").Inc()
		return Result{Success: false, Message: "unexpected fonnte response: " + err.Error()}
	}

	ok := resp.StatusCode < 300 && (body.Status == true || body.Status == "success")
	if !ok {
		msg := body.Reason
		if msg == "" {
			msg = body.Message
		}
		if msg == "" {
			msg = "gagal mengirim notifikasi via Fonnte"
		}
		sendAttempts.WithLabelValues("rejected").Inc()
		return Result{Success: false, Message: msg}
	}
	sendAttempts.WithLabelValues("ok").Inc()
	return Result{Success: true, Message: "notifikasi WA berhasil dikirim"}
}
