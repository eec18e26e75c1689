package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCleanTarget(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"6281234567890", "6281234567890", false},
		{"+62 812-3456-7890", "6281234567890", false},
		{"62 (812) 3456 7890", "6281234567890", false},
		{"081234567890", "", true},
		{"12345", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := CleanTarget(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("CleanTarget(%q) accepted invalid number", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("CleanTarget(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CleanTarget(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSendSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	res := c.Send(context.Background(), "+62 812-3456-7890", "halo")
	if !res.Success {
		t.Fatalf("Send failed: %s", res.Message)
	}
	if gotAuth != "secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["target"] != "6281234567890" || gotBody["message"] != "halo" {
		t.Errorf("payload = %v", gotBody)
	}
}

func TestSendStringStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	if res := c.Send(context.Background(), "628111", "x"); !res.Success {
		t.Errorf("string status not accepted: %s", res.Message)
	}
}

func TestSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "reason": "invalid token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	res := c.Send(context.Background(), "628111", "x")
	if res.Success {
		t.Fatal("rejected send reported as success")
	}
	if res.Message != "invalid token" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestSendUnconfigured(t *testing.T) {
	c := NewClient("http://example.invalid", "")
	res := c.Send(context.Background(), "628111", "x")
	if res.Success {
		t.Fatal("unconfigured client reported success")
	}
}

func TestSendInvalidTarget(t *testing.T) {
	c := NewClient("http://example.invalid", "k")
	res := c.Send(context.Background(), "08123", "x")
	if res.Success {
		t.Fatal("invalid target reported success")
	}
}
