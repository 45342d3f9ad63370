package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/supplyline/internal/logging"
)

type staticTokens string

func (s staticTokens) Token() (string, bool) { return string(s), s != "" }

func newTestClient(t *testing.T, h http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/api/v1", staticTokens(token), WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestDoRoundTrip(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/orders" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/api/v1/orders")
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer T" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer T")
		}
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}, "T")

	var out map[string]string
	if err := c.Do(context.Background(), http.MethodPost, "orders", map[string]string{"name": "flour"}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out["echo"] != "flour" {
		t.Errorf("echo = %q, want %q", out["echo"], "flour")
	}
}

func TestDoStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad password"})
	}, "")

	err := c.Do(context.Background(), http.MethodPost, "authentication/sign-in", map[string]string{}, nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusUnauthorized {
		t.Errorf("code = %d, want 401", se.Code)
	}
	if !strings.Contains(se.Message, "bad password") {
		t.Errorf("message = %q, want backend detail", se.Message)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Error("IsStatus(401) = false")
	}
}

func TestDoStatusErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	err := c.Do(context.Background(), http.MethodGet, "sales", nil, nil)
	if err == nil || err.Error() != "The server is unavailable, try again later" {
		t.Errorf("err = %v", err)
	}
}

func TestDoNoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, "T")

	var out map[string]any
	if err := c.Do(context.Background(), http.MethodDelete, "recipes/1", nil, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
}

func TestDoEmptyOKBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "T")

	out := map[string]any{"kept": true}
	if err := c.Do(context.Background(), http.MethodPut, "users/7/subscription", map[string]int{"subscription": 2}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out["kept"] != true {
		t.Errorf("out = %v, want untouched", out)
	}
}

func TestDoMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":`))
	}, "T")

	var out map[string]any
	if err := c.Do(context.Background(), http.MethodGet, "plans", nil, &out); err == nil {
		t.Fatal("expected decode error for truncated body")
	}
}

func TestDoTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, _ := New(server.URL, staticTokens(""), WithLogger(logging.Discard()))
	server.Close()

	err := c.Do(context.Background(), http.MethodGet, "plans", nil, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Error("transport failure should not be a StatusError")
	}
}

func TestDoContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Do(ctx, http.MethodGet, "plans", nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewNilLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	c, err := New(server.URL, staticTokens("T"), WithLogger(nil))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	var out []any
	if err := c.Do(context.Background(), http.MethodGet, "plans", nil, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	for _, in := range []string{"", "localhost", "://x"} {
		if _, err := New(in, staticTokens("")); err == nil {
			t.Errorf("New(%q): expected error", in)
		}
	}
}

func TestURLResolution(t *testing.T) {
	c, err := New("https://api.example.com/api/v1", staticTokens(""))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.URL("/profiles/7").String(); got != "https://api.example.com/api/v1/profiles/7" {
		t.Errorf("url = %q", got)
	}
	if got := c.URL("orders?supplierId=3").String(); got != "https://api.example.com/api/v1/orders?supplierId=3" {
		t.Errorf("url with query = %q", got)
	}
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		code   int
		detail string
		want   string
	}{
		{404, "", "Not found"},
		{409, "username taken", "Already exists: username taken"},
		{418, "", "Request failed with status 418"},
		{503, "", "The server is unavailable, try again later"},
	}
	for _, tt := range tests {
		if got := StatusMessage(tt.code, tt.detail); got != tt.want {
			t.Errorf("StatusMessage(%d, %q) = %q, want %q", tt.code, tt.detail, got, tt.want)
		}
	}
}
