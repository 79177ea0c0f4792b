package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/malcha/dagu-client/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthenticated},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrDuplicate},
		{http.StatusUnprocessableEntity, domain.ErrInvalidInput},
		{http.StatusTooManyRequests, domain.ErrInvalidInput},
		{http.StatusInternalServerError, domain.ErrServerFault},
		{http.StatusBadGateway, domain.ErrServerFault},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			_, err := client.Check(context.Background())
			if !errors.Is(err, tc.want) {
				t.Errorf("status %d: got %v, want %v", tc.status, err, tc.want)
			}
		})
	}
}

func TestErrorEnvelopeShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"structured", `{"error": {"code": "login_required", "message": "login required"}}`, "login required"},
		{"bare string", `{"error": "not yours"}`, "not yours"},
		{"garbage", `<html>`, "403"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(tc.body))
			}))
			_, err := client.Check(context.Background())
			if !errors.Is(err, domain.ErrForbidden) {
				t.Fatalf("got %v, want ErrForbidden", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not carry detail %q", err, tc.want)
			}
		})
	}
}

func TestTransportFailureMapsToUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Check(context.Background())
	if !errors.Is(err, domain.ErrUnreachable) {
		t.Errorf("got %v, want ErrUnreachable", err)
	}
}

func TestCheckDecodesAuthStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/check/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"is_authenticated": true,
			"user_id":          42,
			"username":         "hyeonwoo",
		})
	}))

	status, err := client.Check(context.Background())
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !status.IsAuthenticated || status.UserID != 42 || status.Username != "hyeonwoo" {
		t.Errorf("status = %+v", status)
	}
}
