package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/storage/memory"
)

func testInvocation() *domain.Invocation {
	return &domain.Invocation{
		ID:             "inv-1",
		Command:        domain.CommandStart,
		RootDir:        "/app",
		Status:         domain.InvocationSucceeded,
		OriginalConfig: map[string]any{"vite": true},
		Config:         map[string]any{"vite": true, "outputDir": "build"},
		Values:         map[string]any{domain.ValueHasJSXRuntime: true},
		Tasks: []domain.Task{{
			Name:   "web",
			Config: &domain.ChainConfig{Name: "web", Mode: domain.ModeDevelopment},
		}},
	}
}

func newTestServer(t *testing.T, withHistory bool) (*Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var srv *Server
	if withHistory {
		store := memory.New()
		if err := store.RecordInvocation(context.Background(), testInvocation()); err != nil {
			t.Fatalf("RecordInvocation: %v", err)
		}
		srv = New(":0", logger, testInvocation(), store)
	} else {
		srv = New(":0", logger, testInvocation(), nil)
	}
	return srv, &logs
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestServer_Routes(t *testing.T) {
	s, _ := newTestServer(t, false)

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/healthz", http.StatusOK, `"status": "ok"`},
		{"/invocation", http.StatusOK, `"id": "inv-1"`},
		{"/tasks", http.StatusOK, `"name": "web"`},
		{"/tasks/web", http.StatusOK, `"mode": "development"`},
		{"/tasks/missing", http.StatusNotFound, `task \"missing\" not registered`},
		{"/config", http.StatusOK, `"outputDir": "build"`},
		{"/config/original", http.StatusOK, `"vite": true`},
		{"/values", http.StatusOK, `"HAS_JSX_RUNTIME": true`},
		{"/history", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.want != "" && !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %s:\n%s", tt.want, rec.Body.String())
			}
		})
	}
}

func TestServer_History(t *testing.T) {
	s, _ := newTestServer(t, true)

	rec := get(t, s, "/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []domain.InvocationSummary
	decode(t, rec.Body, &list)
	if len(list) != 1 || list[0].ID != "inv-1" || list[0].Tasks != 1 {
		t.Errorf("list = %+v", list)
	}

	rec = get(t, s, "/history?command=build")
	decode(t, rec.Body, &list)
	if len(list) != 0 {
		t.Errorf("filtered list = %+v, want empty", list)
	}

	rec = get(t, s, "/history/inv-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var inv domain.Invocation
	decode(t, rec.Body, &inv)
	if inv.Command != domain.CommandStart || len(inv.Tasks) != 1 {
		t.Errorf("invocation = %+v", inv)
	}

	if rec := get(t, s, "/history/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("missing invocation status = %d, want 404", rec.Code)
	}
	if rec := get(t, s, "/history?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := get(t, s, "/healthz")
	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("generated request id %q is not a uuid", id)
	}

	sent := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, sent)
	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != sent {
		t.Errorf("request id = %q, want client id %q", got, sent)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("invalid client request id was kept")
	}
}

func TestLoggingMiddleware(t *testing.T) {
	s, logs := newTestServer(t, false)
	get(t, s, "/tasks/missing")

	out := logs.String()
	for _, want := range []string{"request completed", "status=404", "path=/tasks/missing", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestAddLogField_NoMiddleware(t *testing.T) {
	// Must not panic without the logging middleware.
	AddLogField(context.Background(), "k", "v")
	AddError(context.Background(), nil)
}

func TestServer_SetCurrent(t *testing.T) {
	s, _ := newTestServer(t, false)

	next := testInvocation()
	next.ID = "inv-2"
	next.Tasks[0].Config.Mode = domain.ModeProduction
	s.SetCurrent(next)

	if rec := get(t, s, "/invocation"); !strings.Contains(rec.Body.String(), `"id": "inv-2"`) {
		t.Errorf("invocation not replaced:\n%s", rec.Body.String())
	}
	if rec := get(t, s, "/tasks/web"); !strings.Contains(rec.Body.String(), `"mode": "production"`) {
		t.Errorf("task not replaced:\n%s", rec.Body.String())
	}
}
