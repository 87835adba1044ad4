// Package server exposes a resolved invocation over HTTP so editors and
// scripts can inspect the generated configuration.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tjfontaine/react-app-plugin/internal/core/domain"
	"github.com/tjfontaine/react-app-plugin/internal/core/ports"
)

type Server struct {
	Router *chi.Mux
	Addr   string
	logger *slog.Logger

	mu      sync.RWMutex
	current *domain.Invocation
	history ports.HistoryStore
}

// New creates the inspect server for current. history may be nil, in
// which case the /history routes are not mounted.
func New(addr string, logger *slog.Logger, current *domain.Invocation, history ports.HistoryStore) *Server {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(TimeoutMiddleware(DefaultTimeout))
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "reactbuild-inspect")
	})

	s := &Server{
		Router:  r,
		Addr:    addr,
		logger:  logger,
		current: current,
		history: history,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.Get("/healthz", s.handleHealth)
	s.Router.Get("/invocation", s.handleInvocation)
	s.Router.Get("/tasks", s.handleTasks)
	s.Router.Get("/tasks/{name}", s.handleTask)
	s.Router.Get("/config", s.handleConfig)
	s.Router.Get("/config/original", s.handleOriginalConfig)
	s.Router.Get("/values", s.handleValues)

	if s.history != nil {
		s.Router.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Get("/{id}", s.handleHistoryEntry)
		})
	}
}

// SetCurrent replaces the invocation served by the current-run routes.
func (s *Server) SetCurrent(inv *domain.Invocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = inv
}

// Current returns the invocation being served.
func (s *Server) Current() *domain.Invocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting inspect server", slog.String("addr", s.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down inspect server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInvocation(w http.ResponseWriter, r *http.Request) {
	inv := s.Current()
	writeJSON(w, http.StatusOK, &domain.InvocationSummary{
		ID:        inv.ID,
		Command:   inv.Command,
		RootDir:   inv.RootDir,
		Status:    inv.Status,
		Tasks:     len(inv.Tasks),
		Duration:  inv.Duration,
		CreatedAt: inv.CreatedAt,
	})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.Current().Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, t := range s.Current().Tasks {
		if t.Name == name {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "task "+strconv.Quote(name)+" not registered")
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.Current().Config))
}

func (s *Server) handleOriginalConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.Current().OriginalConfig))
}

func (s *Server) handleValues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.Current().Values))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := ports.ListOptions{
		Command: domain.Command(q.Get("command")),
		RootDir: q.Get("root"),
	}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid offset")
		return
	}

	list, err := s.history.ListInvocations(r.Context(), opts)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, "list invocations failed")
		return
	}
	if list == nil {
		list = []*domain.InvocationSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	inv, err := s.history.GetInvocation(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "invocation "+strconv.Quote(id)+" not found")
		return
	}
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, r, http.StatusInternalServerError, "get invocation failed")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: GetRequestID(r.Context())})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
