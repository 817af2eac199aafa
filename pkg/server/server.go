package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/buildingmap/pkg/buildinfo"
	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/observability"
	"github.com/matzehuels/buildingmap/pkg/save"
	"github.com/matzehuels/buildingmap/pkg/storage"
)

// maxBodyBytes bounds request bodies; every request is a small JSON object.
const maxBodyBytes = 1 << 20

// Options configures a Server. All fields are optional.
type Options struct {
	Logger *log.Logger

	// Sinks, if set, is consulted when a save is requested so that a
	// location no backend serves is rejected up front.
	Sinks *storage.Router

	// Memory, if set, is served read-only under /saved.
	Memory *storage.MemoryBackend
}

// Server serves the trigger and editing API.
type Server struct {
	sched  *save.Scheduler
	logger *log.Logger
	sinks  *storage.Router
	memory *storage.MemoryBackend
	router chi.Router
}

// New returns a server backed by sched.
func New(sched *save.Scheduler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{sched: sched, logger: logger, sinks: opts.Sinks, memory: opts.Memory}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Post("/save", s.handleSave)
	r.Get("/save/{id}", s.handleSaveStatus)
	r.Get("/saved", s.handleSavedKeys)
	r.Get("/saved/*", s.handleSavedDocument)
	r.Route("/levels", func(r chi.Router) {
		r.Get("/", s.handleLevels)
		r.Route("/{level}", func(r chi.Router) {
			r.Post("/vertices", s.handleAddVertex)
			r.Delete("/vertices/{id}", s.handleDeleteVertex)
			r.Post("/lanes", s.handleAddLane)
		})
	})
	return r
}

// observe reports requests to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then drains for at
// most shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error string        `json:"error"`
	Code  bmerrors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: bmerrors.UserMessage(err), Code: bmerrors.GetCode(err)})
}

func statusFor(err error) int {
	switch bmerrors.GetCode(err) {
	case bmerrors.ErrCodeInvalidInput, bmerrors.ErrCodeInvalidFormat,
		bmerrors.ErrCodeInvalidLocation, bmerrors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case bmerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case bmerrors.ErrCodePrecondition:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return bmerrors.Wrap(bmerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":       "ok",
		"version":      buildinfo.Version,
		"format":       buildinfo.FormatVersion(),
		"save_pending": s.sched.Pending(),
	}
	if rep, ok := s.sched.Last(); ok {
		body["last_save"] = newSaveStatus(rep, stateOf(rep))
	}
	writeJSON(w, http.StatusOK, body)
}
