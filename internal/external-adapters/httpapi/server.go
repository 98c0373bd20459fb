// Package httpapi exposes certificate description over HTTP using chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rcrowley/go-metrics"

	"github.com/ochairo/certdesc/internal/domain/entities"
	"github.com/ochairo/certdesc/internal/domain/interfaces"
	"github.com/ochairo/certdesc/internal/domain/interfaces/repositories"
	"github.com/ochairo/certdesc/internal/domain/services"
	orchestrators "github.com/ochairo/certdesc/internal/domain-orchestrators"
	"github.com/ochairo/certdesc/internal/external-adapters/yaml"
)

// maxBodySize bounds uploaded certificates
const maxBodySize = 1 << 20

// FingerprintHeader carries the fingerprint of a stored description
const FingerprintHeader = "X-Certificate-Fingerprint"

// Server serves the description API
type Server struct {
	orch     *orchestrators.DescriptionOrchestrator
	repo     repositories.DescriptionRepository
	registry metrics.Registry
	logger   interfaces.Logger
}

// NewServer creates the API server. repo may be nil, in which case store and
// lookup endpoints answer 503.
func NewServer(
	orch *orchestrators.DescriptionOrchestrator,
	repo repositories.DescriptionRepository,
	registry metrics.Registry,
	logger interfaces.Logger,
) *Server {
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Server{orch: orch, repo: repo, registry: registry, logger: logger}
}

// Handler returns the chi router with every route mounted
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			s.logger.Warn("Write failed", interfaces.Err(err))
		}
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/describe", s.handleDescribe)
		r.Get("/descriptions/{fingerprint}", s.handleGet)
		r.Get("/search", s.handleSearch)
		r.Get("/metrics", s.handleMetrics)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", interfaces.F("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("HTTP server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.writeError(w, status, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = entities.OutputJSON
	}
	if format != entities.OutputJSON && format != entities.OutputYAML {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	var desc *entities.CertificateDescription
	if r.URL.Query().Get("store") == "true" {
		var fp string
		desc, fp, err = s.orch.DescribeAndStore(r.Context(), data)
		if err == nil {
			w.Header().Set(FingerprintHeader, fp)
		}
	} else {
		desc, err = s.orch.Describe(r.Context(), data)
	}
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	body, err := yaml.RenderRecord(desc, format)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if format == entities.OutputYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("Write failed", interfaces.Err(err))
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, http.StatusServiceUnavailable, orchestrators.ErrNoRepository)
		return
	}

	desc, err := s.repo.Get(r.Context(), chi.URLParam(r, "fingerprint"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, desc)
}

type searchResponse struct {
	Prefix       string   `json:"prefix,omitempty"`
	Name         string   `json:"name,omitempty"`
	Field        string   `json:"field,omitempty"`
	Fingerprints []string `json:"fingerprints"`
}

// handleSearch matches stored names by raw prefix (?prefix=com.goo) or by
// host name and its subdomains (?name=google.com)
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, http.StatusServiceUnavailable, orchestrators.ErrNoRepository)
		return
	}

	prefix := r.URL.Query().Get("prefix")
	name := r.URL.Query().Get("name")
	if (prefix == "") == (name == "") {
		s.writeError(w, http.StatusBadRequest, errors.New("exactly one of prefix or name is required"))
		return
	}
	field := entities.NameField(r.URL.Query().Get("field"))
	if field != "" && !field.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown name field %q", field))
		return
	}

	var (
		fps []string
		err error
	)
	if name != "" {
		fps, err = s.repo.FindByHost(r.Context(), services.JoinName(name), field)
	} else {
		fps, err = s.repo.FindByName(r.Context(), prefix, field)
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if fps == nil {
		fps = []string{}
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Prefix: prefix, Name: name, Field: string(field), Fingerprints: fps})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	metrics.WriteJSONOnce(s.registry, w)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCertificate):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrators.ErrNoRepository):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", interfaces.F("status", status), interfaces.Err(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Write failed", interfaces.Err(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			interfaces.F("method", r.Method),
			interfaces.F("path", r.URL.Path),
			interfaces.F("status", ww.Status()),
			interfaces.F("duration", time.Since(start)))
	})
}
