package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"festcal/internal/config"
	appLog "festcal/internal/log"
	"festcal/internal/metrics"
	"festcal/internal/model"
	"festcal/internal/palette"
	"festcal/internal/schedule"
)

// StatusSource provides the latest sampled festival status. *clock.Clock
// implements it.
type StatusSource interface {
	Status() schedule.Status
	Location() *time.Location
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Days        []model.FestivalDay
	Clock       StatusSource
	StageColors map[string]palette.Color
	Metrics     *metrics.Metrics
}

// Server exposes the lineup, its windows, palette, status and exports.
type Server struct {
	cfg     *config.Config
	days    []model.FestivalDay
	clock   StatusSource
	colors  map[string]palette.Color
	metrics *metrics.Metrics
	router  chi.Router

	// The lineup never changes after load, so rendered exports are kept
	// for the lifetime of the server.
	exportsMu sync.Mutex
	exports   map[string][]byte
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:     cfg,
		days:    deps.Days,
		clock:   deps.Clock,
		colors:  deps.StageColors,
		metrics: deps.Metrics,
		router:  chi.NewRouter(),
		exports: make(map[string][]byte),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuth guards the API routes.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="festcal", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(requestLogger)
	r.Use(metrics.RequestMiddleware(s.metrics))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.basicAuthEnabled() {
			appLog.Info("HTTP basic auth enabled")
			r.Use(s.basicAuth)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/days", s.handleDays)
			r.Get("/days/{date}", s.handleDay)
			r.Get("/days/{date}/stages/{stage}", s.handleStage)
			r.Get("/active", s.handleActive)
			r.Get("/status", s.handleStatus)
			r.Get("/span", s.handleSpan)
			r.Get("/palette", s.handlePalette)
		})
		r.Get("/schedule.ics", s.handleICS)
		r.Get("/schedule.xlsx", s.handleXLSX)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
