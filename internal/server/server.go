// Package server exposes the loaded datasets and analysis results over
// HTTP for the dashboard frontend. All payloads are JSON except the file
// exports and chart PNGs.
package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/growlab/growlab-cli/internal/config"
	"github.com/growlab/growlab-cli/internal/dataset"
)

// Server routes dashboard requests to the shared dataset store. Handlers
// never touch disk directly; every read goes through the store so the
// whole API serves one consistent snapshot until a reload.
type Server struct {
	cfg    *config.Global
	store  *dataset.Store
	log    *slog.Logger
	router *mux.Router
}

// New builds a server around the given store. The logger is required.
func New(cfg *config.Global, store *dataset.Store, log *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		log:    log,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the full middleware-wrapped handler, ready for
// http.Server. CORS uses the configured origins; an empty list allows
// none, which suits same-origin deployments.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/sites", s.handleSites).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/sites/{site}/environment", s.handleTable(dataset.KindEnvironment)).Methods(http.MethodGet)
	api.HandleFunc("/sites/{site}/growth", s.handleTable(dataset.KindGrowth)).Methods(http.MethodGet)
	api.HandleFunc("/sites/{site}/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/charts/growth.png", s.handleGrowthChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/environment.png", s.handleEnvironmentChart).Methods(http.MethodGet)
	api.HandleFunc("/charts/scatter.png", s.handleScatterChart).Methods(http.MethodGet)
	api.HandleFunc("/reload", s.handleReload).Methods(http.MethodPost)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// NewLogger creates a slog.Logger from the configured level and format
// without touching the global default.
func NewLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, opts)
	} else {
		handler = slog.NewTextHandler(outW, opts)
	}
	return slog.New(handler)
}
