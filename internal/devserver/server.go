// Package devserver serves memory snapshots from JSON fixture files so the
// viewer can be exercised without a running trader.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/dyike/cortexmem/internal/fetcher"
	"github.com/dyike/cortexmem/internal/memory"
)

type Config struct {
	Addr string
	Dir  string // one <trader_id>.json per trader
	Log  zerolog.Logger
}

type Server struct {
	router *chi.Mux
	server *http.Server
	dir    string
	log    zerolog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		dir:    cfg.Dir,
		log:    cfg.Log.With().Str("component", "devserver").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)

	// the web dashboard is served from another origin
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get(fetcher.MemoryPath, s.handleMemory)
}

// Start blocks until the server stops. http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Str("dir", s.dir).Msg("serving memory fixtures")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down fixture server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	traderID := r.URL.Query().Get("trader_id")
	if traderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "trader_id is required"})
		return
	}
	if !memory.ValidTraderID(traderID) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trader_id"})
		return
	}

	data, err := os.ReadFile(filepath.Join(s.dir, traderID+".json"))
	if errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no memory for trader " + traderID})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("trader_id", traderID).Msg("read fixture")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read fixture failed"})
		return
	}

	var snap memory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Error().Err(err).Str("trader_id", traderID).Msg("decode fixture")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fixture is not a memory snapshot"})
		return
	}
	if err := snap.Validate(); err != nil {
		s.log.Warn().Err(err).Str("trader_id", traderID).Msg("fixture violates memory invariants")
	}
	writeJSON(w, http.StatusOK, &snap)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
