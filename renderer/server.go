// Package renderer implements the HTTP/websocket bridge from
// SPEC_FULL.md §6's "(added) Renderer bridge implementation": the
// Renderer side of spec.md §6's external-interface contract, exposed
// over the network so a browser-based or CLI-based renderer UI can
// drive and observe a coroutine's eDOM without being compiled into
// the same process.
//
// Routing follows the teacher's internal/agent.API shape (a struct of
// dependencies plus a RegisterRoutes(chi.Router, ...) method); logging
// and CORS use the same go-chi middleware stack the teacher wires into
// its own frontend server.
package renderer

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/hvml-run/hvmi/config"
	"github.com/hvml-run/hvmi/hvmilog"
	"github.com/hvml-run/hvmi/runtime"
	"github.com/hvml-run/hvmi/scheduler"
)

// Server hosts the renderer bridge for every Runner registered with
// it. One Server typically serves an entire hvmi process.
type Server struct {
	cfg    *config.Config
	rt     *runtime.Runtime
	logger hvmilog.Logger
	auth   *Authenticator

	mu      sync.RWMutex
	runners map[string]*scheduler.Runner

	httpServer *http.Server
}

// NewServer builds a renderer bridge bound to cfg's Host/Port. secret
// is the HMAC key JWT bearer tokens are verified against — pass
// nil/empty to disable authentication (suitable for local development,
// mirroring the teacher's "auth mode none" default-admin fallback).
func NewServer(cfg *config.Config, rt *runtime.Runtime, logger hvmilog.Logger, secret []byte) *Server {
	if logger == nil {
		logger = hvmilog.New()
	}
	return &Server{
		cfg:     cfg,
		rt:      rt,
		logger:  logger,
		auth:    NewAuthenticator(secret),
		runners: make(map[string]*scheduler.Runner),
	}
}

// RegisterRunner makes a Runner's coroutines addressable under
// /api/v1/runners/{id}/...
func (s *Server) RegisterRunner(id string, r *scheduler.Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runners[id] = r
}

func (s *Server) runner(id string) (*scheduler.Runner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runners[id]
	return r, ok
}

// Handler builds the chi router: httplog access logging, permissive
// CORS for browser-hosted renderer UIs, then the versioned route tree.
func (s *Server) Handler() http.Handler {
	httpLogger := httplog.NewLogger("hvmi-renderer", httplog.Options{
		JSON:            true,
		LogLevel:        slog.LevelInfo,
		Concise:         true,
		QuietDownRoutes: []string{"/healthz"},
		QuietDownPeriod: 10 * time.Second,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(httpLogger))
	r.Use(tracingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1/runners/{runner}/coroutines/{cid}", func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Get("/edom", s.handleSnapshot)
		r.Post("/events", s.handleEvent)
		r.Get("/stream", s.handleStream)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ListenAndServe starts the HTTP server on cfg.Host:cfg.Port and blocks
// until ctx is cancelled, then gracefully shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              addr(s.cfg),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func addr(cfg *config.Config) string {
	if cfg == nil {
		return ":8080"
	}
	return cfg.Host + ":" + strconv.Itoa(cfg.Port)
}
