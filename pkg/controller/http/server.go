package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/willow-lab/leetboard/pkg/usecase"
	"github.com/willow-lab/leetboard/pkg/utils/logging"
)

// RosterInvalidator drops a store-side roster read cache. The sheets
// backend implements it; the memory backend has nothing to drop.
type RosterInvalidator interface {
	InvalidateRoster()
}

type Server struct {
	router            *chi.Mux
	uc                *usecase.UseCases
	rosterInvalidator RosterInvalidator
}

type Options func(*Server)

// WithRosterInvalidator wires the store's roster cache into the
// cache-clear endpoint
func WithRosterInvalidator(inv RosterInvalidator) Options {
	return func(s *Server) {
		s.rosterInvalidator = inv
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/roster", s.handleRoster)
		r.Get("/stats/{username}", s.handleStats)
		r.Get("/contest/{username}", s.handleContest)

		r.Post("/refresh", s.handleRefreshAll)
		r.Post("/refresh/{username}", s.handleRefreshOne)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", s.handleCacheStats)
			r.Post("/clear", s.handleCacheClear)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
