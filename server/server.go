// Package server exposes the predicate-subscription engine over HTTP: an
// authenticated publisher registers subscriptions (each backed by a
// predicate in this module's DSL), and any caller posting to /events gets
// back the set of subscriptions an event matched, per the original
// spec's publish/subscribe framing. It follows the teacher's own layering
// of a thin server struct wrapping a persistence Store, a chi router for
// dispatch, and middleware for auth concerns.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dekarrin/boolpred/server/dao"
	"github.com/dekarrin/boolpred/server/middle"
)

// Server is a running predicate-subscription HTTP server.
type Server struct {
	router *chi.Mux
	db     dao.Store
	subs   *subRouter
	cfg    Config
	start  time.Time
}

// New builds a Server with cfg already filled-in-and-validated (callers
// normally arrive via Config.FillDefaults().Validate() first).
func New(cfg Config, db dao.Store) (*Server, error) {
	srv := &Server{
		db:    db,
		subs:  newSubRouter(db, cfg.Preds, cfg.SnapshotPath),
		cfg:   cfg,
		start: time.Now(),
	}

	if err := srv.subs.rebuild(context.Background()); err != nil {
		return nil, err
	}

	srv.router = chi.NewRouter()
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.initRoutes()

	return srv, nil
}

func (s *Server) initRoutes() {
	requireAuth := func(next http.Handler) http.Handler {
		return middle.RequireAuth(s.db.Publishers(), s.cfg.TokenSecret, s.cfg.UnauthDelay(), next)
	}

	s.router.Post("/login", s.handlePostLogin)
	s.router.Post("/publishers", s.handlePostPublisher)

	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/subscriptions", s.handlePostSubscription)
		r.Get("/subscriptions", s.handleGetSubscriptions)
		r.Delete("/subscriptions/{id}", s.handleDeleteSubscription)
	})

	// /events is for trusted internal callers publishing documents to be
	// matched; it intentionally carries no auth requirement, mirroring
	// the engine's framing of event ingestion as a router-internal path
	// rather than a publisher-facing management operation.
	s.router.Post("/events", s.handlePostEvent)

	s.router.Get("/status", s.handleGetStatus)
}

// ServeForever blocks, serving the configured listen address until the
// process is terminated or the HTTP server reports an error.
func (s *Server) ServeForever() error {
	return http.ListenAndServe(s.cfg.ListenAddr, s.router)
}

// Handler exposes the underlying http.Handler for use in tests or a
// caller-managed http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
