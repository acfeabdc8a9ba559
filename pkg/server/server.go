// Package server exposes an [editor.Editor] over HTTP.
//
// Routes:
//
//	GET  /api/graph                    current document
//	PUT  /api/graph                    load a document (undoable)
//	GET  /api/graph/export             document as a file download
//	GET  /api/nodes                    node list
//	POST /api/nodes                    create a node {type, position}
//	POST /api/nodes/move               move nodes {positions: {id: {x, y}}}
//	POST /api/edges                    connect {source, target}
//	POST /api/selection                {mode: all|none|only|set, id, ids}
//	POST /api/commands/{name}          delete, copy, cut, undo, redo
//	GET  /api/clipboard                decoded clipboard content
//	POST /api/paste                    paste at {x, y}
//	GET  /api/events                   notifications and document states as server-sent events
//	GET  /healthz                      liveness and build info
//	GET  /metrics                      Prometheus metrics, if configured
//
// Errors are JSON objects {"error": code, "message": text}. The status
// code follows the error code; see [StatusFor].
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/nodeflow/pkg/editor"
	"github.com/matzehuels/nodeflow/pkg/notify"
	"github.com/matzehuels/nodeflow/pkg/observability"
)

// DefaultAllowedOrigin is the development frontend.
const DefaultAllowedOrigin = "http://localhost:3000"

// Server serves one editor.
type Server struct {
	editor    *editor.Editor
	hub       *notify.Hub
	hooks     observability.HTTPHooks
	metrics   http.Handler
	origins   []string
	keepAlive time.Duration
	logger    *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHub sets the hub that feeds /api/events. The editor's notifier must
// deliver into the same hub for events to appear.
func WithHub(h *notify.Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithHTTPHooks sets the request metrics hooks.
func WithHTTPHooks(h observability.HTTPHooks) Option {
	return func(s *Server) { s.hooks = h }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithKeepAlive sets the SSE comment interval.
func WithKeepAlive(d time.Duration) Option {
	return func(s *Server) { s.keepAlive = d }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server for ed.
func New(ed *editor.Editor, opts ...Option) *Server {
	s := &Server{editor: ed}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = notify.NewHub()
	}
	if s.hooks == nil {
		s.hooks = observability.NoopHTTPHooks{}
	}
	if len(s.origins) == 0 {
		s.origins = []string{DefaultAllowedOrigin}
	}
	if s.keepAlive <= 0 {
		s.keepAlive = 30 * time.Second
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Put("/graph", s.putGraph)
		r.Get("/graph/export", s.exportGraph)

		r.Get("/nodes", s.listNodes)
		r.Post("/nodes", s.createNode)
		r.Post("/nodes/move", s.moveNodes)
		r.Post("/edges", s.createEdge)

		r.Post("/selection", s.setSelection)
		r.Post("/commands/{name}", s.runCommand)
		r.Get("/clipboard", s.getClipboard)
		r.Post("/paste", s.paste)

		r.Get("/events", s.events)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
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
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
