package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/vango-history/pkg/history"
	"github.com/vango-dev/vango-history/pkg/telemetry"
)

// Config holds server configuration.
type Config struct {
	// HistoryOptions are applied to every history the server creates.
	HistoryOptions []history.Option

	// Logger is the structured logger.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// MetricsPath and MetricsHandler mount a scrape endpoint when both are set.
	MetricsPath    string
	MetricsHandler http.Handler

	// Tracing enables OpenTelemetry spans for every request.
	Tracing        bool
	TracingOptions []telemetry.TracingOption

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	// If nil, gorilla's same-origin check is used.
	CheckOrigin func(r *http.Request) bool
}

// Server is the HTTP front end of a Registry.
type Server struct {
	registry *Registry
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// New creates a server and its registry.
func New(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := NewRegistry(logger, config.HistoryOptions...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if config.Tracing {
		r.Use(telemetry.Tracing(config.TracingOptions...))
	}

	if config.MetricsPath != "" && config.MetricsHandler != nil {
		r.Handle(config.MetricsPath, config.MetricsHandler)
	}

	r.Route("/histories", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleWrite)
			r.Delete("/", s.handleDelete)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Post("/goto/{index}", s.handleGoto)
			r.Post("/reset", s.handleReset)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	s.router = r
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Registry returns the histories served by s.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Close disconnects all WebSocket clients.
func (s *Server) Close() {
	s.registry.Close()
}

// logRequests logs each request at debug level once it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
