// Package api provides the HTTP API server and handlers for the ApplyTrack application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/applytrack/applytrack-server/internal/events"
	"github.com/applytrack/applytrack-server/internal/ratelimit"
	"github.com/applytrack/applytrack-server/internal/store"
	"github.com/applytrack/applytrack-server/internal/validation"
)

// Options configures the API server.
type Options struct {
	// AllowedOrigins is the CORS origin allow-list. Empty means any origin.
	AllowedOrigins []string
	// EdgeRPS and EdgeBurst bound raw request volume per client IP before
	// any handler runs. Zero RPS disables the edge limiter.
	EdgeRPS   float64
	EdgeBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	eventsManager *events.Manager
	eventsHandler *events.Handler
	router        *chi.Mux
	api           huma.API
	validator     *validation.Validator
	edgeLimiter   *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, eventsManager *events.Manager, logger *slog.Logger, opts Options) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:         st,
		services:      services,
		eventsManager: eventsManager,
		router:        router,
		validator:     validation.New(),
		logger:        logger,
	}

	if eventsManager != nil {
		s.eventsHandler = events.NewHandler(eventsManager, logger, userIDFromRequest)
	}
	if opts.EdgeRPS > 0 {
		s.edgeLimiter = ratelimit.New(opts.EdgeRPS, opts.EdgeBurst)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("ApplyTrack API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"user": {
			Type: "apiKey",
			In:   "header",
			Name: userIDHeader,
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerJobRoutes()
	s.registerTagRoutes()
	s.registerStatusRoutes()
	s.registerFieldRoutes()
	s.registerSettingsRoutes()
	s.registerNotificationRoutes()
	s.registerExportRoutes()
	s.setupEventRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", userIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.edgeLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.edgeLimiter, s.logger))
	}
}

// setupEventRoutes mounts the SSE stream. It stays outside huma: SSE is a
// long-lived plain-HTTP endpoint, not a typed operation.
func (s *Server) setupEventRoutes() {
	if s.eventsHandler == nil {
		return
	}
	s.router.Get("/api/v1/events/stream", s.eventsHandler.ServeHTTP)
}
