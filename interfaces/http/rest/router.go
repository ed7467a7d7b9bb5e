package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"retrogames/interfaces/http/rest/handlers"
	"retrogames/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	retroGames    *handlers.RetroGameHandler
	authenticator *middleware.Authenticator
	metrics       http.Handler
	logger        *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil, in which case
// no /metrics route is mounted.
func NewRouter(
	retroGames *handlers.RetroGameHandler,
	authenticator *middleware.Authenticator,
	metrics http.Handler,
	logger *zap.Logger,
) *Router {
	return &Router{
		retroGames:    retroGames,
		authenticator: authenticator,
		metrics:       metrics,
		logger:        logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"OPTIONS", "GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "X-Amz-Date", "Cookie"},
		ExposedHeaders:   []string{handlers.CacheHitHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	if rt.metrics != nil {
		router.Handle("/metrics", rt.metrics)
	}

	router.Route("/retroGames", func(r chi.Router) {
		r.Get("/", rt.retroGames.ListRetroGames)
		r.Get("/{platform}", rt.retroGames.GetByPlatform)

		r.Group(func(r chi.Router) {
			r.Use(rt.authenticator.Authenticate)
			r.Post("/", rt.retroGames.AddRetroGame)
			r.Put("/", rt.retroGames.ReplaceRetroGame)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
