package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/config"
	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c config.Config, database database.Database, svc Services) (Server, error) {
	if svc.Sessions == nil {
		return Server{}, fmt.Errorf("session manager is required")
	}

	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := time.Now()

	router := newRouter(database, withConfig(c), withStartupTime(startupTime), withServices(svc))

	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config         config.Config
	startupTime    time.Time
	services       Services
	frontendURL    string
	backendURL     string
	adminEmail     string
	secureCookies  bool
	logRequests    bool
	allowedOrigins []string
}

func withConfig(c config.Config) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withServices(svc Services) func(*router) {
	return func(r *router) {
		r.services = svc
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	router := router{config: config.Config{}}
	for _, opt := range opts {
		opt(&router)
	}

	router.frontendURL = services.GetBaseURL(router.config)
	router.backendURL = strings.TrimSuffix(config.GetString(router.config, "BACKEND_URL", "http://localhost:8080"), "/")
	router.adminEmail = config.GetString(router.config, "ADMIN_EMAIL", "")
	router.secureCookies = strings.HasPrefix(router.backendURL, "https://")
	router.logRequests = config.GetBool(router.config, "LOG_REQUESTS", true)
	router.allowedOrigins = config.GetList(router.config, "ACCEPTED_ORIGINS")
	if len(router.allowedOrigins) == 0 {
		router.allowedOrigins = []string{router.frontendURL}
	}
	if router.services.RateLimiter == nil {
		router.services.RateLimiter = services.NewMemoryRateLimiter(config.GetInt(router.config, "RATE_LIMIT_PER_MINUTE", 20), time.Minute)
	}
	if router.startupTime.IsZero() {
		router.startupTime = time.Now()
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(metricsMiddleware)
	if router.logRequests {
		chiRouter.Use(ColoredHTTPLoggingMiddleware)
	}

	chiRouter.Use(CORSCheckMiddleware(router.allowedOrigins))
	chiRouter.Use(corsMiddleware(router.allowedOrigins))

	authMiddleware := newAuthMiddleware(router.services.Sessions, database.UserRepo(), router.adminEmail)
	handlers := initializeHandlers(database, router, authMiddleware)

	setupPublicRoutes(chiRouter, handlers, authMiddleware)
	setupAuthRoutes(chiRouter, handlers, authMiddleware, router.services.RateLimiter)
	setupProtectedRoutes(chiRouter, handlers, authMiddleware, router.services.RateLimiter)
	setupAdminRoutes(chiRouter, handlers, authMiddleware)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
