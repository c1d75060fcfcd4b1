// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/auth"
	"github.com/okarpenko/staybase/internal/config"
	"github.com/okarpenko/staybase/internal/handler"
	"github.com/okarpenko/staybase/internal/middleware"
	"github.com/okarpenko/staybase/internal/store"
)

// Deps bundles the collaborators the server wires into its routes.
type Deps struct {
	Store     store.Store
	FileStore *store.FileStore
	Directory *auth.Directory
	BasicAuth *auth.BasicAuthenticator
	TokenAuth *auth.TokenAuthenticator
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware()
	s.setupRoutes(deps)
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(deps Deps) {
	basicGate := middleware.BasicAuth(deps.BasicAuth, s.logger)
	operatorGate := middleware.OperatorAuth(deps.TokenAuth, s.logger)

	s.router.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	articles := handler.NewArticleHandler(deps.Store, s.logger)
	articles.RegisterRoutes(s.router, basicGate)

	users := handler.NewUserHandler(deps.Directory, deps.TokenAuth, s.logger)
	users.RegisterRoutes(s.router, basicGate)

	hotels := handler.NewHotelHandler(deps.FileStore, s.logger)
	hotels.RegisterRoutes(s.router, operatorGate)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}
