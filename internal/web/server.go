// Package web serves saved reconciliation runs for review: run
// summaries, their groups and merge decisions, and a name search over
// grouped customers.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/customer-recon/internal/store"
	"github.com/customer-recon/internal/web/handlers"
	"github.com/customer-recon/internal/web/middleware"
)

// Server represents the review web server
type Server struct {
	config     *Config
	store      *store.Store
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance backed by the run store
func NewServer(config *Config) (*Server, error) {
	st, err := store.Open(config.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	server := &Server{
		config: config,
		store:  st,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	runsHandler := &handlers.RunsHandler{Store: s.store}
	searchHandler := &handlers.SearchHandler{Store: s.store}

	api := s.router.PathPrefix("/api").Subrouter()

	// OPTIONS is routed so preflight requests reach the CORS middleware.
	api.HandleFunc("/health", handlers.Health).Methods("GET", "OPTIONS")

	// Run inspection endpoints
	api.HandleFunc("/runs", runsHandler.ListRuns).Methods("GET", "OPTIONS")
	api.HandleFunc("/runs/{id}", runsHandler.GetRun).Methods("GET", "OPTIONS")
	api.HandleFunc("/runs/{id}/groups", runsHandler.GetGroups).Methods("GET", "OPTIONS")
	api.HandleFunc("/runs/{id}/merges", runsHandler.GetMerges).Methods("GET", "OPTIONS")

	// Search endpoint
	api.HandleFunc("/search", searchHandler.SearchGroups).Methods("GET", "OPTIONS")

	// Static file serving
	if s.config.Server.StaticDir != "" {
		if _, err := os.Stat(s.config.Server.StaticDir); err == nil {
			s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.Server.StaticDir + "/")))
		}
	}

	// Apply middleware
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.RequestLogging())

	if s.config.Auth.Enabled {
		// Apply authentication middleware to API routes only
		api.Use(middleware.Authentication(s.config.Auth.Token))
	}
}

// Handler returns the configured router, used by tests to drive the
// server without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server and blocks until shutdown
func (s *Server) Start() error {
	// Setup graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	fmt.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(ctx); err != nil {
		fmt.Printf("Server shutdown error: %v\n", err)
	}

	// Close run store
	if err := s.store.Close(); err != nil {
		fmt.Printf("Store close error: %v\n", err)
	}

	fmt.Println("Server stopped")
	return nil
}
