package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anota-labs/anota-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// FrontendBaseURL is where the OAuth callback redirects the browser
	frontendBaseURL string

	// Services
	authService          driving.AuthService
	googleTasksService   driving.GoogleTasksService
	transcriptionService driving.TranscriptionService

	// Infrastructure
	db Pinger // PostgreSQL health check
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            int
	Version         string
	FrontendBaseURL string
	AllowedOrigins  []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Version:         "dev",
		FrontendBaseURL: "http://localhost:5173",
		AllowedOrigins:  []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	googleTasksService driving.GoogleTasksService,
	transcriptionService driving.TranscriptionService,
	db Pinger,
) *Server {
	s := &Server{
		router:               http.NewServeMux(),
		version:              cfg.Version,
		frontendBaseURL:      cfg.FrontendBaseURL,
		authService:          authService,
		googleTasksService:   googleTasksService,
		transcriptionService: transcriptionService,
		db:                   db,
	}

	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()
	cors := NewCORSMiddleware(cfg.AllowedOrigins)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(cors.Handler(s.router))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // transcription uploads can be slow
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Google integration endpoints
	s.router.Handle("GET /api/v1/integrations/google/auth-url",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleAuthURL)))
	// Callback is public - it receives the browser redirect from Google
	s.router.HandleFunc("GET /api/v1/integrations/google/callback", s.handleGoogleCallback)
	s.router.Handle("GET /api/v1/integrations/google/status",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleStatus)))
	s.router.Handle("DELETE /api/v1/integrations/google",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleDisconnect)))

	// Google Tasks endpoints (authenticated)
	s.router.Handle("GET /api/v1/integrations/google/task-lists",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleTaskLists)))
	s.router.Handle("GET /api/v1/integrations/google/tasks",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleTasks)))
	s.router.Handle("PUT /api/v1/integrations/google/tasks/{listId}/{taskId}/complete",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleTaskComplete)))
	s.router.Handle("PUT /api/v1/integrations/google/tasks/{listId}/{taskId}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleTaskUpdate)))
	s.router.Handle("DELETE /api/v1/integrations/google/tasks/{listId}/{taskId}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGoogleTaskDelete)))

	// Transcription endpoint (authenticated)
	s.router.Handle("POST /api/v1/transcriptions",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleTranscribe)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
