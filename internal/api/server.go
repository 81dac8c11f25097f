package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"apex-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

// ServerOptions configures NewServer
type ServerOptions struct {
	// Renderer serves /api/frame.png; nil disables it
	Renderer FrameRenderer

	// CORSOrigins overrides the default localhost origins
	CORSOrigins []string

	// BroadcastHz is the WebSocket snapshot rate
	BroadcastHz int
}

// Server is the HTTP API server with WebSocket support.
// It combines the HTTP router with WebSocket hub for real-time updates.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *ClientRateLimiter
	broadcastHz int

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new API server.
//
// IMPORTANT: Background workers do NOT start until Start() is called.
// This enables testing by allowing the server to be constructed without
// starting goroutines or opening network listeners.
//
// For testing HTTP endpoints without WebSocket support, use NewRouter() directly.
func NewServer(engine EngineInterface, opts ServerOptions) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine),
		broadcastHz: opts.BroadcastHz,
	}

	// Create rate limiter (we track it for cleanup)
	s.rateLimiter = NewClientRateLimiter(DefaultRateLimitConfig)

	// Build router using the factory
	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Renderer:    opts.Renderer,
		RateLimiter: s.rateLimiter,
		CORSOrigins: opts.CORSOrigins,
	})

	// Add WebSocket routes (these need the wsHub instance)
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start begins the HTTP server AND starts background workers.
// This is the ONLY method that starts goroutines or opens network listeners.
// It blocks until the server stops; a Shutdown returns nil.
func (s *Server) Start(addr string) error {
	// Start background workers NOW, not in constructor
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.engine, s.broadcastHz)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🎮 Live state: ws://localhost%s/ws", addr)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "api server")
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
// Use this in integration tests instead of calling Start().
//
// Example:
//
//	server := api.NewServer(engine, api.ServerOptions{})
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/state")
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// OnMatchEnd records and announces a finished match.
// Pass it to Engine.SetCallbacks.
func (s *Server) OnMatchEnd(summary game.MatchSummary) {
	RecordMatchEnd(summary)
	s.wsHub.BroadcastMatchOver(summary)
}

// Shutdown stops accepting requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Stop()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return errors.Wrap(srv.Shutdown(ctx), "shutdown api server")
}

// Stop performs cleanup of background workers.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.wsHub.Stop()
}
