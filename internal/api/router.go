package api

import (
	"io"
	"net/http"
	"time"

	"apex-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the arena engine methods used by the API.
// This interface enables mocking for tests without spinning up the tick loop.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free immutable snapshot
	GetSnapshot() *game.Snapshot
	// Input returns the intent buffer the next tick will poll
	Input() *game.InputBuffer
	// Pickup requests a weapon pickup on the next tick
	Pickup()
	// Restart replaces the match and returns its first snapshot
	Restart() *game.Snapshot
	// GetEventLogStats returns event log counters
	GetEventLogStats() map[string]interface{}
}

// FrameRenderer turns a snapshot into an encoded image.
type FrameRenderer interface {
	EncodePNG(w io.Writer, snap *game.Snapshot) error
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// This struct is designed for dependency injection and testability.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        ReadsPerSecond:   1000, // High limits for tests
//	        ReadBurst:        1000,
//	        IntentsPerSecond: 1000,
//	        IntentBurst:      1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the arena engine (required)
	Engine EngineInterface

	// Renderer draws /api/frame.png. If nil, the frame route returns 503.
	Renderer FrameRenderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *ClientRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, uses localhost on any port.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine   EngineInterface
	renderer FrameRenderer
	limiter  *ClientRateLimiter
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function is PURE - it has no side effects:
//   - No goroutines are started (beyond the rate limiter's cleanup)
//   - No network listeners are opened
//
// This makes it safe to use in tests with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewClientRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:   cfg.Engine,
		renderer: cfg.Renderer,
		limiter:  rateLimiter,
	}

	r.Route("/api", func(r chi.Router) {
		// Match state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/weapons", h.handleGetWeapons)
		r.Get("/frame.png", h.handleGetFrame)

		// Intents
		r.Post("/input", h.handleInput)
		r.Post("/pickup", h.handlePickup)
		r.Post("/match/restart", h.handleRestart)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}

// metricsMiddleware records latency per route pattern, never per raw path
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
