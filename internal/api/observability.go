package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"apex-arena/internal/game"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-match or per-client labels)
var (
	// Simulation metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.0167},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_frame_render_duration_seconds",
		Help:    "Time spent rendering a PNG frame",
		Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_enemies_alive",
		Help: "Enemies alive in the current match",
	})

	bulletCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_bullets_in_flight",
		Help: "Bullets in flight in the current match",
	})

	matchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_matches_finished_total",
		Help: "Matches that reached a terminal state",
	}, []string{"outcome"}) // Bounded: "victory", "defeat"

	inputsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_input_updates_total",
		Help: "Intent updates received from remote adapters",
	}, []string{"transport"}) // Bounded: "http", "ws"

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "ws_message_limit"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is path pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only - NEVER expose externally
	}
}

// StartDebugServer starts the internal observability server and returns
// once it is listening.
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	// SECURITY: Validate address is localhost
	if !isLoopbackAddr(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		cfg.ListenAddr = "127.0.0.1:6060"
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.ListenAddr)
	}

	handler := debugHandler(cfg)

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.Serve(ln, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// debugHandler builds the pprof + metrics mux
func debugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	// pprof endpoints for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Optional basic auth wrapper
	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ObserveTick records one engine tick. Wire it to Engine.SetCallbacks.
func ObserveTick(stats game.TickStats) {
	tickDuration.Observe(stats.Duration.Seconds())
	enemyCount.Set(float64(stats.Enemies))
	bulletCount.Set(float64(stats.Bullets))
}

// RecordMatchEnd counts a finished match by outcome
func RecordMatchEnd(summary game.MatchSummary) {
	matchesFinished.WithLabelValues(string(summary.Status)).Inc()
}

// RecordRender records render timing for metrics
func RecordRender(duration time.Duration) {
	renderDuration.Observe(duration.Seconds())
}

// RecordInput counts a remote intent update
// transport must be one of: "http", "ws"
func RecordInput(transport string) {
	inputsTotal.WithLabelValues(transport).Inc()
}

// eventLogSeen remembers the last counters pushed, since Prometheus
// counters only move by deltas
var eventLogSeen struct {
	sync.Mutex
	total, dropped uint64
}

// UpdateEventLogStats pushes the growth of the event log counters.
// Called periodically from the broadcast loop.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogSeen.Lock()
	defer eventLogSeen.Unlock()

	if total >= eventLogSeen.total {
		eventLogTotal.Add(float64(total - eventLogSeen.total))
	}
	if dropped >= eventLogSeen.dropped {
		eventLogDropped.Add(float64(dropped - eventLogSeen.dropped))
	}
	eventLogSeen.total, eventLogSeen.dropped = total, dropped
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "ws_message_limit"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
