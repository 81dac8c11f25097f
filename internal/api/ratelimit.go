package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig sizes the per-client token buckets. Reads (state polls,
// frames) and intents (input, pickup, restart) are limited separately so a
// spectator polling state never starves its own controller.
type RateLimitConfig struct {
	ReadsPerSecond   float64       // GET requests per second per client
	ReadBurst        int           // GET burst per client
	IntentsPerSecond float64       // POST requests per second per client
	IntentBurst      int           // POST burst per client
	IdleTimeout      time.Duration // Buckets unused this long are dropped
}

// DefaultRateLimitConfig fits a browser polling at the broadcast rate and
// a controller posting intents at up to 30 Hz.
var DefaultRateLimitConfig = RateLimitConfig{
	ReadsPerSecond:   30,
	ReadBurst:        60,
	IntentsPerSecond: 40,
	IntentBurst:      60,
	IdleTimeout:      10 * time.Minute,
}

// clientBuckets is the limiter state for one client address
type clientBuckets struct {
	reads    *rate.Limiter
	intents  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// LimiterStats is reported under "rateLimit" on /api/stats
type LimiterStats struct {
	Clients  int    `json:"clients"`
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
}

// ClientRateLimiter limits HTTP requests per client address
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBuckets
	config  RateLimitConfig

	stopChan chan struct{}
	stopOnce sync.Once

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// NewClientRateLimiter creates a limiter and starts its idle sweep
func NewClientRateLimiter(cfg RateLimitConfig) *ClientRateLimiter {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultRateLimitConfig.IdleTimeout
	}
	rl := &ClientRateLimiter{
		clients:  make(map[string]*clientBuckets),
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the idle sweep
func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *ClientRateLimiter) buckets(client string) *clientBuckets {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[client]
	if !ok {
		b = &clientBuckets{
			reads:   rate.NewLimiter(rate.Limit(rl.config.ReadsPerSecond), rl.config.ReadBurst),
			intents: rate.NewLimiter(rate.Limit(rl.config.IntentsPerSecond), rl.config.IntentBurst),
		}
		rl.clients[client] = b
	}
	b.lastSeen.Store(time.Now().UnixNano())
	return b
}

// AllowRead spends one read token for client
func (rl *ClientRateLimiter) AllowRead(client string) bool {
	return rl.count(rl.buckets(client).reads.Allow())
}

// AllowIntent spends one intent token for client
func (rl *ClientRateLimiter) AllowIntent(client string) bool {
	return rl.count(rl.buckets(client).intents.Allow())
}

func (rl *ClientRateLimiter) count(ok bool) bool {
	if ok {
		rl.allowed.Add(1)
	} else {
		rl.rejected.Add(1)
	}
	return ok
}

func (rl *ClientRateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

// sweep forgets clients idle since before now - IdleTimeout
func (rl *ClientRateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.config.IdleTimeout).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, b := range rl.clients {
		if b.lastSeen.Load() < cutoff {
			delete(rl.clients, client)
		}
	}
}

// Stats returns the tracked client count and decision counters
func (rl *ClientRateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	clients := len(rl.clients)
	rl.mu.Unlock()

	return LimiterStats{
		Clients:  clients,
		Allowed:  rl.allowed.Load(),
		Rejected: rl.rejected.Load(),
	}
}

// Middleware charges POSTs to the intent bucket and everything else to
// the read bucket
func (rl *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := GetClientIP(r)

		allowed, reason := true, ""
		switch r.Method {
		case http.MethodOptions:
		case http.MethodPost:
			allowed, reason = rl.AllowIntent(client), "rate_limit_intent"
		default:
			allowed, reason = rl.AllowRead(client), "rate_limit_read"
		}

		if !allowed {
			RecordConnectionRejected(reason)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// CLIENT ADDRESSES
// =============================================================================

var trustedProxies atomic.Pointer[[]*net.IPNet]

// SetTrustedProxies lists the reverse proxies (IPs or CIDRs) whose
// X-Forwarded-For and X-Real-IP headers are believed. With none set, the
// peer address is always the client.
func SetTrustedProxies(entries []string) error {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return errors.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return errors.Wrapf(err, "invalid trusted proxy %q", entry)
		}
		nets = append(nets, n)
	}
	trustedProxies.Store(&nets)
	return nil
}

func isTrustedProxy(addr string) bool {
	nets := trustedProxies.Load()
	if nets == nil {
		return false
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range *nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIP returns the address rate limits are keyed on. Forwarding
// headers count only when the peer is a trusted proxy; the client is then
// the rightmost X-Forwarded-For hop that is not itself a trusted proxy.
func GetClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !isTrustedProxy(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !isTrustedProxy(hop) {
				return hop
			}
		}
		if first := strings.TrimSpace(hops[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

// =============================================================================
// WEBSOCKET LIMITS
// =============================================================================

// connSlots caps concurrent WebSocket connections per client address
type connSlots struct {
	mu     sync.Mutex
	counts map[string]int
	max    int
}

func newConnSlots(maxPerClient int) *connSlots {
	return &connSlots{counts: make(map[string]int), max: maxPerClient}
}

// acquire reserves a slot for client, reporting false at the cap
func (s *connSlots) acquire(client string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[client] >= s.max {
		return false
	}
	s.counts[client]++
	return true
}

// release frees a slot, forgetting clients with none left
func (s *connSlots) release(client string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.counts[client]; n > 1 {
		s.counts[client] = n - 1
	} else {
		delete(s.counts, client)
	}
}

// inUse returns the slots held by client
func (s *connSlots) inUse(client string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[client]
}

// newMessageLimiter bounds inbound controller messages on one connection
func newMessageLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(MaxWSMessagesPerSecond), MaxWSMessagesPerSecond)
}

// =============================================================================
// ORIGINS
// =============================================================================

// AllowedOrigins lists browser origins accepted on /ws besides loopback.
// Extend it with SetAllowedOrigins before serving.
var AllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// IsAllowedOrigin reports whether a WebSocket origin may connect
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	// Loopback hosts on any port
	if u, err := url.Parse(origin); err == nil && u.Scheme == "http" {
		if host := u.Hostname(); host == "localhost" || host == "127.0.0.1" {
			return true
		}
	}

	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// SetAllowedOrigins adds configured origins to the allowed list
func SetAllowedOrigins(origins []string) {
	for _, o := range origins {
		if o != "" && !IsAllowedOrigin(o) {
			AllowedOrigins = append(AllowedOrigins, o)
		}
	}
}
