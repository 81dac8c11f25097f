package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"apex-arena/internal/game"
	"apex-arena/internal/haptics"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// MaxWSMessagesPerSecond bounds inbound controller messages per connection
	MaxWSMessagesPerSecond = 60

	// maxWSMessageSize caps a single inbound frame
	maxWSMessageSize = 4 << 10

	// wsWriteWait bounds a single broadcast write
	wsWriteWait = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Use the centralized origin checker
		if IsAllowedOrigin(origin) {
			return true
		}

		// Log rejected origin for security monitoring
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// wsInbound is a controller message: {"type":"input","data":{...}}
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WebSocketHub manages all WebSocket connections with DoS protection.
// Only the Run goroutine writes to connections.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	stopChan   chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	// Engine receives inbound intents; nil makes the hub broadcast-only
	engine EngineInterface

	// Concurrent connections per client address
	slots *connSlots
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		stopChan:   make(chan struct{}),
		engine:     engine,
		slots:      newConnSlots(MaxWSConnectionsPerIP),
	}
}

// Run starts the hub
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total, %d from this address)", client.ip, count, h.slots.inUse(client.ip))
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			if h.remove(conn) {
				count := h.ClientCount()
				log.Printf("📱 Client disconnected (%d remaining)", count)
				UpdateWSConnections(count)
			}

		case message := <-h.broadcast:
			var failed []*websocket.Conn

			h.mu.RLock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range failed {
				h.remove(conn)
			}
			if len(failed) > 0 {
				UpdateWSConnections(h.ClientCount())
			}
			IncrementWSMessages()
		}
	}
}

// remove drops a connection and releases its IP slot. It reports whether
// the connection was still registered.
func (h *WebSocketHub) remove(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[conn]
	if !ok {
		return false
	}
	h.slots.release(client.ip)
	delete(h.clients, conn)
	conn.Close()
	return true
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	for conn, client := range h.clients {
		h.slots.release(client.ip)
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*wsClient)
	h.mu.Unlock()
	UpdateWSConnections(0)
}

// Stop closes every connection and ends Run and the broadcast loop
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// wsOutbound is a server message: {"type":"game:state","data":{...}}
type wsOutbound struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(msgType string, data interface{}) {
	msg := wsOutbound{Type: msgType, Data: data}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// BroadcastMatchOver announces a finished match
func (h *WebSocketHub) BroadcastMatchOver(summary game.MatchSummary) {
	h.Broadcast("match:over", summary)
}

// Impulse forwards a haptic level to browser controllers, which vibrate
// on "haptic" events. It implements haptics.Backend.
func (h *WebSocketHub) Impulse(level haptics.Level) error {
	h.Broadcast("haptic", level.String())
	return nil
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot at hz while clients are
// connected. Unchanged snapshots are not resent.
func (h *WebSocketHub) StartBroadcastLoop(engine EngineInterface, hz int) {
	if hz <= 0 {
		hz = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))

	go func() {
		defer ticker.Stop()
		var lastSeq uint64

		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			stats := engine.GetEventLogStats()
			total, _ := stats["total"].(uint64)
			dropped, _ := stats["dropped"].(uint64)
			UpdateEventLogStats(total, dropped)

			if h.ClientCount() == 0 {
				continue
			}

			snap := engine.GetSnapshot()
			if snap == nil || snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence

			h.Broadcast("game:state", snap)
		}
	}()
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get client IP for rate limiting
	ip := GetClientIP(r)

	// Check total connection limit
	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	// Check per-IP connection limit
	if !h.slots.acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	// Upgrade to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.slots.release(ip) // Release the slot we reserved
		return
	}
	conn.SetReadLimit(maxWSMessageSize)

	// Register the connection
	client := &wsClient{conn: conn, ip: ip}
	select {
	case h.register <- client:
	case <-h.stopChan:
		h.slots.release(ip)
		conn.Close()
		return
	}

	// Read controller messages
	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.stopChan:
			}
		}()

		limiter := newMessageLimiter()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if !limiter.Allow() {
				RecordConnectionRejected("ws_message_limit")
				continue
			}
			h.handleMessage(ip, message)
		}
	}()
}

// handleMessage applies one controller message to the engine
func (h *WebSocketHub) handleMessage(ip string, message []byte) {
	if h.engine == nil {
		return
	}

	var msg wsInbound
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch msg.Type {
	case "input":
		var update game.InputUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			return
		}
		update.Apply(h.engine.Input())
		RecordInput("ws")
	case "pickup":
		h.engine.Pickup()
	case "restart":
		log.Printf("🔄 Match restart requested over WebSocket from %s", ip)
		h.engine.Input().PressRestart()
	default:
		log.Printf("📨 Unknown WebSocket message type %q from %s", msg.Type, ip)
	}
}
