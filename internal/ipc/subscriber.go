package ipc

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"apex-arena/internal/game"
)

// Subscriber follows a server's spectator feed, reconnecting as needed
type Subscriber struct {
	socketPath string
	conn       net.Conn
	connMu     sync.Mutex

	// Latest snapshot (lock-free access)
	latest atomic.Pointer[game.Snapshot]

	// Config received from server
	config   ConfigMessage
	configMu sync.RWMutex
	configCh chan ConfigMessage

	// Stats
	snapshotsReceived int64 // atomic
	reconnects        int64 // atomic
	errors            int64 // atomic

	// Control
	running int32 // atomic
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewSubscriber creates a new IPC subscriber
func NewSubscriber(socketPath string) *Subscriber {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	return &Subscriber{
		socketPath: socketPath,
		configCh:   make(chan ConfigMessage, 1),
		stopCh:     make(chan struct{}),
	}
}

// Start starts connecting to the server in the background
func (s *Subscriber) Start() {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return // Already running
	}

	s.wg.Add(1)
	go s.connectionLoop()

	log.Printf("📡 Spectating %s", GetPlatformAddress(s.socketPath))
}

// Stop disconnects and waits for the background loop to end
func (s *Subscriber) Stop() {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return // Not running
	}

	close(s.stopCh)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
}

// GetSnapshot returns the most recent snapshot, nil before the first one
func (s *Subscriber) GetSnapshot() *game.Snapshot {
	return s.latest.Load()
}

// GetConfig returns the last arena description received
func (s *Subscriber) GetConfig() ConfigMessage {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// WaitForConfig blocks until config is received or timeout
func (s *Subscriber) WaitForConfig(timeout time.Duration) (ConfigMessage, bool) {
	select {
	case cfg := <-s.configCh:
		return cfg, true
	case <-time.After(timeout):
		return ConfigMessage{}, false
	case <-s.stopCh:
		return ConfigMessage{}, false
	}
}

// GetStats returns subscriber statistics
func (s *Subscriber) GetStats() (received int64, reconnects int64, errors int64) {
	return atomic.LoadInt64(&s.snapshotsReceived),
		atomic.LoadInt64(&s.reconnects),
		atomic.LoadInt64(&s.errors)
}

// IsConnected returns whether the subscriber is connected
func (s *Subscriber) IsConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn != nil
}

func (s *Subscriber) connectionLoop() {
	defer s.wg.Done()

	for atomic.LoadInt32(&s.running) == 1 {
		conn, err := ConnectPlatform(s.socketPath)
		if err != nil {
			select {
			case <-s.stopCh:
				return
			case <-time.After(ReconnectDelay):
				continue
			}
		}

		s.connMu.Lock()
		s.conn = conn
		s.connMu.Unlock()

		s.readLoop(conn)
		conn.Close()

		s.connMu.Lock()
		s.conn = nil
		s.connMu.Unlock()

		atomic.AddInt64(&s.reconnects, 1)

		select {
		case <-s.stopCh:
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

// readLoop reads until the connection fails or goes quiet. A timeout
// ends the connection so a half-read frame never desyncs the stream.
func (s *Subscriber) readLoop(conn net.Conn) {
	for atomic.LoadInt32(&s.running) == 1 {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))

		msgType, data, err := ReadMessage(conn)
		if err != nil {
			if atomic.LoadInt32(&s.running) == 1 {
				log.Printf("🔌 Spectator feed lost: %v", err)
			}
			return
		}

		switch msgType {
		case MsgTypeSnapshot:
			s.handleSnapshot(data)
		case MsgTypeConfig:
			s.handleConfig(data)
		}
	}
}

func (s *Subscriber) handleSnapshot(data []byte) {
	var msg SnapshotMessage
	if err := Decode(data, &msg); err != nil {
		log.Printf("⚠️ Failed to decode snapshot: %v", err)
		atomic.AddInt64(&s.errors, 1)
		return
	}

	s.latest.Store(msg.ToSnapshot())
	atomic.AddInt64(&s.snapshotsReceived, 1)
}

func (s *Subscriber) handleConfig(data []byte) {
	var config ConfigMessage
	if err := Decode(data, &config); err != nil {
		log.Printf("⚠️ Failed to decode config: %v", err)
		atomic.AddInt64(&s.errors, 1)
		return
	}

	s.configMu.Lock()
	s.config = config
	s.configMu.Unlock()

	log.Printf("📺 Arena %.0fx%.0f @ %d TPS", config.ArenaWidth, config.ArenaHeight, config.TickRate)

	// Non-blocking send to config channel
	select {
	case s.configCh <- config:
	default:
	}
}
