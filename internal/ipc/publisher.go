package ipc

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"apex-arena/internal/game"
)

// Publisher pushes snapshots to connected spectators
type Publisher struct {
	socketPath string
	listener   net.Listener

	// Connected clients
	clients   map[net.Conn]struct{}
	clientsMu sync.RWMutex

	// Snapshot channel (ring buffer behavior - drop old if full)
	snapshotCh chan *game.Snapshot

	// Config to send to new clients
	config   ConfigMessage
	configMu sync.RWMutex

	// Stats
	clientCount   int32 // atomic
	snapshotsSent int64 // atomic
	droppedFrames int64 // atomic

	// Control
	running int32 // atomic
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPublisher creates a new IPC publisher
func NewPublisher(socketPath string) *Publisher {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	return &Publisher{
		socketPath: socketPath,
		clients:    make(map[net.Conn]struct{}),
		snapshotCh: make(chan *game.Snapshot, 8), // Buffer 8 frames
		stopCh:     make(chan struct{}),
	}
}

// SetConfig sets the arena description sent to new spectators
func (p *Publisher) SetConfig(t game.Tuning) {
	p.configMu.Lock()
	p.config = ConfigMessage{
		ArenaWidth:  t.ArenaWidth,
		ArenaHeight: t.ArenaHeight,
		TickRate:    t.TickRate,
	}
	p.configMu.Unlock()
}

// Start opens the socket and starts serving spectators
func (p *Publisher) Start() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return nil // Already running
	}

	listener, err := CreateListener(p.socketPath)
	if err != nil {
		atomic.StoreInt32(&p.running, 0)
		return err
	}
	p.listener = listener

	p.wg.Add(2)
	go p.acceptLoop()
	go p.broadcastLoop()

	log.Printf("📡 Spectator feed on %s", GetPlatformAddress(p.socketPath))
	return nil
}

// Stop closes the socket and every spectator connection
func (p *Publisher) Stop() {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return // Not running
	}

	close(p.stopCh)
	p.listener.Close()

	p.clientsMu.Lock()
	for conn := range p.clients {
		conn.Close()
	}
	p.clients = make(map[net.Conn]struct{})
	p.clientsMu.Unlock()

	p.wg.Wait()

	CleanupSocket(p.socketPath)
	log.Println("📡 Spectator feed stopped")
}

// Addr returns the listening address
func (p *Publisher) Addr() string {
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// PublishSnapshot queues a snapshot for broadcast.
// This is non-blocking - drops the oldest snapshot if buffer is full
func (p *Publisher) PublishSnapshot(snapshot *game.Snapshot) {
	if atomic.LoadInt32(&p.running) == 0 || atomic.LoadInt32(&p.clientCount) == 0 {
		return
	}

	select {
	case p.snapshotCh <- snapshot:
	default:
		select {
		case <-p.snapshotCh:
			atomic.AddInt64(&p.droppedFrames, 1)
		default:
		}
		select {
		case p.snapshotCh <- snapshot:
		default:
		}
	}
}

// GetStats returns publisher statistics
func (p *Publisher) GetStats() (clients int, sent int64, dropped int64) {
	return int(atomic.LoadInt32(&p.clientCount)),
		atomic.LoadInt64(&p.snapshotsSent),
		atomic.LoadInt64(&p.droppedFrames)
}

func (p *Publisher) acceptLoop() {
	defer p.wg.Done()

	for atomic.LoadInt32(&p.running) == 1 {
		conn, err := p.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&p.running) == 0 {
				return // Expected during shutdown
			}
			log.Printf("⚠️ IPC accept error: %v", err)
			continue
		}

		p.addClient(conn)
	}
}

func (p *Publisher) addClient(conn net.Conn) {
	p.configMu.RLock()
	config := p.config
	p.configMu.RUnlock()

	// Config goes first, before the client can receive snapshots
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	if err := WriteMessage(conn, MsgTypeConfig, config); err != nil {
		log.Printf("⚠️ Failed to send config to spectator: %v", err)
		conn.Close()
		return
	}

	p.clientsMu.Lock()
	if atomic.LoadInt32(&p.running) == 0 {
		p.clientsMu.Unlock()
		conn.Close()
		return
	}
	p.clients[conn] = struct{}{}
	p.clientsMu.Unlock()

	count := atomic.AddInt32(&p.clientCount, 1)
	log.Printf("👀 Spectator connected (total: %d)", count)
}

func (p *Publisher) removeClient(conn net.Conn) {
	p.clientsMu.Lock()
	_, ok := p.clients[conn]
	if ok {
		delete(p.clients, conn)
		conn.Close()
	}
	p.clientsMu.Unlock()

	if ok {
		count := atomic.AddInt32(&p.clientCount, -1)
		log.Printf("🔌 Spectator disconnected (remaining: %d)", count)
	}
}

func (p *Publisher) broadcastLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case snapshot := <-p.snapshotCh:
			p.broadcast(snapshot)
		}
	}
}

// broadcast sends a snapshot to all connected clients
func (p *Publisher) broadcast(snapshot *game.Snapshot) {
	msg := snapshotToMessage(snapshot)

	p.clientsMu.RLock()
	clients := make([]net.Conn, 0, len(p.clients))
	for conn := range p.clients {
		clients = append(clients, conn)
	}
	p.clientsMu.RUnlock()

	var failed []net.Conn
	for _, conn := range clients {
		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := WriteMessage(conn, MsgTypeSnapshot, msg); err != nil {
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		p.removeClient(conn)
	}

	if len(clients) > 0 && len(failed) < len(clients) {
		atomic.AddInt64(&p.snapshotsSent, 1)
	}
}
