package game

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	EventBufferSize    = 1024                   // Ring capacity
	MaxEventsPerSec    = 2000                   // Global rate limit
	MaxEventsPerSource = 600                    // Per-source rate limit per second
	BatchFlushSize     = 64                     // Events per batch write
	BatchFlushInterval = 100 * time.Millisecond // How often to flush
)

// EventLog is a bounded, rate-limited, append-only JSONL log of match
// events. Emit never blocks the tick: under pressure events are dropped and
// counted.
type EventLog struct {
	mu     sync.Mutex
	buffer []Event // ring of EventBufferSize
	head   uint64  // next write position
	tail   uint64  // next read position

	globalLimiter  *rate.Limiter
	sourceLimiters map[string]*rate.Limiter

	stopChan chan struct{}
	stopOnce sync.Once
	writerWg sync.WaitGroup
	running  atomic.Bool

	file   *os.File
	writer *bufio.Writer

	sequence     uint64
	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
	writtenCount atomic.Uint64
}

// NewEventLog creates an idle log. Call Start to begin writing.
func NewEventLog() *EventLog {
	return &EventLog{
		buffer:         make([]Event, EventBufferSize),
		globalLimiter:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		sourceLimiters: make(map[string]*rate.Limiter),
		stopChan:       make(chan struct{}),
	}
}

// Start opens filePath for append and launches the writer goroutine.
// An empty path keeps events in memory only (useful for tests).
func (el *EventLog) Start(filePath string) error {
	if el.running.Load() {
		return nil
	}

	if filePath != "" {
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return errors.Wrapf(err, "open event log %s", filePath)
		}
		el.file = file
		el.writer = bufio.NewWriter(file)
	}

	el.running.Store(true)
	el.writerWg.Add(1)
	go el.writerLoop()
	return nil
}

// Stop flushes pending events and closes the file.
func (el *EventLog) Stop() {
	el.stopOnce.Do(func() {
		if !el.running.Load() {
			return
		}
		el.running.Store(false)
		close(el.stopChan)
		el.writerWg.Wait()

		if el.file != nil {
			el.writer.Flush()
			el.file.Close()
		}
	})
}

// Emit queues an event. Returns false if the log is stopped, the event was
// rate limited, or it displaced an unread one.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.sourceLimiter(event.Source).Allow() || !el.globalLimiter.Allow() {
		el.droppedCount.Add(1)
		return false
	}

	ok := true
	if el.head-el.tail >= EventBufferSize {
		// Full: overwrite the oldest
		el.tail++
		el.droppedCount.Add(1)
		ok = false
	}

	el.sequence++
	event.Sequence = el.sequence
	event.Stamp(time.Now())
	el.buffer[el.head%EventBufferSize] = event
	el.head++
	el.totalCount.Add(1)
	return ok
}

// sourceLimiter must be called with el.mu held.
func (el *EventLog) sourceLimiter(source string) *rate.Limiter {
	l, ok := el.sourceLimiters[source]
	if !ok {
		l = rate.NewLimiter(MaxEventsPerSource, MaxEventsPerSource/10)
		el.sourceLimiters[source] = l
	}
	return l
}

func (el *EventLog) writerLoop() {
	defer el.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-el.stopChan:
			for {
				batch = el.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				el.flushBatch(batch)
			}
		case <-ticker.C:
			batch = el.collectBatch(batch[:0])
			if len(batch) > 0 {
				el.flushBatch(batch)
			}
		}
	}
}

func (el *EventLog) collectBatch(batch []Event) []Event {
	el.mu.Lock()
	defer el.mu.Unlock()

	for el.tail < el.head && len(batch) < BatchFlushSize {
		batch = append(batch, el.buffer[el.tail%EventBufferSize])
		el.tail++
	}
	return batch
}

func (el *EventLog) flushBatch(batch []Event) {
	el.writtenCount.Add(uint64(len(batch)))
	if el.writer == nil {
		return
	}

	enc := json.NewEncoder(el.writer)
	for _, event := range batch {
		if err := enc.Encode(event); err != nil {
			el.droppedCount.Add(1)
		}
	}
	el.writer.Flush()
}

// GetStats returns counters for monitoring.
func (el *EventLog) GetStats() map[string]interface{} {
	el.mu.Lock()
	pending := el.head - el.tail
	el.mu.Unlock()

	return map[string]interface{}{
		"total":   el.totalCount.Load(),
		"dropped": el.droppedCount.Load(),
		"written": el.writtenCount.Load(),
		"pending": pending,
		"running": el.running.Load(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 {
	return el.droppedCount.Load()
}

// GetTotalCount returns the number of accepted events
func (el *EventLog) GetTotalCount() uint64 {
	return el.totalCount.Load()
}
