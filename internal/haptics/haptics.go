// Package haptics delivers fire-and-forget feedback impulses.
//
// The simulation only ever calls Dispatcher.Pulse, which never blocks and
// never fails. Whatever the backend does (vibrate, click, nothing) happens
// on the dispatcher's own goroutine, and backend errors or panics are
// swallowed there.
package haptics

import (
	"log"
	"sync"
	"sync/atomic"
)

// Level is the strength of an impulse.
type Level uint8

const (
	Light  Level = iota // Shot fired
	Medium              // Kill confirmed
	Heavy               // Player eliminated
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Light:
		return "light"
	case Medium:
		return "medium"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// Backend produces the physical feedback.
type Backend interface {
	Impulse(Level) error
}

// Noop is a backend that does nothing.
type Noop struct{}

// Impulse implements Backend.
func (Noop) Impulse(Level) error { return nil }

// QueueSize bounds pending impulses; extra ones are dropped.
const QueueSize = 32

// Dispatcher decouples the simulation from a Backend.
type Dispatcher struct {
	backend Backend
	queue   chan Level

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	delivered atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
	loggedErr atomic.Bool
}

// NewDispatcher wraps backend. A nil backend behaves like Noop.
func NewDispatcher(backend Backend) *Dispatcher {
	if backend == nil {
		backend = Noop{}
	}
	d := &Dispatcher{
		backend:  backend,
		queue:    make(chan Level, QueueSize),
		stopChan: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Pulse queues an impulse without blocking.
func (d *Dispatcher) Pulse(level Level) {
	select {
	case d.queue <- level:
	default:
		d.dropped.Add(1)
	}
}

// Stop ends delivery. Pending impulses are discarded.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
		d.wg.Wait()
	})
}

// Stats returns delivery counters.
func (d *Dispatcher) Stats() map[string]uint64 {
	return map[string]uint64{
		"delivered": d.delivered.Load(),
		"dropped":   d.dropped.Load(),
		"failed":    d.failed.Load(),
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopChan:
			return
		case level := <-d.queue:
			d.deliver(level)
		}
	}
}

func (d *Dispatcher) deliver(level Level) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(nil, r)
		}
	}()

	if err := d.backend.Impulse(level); err != nil {
		d.fail(err, nil)
		return
	}
	d.delivered.Add(1)
}

// fail counts a failed delivery and logs only the first one.
func (d *Dispatcher) fail(err error, panicVal interface{}) {
	d.failed.Add(1)
	if d.loggedErr.Swap(true) {
		return
	}
	if panicVal != nil {
		log.Printf("📳 Haptics backend panicked, further failures are silent: %v", panicVal)
		return
	}
	log.Printf("📳 Haptics unavailable, further failures are silent: %v", err)
}
