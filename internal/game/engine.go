package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"apex-arena/internal/haptics"
)

// EngineConfig configures a new Engine
type EngineConfig struct {
	TickRate int    // Ticks per second; 0 uses Tuning.TickRate
	Tuning   Tuning // Zero value uses DefaultTuning()
	Seed     int64  // 0 seeds from the clock
}

// HapticSink receives feedback impulses. It must not block.
type HapticSink interface {
	Pulse(haptics.Level)
}

// TickStats describes one completed tick, for metrics.
type TickStats struct {
	Tick     uint64
	Duration time.Duration
	Enemies  int
	Bullets  int
	Status   Status
}

// MatchSummary is reported once when a match reaches a terminal state.
type MatchSummary struct {
	MatchID      string  `json:"matchId"`
	Status       Status  `json:"status"`
	Eliminations int     `json:"eliminations"`
	Health       float64 `json:"health"`
	Tick         uint64  `json:"tick"`
}

// Engine drives the simulation at a fixed rate and publishes snapshots.
type Engine struct {
	mu    sync.Mutex
	world World
	sim   *Simulation
	seed  int64

	input     *InputBuffer
	snapshots *SnapshotStore
	eventLog  *EventLog
	haptics   HapticSink

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Callbacks, invoked outside the engine lock
	onTick     func(TickStats)
	onMatchEnd func(MatchSummary)
}

// NewEngine creates an engine with a fresh match ready to run.
func NewEngine(cfg EngineConfig) *Engine {
	t := cfg.Tuning
	if t.TickRate == 0 {
		t = DefaultTuning()
	}
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = t.TickRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := NewSimulation(t, rand.New(rand.NewSource(seed)))
	world := sim.NewWorld()

	e := &Engine{
		world:     world,
		sim:       sim,
		seed:      seed,
		input:     NewInputBuffer(),
		snapshots: NewSnapshotStore(world),
		eventLog:  NewEventLog(),
		tickRate:  tickRate,
	}
	return e
}

// Start begins the tick loop. A stopped engine can be started again.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.stopChan = make(chan struct{})
	ticks, stop := e.ticker.C, e.stopChan
	matchID := e.world.MatchID
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticks:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	log.Printf("🎮 Arena engine started at %d TPS (match %s)", e.tickRate, matchID)
}

// Stop halts the tick loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	log.Println("🛑 Arena engine stopped")
}

// IsRunning reports whether the tick loop is active
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// tick runs one simulation step
func (e *Engine) tick() {
	start := time.Now()
	in := e.input.Poll()

	e.mu.Lock()
	var events []Event
	if in.Restart {
		e.restartLocked()
	} else {
		e.world, events = e.sim.Step(e.world, in)
	}
	snap := e.snapshots.Publish(e.world)
	sink, onTick, onMatchEnd := e.haptics, e.onTick, e.onMatchEnd
	e.mu.Unlock()

	var summary *MatchSummary
	now := time.Now()
	for i := range events {
		ev := &events[i]
		ev.Stamp(now)
		e.eventLog.Emit(*ev)
		feedback(sink, *ev)

		switch ev.Type {
		case EventTypeZoneShrink:
			log.Printf("🌀 Zone shrinking to r=%.0f at (%.0f, %.0f)", snap.Zone.Radius, snap.Zone.X, snap.Zone.Y)
		case EventTypeVictory, EventTypeDefeat:
			summary = &MatchSummary{
				MatchID:      snap.MatchID.String(),
				Status:       snap.Match.Status,
				Eliminations: snap.Match.Eliminations,
				Health:       snap.Player.Health,
				Tick:         snap.Tick,
			}
		}
	}

	if summary != nil {
		if summary.Status == StatusVictory {
			log.Printf("🏆 Victory! %d eliminations, %.0f HP left", summary.Eliminations, summary.Health)
		} else {
			log.Printf("💀 Defeat after %d eliminations", summary.Eliminations)
		}
		if onMatchEnd != nil {
			onMatchEnd(*summary)
		}
	}

	if onTick != nil {
		onTick(TickStats{
			Tick:     snap.Tick,
			Duration: time.Since(start),
			Enemies:  len(snap.Enemies),
			Bullets:  len(snap.Bullets),
			Status:   snap.Match.Status,
		})
	}
}

// feedback maps player-relevant events to haptic impulses
func feedback(sink HapticSink, ev Event) {
	if sink == nil {
		return
	}
	switch {
	case ev.Type == EventTypeShot && ev.Source == SourcePlayer:
		sink.Pulse(haptics.Light)
	case ev.Type == EventTypeKill:
		sink.Pulse(haptics.Medium)
	case ev.Type == EventTypeDefeat:
		sink.Pulse(haptics.Heavy)
	}
}

// Restart replaces the current match with a fresh one, whatever its state
func (e *Engine) Restart() *Snapshot {
	e.mu.Lock()
	e.restartLocked()
	snap := e.snapshots.Publish(e.world)
	e.mu.Unlock()
	return snap
}

// restartLocked must be called with e.mu held
func (e *Engine) restartLocked() {
	e.world = e.sim.NewWorld()
	e.emitMatchStart(e.world)
	log.Printf("🔄 New match %s: %d enemies, %d weapons", e.world.MatchID, len(e.world.Enemies), len(e.world.Weapons))
}

func (e *Engine) emitMatchStart(w World) {
	ev := NewEvent(EventTypeMatchStart, w.Tick, SourceMatch, MatchStartPayload{
		MatchID: w.MatchID.String(),
		Enemies: len(w.Enemies),
		Weapons: len(w.Weapons),
	})
	ev.Stamp(time.Now())
	e.eventLog.Emit(ev)
}

// Input returns the buffer adapters write intents into
func (e *Engine) Input() *InputBuffer {
	return e.input
}

// Pickup requests a weapon pickup on the next tick
func (e *Engine) Pickup() {
	e.input.PressInteract()
}

// GetSnapshot returns the latest published snapshot (lock-free)
func (e *Engine) GetSnapshot() *Snapshot {
	return e.snapshots.Load()
}

// World returns a copy of the live world
func (e *Engine) World() World {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.world.Clone()
}

// GetTuning returns the balance values in use
func (e *Engine) GetTuning() Tuning {
	return e.sim.Tuning()
}

// Seed returns the seed the random source started from
func (e *Engine) Seed() int64 {
	return e.seed
}

// SetHaptics attaches a feedback sink. Call before Start.
func (e *Engine) SetHaptics(sink HapticSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haptics = sink
}

// SetCallbacks registers tick and match-end observers
func (e *Engine) SetCallbacks(onTick func(TickStats), onMatchEnd func(MatchSummary)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = onTick
	e.onMatchEnd = onMatchEnd
}

// StartEventLog begins writing match events to filePath
func (e *Engine) StartEventLog(filePath string) error {
	if err := e.eventLog.Start(filePath); err != nil {
		return err
	}
	e.mu.Lock()
	e.emitMatchStart(e.world)
	e.mu.Unlock()
	return nil
}

// StopEventLog flushes and closes the event log
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log counters
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}
