package game

import (
	"math/rand"
	"testing"

	"apex-arena/internal/game/spatial"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// ENGINE TICK BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkEngineTick(b *testing.B) {
	engine := NewEngine(EngineConfig{Seed: 1})
	engine.Input().SetFireHeld(true)
	engine.Input().SetAimAssist(true)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.tick()
		if engine.GetSnapshot().Match.Status.IsTerminal() {
			engine.Restart()
		}
	}
}

// -----------------------------------------------------------------------------
// STEP BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkStep_9Enemies(b *testing.B)   { benchmarkStep(b, 9, 0) }
func BenchmarkStep_50Enemies(b *testing.B)  { benchmarkStep(b, 50, 0) }
func BenchmarkStep_500Bullets(b *testing.B) { benchmarkStep(b, 9, 500) }

func benchmarkStep(b *testing.B, enemies, bullets int) {
	tuning := DefaultTuning()
	tuning.EnemyCount = enemies
	rng := rand.New(rand.NewSource(1))
	sim := NewSimulation(tuning, rng)

	w := sim.NewWorld()
	for i := 0; i < bullets; i++ {
		w.Bullets = append(w.Bullets, Bullet{
			X:     rng.Float64() * tuning.ArenaWidth,
			Y:     rng.Float64() * tuning.ArenaHeight,
			Owner: Owner(i % 2),
		})
	}
	in := Input{FireHeld: true, AimAssist: true, AimX: 0, AimY: 0}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		sim.Step(w, in)
	}
}

// -----------------------------------------------------------------------------
// COLLISION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkResolveCombat_Grid(b *testing.B)  { benchmarkCombat(b, true) }
func BenchmarkResolveCombat_Fresh(b *testing.B) { benchmarkCombat(b, false) }

func benchmarkCombat(b *testing.B, reuseGrid bool) {
	tuning := DefaultTuning()
	rng := rand.New(rand.NewSource(1))

	enemies := make([]Enemy, 50)
	for i := range enemies {
		enemies[i] = Enemy{X: rng.Float64() * tuning.ArenaWidth, Y: rng.Float64() * tuning.ArenaHeight, Health: 100}
	}
	bullets := make([]Bullet, 300)
	for i := range bullets {
		bullets[i] = Bullet{X: rng.Float64() * tuning.ArenaWidth, Y: rng.Float64() * tuning.ArenaHeight, Owner: OwnerPlayer}
	}
	player := NewPlayer(tuning)

	var grid *spatial.Grid
	if reuseGrid {
		grid = spatial.NewGrid(tuning.ArenaWidth, tuning.ArenaHeight, tuning.GridCellSize)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		ResolveCombat(bullets, enemies, player, uint64(i), tuning, grid)
	}
}

func BenchmarkAimAssist(b *testing.B) {
	tuning := DefaultTuning()
	w := NewWorld(tuning, rand.New(rand.NewSource(1)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AimAssist(0.5, w.Player.X, w.Player.Y, w.Enemies, tuning)
	}
}
