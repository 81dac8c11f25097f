// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for arena, balance and server settings.
//
// Every value has a default here; environment variables override them.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"apex-arena/internal/game"
)

// =============================================================================
// ARENA CONFIGURATION
// =============================================================================

// ArenaConfig holds the playfield size and simulation rate.
type ArenaConfig struct {
	Width    float64 // Arena width in world units
	Height   float64 // Arena height in world units
	TickRate int     // Simulation ticks per second
	Seed     int64   // Random seed, 0 = time based
}

// DefaultArena returns the default arena configuration.
func DefaultArena() ArenaConfig {
	t := game.DefaultTuning()
	return ArenaConfig{
		Width:    t.ArenaWidth,
		Height:   t.ArenaHeight,
		TickRate: t.TickRate,
	}
}

// ArenaFromEnv returns arena configuration with environment variable overrides.
func ArenaFromEnv() ArenaConfig {
	cfg := DefaultArena()

	if w := getEnvFloat("ARENA_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("ARENA_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if tps := getEnvInt("TICK_RATE", 0); tps > 0 {
		cfg.TickRate = tps
	}
	if s := getEnvInt64("ARENA_SEED", 0); s != 0 {
		cfg.Seed = s
	}

	return cfg
}

// =============================================================================
// COMBAT / BALANCE CONFIGURATION
// =============================================================================

// CombatFromEnv returns the balance values with environment overrides,
// sized to the given arena.
func CombatFromEnv(arena ArenaConfig) game.Tuning {
	t := game.DefaultTuning()
	t.ArenaWidth = arena.Width
	t.ArenaHeight = arena.Height
	t.TickRate = arena.TickRate

	if n := getEnvInt("ENEMY_COUNT", -1); n >= 0 {
		t.EnemyCount = n
	}
	if n := getEnvInt("PICKUP_COUNT", -1); n >= 0 {
		t.PickupCount = n
	}
	if v := getEnvFloat("PLAYER_SPEED", 0); v > 0 {
		t.PlayerSpeed = v
	}
	if v := getEnvFloat("PLAYER_BULLET_DAMAGE", 0); v > 0 {
		t.PlayerBulletDamage = v
	}
	if v := getEnvFloat("ENEMY_BULLET_DAMAGE", 0); v > 0 {
		t.EnemyBulletDamage = v
	}
	if v := getEnvFloat("ENEMY_SPEED", 0); v > 0 {
		t.EnemySpeed = v
	}
	if v := getEnvFloat("ENEMY_FIRE_RANGE", 0); v > 0 {
		t.EnemyFireRange = v
	}
	if ms := getEnvInt64("ENEMY_FIRE_COOLDOWN_MS", 0); ms > 0 {
		t.EnemyFireCooldownMs = ms
	}
	if v := getEnvFloat("AIM_ASSIST_WEIGHT", -1); v >= 0 && v <= 1 {
		t.AimAssistWeight = v
	}
	if v := getEnvFloat("AIM_ASSIST_RANGE", 0); v > 0 {
		t.AimMaxRange = v
	}
	if n := getEnvInt("ZONE_SHRINK_TICKS", 0); n > 0 {
		t.ZoneShrinkTicks = n
	}
	if v := getEnvFloat("ZONE_DAMAGE", -1); v >= 0 {
		t.ZoneDamage = v
	}
	if v := getEnvFloat("ZONE_MIN_RADIUS", 0); v > 0 {
		t.ZoneMinRadius = v
	}

	return t
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	BroadcastHz    int      // WebSocket snapshot rate
	TrustedProxies []string // Proxies whose forwarding headers are believed
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		BroadcastHz:    20,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}
	if hz := getEnvInt("BROADCAST_HZ", 0); hz > 0 {
		cfg.BroadcastHz = hz
	}
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// ObservabilityConfig holds debug server settings.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string
	BasicAuthUser string
	BasicAuthPass string
}

// ObservabilityFromEnv returns debug server settings with overrides.
func ObservabilityFromEnv() ObservabilityConfig {
	cfg := ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")

	return cfg
}

// =============================================================================
// HAPTICS CONFIGURATION
// =============================================================================

// HapticsConfig holds feedback settings.
type HapticsConfig struct {
	Enabled bool    // Whether impulses reach a backend at all
	Volume  float64 // Speaker backend volume (0.0 to 1.0)
}

// DefaultHaptics returns the default haptics configuration.
func DefaultHaptics() HapticsConfig {
	return HapticsConfig{
		Enabled: true,
		Volume:  0.5,
	}
}

// HapticsFromEnv returns haptics configuration with environment overrides.
func HapticsFromEnv() HapticsConfig {
	cfg := DefaultHaptics()

	if os.Getenv("HAPTICS_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if v := getEnvFloat("HAPTICS_VOLUME", -1); v >= 0 && v <= 1 {
		cfg.Volume = v
	}

	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig holds match event log settings.
type EventLogConfig struct {
	Path string // Empty keeps events in memory only
}

// EventLogFromEnv returns event log configuration. Nothing is written to
// disk unless EVENT_LOG_PATH is set.
func EventLogFromEnv() EventLogConfig {
	return EventLogConfig{Path: os.Getenv("EVENT_LOG_PATH")}
}

// =============================================================================
// SPECTATOR FEED CONFIGURATION
// =============================================================================

// SpectatorConfig holds the local snapshot feed settings.
type SpectatorConfig struct {
	SocketPath string // Empty disables the feed
}

// SpectatorFromEnv returns spectator feed configuration with overrides.
func SpectatorFromEnv() SpectatorConfig {
	return SpectatorConfig{SocketPath: os.Getenv("SPECTATOR_SOCKET")}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Arena         ArenaConfig
	Combat        game.Tuning
	Server        ServerConfig
	Observability ObservabilityConfig
	Haptics       HapticsConfig
	EventLog      EventLogConfig
	Spectator     SpectatorConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	arena := ArenaFromEnv()
	return AppConfig{
		Arena:         arena,
		Combat:        CombatFromEnv(arena),
		Server:        ServerFromEnv(),
		Observability: ObservabilityFromEnv(),
		Haptics:       HapticsFromEnv(),
		EventLog:      EventLogFromEnv(),
		Spectator:     SpectatorFromEnv(),
	}
}

// EngineConfig builds the engine settings from the loaded configuration.
func (c AppConfig) EngineConfig() game.EngineConfig {
	return game.EngineConfig{
		TickRate: c.Arena.TickRate,
		Tuning:   c.Combat,
		Seed:     c.Arena.Seed,
	}
}

// LoadDotEnv loads the first .env file found among paths into the
// environment. Variables already set are not overridden.
func LoadDotEnv(paths ...string) (string, error) {
	var lastErr error
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			lastErr = err
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", errors.Wrapf(err, "load %s", p)
		}
		return p, nil
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return "", errors.Wrap(lastErr, "no .env file found")
}

// LoadWithDotEnv loads .env (from the parent or current directory) and
// then the configuration.
func LoadWithDotEnv() AppConfig {
	if path, err := LoadDotEnv("../.env", ".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Printf("✅ Loaded environment from %s", path)
	}
	return Load()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
