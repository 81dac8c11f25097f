package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"apex-arena/internal/api"
	"apex-arena/internal/config"
	"apex-arena/internal/game"
	"apex-arena/internal/haptics"
	"apex-arena/internal/ipc"
	"apex-arena/internal/render"
)

func main() {
	// Load .env, then the centralized configuration (SSOT)
	appConfig := config.LoadWithDotEnv()
	arenaCfg := appConfig.Arena
	serverCfg := appConfig.Server

	log.Println("🎮 ================================")
	log.Println("🎮  APEX ARENA - HEADLESS SERVER")
	log.Println("🎮 ================================")
	log.Printf("🎮 Config: %d TPS, %.0fx%.0f arena, %d enemies, %d Hz broadcast",
		arenaCfg.TickRate, arenaCfg.Width, arenaCfg.Height, appConfig.Combat.EnemyCount, serverCfg.BroadcastHz)

	engine := game.NewEngine(appConfig.EngineConfig())
	log.Printf("🎲 Seed: %d", engine.Seed())

	// Start event log
	// Without a path events are only counted, never written
	path := appConfig.EventLog.Path
	if err := engine.StartEventLog(path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if path != "" {
		log.Printf("📝 Event log: %s", path)
	}

	// Start debug server
	obs := appConfig.Observability
	if err := api.StartDebugServer(api.ObservabilityConfig{
		Enabled:       obs.Enabled,
		ListenAddr:    obs.ListenAddr,
		BasicAuthUser: obs.BasicAuthUser,
		BasicAuthPass: obs.BasicAuthPass,
	}); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	api.SetAllowedOrigins(serverCfg.AllowedOrigins)
	if err := api.SetTrustedProxies(serverCfg.TrustedProxies); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if len(serverCfg.TrustedProxies) > 0 {
		log.Printf("🔀 Trusting forwarding headers from %v", serverCfg.TrustedProxies)
	}
	server := api.NewServer(engine, api.ServerOptions{
		Renderer:    render.NewRenderer(int(arenaCfg.Width), int(arenaCfg.Height)),
		CORSOrigins: serverCfg.AllowedOrigins,
		BroadcastHz: serverCfg.BroadcastHz,
	})

	// Haptic impulses go to browser controllers over the WebSocket
	var dispatcher *haptics.Dispatcher
	if appConfig.Haptics.Enabled {
		dispatcher = haptics.NewDispatcher(server.Hub())
		engine.SetHaptics(dispatcher)
	}

	// Local spectators follow the match over a socket
	var feed *ipc.Publisher
	if path := appConfig.Spectator.SocketPath; path != "" {
		feed = ipc.NewPublisher(path)
		feed.SetConfig(engine.GetTuning())
		if err := feed.Start(); err != nil {
			log.Printf("⚠️ Spectator feed disabled: %v", err)
			feed = nil
		}
	}

	onTick := api.ObserveTick
	if feed != nil {
		onTick = func(stats game.TickStats) {
			api.ObserveTick(stats)
			feed.PublishSnapshot(engine.GetSnapshot())
		}
	}
	engine.SetCallbacks(onTick, server.OnMatchEnd)

	// Start game engine
	engine.Start()
	log.Println("✅ Arena engine started")

	// Start API server in goroutine
	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ %v", err)
	}
	engine.Stop()
	if feed != nil {
		feed.Stop()
	}
	if dispatcher != nil {
		dispatcher.Stop()
	}
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}
