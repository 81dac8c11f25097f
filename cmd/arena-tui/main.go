package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apex-arena/internal/config"
	"apex-arena/internal/game"
	"apex-arena/internal/haptics"
	"apex-arena/internal/haptics/speaker"
	"apex-arena/internal/ipc"
	"apex-arena/internal/tui"

	"github.com/pkg/errors"
)

func main() {
	spectate := flag.String("spectate", "", "follow a running server's spectator socket instead of playing")
	flag.Parse()

	appConfig := config.LoadWithDotEnv()

	// The terminal is ours while the game runs, so logs go to a file
	logPath := os.Getenv("ARENA_TUI_LOG")
	if logPath == "" {
		logPath = "arena-tui.log"
	}
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	if *spectate != "" {
		err = runSpectator(ctx, *spectate)
	} else {
		err = runLocal(ctx, appConfig)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "arena-tui: %v\n", err)
		os.Exit(1)
	}
}

// runLocal plays a match against a local engine
func runLocal(ctx context.Context, appConfig config.AppConfig) error {
	engine := game.NewEngine(appConfig.EngineConfig())
	log.Printf("🎲 Seed: %d", engine.Seed())

	if path := appConfig.EventLog.Path; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
	}

	// Speaker thumps stand in for controller rumble
	var backend haptics.Backend = haptics.Noop{}
	if appConfig.Haptics.Enabled {
		sp := speaker.New(appConfig.Haptics.Volume)
		if err := sp.Init(); err != nil {
			// Non-fatal, the game runs without feedback
			log.Printf("⚠️ Haptics disabled: %v", err)
		} else {
			backend = sp
			defer sp.Close()
		}
	}
	dispatcher := haptics.NewDispatcher(backend)
	defer dispatcher.Stop()
	engine.SetHaptics(dispatcher)

	t := engine.GetTuning()
	app, err := tui.NewApp(nil, engine, engine.Input(), t.ArenaWidth, t.ArenaHeight)
	if err != nil {
		return err
	}

	engine.Start()
	app.Run(ctx)
	engine.Stop()
	engine.StopEventLog()

	snap := engine.GetSnapshot()
	fmt.Printf("Match %s: %s, %d eliminations\n", snap.MatchID, snap.Match.Status, snap.Match.Eliminations)
	log.Printf("📳 Haptics: %v", dispatcher.Stats())
	return nil
}

// runSpectator draws a server's match without controlling it
func runSpectator(ctx context.Context, socketPath string) error {
	sub := ipc.NewSubscriber(socketPath)
	sub.Start()
	defer sub.Stop()

	cfg, ok := sub.WaitForConfig(5 * time.Second)
	if !ok {
		return errors.Errorf("no spectator feed at %s", socketPath)
	}

	// Intents from a spectator go nowhere
	app, err := tui.NewApp(nil, sub, game.NewInputBuffer(), cfg.ArenaWidth, cfg.ArenaHeight)
	if err != nil {
		return err
	}
	app.Run(ctx)

	received, reconnects, errs := sub.GetStats()
	log.Printf("👀 Spectated %d snapshots (%d reconnects, %d errors)", received, reconnects, errs)
	return nil
}
