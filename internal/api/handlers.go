package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"apex-arena/internal/game"
)

// maxInputBody caps POST /api/input payloads
const maxInputBody = 4 << 10

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.GetSnapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	playerBullets, enemyBullets := snap.BulletCounts()

	writeJSON(w, map[string]interface{}{
		"matchId":       snap.MatchID.String(),
		"tick":          snap.Tick,
		"sequence":      snap.Sequence,
		"status":        snap.Match.Status,
		"alive":         snap.Match.Alive,
		"eliminations":  snap.Match.Eliminations,
		"enemies":       len(snap.Enemies),
		"playerBullets": playerBullets,
		"enemyBullets":  enemyBullets,
		"pickups":       len(snap.Weapons),
		"eventLog":      h.engine.GetEventLogStats(),
		"rateLimit":     h.limiter.Stats(),
	})
}

func (h *routerHandlers) handleGetWeapons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, game.GetAllWeapons())
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Frame rendering disabled", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.renderer.EncodePNG(w, h.engine.GetSnapshot()); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		return
	}
	RecordRender(time.Since(start))
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var req game.InputUpdate

	r.Body = http.MaxBytesReader(w, r.Body, maxInputBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	req.Apply(h.engine.Input())
	RecordInput("http")
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handlePickup(w http.ResponseWriter, r *http.Request) {
	h.engine.Pickup()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"queued": true})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	log.Println("🔄 Match restart requested via API")
	snap := h.engine.Restart()
	writeJSON(w, map[string]interface{}{
		"success": true,
		"matchId": snap.MatchID.String(),
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
