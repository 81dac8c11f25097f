package ipc

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"apex-arena/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(t *testing.T) *game.Snapshot {
	t.Helper()
	sim := game.NewSimulation(game.DefaultTuning(), rand.New(rand.NewSource(11)))
	w := sim.NewWorld()
	w.Bullets = append(w.Bullets,
		game.NewBullet(100, 100, 0, 10, game.OwnerPlayer),
		game.NewBullet(200, 200, 1, 6, game.OwnerEnemy),
	)
	return game.NewSnapshotStore(w).Load()
}

// TestFraming verifies messages survive a write/read cycle back to back
func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	cfg := ConfigMessage{ArenaWidth: 1200, ArenaHeight: 800, TickRate: 60}

	require.NoError(t, WriteMessage(&buf, MsgTypeConfig, cfg))
	require.NoError(t, WriteMessage(&buf, MsgTypeSnapshot, snapshotToMessage(testSnapshot(t))))

	msgType, body, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeConfig, msgType)

	var got ConfigMessage
	require.NoError(t, Decode(body, &got))
	assert.Equal(t, cfg, got)

	msgType, _, err = ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeSnapshot, msgType)
	assert.Equal(t, 0, buf.Len())
}

// TestReadMessageRejects verifies bad headers are refused
func TestReadMessageRejects(t *testing.T) {
	header := func(version uint16, length uint32) *bytes.Buffer {
		b := make([]byte, HeaderSize)
		binary.LittleEndian.PutUint16(b[0:2], version)
		b[2] = MsgTypeSnapshot
		binary.LittleEndian.PutUint32(b[4:8], length)
		return bytes.NewBuffer(b)
	}

	tests := []struct {
		name string
		in   *bytes.Buffer
	}{
		{"version mismatch", header(ProtocolVersion+1, 0)},
		{"too large", header(ProtocolVersion, MaxMessageSize+1)},
		{"truncated body", header(ProtocolVersion, 10)},
		{"truncated header", bytes.NewBuffer([]byte{1, 2})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadMessage(tt.in)
			assert.Error(t, err)
		})
	}
}

// TestSnapshotConversion verifies the wire form keeps what spectators draw
func TestSnapshotConversion(t *testing.T) {
	snap := testSnapshot(t)
	got := snapshotToMessage(snap).ToSnapshot()

	assert.Equal(t, snap.MatchID, got.MatchID)
	assert.Equal(t, snap.Sequence, got.Sequence)
	assert.Equal(t, snap.Tick, got.Tick)
	assert.Equal(t, snap.Zone, got.Zone)
	assert.Equal(t, snap.Match, got.Match)
	assert.Equal(t, snap.Player.Health, got.Player.Health)
	assert.Equal(t, snap.Player.Weapon, got.Player.Weapon)
	assert.Len(t, got.Enemies, len(snap.Enemies))
	assert.Len(t, got.Weapons, len(snap.Weapons))

	require.Len(t, got.Bullets, 2)
	assert.Equal(t, game.OwnerPlayer, got.Bullets[0].Owner)
	assert.Equal(t, game.OwnerEnemy, got.Bullets[1].Owner)
}

// TestPublisherToSubscriber verifies a spectator receives config and
// snapshots over the socket
func TestPublisherToSubscriber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.sock")

	pub := NewPublisher(path)
	pub.SetConfig(game.DefaultTuning())
	require.NoError(t, pub.Start())
	defer pub.Stop()

	sub := NewSubscriber(path)
	sub.Start()
	defer sub.Stop()

	cfg, ok := sub.WaitForConfig(3 * time.Second)
	require.True(t, ok)
	assert.Equal(t, 1200.0, cfg.ArenaWidth)
	assert.Equal(t, 60, cfg.TickRate)

	snap := testSnapshot(t)
	require.Eventually(t, func() bool {
		pub.PublishSnapshot(snap)
		got := sub.GetSnapshot()
		return got != nil && got.Sequence == snap.Sequence
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, snap.MatchID, sub.GetSnapshot().MatchID)
	assert.True(t, sub.IsConnected())

	clients, sent, _ := pub.GetStats()
	assert.Equal(t, 1, clients)
	assert.Greater(t, sent, int64(0))
}

// TestPublishWithoutSpectators verifies publishing is a no-op with nobody
// listening
func TestPublishWithoutSpectators(t *testing.T) {
	pub := NewPublisher(filepath.Join(t.TempDir(), "idle.sock"))
	pub.PublishSnapshot(testSnapshot(t)) // not started

	require.NoError(t, pub.Start())
	defer pub.Stop()
	pub.PublishSnapshot(testSnapshot(t))

	_, sent, dropped := pub.GetStats()
	assert.Zero(t, sent)
	assert.Zero(t, dropped)
	assert.Empty(t, pub.snapshotCh)
}
