package speaker

import (
	"testing"

	"apex-arena/internal/haptics"

	"github.com/stretchr/testify/assert"
)

// TestThumpLevels verifies every impulse level has a sound, louder as it gets heavier
func TestThumpLevels(t *testing.T) {
	light, medium, heavy := thumps[haptics.Light], thumps[haptics.Medium], thumps[haptics.Heavy]
	assert.Less(t, light.gain, medium.gain)
	assert.Less(t, medium.gain, heavy.gain)
	assert.Less(t, light.duration, heavy.duration)
}

// TestThumpStreamerDecays verifies the burst ends after its duration and fades out
func TestThumpStreamerDecays(t *testing.T) {
	th := thumps[Light]
	s := newThump(th, 1.0)
	total := sampleRate.N(th.duration)

	buf := make([][2]float64, total+100)
	n, ok := s.Stream(buf)
	assert.True(t, ok)
	assert.Equal(t, total, n)

	for i := 0; i < n; i++ {
		assert.LessOrEqual(t, buf[i][0], th.gain+1e-9)
		assert.GreaterOrEqual(t, buf[i][0], -th.gain-1e-9)
	}

	n, ok = s.Stream(buf)
	assert.False(t, ok)
	assert.Equal(t, 0, n)
	assert.NoError(t, s.Err())
}
