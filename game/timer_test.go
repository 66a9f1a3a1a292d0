package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vaibhav1992/Memelord/filter"
)

func TestCountdown_TicksBroadcastAndExpire(t *testing.T) {
	t.Parallel()
	r := NewRoom("r", "AAAAAA", Settings{}, testCatalog(1), filter.Default())
	joinPlayer(t, r, "alice")
	r.takeOutbox()

	fired := 0
	r.startCountdown(2, false, func() { fired++ })

	r.handleTick()
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, r.countdown.remaining)
	ticks := eventsOfType(decodeOutbox(t, r.takeOutbox()), EventTimerTick)
	assert.Len(t, ticks, 1)
	assert.Equal(t, float64(1), ticks[0].data["secondsLeft"])

	r.handleTick()
	assert.Equal(t, 1, fired)
	assert.False(t, r.countdown.active)

	// expired countdowns never fire again
	r.handleTick()
	assert.Equal(t, 1, fired)
}

func TestCountdown_CancelPreventsExpiry(t *testing.T) {
	t.Parallel()
	r := NewRoom("r", "AAAAAA", Settings{}, testCatalog(1), filter.Default())

	fired := false
	r.startCountdown(1, false, func() { fired = true })
	r.cancelCountdown()

	for i := 0; i < 5; i++ {
		r.handleTick()
	}
	assert.False(t, fired)
	assert.Empty(t, r.takeOutbox())
}

func TestCountdown_SilentCountdownDoesNotBroadcast(t *testing.T) {
	t.Parallel()
	r := NewRoom("r", "AAAAAA", Settings{}, testCatalog(1), filter.Default())
	joinPlayer(t, r, "alice")
	r.takeOutbox()

	fired := false
	r.startCountdown(3, true, func() { fired = true })
	r.handleTick()
	r.handleTick()
	r.handleTick()

	assert.True(t, fired)
	assert.Empty(t, r.takeOutbox())
}

func TestCountdown_RestartReplacesPrevious(t *testing.T) {
	t.Parallel()
	r := NewRoom("r", "AAAAAA", Settings{}, testCatalog(1), filter.Default())

	var first, second bool
	r.startCountdown(1, true, func() { first = true })
	r.startCountdown(2, true, func() { second = true })

	r.handleTick()
	assert.False(t, first)
	assert.False(t, second)
	r.handleTick()
	assert.False(t, first)
	assert.True(t, second)
}
