package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestWatchdog(t *testing.T, heartbeat *Heartbeat, clock *fakeClock) (*Watchdog, *[]int, *mocks.Logger) {
	var exits []int
	logger := mocks.NewLogger()

	w, err := NewWatchdog(WatchdogDependencies{
		Heartbeat: heartbeat,
		Config:    mocks.NewConfigProvider(),
		Logger:    logger,
		Exit:      func(code int) { exits = append(exits, code) },
		Now:       clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w, &exits, logger
}

func TestHeartbeat(t *testing.T) {
	h := NewHeartbeat()
	assert.True(t, h.Last().IsZero())

	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	h.Beat(at)
	assert.True(t, at.Equal(h.Last()))
}

func TestWatchdog_FreshHeartbeat(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	heartbeat := NewHeartbeat()
	w, exits, _ := newTestWatchdog(t, heartbeat, clock)

	heartbeat.Beat(clock.Now())
	clock.Advance(49 * time.Minute)

	assert.True(t, w.Check())
	assert.Empty(t, *exits)
}

func TestWatchdog_StallExits(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	heartbeat := NewHeartbeat()
	w, exits, logger := newTestWatchdog(t, heartbeat, clock)

	heartbeat.Beat(clock.Now())
	clock.Advance(51 * time.Minute)

	assert.False(t, w.Check())
	assert.Equal(t, []int{1}, *exits)
	assert.True(t, logger.Has("error", "Scheduler stalled, terminating"))
}

func TestWatchdog_AnchoredAtStart(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	w, exits, _ := newTestWatchdog(t, NewHeartbeat(), clock)

	clock.Advance(30 * time.Minute)
	assert.True(t, w.Check(), "fresh process must not be killed before its first fetch")

	clock.Advance(30 * time.Minute)
	assert.False(t, w.Check())
	assert.Equal(t, []int{1}, *exits)
}

func TestNewWatchdog_Validation(t *testing.T) {
	config := mocks.NewConfigProvider()
	config.Scheduler.StallThreshold = 0

	_, err := NewWatchdog(WatchdogDependencies{
		Heartbeat: NewHeartbeat(),
		Config:    config,
		Logger:    mocks.NewLogger(),
	})
	assert.Error(t, err)

	_, err = NewWatchdog(WatchdogDependencies{})
	assert.Error(t, err)
}
