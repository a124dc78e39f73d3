package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"innerspark/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	mu       sync.Mutex
	position float64
	pauses   int
	seeks    []float64
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	p.pauses++
	p.mu.Unlock()
}

func (p *fakePlayer) Seek(seconds float64) {
	p.mu.Lock()
	p.position = seconds
	p.seeks = append(p.seeks, seconds)
	p.mu.Unlock()
}

func (p *fakePlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *fakePlayer) advance(to float64) {
	p.mu.Lock()
	p.position = to
	p.mu.Unlock()
}

type recorder struct {
	mu        sync.Mutex
	overlays  int
	completed int
	releases  int
	ticks     []float64
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Tick: func(remaining float64) {
			r.mu.Lock()
			r.ticks = append(r.ticks, remaining)
			r.mu.Unlock()
		},
		Overlay: func() {
			r.mu.Lock()
			r.overlays++
			r.mu.Unlock()
		},
		Completed: func(uint, int) {
			r.mu.Lock()
			r.completed++
			r.mu.Unlock()
		},
		Release: func() {
			r.mu.Lock()
			r.releases++
			r.mu.Unlock()
		},
	}
}

func newSession(t *testing.T, duration int) (*Session, *fakePlayer, *recorder) {
	t.Helper()
	player := &fakePlayer{}
	rec := &recorder{}
	s, err := NewSession(7, access.Decide(false, duration), player, rec.hooks())
	require.NoError(t, err)
	return s, player, rec
}

func TestOnlyPreviewItemsGetSessions(t *testing.T) {
	_, err := NewSession(1, access.Decide(true, 30), &fakePlayer{}, Hooks{})
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = NewSession(1, access.Decide(false, 0), &fakePlayer{}, Hooks{})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestThirtySecondPreviewScenario(t *testing.T) {
	s, player, rec := newSession(t, 30)
	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrNotIdle)

	for _, pos := range []float64{10, 20, 29} {
		s.OnPosition(pos)
		assert.Equal(t, Playing, s.State())
	}
	assert.InDelta(t, 1, s.Remaining(), 0.001)
	assert.Zero(t, player.pauses)

	s.OnPosition(30)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, 1, player.pauses)
	assert.Equal(t, []float64{30}, player.seeks)
	assert.Equal(t, 1, rec.overlays)
	assert.Equal(t, 1, rec.completed)
	assert.Zero(t, s.Remaining())

	s.OnPosition(35)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, 1, rec.overlays)
	assert.Equal(t, 1, player.pauses)
	assert.Equal(t, 30.0, player.Position())
	assert.Zero(t, s.Remaining())
	assert.Equal(t, []float64{20, 10, 1, 0, 0}, rec.ticks)
}

func TestClampHoldsAfterSeekForward(t *testing.T) {
	s, player, rec := newSession(t, 12)
	require.NoError(t, s.Start())

	s.OnPosition(50)
	assert.Equal(t, 12.0, player.Position())

	for _, pos := range []float64{12, 80, 13.5, 4} {
		player.advance(pos)
		s.OnPosition(pos)
		assert.LessOrEqual(t, player.Position(), 12.0)
	}
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, []float64{12, 12, 12}, player.seeks)
}

func TestRemainingFollowsSeekBackAfterEnded(t *testing.T) {
	s, player, rec := newSession(t, 30)
	require.NoError(t, s.Start())

	s.OnPosition(30)
	require.Equal(t, Ended, s.State())

	player.advance(5)
	s.OnPosition(5)
	assert.Equal(t, Ended, s.State())
	assert.Equal(t, 25.0, s.Remaining())
	assert.Equal(t, []float64{0, 25}, rec.ticks)
	assert.Equal(t, []float64{30}, player.seeks)
	assert.Equal(t, 1, rec.completed)
	assert.Equal(t, 1, rec.overlays)
}

func TestUpdatesBeforeStartAreIgnored(t *testing.T) {
	s, player, rec := newSession(t, 5)
	s.OnPosition(9)
	assert.Equal(t, Idle, s.State())
	assert.Zero(t, player.pauses)
	assert.Zero(t, rec.completed)
}

func TestWatchDrivesSessionAndCloseStopsIt(t *testing.T) {
	s, player, rec := newSession(t, 3)
	require.NoError(t, s.Start())
	s.Watch(context.Background(), time.Millisecond)

	player.advance(1)
	require.Eventually(t, func() bool { return s.Remaining() == 2 }, time.Second, time.Millisecond)
	player.advance(4)
	require.Eventually(t, func() bool { return s.State() == Ended }, time.Second, time.Millisecond)

	s.Close()
	s.Close()
	assert.Equal(t, 1, rec.releases)
	assert.Equal(t, 1, rec.completed)
	assert.ErrorIs(t, s.Start(), ErrClosed)

	player.advance(99)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 99.0, player.Position())
}

func TestCloseWhileIdleReleases(t *testing.T) {
	s, _, rec := newSession(t, 10)
	s.Close()
	assert.Equal(t, 1, rec.releases)
	s.OnPosition(11)
	assert.Equal(t, Idle, s.State())
}
