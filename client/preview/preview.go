// Package preview enforces the timed preview of a gated video on the client. The server sends
// the whole file; the session pauses and clamps playback once the preview window is used up.
package preview

import (
	"context"
	"errors"
	"sync"
	"time"

	"innerspark/access"
)

type State int

const (
	Idle State = iota
	Playing
	Ended
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	default:
		return "idle"
	}
}

// DefaultInterval is the Watch polling period
const DefaultInterval = 250 * time.Millisecond

var (
	ErrNotEligible = errors.New("content is not preview-eligible")
	ErrNotIdle     = errors.New("preview session already started")
	ErrClosed      = errors.New("preview session closed")
)

// Player is the media engine under the session.
type Player interface {
	Pause()
	Seek(seconds float64)
	Position() float64
}

// Hooks are optional callbacks. They run outside the session lock, so they may call back into
// the session or the player, but must not call Close.
type Hooks struct {
	// Tick receives the remaining preview seconds on every position update after Start.
	Tick func(remaining float64)
	// Overlay reveals the enrollment prompt.
	Overlay func()
	// Completed emits the preview_completed event.
	Completed func(contentID uint, duration int)
	// Release frees the media handle on Close.
	Release func()
}

type Session struct {
	contentID uint
	duration  int
	player    Player
	hooks     Hooks

	mu        sync.Mutex
	state     State
	remaining float64
	closed    bool
	stop      context.CancelFunc
	watching  sync.WaitGroup
}

// NewSession builds a session for one content item. Only PreviewAvailable items qualify.
func NewSession(contentID uint, entitlement access.State, player Player, hooks Hooks) (*Session, error) {
	if entitlement.Kind() != access.PreviewAvailable {
		return nil, ErrNotEligible
	}
	return &Session{
		contentID: contentID,
		duration:  entitlement.PreviewDuration(),
		player:    player,
		hooks:     hooks,
		remaining: float64(entitlement.PreviewDuration()),
	}, nil
}

// Start moves Idle to Playing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return ErrClosed
	case s.state != Idle:
		return ErrNotIdle
	}
	s.state = Playing
	return nil
}

// OnPosition handles one position report from the media clock.
func (s *Session) OnPosition(position float64) {
	limit := float64(s.duration)

	s.mu.Lock()
	if s.closed || s.state == Idle {
		s.mu.Unlock()
		return
	}
	remaining := limit - position
	if remaining < 0 {
		remaining = 0
	}
	s.remaining = remaining

	var pause, clamp, finish bool
	switch s.state {
	case Playing:
		if position >= limit {
			s.state = Ended
			pause, clamp, finish = true, true, true
		}
	case Ended:
		clamp = position > limit
	}
	s.mu.Unlock()

	if pause {
		s.player.Pause()
	}
	if clamp {
		s.player.Seek(limit)
	}
	if s.hooks.Tick != nil {
		s.hooks.Tick(remaining)
	}
	if finish {
		if s.hooks.Overlay != nil {
			s.hooks.Overlay()
		}
		if s.hooks.Completed != nil {
			s.hooks.Completed(s.contentID, s.duration)
		}
	}
}

// Watch polls the player every interval and feeds OnPosition until ctx ends or the session is
// closed. It is for players that do not push position updates.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.mu.Lock()
	if s.closed || s.stop != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.watching.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.watching.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.OnPosition(s.player.Position())
			}
		}
	}()
}

// Close stops the watcher, waits for it and releases the media handle. Safe to call repeatedly.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.watching.Wait()
	if s.hooks.Release != nil {
		s.hooks.Release()
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining is max(0, duration - last position).
func (s *Session) Remaining() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) Duration() int { return s.duration }
