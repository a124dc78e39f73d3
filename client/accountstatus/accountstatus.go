// Package accountstatus polls the signed-in user's account state so a client can react to
// deactivation or a pending email verification while the session is open.
package accountstatus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"innerspark/logger"
)

const (
	Active       = "active"
	Inactive     = "inactive"
	RequireEmail = "require_email"
)

// DefaultInterval is how often the poller asks the server
const DefaultInterval = time.Minute

type Status struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// Validate rejects payloads whose state the client does not know how to handle.
func (s Status) Validate() error {
	switch s.State {
	case Active, Inactive, RequireEmail:
		return nil
	}
	return fmt.Errorf("unknown account state %q", s.State)
}

// Checker fetches the current status
type Checker interface {
	CheckStatus(ctx context.Context) (Status, error)
}

// Poller calls onChange whenever the polled state differs from the previous one, including the
// first successful poll. Failed or malformed polls are logged and skipped.
type Poller struct {
	checker  Checker
	interval time.Duration
	onChange func(Status)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	last   string
}

func NewPoller(checker Checker, interval time.Duration, onChange func(Status)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{checker: checker, interval: interval, onChange: onChange}
}

// Start begins polling in the background. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	status, err := p.checker.CheckStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Log.Warn("account status poll failed", "error", err)
		}
		return
	}
	if err := status.Validate(); err != nil {
		logger.Log.Warn("account status rejected", "error", err)
		return
	}

	p.mu.Lock()
	changed := status.State != p.last
	p.last = status.State
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(status)
	}
}

// Last is the most recent valid state, empty before the first poll.
func (p *Poller) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
