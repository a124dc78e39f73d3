package accountstatus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

type reply struct {
	status Status
	err    error
}

func (s *scripted) CheckStatus(context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	return s.replies[i].status, s.replies[i].err
}

func TestStatusValidate(t *testing.T) {
	assert.NoError(t, Status{State: Active}.Validate())
	assert.NoError(t, Status{State: RequireEmail}.Validate())
	assert.Error(t, Status{State: "banned"}.Validate())
	assert.Error(t, Status{}.Validate())
}

func TestPollerReportsChangesOnly(t *testing.T) {
	checker := &scripted{replies: []reply{
		{status: Status{State: Active}},
		{status: Status{State: Active}},
		{err: errors.New("offline")},
		{status: Status{State: "weird"}},
		{status: Status{State: Inactive, Message: "deactivated"}},
	}}

	var mu sync.Mutex
	var seen []string
	p := NewPoller(checker, 5*time.Millisecond, func(s Status) {
		mu.Lock()
		seen = append(seen, s.State)
		mu.Unlock()
	})
	p.Start(context.Background())
	p.Start(context.Background())

	require.Eventually(t, func() bool { return p.Last() == Inactive }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{Active, Inactive}, seen)
}

func TestStopHaltsPolling(t *testing.T) {
	checker := &scripted{replies: []reply{{status: Status{State: Active}}}}
	p := NewPoller(checker, 2*time.Millisecond, nil)
	p.Start(context.Background())
	require.Eventually(t, func() bool { return p.Last() == Active }, time.Second, 2*time.Millisecond)
	p.Stop()

	checker.mu.Lock()
	calls := checker.calls
	checker.mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	checker.mu.Lock()
	defer checker.mu.Unlock()
	assert.Equal(t, calls, checker.calls)
}
