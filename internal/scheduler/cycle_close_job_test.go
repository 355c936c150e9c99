package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blues/memberadmin/internal/cache"
	"github.com/blues/memberadmin/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettler struct {
	mu    sync.Mutex
	calls []string
	err   error
	ran   chan struct{}
}

func (s *stubSettler) SettleDue(_ context.Context, by string) ([]model.DividendModel, error) {
	s.mu.Lock()
	s.calls = append(s.calls, by)
	s.mu.Unlock()
	if s.ran != nil {
		select {
		case s.ran <- struct{}{}:
		default:
		}
	}
	return []model.DividendModel{{CycleNumber: 1}}, s.err
}

func (s *stubSettler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubLocker struct {
	err      error
	released bool
}

func (l *stubLocker) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.released = true
		return nil
	}, nil
}

func TestCycleCloseJobSettlesWithoutLocker(t *testing.T) {
	settler := &stubSettler{}
	job := NewCycleCloseJob(settler, nil, time.Minute)

	job.Execute()

	require.Equal(t, 1, settler.count())
	assert.Equal(t, "scheduler", settler.calls[0])
	assert.Equal(t, "dividend_cycle_close", job.GetName())
}

func TestCycleCloseJobReleasesLock(t *testing.T) {
	settler := &stubSettler{err: errors.New("cycle 2: boom")}
	locker := &stubLocker{}

	NewCycleCloseJob(settler, locker, time.Minute).Execute()

	assert.Equal(t, 1, settler.count())
	assert.True(t, locker.released)
}

func TestCycleCloseJobSkipsWhenLockHeld(t *testing.T) {
	settler := &stubSettler{}
	locker := &stubLocker{err: cache.ErrLockNotObtained}

	NewCycleCloseJob(settler, locker, time.Minute).Execute()

	assert.Zero(t, settler.count())
}

func TestCycleCloseJobSkipsOnLockError(t *testing.T) {
	settler := &stubSettler{}
	locker := &stubLocker{err: errors.New("redis down")}

	NewCycleCloseJob(settler, locker, time.Minute).Execute()

	assert.Zero(t, settler.count())
}

func TestManagerRunsRegisteredJob(t *testing.T) {
	settler := &stubSettler{ran: make(chan struct{}, 1)}
	job := NewCycleCloseJob(settler, nil, 20*time.Millisecond)

	m, err := NewManager(job)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	defer m.Stop()

	require.Len(t, m.Jobs(), 1)
	assert.Equal(t, "dividend_cycle_close", m.Jobs()[0].Name())

	select {
	case <-settler.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}
