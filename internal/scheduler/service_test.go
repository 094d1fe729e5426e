package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetentionStore struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
	err     error
}

func (s *stubRetentionStore) DeleteTerminalBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.deleted, s.err
}

func (s *stubRetentionStore) sweepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cutoffs)
}

func TestSweep_UsesRetentionCutoff(t *testing.T) {
	store := &stubRetentionStore{deleted: 3}
	service := NewService(store, 30, "0 0 3 * * *")

	before := time.Now().UTC().Add(-30 * 24 * time.Hour)
	service.Sweep(context.Background())
	after := time.Now().UTC().Add(-30 * 24 * time.Hour)

	require.Len(t, store.cutoffs, 1)
	cutoff := store.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestSweep_StoreErrorDoesNotPanic(t *testing.T) {
	store := &stubRetentionStore{err: errors.New("db locked")}
	service := NewService(store, 7, "0 0 3 * * *")

	assert.NotPanics(t, func() {
		service.Sweep(context.Background())
	})
	assert.Len(t, store.cutoffs, 1)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	service := NewService(&stubRetentionStore{}, 7, "not a schedule")

	err := service.Start()
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	service := NewService(&stubRetentionStore{}, 7, "0 0 3 * * *")

	require.NoError(t, service.Start())
	service.Stop()
}

func TestStart_ScheduledSweepFires(t *testing.T) {
	store := &stubRetentionStore{}
	service := NewService(store, 7, "* * * * * *") // every second
	require.NoError(t, service.Start())
	defer service.Stop()

	assert.Eventually(t, func() bool {
		return store.sweepCount() > 0
	}, 3*time.Second, 50*time.Millisecond)
}
