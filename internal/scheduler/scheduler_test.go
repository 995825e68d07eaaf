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

func TestScheduler_FiresImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New([]Job{{
		Name:     "teams",
		Interval: time.Hour,
		Run: func(context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}})

	require.NoError(t, s.Start(context.Background()))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, StateIdle, snap[0].State)
	assert.Equal(t, int64(1), snap[0].Runs)
	require.NotNil(t, snap[0].Last)
	assert.Equal(t, StatusSuccess, snap[0].Last.Status)
	assert.NotEmpty(t, snap[0].Last.RunID)
}

func TestScheduler_PanicReturnsJobToIdle(t *testing.T) {
	var (
		mu       sync.Mutex
		statuses []RunStatus
	)
	s := New([]Job{{
		Name:     "statlines",
		Interval: time.Hour,
		Run:      func(context.Context) error { panic("nil map write") },
	}}, WithOnComplete(func(_ context.Context, st RunStatus) {
		mu.Lock()
		statuses = append(statuses, st)
		mu.Unlock()
	}))

	status, err := s.RunNow(context.Background(), "statlines")
	require.Error(t, err)
	assert.Equal(t, StatusPanic, status.Status)
	assert.Contains(t, status.Error, "nil map write")

	snap := s.Snapshot()[0]
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, int64(1), snap.Failures)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, statuses, 1)
	assert.Equal(t, "statlines", statuses[0].Job)
}

func TestScheduler_FailedRunIsRecorded(t *testing.T) {
	boom := errors.New("store write failed")
	s := New([]Job{{Name: "games", Interval: time.Hour, Run: func(context.Context) error { return boom }}})

	status, err := s.RunNow(context.Background(), "games")
	require.Error(t, err)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Equal(t, boom.Error(), status.Error)

	status, err = s.RunNow(context.Background(), "games")
	require.Error(t, err)
	assert.Equal(t, int64(2), s.Snapshot()[0].Failures)
	assert.NotEqual(t, "", status.RunID)
}

func TestScheduler_OverlappingRunsAllowed(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	s := New([]Job{{
		Name:     "players",
		Interval: time.Hour,
		Run: func(context.Context) error {
			started <- struct{}{}
			<-release
			return nil
		},
	}})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.RunNow(context.Background(), "players")
		}()
	}

	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("second run was blocked by the first")
		}
	}

	snap := s.Snapshot()[0]
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 2, snap.InFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, StateIdle, s.Snapshot()[0].State)
}

func TestScheduler_RejectsBadInterval(t *testing.T) {
	s := New([]Job{{Name: "teams", Run: func(context.Context) error { return nil }}})
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := New(nil)
	_, err := s.RunNow(context.Background(), "odds")
	assert.ErrorIs(t, err, ErrUnknownJob)
}
