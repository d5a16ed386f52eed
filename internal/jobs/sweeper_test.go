package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweepStore struct {
	calls   atomic.Int64
	started int64
	failErr error
}

func (f *fakeSweepStore) Sweep(ctx context.Context, now time.Time) (int64, int64, error) {
	f.calls.Add(1)
	if f.failErr != nil {
		return 0, 0, f.failErr
	}
	return f.started, 0, nil
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	store := &fakeSweepStore{started: 1}
	sweeper := NewSweeper(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", store.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestSweeperSurvivesStoreErrors(t *testing.T) {
	store := &fakeSweepStore{failErr: context.DeadlineExceeded}
	sweeper := NewSweeper(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for store.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper stopped after a store error")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
}
