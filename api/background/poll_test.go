package background

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollStopsWhenDone(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("expected nil, but got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, but got %d", calls)
	}
}

func TestPollRetriesAfterError(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), time.Millisecond, time.Second, func(ctx context.Context) (bool, error) {
		calls++
		if calls < 3 {
			return true, errors.New("boom")
		}
		return true, nil
	})
	if err != nil {
		t.Fatalf("expected nil, but got %v", err)
	}

	// An error tick must not count as done.
	if calls != 3 {
		t.Fatalf("expected 3 calls, but got %d", calls)
	}
}

func TestPollTimeout(t *testing.T) {
	err := Poll(context.Background(), time.Millisecond, 20*time.Millisecond, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, but got %v", err)
	}
}

func TestPollCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Poll(ctx, time.Millisecond, time.Minute, func(ctx context.Context) (bool, error) {
			return false, nil
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected Canceled, but got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poll did not stop after cancellation")
	}
}
