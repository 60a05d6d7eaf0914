package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewLoop_DefaultInterval(t *testing.T) {
	if got := NewLoop(0).Interval(); got != DefaultInterval {
		t.Errorf("Expected default interval %v, got %v", DefaultInterval, got)
	}
	if got := NewLoop(5 * time.Millisecond).Interval(); got != 5*time.Millisecond {
		t.Errorf("Expected 5ms interval, got %v", got)
	}
}

func TestLoop_StopsWhenStepReturnsFalse(t *testing.T) {
	loop := NewLoop(time.Millisecond)

	calls := 0
	err := loop.Run(context.Background(), func(deltaMs float64) bool {
		calls++
		return calls < 5
	})

	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 steps, got %d", calls)
	}
}

func TestLoop_MeasuresElapsedTime(t *testing.T) {
	var mu sync.Mutex
	current := time.Unix(0, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		// every reading is 25ms after the previous one
		current = current.Add(25 * time.Millisecond)
		return current
	}

	loop := NewLoop(time.Millisecond, WithClock(clock))

	var deltas []float64
	loop.Run(context.Background(), func(deltaMs float64) bool {
		deltas = append(deltas, deltaMs)
		return len(deltas) < 3
	})

	for i, d := range deltas {
		if d != 25 {
			t.Errorf("Step %d: expected delta 25ms, got %v", i, d)
		}
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	loop := NewLoop(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(deltaMs float64) bool { return true })
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop after cancel")
	}
}
