package crawler

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestPacer tests the politeness pause and rate limit.
func TestPacer(t *testing.T) {
	t.Parallel()

	t.Run("pause waits for the delay", func(t *testing.T) {
		t.Parallel()

		p := NewPacer(50*time.Millisecond, 0)
		start := time.Now()
		if err := p.Pause(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
			t.Errorf("expected at least 50ms, got %v", elapsed)
		}
	})

	t.Run("pause returns early on cancel", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := NewPacer(time.Hour, 0)
		if err := p.Pause(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("zero delay does not block", func(t *testing.T) {
		t.Parallel()

		p := NewPacer(0, 0)
		start := time.Now()
		if err := p.Pause(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
			t.Errorf("expected no wait, got %v", elapsed)
		}
	})

	t.Run("rate limit spaces requests", func(t *testing.T) {
		t.Parallel()

		p := NewPacer(0, 20) // one token every 50ms
		start := time.Now()
		for range 3 {
			if err := p.Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		// The first token is available immediately.
		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected at least ~100ms for 3 requests at 20/s, got %v", elapsed)
		}
	})

	t.Run("no rate limit does not block", func(t *testing.T) {
		t.Parallel()

		p := NewPacer(0, 0)
		for range 100 {
			if err := p.Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	})

	t.Run("nil pacer is a no-op", func(t *testing.T) {
		t.Parallel()

		var p *Pacer
		if err := p.Wait(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := p.Pause(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
