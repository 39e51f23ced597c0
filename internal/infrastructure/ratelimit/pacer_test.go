package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerSpacesCalls(t *testing.T) {
	t.Parallel()

	p := NewPacer(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected at least two paced gaps, elapsed %v", elapsed)
	}
}

func TestPacerDisabled(t *testing.T) {
	t.Parallel()

	p := NewPacer(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("disabled pacer should not block, elapsed %v", elapsed)
	}
}

func TestPacerHonoursContext(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Hour)
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
