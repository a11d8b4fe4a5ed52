package guard

import (
	"context"
	"testing"
)

func TestRunGuardSingleFlight(t *testing.T) {
	g := NewRunGuard()
	ctx := context.Background()

	ok, err := g.TryAcquire(ctx, "settlement_processor")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if !ok {
		t.Fatal("first acquire must succeed")
	}

	ok, err = g.TryAcquire(ctx, "settlement_processor")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if ok {
		t.Fatal("second acquire while held must be rejected")
	}

	if err := g.Release(ctx, "settlement_processor"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	ok, err = g.TryAcquire(ctx, "settlement_processor")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if !ok {
		t.Fatal("acquire after release must succeed")
	}
}

func TestRunGuardConcurrentAcquire(t *testing.T) {
	g := NewRunGuard()
	ctx := context.Background()

	const workers = 16
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			ok, _ := g.TryAcquire(ctx, "job")
			results <- ok
		}()
	}

	acquired := 0
	for i := 0; i < workers; i++ {
		if <-results {
			acquired++
		}
	}
	if acquired != 1 {
		t.Fatalf("expected exactly one winner, got %d", acquired)
	}
}
