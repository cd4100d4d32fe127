package cache

import (
	"context"
	"testing"
)

func TestDeferredWaitsForFlush(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()
	if err := mr.Set("question:quiz:3", "[]"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	deferred := NewDeferred()
	deferred.Run(ctx, func(ctx context.Context) {
		SafeDelete(ctx, cm.Question, "quiz:3")
	})

	if !mr.Exists("question:quiz:3") {
		t.Fatal("entry removed before flush")
	}
	if deferred.Len() != 1 {
		t.Fatalf("pending = %d, want 1", deferred.Len())
	}

	deferred.Flush(ctx)
	if mr.Exists("question:quiz:3") {
		t.Fatal("entry survived flush")
	}
	if deferred.Len() != 0 {
		t.Fatalf("pending after flush = %d", deferred.Len())
	}
}

func TestDeferredDiscard(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()
	if err := mr.Set("quiz:id:5", "{}"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	deferred := NewDeferred()
	deferred.Run(ctx, func(ctx context.Context) {
		SafeDelete(ctx, cm.Quiz, "id:5")
	})
	deferred.Discard()
	deferred.Flush(ctx)

	if !mr.Exists("quiz:id:5") {
		t.Fatal("discarded invalidation still ran")
	}
}

func TestNilDeferredRunsImmediately(t *testing.T) {
	var deferred *Deferred
	ran := false

	deferred.Run(context.Background(), func(context.Context) { ran = true })
	if !ran {
		t.Fatal("nil Deferred did not run the invalidation")
	}
	deferred.Flush(context.Background())
	deferred.Discard()
	if deferred.Len() != 0 {
		t.Fatal("nil Deferred reports pending work")
	}
}
