package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestCacheDoRunsFunctionOnce(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int64

	fn := func() Result {
		calls.Add(1)
		return Result{Outcome: OutcomeFound, Synopsis: "once"}
	}

	for range 3 {
		result, err := cache.Do(context.Background(), "movie|title|2026", fn)
		if err != nil {
			t.Fatalf("Do returned error: %v", err)
		}
		if result.Synopsis != "once" {
			t.Fatalf("unexpected result: %+v", result)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one invocation, got %d", calls.Load())
	}
}

func TestCacheCollapsesConcurrentCallers(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int64
	release := make(chan struct{})

	fn := func() Result {
		calls.Add(1)
		<-release
		return Result{Outcome: OutcomeFound, Synopsis: "shared"}
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Result, callers)
	started := make(chan struct{}, callers)
	for i := range callers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			started <- struct{}{}
			r, err := cache.Do(context.Background(), "key", fn)
			if err != nil {
				t.Errorf("Do returned error: %v", err)
			}
			results[idx] = r
		}(i)
	}
	for range callers {
		<-started
	}
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("expected one in-flight call per key, got %d", calls.Load())
	}
	for i, r := range results {
		if r.Synopsis != "shared" {
			t.Fatalf("caller %d observed %+v", i, r)
		}
	}
}

func TestCacheStoresExplicitMisses(t *testing.T) {
	cache := NewCache()
	var calls atomic.Int64

	fn := func() Result {
		calls.Add(1)
		return Result{Outcome: OutcomeNotFound}
	}

	for range 2 {
		result, err := cache.Do(context.Background(), "missing", fn)
		if err != nil {
			t.Fatalf("Do returned error: %v", err)
		}
		if result.Outcome != OutcomeNotFound {
			t.Fatalf("unexpected outcome: %v", result.Outcome)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("miss must be cached, got %d calls", calls.Load())
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestCacheWaiterHonorsContext(t *testing.T) {
	cache := NewCache()
	release := make(chan struct{})
	defer close(release)

	running := make(chan struct{})
	go func() {
		_, _ = cache.Do(context.Background(), "slow", func() Result {
			close(running)
			<-release
			return Result{Outcome: OutcomeFound}
		})
	}()
	<-running

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.Do(ctx, "slow", func() Result {
		t.Error("second caller must not invoke fn")
		return Result{}
	})
	if err == nil {
		t.Fatal("expected context error for cancelled waiter")
	}
}
