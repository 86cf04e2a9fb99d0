package enrich

import (
	"context"
	"sync"
)

// Outcome tags a lookup result variant. Raw untyped payloads never cross
// the enrichment boundary; every result is one of these.
type Outcome string

const (
	// OutcomeFound carries metadata fields, each individually optional.
	OutcomeFound Outcome = "found"
	// OutcomeNotFound means the source answered but had no match.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means the lookup errored (timeout, transport,
	// malformed response) after transport retries.
	OutcomeFailed Outcome = "failed"
)

// Result is the tagged lookup result stored in the cache.
type Result struct {
	Outcome   Outcome
	PosterURL string
	Synopsis  string
	Rating    float64
	HasRating bool
}

// Found reports whether the result carries usable metadata.
func (r Result) Found() bool { return r.Outcome == OutcomeFound }

// Cache is the run-scoped lookup cache. Concurrent callers asking for the
// same key block on a single in-flight remote call and all observe its
// result; completed results (including explicit misses and failures) are
// served without another call for the rest of the run.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]Result
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done   chan struct{}
	result Result
}

// NewCache creates an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]Result),
		inflight: make(map[string]*inflightCall),
	}
}

// Do returns the cached result for key, or runs fn exactly once to produce
// it. At most one fn invocation is in flight per key; callers waiting on
// another caller's invocation honor their own context.
func (c *Cache) Do(ctx context.Context, key string, fn func() Result) (Result, error) {
	c.mu.Lock()
	if result, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return result, nil
	}
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.result, nil
		case <-ctx.Done():
			return Result{Outcome: OutcomeFailed}, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.result = fn()

	c.mu.Lock()
	c.entries[key] = call.result
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.result, nil
}

// Len returns the number of completed entries, for stats and tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
