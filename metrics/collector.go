// Package metrics provides per-invocation request metrics collection.
//
// The Collector accumulates counters while a fetch runs. It is a leaf package
// with no internal dependencies. The API client increments it on every
// request; the fetch pipeline absorbs the final snapshot into the journal
// record and the completion event.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all collected counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Requests is the total number of HTTP requests issued, retries included.
	Requests int64
	// Retries is the number of requests that were re-issued after a
	// transient failure.
	Retries int64
	// RateLimitHits is the number of responses classified as rate limiting.
	RateLimitHits int64
	// BytesFetched is the total size of successful response bodies.
	BytesFetched int64

	// RunID is an informational dimension, set at construction.
	RunID string
}

// Collector accumulates counters during a single invocation.
// Thread-safe via sync.Mutex. All recording methods are nil-receiver safe,
// so callers may thread a nil Collector to disable collection.
type Collector struct {
	mu sync.Mutex

	requests      int64
	retries       int64
	rateLimitHits int64
	bytesFetched  int64

	runID string
}

// NewCollector creates a Collector tagged with the run identifier.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID}
}

// IncRequest records one issued HTTP request.
func (c *Collector) IncRequest() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requests++
	c.mu.Unlock()
}

// IncRetry records a request re-issued after a transient failure.
func (c *Collector) IncRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.retries++
	c.mu.Unlock()
}

// IncRateLimitHit records a response classified as rate limiting.
func (c *Collector) IncRateLimitHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rateLimitHits++
	c.mu.Unlock()
}

// AddBytesFetched records the body size of a successful response.
func (c *Collector) AddBytesFetched(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bytesFetched += n
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all counters.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Requests:      c.requests,
		Retries:       c.retries,
		RateLimitHits: c.rateLimitHits,
		BytesFetched:  c.bytesFetched,
		RunID:         c.runID,
	}
}
