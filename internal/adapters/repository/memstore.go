package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is the in-memory Store implementation.
type MemStore struct {
	mu      sync.RWMutex
	results map[string]Result
	now     func() time.Time
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithClock overrides the timestamp source; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemStore creates an empty in-memory result store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		results: make(map[string]Result),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put implements Store.
func (s *MemStore) Put(_ context.Context, r Result) error {
	if r.Experiment == "" || r.Metric == "" {
		return fmt.Errorf("%w: experiment=%q metric=%q", ErrInvalidKey, r.Experiment, r.Metric)
	}
	r.ComputedAt = s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Key()] = r
	return nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, experiment, metric string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[experiment+"/"+metric]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s/%s", ErrNotFound, experiment, metric)
	}
	return r, nil
}

// Snapshot implements Store.
func (s *MemStore) Snapshot(_ context.Context) []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Result, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Count implements Store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
