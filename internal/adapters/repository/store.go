// Package repository defines the experiment result store interface and errors.
package repository

import (
	"context"
	"time"
)

// Result is one named metric result produced during a run. Value holds the
// concrete result struct from the measure package.
type Result struct {
	Experiment string
	Metric     string
	Value      any
	ComputedAt time.Time
}

// Key returns the qualified result name, "experiment/metric".
func (r Result) Key() string {
	return r.Experiment + "/" + r.Metric
}

// Store accumulates results during a run and hands the report renderer a
// stable snapshot. Everything is in-memory; results live no longer than the
// run that produced them.
type Store interface {
	// Put stores a result, replacing any previous result with the same key.
	Put(ctx context.Context, r Result) error

	// Get returns the result with the given experiment and metric name.
	// Returns ErrNotFound when absent.
	Get(ctx context.Context, experiment, metric string) (Result, error)

	// Snapshot returns all results ordered by key.
	Snapshot(ctx context.Context) []Result

	// Count returns the number of stored results.
	Count(ctx context.Context) int
}
