// Package dataset loads multiple-choice question datasets and previously
// collected model responses into memory.
//
// Loaders materialize the whole file and release the handle before
// returning. A malformed record never aborts the batch: it is skipped and
// recorded in the SkipReport so the caller can account for every input row.
package dataset

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/odp/internal/domain/dedupe"
	"github.com/okian/odp/internal/domain/model"
)

// Supported dataset formats.
const (
	FormatMMLU    = "mmlu"
	FormatARC     = "arc"
	FormatRecords = "records"
)

// Batch is the result of loading one dataset file.
type Batch struct {
	Questions []model.Question
	// Responses is only populated by formats that carry model output
	// alongside the questions (the records format).
	Responses []model.Response
	Skipped   *SkipReport
}

// Loader reads a dataset file into a Batch. Implementations are restartable:
// calling Load again re-reads the file from scratch.
type Loader interface {
	Load(ctx context.Context, path string) (*Batch, error)
}

// Option applies a configuration option to a loader.
type Option func(*loaderConfig)

type loaderConfig struct {
	sampleSize int
	seed       int64
	deduper    dedupe.Deduper
}

// Default loader configuration constants.
const (
	defaultSeed = 42
)

// WithSampleSize limits the load to n questions, sampled without
// replacement. Zero or negative loads everything.
func WithSampleSize(n int) Option {
	return func(c *loaderConfig) {
		c.sampleSize = n
	}
}

// WithSeed sets the seed used for sampling.
func WithSeed(seed int64) Option {
	return func(c *loaderConfig) {
		c.seed = seed
	}
}

// WithDeduper sets the duplicate-ID tracker. Loaders drop records whose
// question ID was already seen and report them as skipped.
func WithDeduper(d dedupe.Deduper) Option {
	return func(c *loaderConfig) {
		if d != nil {
			c.deduper = d
		}
	}
}

func newLoaderConfig(opts ...Option) *loaderConfig {
	c := &loaderConfig{
		seed:    defaultSeed,
		deduper: dedupe.NewInMemoryDeduper(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sample keeps n questions chosen without replacement, preserving the file
// order of the survivors. Deterministic for a given seed.
func (c *loaderConfig) sample(questions []model.Question) []model.Question {
	if c.sampleSize <= 0 || c.sampleSize >= len(questions) {
		return questions
	}
	rng := rand.New(rand.NewSource(c.seed)) //nolint:gosec // deterministic seed for reproducible sampling
	keep := make(map[int]struct{}, c.sampleSize)
	for _, idx := range rng.Perm(len(questions))[:c.sampleSize] {
		keep[idx] = struct{}{}
	}
	out := make([]model.Question, 0, c.sampleSize)
	for i := range questions {
		if _, ok := keep[i]; ok {
			out = append(out, questions[i])
		}
	}
	return out
}

// ForFormat returns the loader for a named format.
func ForFormat(format string, opts ...Option) (Loader, error) {
	switch format {
	case FormatMMLU:
		return NewMMLULoader(opts...), nil
	case FormatARC:
		return NewARCLoader(opts...), nil
	case FormatRecords:
		return NewRecordsLoader(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
