package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/pkg/metrics"
)

// MMLU CSV column layout: question, option A..D, answer label. No header.
const mmluFieldCount = 6

var mmluLabels = []string{"A", "B", "C", "D"}

// MMLULoader reads MMLU-style CSV files. Rows have no stable identifier of
// their own, so each question gets a fresh UUID.
type MMLULoader struct {
	cfg *loaderConfig
}

// NewMMLULoader creates an MMLU CSV loader with configuration options.
func NewMMLULoader(opts ...Option) *MMLULoader {
	return &MMLULoader{cfg: newLoaderConfig(opts...)}
}

// Load implements Loader.
func (l *MMLULoader) Load(ctx context.Context, path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row width is validated per record below

	batch := &Batch{Skipped: &SkipReport{}}
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load cancelled: %w", err)
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			batch.Skipped.Add(line, "", ReasonMalformed, err)
			metrics.RecordRecordSkipped(ReasonMalformed)
			continue
		}
		q, err := mmluQuestion(rec)
		if err != nil {
			batch.Skipped.Add(line, "", ReasonValidation, err)
			metrics.RecordRecordSkipped(ReasonValidation)
			continue
		}
		batch.Questions = append(batch.Questions, q)
		metrics.RecordQuestionLoaded()
	}

	batch.Questions = l.cfg.sample(batch.Questions)
	return batch, nil
}

func mmluQuestion(rec []string) (model.Question, error) {
	if len(rec) != mmluFieldCount {
		return model.Question{}, fmt.Errorf("%w: expected %d fields, got %d", model.ErrInvalidQuestion, mmluFieldCount, len(rec))
	}
	q := model.Question{
		ID:          uuid.NewString(),
		Text:        rec[0],
		Options:     make([]model.Option, len(mmluLabels)),
		GroundTruth: rec[mmluFieldCount-1],
	}
	for i, label := range mmluLabels {
		q.Options[i] = model.Option{ID: label, Text: rec[i+1]}
	}
	if err := q.Validate(); err != nil {
		return model.Question{}, err
	}
	return q, nil
}
