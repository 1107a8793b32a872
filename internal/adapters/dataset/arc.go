package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/pkg/metrics"
)

// arcRecord mirrors one line of an ARC JSONL file.
type arcRecord struct {
	ID       string `json:"id"`
	Question struct {
		Stem    string `json:"stem"`
		Choices []struct {
			Text  string `json:"text"`
			Label string `json:"label"`
		} `json:"choices"`
	} `json:"question"`
	AnswerKey string `json:"answerKey"`
}

// ARCLoader reads ARC-style JSONL files. Choices are sorted by label so the
// presentation order is deterministic regardless of file order.
type ARCLoader struct {
	cfg *loaderConfig
}

// NewARCLoader creates an ARC JSONL loader with configuration options.
func NewARCLoader(opts ...Option) *ARCLoader {
	return &ARCLoader{cfg: newLoaderConfig(opts...)}
}

// Load implements Loader.
func (l *ARCLoader) Load(ctx context.Context, path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	batch := &Batch{Skipped: &SkipReport{}}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load cancelled: %w", err)
		}
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec arcRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			batch.Skipped.Add(line, "", ReasonMalformed, err)
			metrics.RecordRecordSkipped(ReasonMalformed)
			continue
		}
		q, err := arcQuestion(&rec)
		if err != nil {
			batch.Skipped.Add(line, rec.ID, ReasonValidation, err)
			metrics.RecordRecordSkipped(ReasonValidation)
			continue
		}
		if l.cfg.deduper.SeenAndRecord(ctx, q.ID) {
			batch.Skipped.Add(line, q.ID, ReasonDuplicate, fmt.Errorf("question id %q already loaded", q.ID))
			metrics.RecordRecordSkipped(ReasonDuplicate)
			continue
		}
		batch.Questions = append(batch.Questions, q)
		metrics.RecordQuestionLoaded()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	batch.Questions = l.cfg.sample(batch.Questions)
	return batch, nil
}

func arcQuestion(rec *arcRecord) (model.Question, error) {
	if rec.ID == "" {
		return model.Question{}, fmt.Errorf("%w: missing record id", model.ErrInvalidQuestion)
	}
	q := model.Question{
		ID:          rec.ID,
		Text:        rec.Question.Stem,
		Options:     make([]model.Option, 0, len(rec.Question.Choices)),
		GroundTruth: rec.AnswerKey,
	}
	for _, c := range rec.Question.Choices {
		q.Options = append(q.Options, model.Option{ID: c.Label, Text: c.Text})
	}
	sort.Slice(q.Options, func(i, j int) bool { return q.Options[i].ID < q.Options[j].ID })
	if err := q.Validate(); err != nil {
		return model.Question{}, err
	}
	return q, nil
}
