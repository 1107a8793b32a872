package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/pkg/metrics"
)

// record mirrors one line of the combined question+response JSONL format.
type record struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	Options      []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"options"`
	GroundTruthID string `json:"ground_truth_id"`
	ModelResponse string `json:"model_response"`
}

// RecordsLoader reads the combined JSONL format where each line carries a
// question together with the model response collected for it. This is the
// main input for scoring responses gathered offline.
type RecordsLoader struct {
	cfg *loaderConfig
}

// NewRecordsLoader creates a combined-records loader with configuration options.
func NewRecordsLoader(opts ...Option) *RecordsLoader {
	return &RecordsLoader{cfg: newLoaderConfig(opts...)}
}

// Load implements Loader.
func (l *RecordsLoader) Load(ctx context.Context, path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	batch := &Batch{Skipped: &SkipReport{}}
	responses := make(map[string]model.Response)
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
		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			batch.Skipped.Add(line, "", ReasonMalformed, err)
			metrics.RecordRecordSkipped(ReasonMalformed)
			continue
		}
		q, err := recordQuestion(&rec)
		if err != nil {
			batch.Skipped.Add(line, rec.QuestionID, ReasonValidation, err)
			metrics.RecordRecordSkipped(ReasonValidation)
			continue
		}
		if l.cfg.deduper.SeenAndRecord(ctx, q.ID) {
			batch.Skipped.Add(line, q.ID, ReasonDuplicate, fmt.Errorf("question id %q already loaded", q.ID))
			metrics.RecordRecordSkipped(ReasonDuplicate)
			continue
		}
		batch.Questions = append(batch.Questions, q)
		// An empty model_response stays absent from the response set;
		// scoring counts the question as unanswered (wrong) either way.
		if rec.ModelResponse != "" {
			responses[q.ID] = model.Response{QuestionID: q.ID, Answer: rec.ModelResponse}
		}
		metrics.RecordQuestionLoaded()
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	batch.Questions = l.cfg.sample(batch.Questions)
	for i := range batch.Questions {
		if r, ok := responses[batch.Questions[i].ID]; ok {
			batch.Responses = append(batch.Responses, r)
		}
	}
	return batch, nil
}

func recordQuestion(rec *record) (model.Question, error) {
	if rec.QuestionID == "" {
		return model.Question{}, fmt.Errorf("%w: missing question_id", model.ErrInvalidQuestion)
	}
	q := model.Question{
		ID:          rec.QuestionID,
		Text:        rec.QuestionText,
		Options:     make([]model.Option, 0, len(rec.Options)),
		GroundTruth: rec.GroundTruthID,
	}
	for _, o := range rec.Options {
		q.Options = append(q.Options, model.Option{ID: o.ID, Text: o.Text})
	}
	if err := q.Validate(); err != nil {
		return model.Question{}, err
	}
	return q, nil
}
