package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/pkg/logger"
)

// File permission constants.
const (
	outputFilePermission = 0600
)

// Run generates a synthetic dataset, simulates model responses, verifies the
// result against the toolkit's invariants, and writes a records-format JSONL
// file that cmd/odp can consume directly.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}

	if cfg.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}

	logger.Get().Info(ctx, "starting synthetic dataset generation",
		logger.Int("questions", cfg.NumQuestions),
		logger.Int("options", cfg.NumOptions),
		logger.Float64("skew", cfg.Skew),
		logger.String("answerer", cfg.Answerer),
		logger.Any("seed", cfg.Seed))

	questions, err := GenerateQuestions(ctx, cfg, stats)
	if err != nil {
		return fmt.Errorf("question generation failed: %w", err)
	}

	responses, err := SimulateResponses(ctx, cfg, questions, stats)
	if err != nil {
		return fmt.Errorf("response simulation failed: %w", err)
	}

	if err := VerifyDataset(ctx, cfg, questions, stats); err != nil {
		return fmt.Errorf("dataset verification failed: %w", err)
	}

	if err := saveRecords(ctx, cfg, questions, responses); err != nil {
		return fmt.Errorf("saving records failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return nil
}

// outputRecord mirrors the records-format JSONL line consumed by the
// dataset package.
type outputRecord struct {
	QuestionID   string         `json:"question_id"`
	QuestionText string         `json:"question_text"`
	Options      []outputOption `json:"options"`
	GroundTruth  string         `json:"ground_truth_id"`
	Response     string         `json:"model_response"`
}

type outputOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func saveRecords(ctx context.Context, cfg *Config, questions []model.Question, responses []model.Response) error {
	path := cfg.OutputFile
	if path == "" {
		path = "synthetic_records_" + time.Now().Format("20060102_150405") + ".jsonl"
	}

	byQuestion := make(map[string]string, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r.Answer
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermission)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // flushed via Encode, close error is secondary

	enc := json.NewEncoder(f)
	for i := range questions {
		rec := outputRecord{
			QuestionID:   questions[i].ID,
			QuestionText: questions[i].Text,
			Options:      make([]outputOption, len(questions[i].Options)),
			GroundTruth:  questions[i].GroundTruth,
			Response:     byQuestion[questions[i].ID],
		}
		for j, o := range questions[i].Options {
			rec.Options[j] = outputOption{ID: o.ID, Text: o.Text}
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	logger.Get().Info(ctx, "records written", logger.String("path", path), logger.Int("records", len(questions)))
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "generation complete",
		logger.Int("questions", stats.QuestionsGenerated),
		logger.Int("responses", stats.ResponsesSimulated),
		logger.Int("checks", stats.ChecksRun),
		logger.String("duration", stats.Duration.String()))
}
