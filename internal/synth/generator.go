package synth

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/internal/domain/scoring"
	"github.com/okian/odp/pkg/logger"
)

// Generation bounds.
const (
	minOptions = 2
	maxOptions = 26 // one letter label per option
)

// optionLabels produces "A".."Z" labels for n options.
func optionLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	return labels
}

// GenerateQuestions creates synthetic multiple-choice questions. Ground
// truth placement is uniform across positions, except that cfg.Skew extra
// probability mass lands on the first position, which lets tests construct
// datasets with a known position bias.
func GenerateQuestions(ctx context.Context, cfg *Config, stats *Stats) ([]model.Question, error) {
	if cfg.NumOptions < minOptions || cfg.NumOptions > maxOptions {
		return nil, fmt.Errorf("%w: option count %d out of range [%d,%d]", ErrBadConfig, cfg.NumOptions, minOptions, maxOptions)
	}
	if cfg.Skew < 0 || cfg.Skew > 1 {
		return nil, fmt.Errorf("%w: skew %f out of range [0,1]", ErrBadConfig, cfg.Skew)
	}
	logger.Get().Info(ctx, "generating synthetic questions",
		logger.Int("questions", cfg.NumQuestions),
		logger.Int("options", cfg.NumOptions),
		logger.Float64("skew", cfg.Skew))

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic seed for reproducible generation
	labels := optionLabels(cfg.NumOptions)
	questions := make([]model.Question, cfg.NumQuestions)
	for i := range questions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}
		q := model.Question{
			ID:      uuid.NewString(),
			Text:    fmt.Sprintf("synthetic question %d", i),
			Options: make([]model.Option, cfg.NumOptions),
		}
		for j := range q.Options {
			q.Options[j] = model.Option{
				ID:   labels[j],
				Text: fmt.Sprintf("candidate answer %d-%d", i, j),
			}
		}
		gt := rng.Intn(cfg.NumOptions)
		if rng.Float64() < cfg.Skew {
			gt = 0
		}
		q.GroundTruth = labels[gt]
		questions[i] = q
	}
	stats.QuestionsGenerated = len(questions)
	return questions, nil
}

// SimulateResponses collects one answer per question from the configured
// answerer, as if a model had been queried offline.
func SimulateResponses(ctx context.Context, cfg *Config, questions []model.Question, stats *Stats) ([]model.Response, error) {
	answerer, err := NewAnswerer(cfg)
	if err != nil {
		return nil, err
	}
	responses := make([]model.Response, 0, len(questions))
	for i := range questions {
		p := model.Unperturbed(questions[i])
		resp, err := answerer.Answer(ctx, &p)
		if err != nil {
			return nil, fmt.Errorf("simulate response for %q: %w", questions[i].ID, err)
		}
		responses = append(responses, resp)
	}
	stats.ResponsesSimulated = len(responses)
	return responses, nil
}

// NewAnswerer builds the simulated model named by the config.
func NewAnswerer(cfg *Config) (scoring.Answerer, error) {
	switch cfg.Answerer {
	case "", "oracle":
		return scoring.ContentOracle{}, nil
	case "fixed":
		return &scoring.FixedID{ID: cfg.FixedOption}, nil
	case "biased":
		return scoring.NewPositionBiased(0, cfg.Skew, cfg.Seed), nil
	case "uniform":
		return scoring.NewUniform(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown answerer %q", ErrBadConfig, cfg.Answerer)
	}
}
