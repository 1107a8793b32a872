package scoring

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/okian/odp/internal/domain/model"
)

// Default answerer configuration constants.
const (
	defaultBiasStrength = 1.0
	defaultRandomSeed   = 42
)

// Answerer produces a raw answer for a presented question. Implementations
// stand in for a live model: the toolkit never talks to an LLM provider, it
// scores responses that were either collected offline or simulated here.
type Answerer interface {
	// Answer returns the raw answer text for q, honoring ctx for cancellation.
	Answer(ctx context.Context, q *model.Perturbed) (model.Response, error)
}

// RenderPrompt formats a question the way it would be shown to a model:
// the question text followed by one option per line, "ID. text" for labeled
// questions and bare text for unlabeled ones. Answerers that pick by content
// see exactly this presentation.
func RenderPrompt(q *model.Perturbed) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(q.Text)
	b.WriteString("\nOptions:\n")
	for _, o := range q.Options {
		if q.Unlabeled {
			b.WriteString(o.Text)
		} else {
			b.WriteString(o.ID)
			b.WriteString(". ")
			b.WriteString(o.Text)
		}
		b.WriteByte('\n')
	}
	b.WriteString("Answer:")
	return b.String()
}

// FixedID always answers with the same option ID; for unlabeled questions it
// answers with the text of the option at its preferred position. This is the
// canonical "always A" model used to demonstrate strong order dependency.
type FixedID struct {
	ID       string
	Position int // used when the question is unlabeled
}

// Answer implements Answerer.
func (f *FixedID) Answer(ctx context.Context, q *model.Perturbed) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, fmt.Errorf("answer cancelled: %w", err)
	}
	if q.Unlabeled {
		pos := f.Position
		if pos < 0 || pos >= len(q.Options) {
			pos = 0
		}
		return model.Response{QuestionID: q.ID, Answer: q.Options[pos].Text}, nil
	}
	return model.Response{QuestionID: q.ID, Answer: f.ID}, nil
}

// ContentOracle always answers with the ground-truth option, citing its ID
// for labeled questions and its text otherwise. Its decisions depend only on
// content, so every order-dependency metric must read zero against it.
type ContentOracle struct{}

// Answer implements Answerer.
func (ContentOracle) Answer(ctx context.Context, q *model.Perturbed) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, fmt.Errorf("answer cancelled: %w", err)
	}
	gi := q.GroundTruthIndex()
	if gi < 0 {
		return model.Response{}, fmt.Errorf("question %q: %w", q.ID, model.ErrInvalidQuestion)
	}
	if q.Unlabeled {
		return model.Response{QuestionID: q.ID, Answer: q.Options[gi].Text}, nil
	}
	return model.Response{QuestionID: q.ID, Answer: q.GroundTruth}, nil
}

// PositionBiased answers the option at a fixed position with probability
// Bias and the correct option otherwise. It models a partially
// order-dependent model between the FixedID and ContentOracle extremes.
type PositionBiased struct {
	Position int
	Bias     float64
	rng      *rand.Rand
}

// NewPositionBiased creates a position-biased answerer with a deterministic
// seed. A bias of 1 collapses to FixedID behavior, 0 to the oracle.
func NewPositionBiased(position int, bias float64, seed int64) *PositionBiased {
	if bias < 0 || bias > defaultBiasStrength {
		bias = defaultBiasStrength
	}
	return &PositionBiased{
		Position: position,
		Bias:     bias,
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic seed for reproducible experiments
	}
}

// Answer implements Answerer.
func (p *PositionBiased) Answer(ctx context.Context, q *model.Perturbed) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, fmt.Errorf("answer cancelled: %w", err)
	}
	if p.rng.Float64() < p.Bias {
		pos := p.Position
		if pos < 0 || pos >= len(q.Options) {
			pos = 0
		}
		o := q.Options[pos]
		if q.Unlabeled {
			return model.Response{QuestionID: q.ID, Answer: o.Text}, nil
		}
		return model.Response{QuestionID: q.ID, Answer: o.ID}, nil
	}
	return ContentOracle{}.Answer(ctx, q)
}

// Uniform picks an option uniformly at random with a deterministic seed.
type Uniform struct {
	rng *rand.Rand
}

// NewUniform creates a uniform random answerer.
func NewUniform(seed int64) *Uniform {
	return &Uniform{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic seed for reproducible experiments
	}
}

// Answer implements Answerer.
func (u *Uniform) Answer(ctx context.Context, q *model.Perturbed) (model.Response, error) {
	if err := ctx.Err(); err != nil {
		return model.Response{}, fmt.Errorf("answer cancelled: %w", err)
	}
	o := q.Options[u.rng.Intn(len(q.Options))]
	if q.Unlabeled {
		return model.Response{QuestionID: q.ID, Answer: o.Text}, nil
	}
	return model.Response{QuestionID: q.ID, Answer: o.ID}, nil
}
