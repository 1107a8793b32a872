// Package perturb implements the option-order perturbations used to probe
// order dependency: moving the ground truth to a fixed position, shuffling
// option contents, shuffling option IDs, and removing option IDs.
//
// All operations are pure with respect to their input question and are
// deterministic for a given seed: an Engine carries its own rand.Rand and
// never touches global random state.
package perturb

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"github.com/okian/odp/internal/domain/model"
)

// Default engine configuration constants.
const (
	defaultSeed = 42
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeed sets the random seed used by the shuffling perturbations.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible experiments
	}
}

// Engine applies perturbations to questions.
type Engine struct {
	rng *rand.Rand
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		rng: rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic seed for reproducible experiments
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply dispatches to the named perturbation. targetID is only consulted for
// MoveGroundTruth and must be empty otherwise.
func (e *Engine) Apply(q model.Question, kind model.PerturbationKind, targetID string) (model.Perturbed, error) {
	switch kind {
	case model.MoveGroundTruth:
		return e.MoveGroundTruth(q, targetID)
	case model.ShuffleContents:
		return e.ShuffleContents(q)
	case model.ShuffleIDs:
		return e.ShuffleIDs(q)
	case model.RemoveIDs:
		return e.RemoveIDs(q)
	default:
		return model.Perturbed{}, fmt.Errorf("%w: unknown perturbation %q", ErrInvalidParameter, kind)
	}
}

// MoveGroundTruth relabels the question so the correct answer sits at
// targetID: the texts of the ground-truth option and the target option are
// swapped while IDs stay in place. The transformed question's ground truth
// always equals targetID.
func (e *Engine) MoveGroundTruth(q model.Question, targetID string) (model.Perturbed, error) {
	if err := q.Validate(); err != nil {
		return model.Perturbed{}, err
	}
	ti := q.OptionIndex(targetID)
	if ti < 0 {
		return model.Perturbed{}, fmt.Errorf("%w: target %q is not an option of question %q", ErrInvalidParameter, targetID, q.ID)
	}
	gi := q.GroundTruthIndex()

	out := q.Clone()
	idMap := identityMap(&q)
	if gi != ti {
		out.Options[gi].Text, out.Options[ti].Text = out.Options[ti].Text, out.Options[gi].Text
		// Content moved between the two slots, so those two IDs trade
		// their original identities.
		idMap[out.Options[ti].ID] = q.Options[gi].ID
		idMap[out.Options[gi].ID] = q.Options[ti].ID
	}
	out.GroundTruth = targetID

	return model.Perturbed{
		Question: out,
		Kind:     model.MoveGroundTruth,
		IDMap:    idMap,
	}, nil
}

// ShuffleContents permutes option texts over fixed IDs. The ground-truth ID
// updates to track wherever the correct content moved.
func (e *Engine) ShuffleContents(q model.Question) (model.Perturbed, error) {
	if err := q.Validate(); err != nil {
		return model.Perturbed{}, err
	}
	perm := e.rng.Perm(len(q.Options))

	out := q.Clone()
	idMap := make(map[string]string, len(q.Options))
	for newIdx, oldIdx := range perm {
		out.Options[newIdx].Text = q.Options[oldIdx].Text
		idMap[out.Options[newIdx].ID] = q.Options[oldIdx].ID
		if q.Options[oldIdx].ID == q.GroundTruth {
			out.GroundTruth = out.Options[newIdx].ID
		}
	}

	return model.Perturbed{
		Question: out,
		Kind:     model.ShuffleContents,
		IDMap:    idMap,
	}, nil
}

// ShuffleIDs permutes option IDs while contents stay in their original
// order. The ground truth keeps its content and therefore changes ID.
func (e *Engine) ShuffleIDs(q model.Question) (model.Perturbed, error) {
	if err := q.Validate(); err != nil {
		return model.Perturbed{}, err
	}
	ids := q.OptionIDs()
	sort.Strings(ids)
	e.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	out := q.Clone()
	idMap := make(map[string]string, len(q.Options))
	for i := range out.Options {
		out.Options[i].ID = ids[i]
		idMap[ids[i]] = q.Options[i].ID
		if q.Options[i].ID == q.GroundTruth {
			out.GroundTruth = ids[i]
		}
	}

	return model.Perturbed{
		Question: out,
		Kind:     model.ShuffleIDs,
		IDMap:    idMap,
	}, nil
}

// RemoveIDs strips visible IDs from the options. The transformed question
// keys options by position ("0", "1", ...) so the ground truth stays
// trackable for scoring even though the model can no longer cite a label.
func (e *Engine) RemoveIDs(q model.Question) (model.Perturbed, error) {
	if err := q.Validate(); err != nil {
		return model.Perturbed{}, err
	}
	out := q.Clone()
	idMap := make(map[string]string, len(q.Options))
	for i := range out.Options {
		pos := strconv.Itoa(i)
		idMap[pos] = q.Options[i].ID
		if q.Options[i].ID == q.GroundTruth {
			out.GroundTruth = pos
		}
		out.Options[i].ID = pos
	}

	return model.Perturbed{
		Question:  out,
		Kind:      model.RemoveIDs,
		IDMap:     idMap,
		Unlabeled: true,
	}, nil
}

// ApplyAll applies the same perturbation to every question, preserving
// input order. It fails fast on the first error; validation of individual
// records belongs to the loader, not here.
func (e *Engine) ApplyAll(questions []model.Question, kind model.PerturbationKind, targetID string) ([]model.Perturbed, error) {
	out := make([]model.Perturbed, 0, len(questions))
	for i := range questions {
		p, err := e.Apply(questions[i], kind, targetID)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func identityMap(q *model.Question) map[string]string {
	m := make(map[string]string, len(q.Options))
	for _, o := range q.Options {
		m[o.ID] = o.ID
	}
	return m
}
