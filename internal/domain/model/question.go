// Package model contains domain models passed between layers.
package model

import "fmt"

// Option is a single answer choice as presented to a model.
// Identity is the ID (the visible label, e.g. "A"); Text carries the
// content and is never used for identity.
type Option struct {
	ID   string
	Text string
}

// Question is a multiple-choice question with an ordered option list.
// GroundTruth is the ID of the correct option.
type Question struct {
	ID          string
	Text        string
	Options     []Option
	GroundTruth string
}

// Response is a model's raw answer to one question. Answer may be empty
// or unparseable; scoring treats such responses as wrong, never skips them.
type Response struct {
	QuestionID string
	Answer     string
}

// PerturbationKind identifies one of the supported transformations.
type PerturbationKind string

// Supported perturbation kinds.
const (
	MoveGroundTruth PerturbationKind = "move_ground_truth"
	ShuffleContents PerturbationKind = "shuffle_contents"
	ShuffleIDs      PerturbationKind = "shuffle_ids"
	RemoveIDs       PerturbationKind = "remove_ids"
)

// Perturbed is a Question transformed by one perturbation. IDMap maps each
// option ID of the transformed question back to the ID the same content had
// in the original, so responses collected after the perturbation can be
// rescored against the true answer. Unlabeled marks questions whose IDs were
// stripped from the presentation; their options are keyed by position.
type Perturbed struct {
	Question
	Kind      PerturbationKind
	IDMap     map[string]string
	Unlabeled bool
}

// Unperturbed wraps a question as a Perturbed with an identity ID mapping,
// so baseline (untransformed) batches flow through the same scoring path.
func Unperturbed(q Question) Perturbed {
	idMap := make(map[string]string, len(q.Options))
	for _, o := range q.Options {
		idMap[o.ID] = o.ID
	}
	return Perturbed{Question: q, IDMap: idMap}
}

// OptionIndex returns the index of the option with the given ID, or -1.
func (q *Question) OptionIndex(id string) int {
	for i, o := range q.Options {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// GroundTruthIndex returns the index of the ground-truth option, or -1.
func (q *Question) GroundTruthIndex() int {
	return q.OptionIndex(q.GroundTruth)
}

// OptionIDs returns the option IDs in presentation order.
func (q *Question) OptionIDs() []string {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	return ids
}

// Clone returns a deep copy; perturbations never mutate their input.
func (q *Question) Clone() Question {
	out := *q
	out.Options = make([]Option, len(q.Options))
	copy(out.Options, q.Options)
	return out
}

// Validate checks the structural invariants of a question: a non-empty
// option list, unique option IDs within the question, and a ground truth
// that names one of the options.
func (q *Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("question %q: %w: empty option list", q.ID, ErrInvalidQuestion)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("question %q: %w: duplicate option id %q", q.ID, ErrInvalidQuestion, o.ID)
		}
		seen[o.ID] = struct{}{}
	}
	if q.GroundTruth == "" {
		return fmt.Errorf("question %q: %w: missing ground truth", q.ID, ErrInvalidQuestion)
	}
	if _, ok := seen[q.GroundTruth]; !ok {
		return fmt.Errorf("question %q: %w: ground truth %q is not an option", q.ID, ErrInvalidQuestion, q.GroundTruth)
	}
	return nil
}
