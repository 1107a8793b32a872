// Package measure computes the order-dependency metrics over a batch of
// (question, response) pairs: ground-truth answer prevalence, accuracy and
// its fluctuation under the answer-moving attack, and the standard deviation
// of recall balance across ground-truth positions.
//
// Every metric treats a missing or unmatched response as a wrong answer.
// Dropping such responses would inflate accuracy and recall, so they are
// always counted against the model.
package measure

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/internal/domain/scoring"
)

// ResponseSet indexes responses by question ID. Questions absent from the
// set are scored as unanswered (wrong).
type ResponseSet map[string]model.Response

// NewResponseSet builds a ResponseSet from a response slice. Later entries
// for the same question ID win.
func NewResponseSet(responses []model.Response) ResponseSet {
	set := make(ResponseSet, len(responses))
	for _, r := range responses {
		set[r.QuestionID] = r
	}
	return set
}

// PrevalenceResult holds the fraction of questions whose ground truth sits
// at each option ID, plus the raw counts it was derived from.
type PrevalenceResult struct {
	PerID  map[string]float64
	Counts map[string]int
	Total  int
}

// Prevalence tabulates where the ground truth sits across the batch. It is a
// property of the dataset alone and flags inherent position bias before any
// model is involved. The fractions sum to 1 for any non-empty batch.
func Prevalence(questions []model.Question) (PrevalenceResult, error) {
	if len(questions) == 0 {
		return PrevalenceResult{}, fmt.Errorf("%w: empty question batch", ErrEmptyBatch)
	}
	counts := make(map[string]int)
	for i := range questions {
		counts[questions[i].GroundTruth]++
	}
	perID := make(map[string]float64, len(counts))
	for id, n := range counts {
		perID[id] = float64(n) / float64(len(questions))
	}
	return PrevalenceResult{PerID: perID, Counts: counts, Total: len(questions)}, nil
}

// ChoicePrevalenceResult holds the fraction of responses that selected each
// option ID. Unmatched responses are tallied separately so the fractions
// still account for the whole batch.
type ChoicePrevalenceResult struct {
	PerID     map[string]float64
	Counts    map[string]int
	Unmatched int
	Total     int
}

// ChoicePrevalence tabulates which option the model selected across the
// batch, resolving each raw answer with the scoring rules. Unlike
// Prevalence it measures the model, not the dataset.
func ChoicePrevalence(questions []model.Perturbed, responses ResponseSet) (ChoicePrevalenceResult, error) {
	if len(questions) == 0 {
		return ChoicePrevalenceResult{}, fmt.Errorf("%w: empty question batch", ErrEmptyBatch)
	}
	counts := make(map[string]int)
	unmatched := 0
	for i := range questions {
		r, ok := responses[questions[i].ID]
		if !ok {
			unmatched++
			continue
		}
		m := scoring.MatchAnswer(&questions[i], r.Answer)
		if !m.OK {
			unmatched++
			continue
		}
		counts[m.OptionID]++
	}
	perID := make(map[string]float64, len(counts))
	for id, n := range counts {
		perID[id] = float64(n) / float64(len(questions))
	}
	return ChoicePrevalenceResult{
		PerID:     perID,
		Counts:    counts,
		Unmatched: unmatched,
		Total:     len(questions),
	}, nil
}

// AccuracyResult holds the fraction of questions answered correctly.
type AccuracyResult struct {
	Value   float64
	Correct int
	Total   int
}

// Accuracy scores the batch against its (possibly perturbed) ground truths.
func Accuracy(questions []model.Perturbed, responses ResponseSet) (AccuracyResult, error) {
	if len(questions) == 0 {
		return AccuracyResult{}, fmt.Errorf("%w: empty question batch", ErrEmptyBatch)
	}
	correct := 0
	for i := range questions {
		if r, ok := responses[questions[i].ID]; ok && scoring.IsCorrect(&questions[i], r.Answer) {
			correct++
		}
	}
	return AccuracyResult{
		Value:   float64(correct) / float64(len(questions)),
		Correct: correct,
		Total:   len(questions),
	}, nil
}

// FluctuationResult summarizes accuracy across answer-moving attack targets.
// Spread (max−min) is the headline number: the larger it is, the more the
// model's accuracy depends on where the ground truth was placed.
type FluctuationResult struct {
	PerTarget map[string]float64
	Min       float64
	Max       float64
	Spread    float64
	Variance  float64
}

// Fluctuation derives the spread statistics from per-target accuracies
// produced by repeated answer-moving attacks.
func Fluctuation(perTarget map[string]float64) (FluctuationResult, error) {
	if len(perTarget) == 0 {
		return FluctuationResult{}, fmt.Errorf("%w: no attack targets", ErrEmptyBatch)
	}
	res := FluctuationResult{
		PerTarget: make(map[string]float64, len(perTarget)),
		Min:       math.Inf(1),
		Max:       math.Inf(-1),
	}
	mean := 0.0
	for id, acc := range perTarget {
		res.PerTarget[id] = acc
		res.Min = math.Min(res.Min, acc)
		res.Max = math.Max(res.Max, acc)
		mean += acc
	}
	mean /= float64(len(perTarget))
	for _, acc := range perTarget {
		d := acc - mean
		res.Variance += d * d
	}
	res.Variance /= float64(len(perTarget))
	res.Spread = res.Max - res.Min
	return res, nil
}

// RecallBalanceResult holds per-position recall and its population standard
// deviation. Positions that never carry the ground truth have no defined
// recall; they are reported in Undefined instead of being silently dropped,
// and Std is only meaningful when Defined is true.
type RecallBalanceResult struct {
	Recalls   map[string]float64
	Correct   map[string]int
	Totals    map[string]int
	Undefined []string
	Std       float64
	Defined   bool
}

// Err surfaces the insufficient-data condition carried by the result, or nil
// when recall was defined at every position.
func (r *RecallBalanceResult) Err() error {
	if r.Defined {
		return nil
	}
	return fmt.Errorf("%w: no ground-truth occurrences at positions %v", ErrInsufficientData, r.Undefined)
}

// RecallBalance computes recall per ground-truth position over the batch.
// The position universe is the union of option IDs across all questions, so
// a position with zero ground-truth occurrences is detected rather than
// never visited.
func RecallBalance(questions []model.Perturbed, responses ResponseSet) (RecallBalanceResult, error) {
	if len(questions) == 0 {
		return RecallBalanceResult{}, fmt.Errorf("%w: empty question batch", ErrEmptyBatch)
	}

	totals := make(map[string]int)
	correct := make(map[string]int)
	for i := range questions {
		for _, id := range questions[i].OptionIDs() {
			if _, ok := totals[id]; !ok {
				totals[id] = 0
			}
		}
		gt := questions[i].GroundTruth
		totals[gt]++
		if r, ok := responses[questions[i].ID]; ok && scoring.IsCorrect(&questions[i], r.Answer) {
			correct[gt]++
		}
	}

	res := RecallBalanceResult{
		Recalls: make(map[string]float64, len(totals)),
		Correct: correct,
		Totals:  totals,
	}
	for id, n := range totals {
		if n == 0 {
			res.Undefined = append(res.Undefined, id)
			continue
		}
		res.Recalls[id] = float64(correct[id]) / float64(n)
	}
	sort.Strings(res.Undefined)
	res.Defined = len(res.Undefined) == 0
	if res.Defined {
		res.Std = populationStd(res.Recalls)
	}
	return res, nil
}

func populationStd(values map[string]float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
