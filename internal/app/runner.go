// Package service orchestrates ODP analysis runs: it wires loaded questions
// and responses through perturbations, simulated answerers, and the metric
// calculators, and accumulates named results in the result store.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/odp/internal/adapters/repository"
	"github.com/okian/odp/internal/domain/measure"
	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/internal/domain/perturb"
	"github.com/okian/odp/internal/domain/scoring"
	"github.com/okian/odp/pkg/logger"
	"github.com/okian/odp/pkg/metrics"
)

// Experiment names accepted by Run.
const (
	ExperimentBaseline        = "baseline"
	ExperimentMovingAttack    = "moving_attack"
	ExperimentShuffleContents = "shuffle_contents"
	ExperimentShuffleIDs      = "shuffle_ids"
	ExperimentRemoveIDs       = "remove_ids"
)

// Metric names used as result store keys.
const (
	MetricPrevalence       = "prevalence"
	MetricChoicePrevalence = "choice_prevalence"
	MetricAccuracy         = "accuracy"
	MetricFluctuation      = "accuracy_fluctuation"
	MetricRecallBalance    = "recall_balance_std"
)

// Default runner configuration constants.
const (
	defaultSeed = 42
)

// Runner executes experiments over one loaded dataset.
type Runner struct {
	store    repository.Store
	engine   *perturb.Engine
	answerer scoring.Answerer
	targets  []string
	seed     int64
	logger   logger.Logger
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets a custom logger for the runner.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSeed sets the seed for the perturbation engine; one seed drives the
// whole run so experiments reproduce exactly.
func WithSeed(seed int64) Option {
	return func(r *Runner) {
		r.seed = seed
	}
}

// WithAnswerer sets the simulated answer source used by perturbation
// experiments.
func WithAnswerer(a scoring.Answerer) Option {
	return func(r *Runner) {
		if a != nil {
			r.answerer = a
		}
	}
}

// WithTargets sets the option IDs used as answer-moving attack targets.
// Empty means all option IDs of the dataset's first question.
func WithTargets(targets []string) Option {
	return func(r *Runner) {
		r.targets = targets
	}
}

// WithStore sets the result store.
func WithStore(s repository.Store) Option {
	return func(r *Runner) {
		if s != nil {
			r.store = s
		}
	}
}

// New creates a Runner with configuration options.
func New(opts ...Option) *Runner {
	r := &Runner{
		store: repository.NewMemStore(),
		seed:  defaultSeed,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get()
	}
	if r.answerer == nil {
		r.answerer = scoring.ContentOracle{}
	}
	r.engine = perturb.New(perturb.WithSeed(r.seed))
	return r
}

// Run executes the named experiments in order. Unknown experiment names
// fail; individual metric insufficiencies (e.g. a recall position with no
// ground truth) are recorded in the results, not returned.
func (r *Runner) Run(ctx context.Context, questions []model.Question, responses []model.Response, experiments []string) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions to analyze", measure.ErrEmptyBatch)
	}
	metrics.UpdateDatasetSize(len(questions))

	for _, name := range experiments {
		var err error
		switch name {
		case ExperimentBaseline:
			err = r.Baseline(ctx, questions, responses)
		case ExperimentMovingAttack:
			err = r.MovingAttack(ctx, questions)
		case ExperimentShuffleContents:
			err = r.ShuffleExperiment(ctx, questions, model.ShuffleContents)
		case ExperimentShuffleIDs:
			err = r.ShuffleExperiment(ctx, questions, model.ShuffleIDs)
		case ExperimentRemoveIDs:
			err = r.ShuffleExperiment(ctx, questions, model.RemoveIDs)
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownExperiment, name)
		}
		if err != nil {
			return fmt.Errorf("experiment %s: %w", name, err)
		}
		metrics.RecordExperimentRun()
	}
	return nil
}

// Baseline scores the dataset's own responses without any perturbation:
// ground-truth prevalence, model choice prevalence, accuracy, and recall
// balance.
func (r *Runner) Baseline(ctx context.Context, questions []model.Question, responses []model.Response) error {
	r.logger.Info(ctx, "running baseline analysis",
		logger.Int("questions", len(questions)),
		logger.Int("responses", len(responses)))

	prev, err := r.timed(MetricPrevalence, func() (any, error) {
		return measure.Prevalence(questions)
	})
	if err != nil {
		return err
	}

	batch := asPerturbed(questions)
	set := measure.NewResponseSet(responses)
	r.countScored(batch, set)

	choice, err := r.timed(MetricChoicePrevalence, func() (any, error) {
		return measure.ChoicePrevalence(batch, set)
	})
	if err != nil {
		return err
	}
	acc, err := r.timed(MetricAccuracy, func() (any, error) {
		return measure.Accuracy(batch, set)
	})
	if err != nil {
		return err
	}
	recall, err := r.timed(MetricRecallBalance, func() (any, error) {
		return measure.RecallBalance(batch, set)
	})
	if err != nil {
		return err
	}
	if rb, ok := recall.(measure.RecallBalanceResult); ok && !rb.Defined {
		r.logger.Warn(ctx, "recall balance undefined at some positions",
			logger.Any("positions", rb.Undefined))
	}

	return r.putAll(ctx, ExperimentBaseline, map[string]any{
		MetricPrevalence:       prev,
		MetricChoicePrevalence: choice,
		MetricAccuracy:         acc,
		MetricRecallBalance:    recall,
	})
}

// MovingAttack moves the ground truth to each target in turn, collects
// simulated answers, and reports accuracy per target plus the fluctuation
// spread across targets.
func (r *Runner) MovingAttack(ctx context.Context, questions []model.Question) error {
	targets := r.targets
	if len(targets) == 0 {
		targets = questions[0].OptionIDs()
		sort.Strings(targets)
	}
	r.logger.Info(ctx, "running answer-moving attack",
		logger.Int("questions", len(questions)),
		logger.Any("targets", targets))

	perTarget := make(map[string]float64, len(targets))
	for _, target := range targets {
		moved, err := r.perturbAll(questions, model.MoveGroundTruth, target)
		if err != nil {
			return err
		}
		set, err := r.answerAll(ctx, moved)
		if err != nil {
			return err
		}
		acc, err := measure.Accuracy(moved, set)
		if err != nil {
			return err
		}
		perTarget[target] = acc.Value
		if err := r.store.Put(ctx, repository.Result{
			Experiment: ExperimentMovingAttack,
			Metric:     MetricAccuracy + "@" + target,
			Value:      acc,
		}); err != nil {
			return err
		}
	}

	fluct, err := r.timed(MetricFluctuation, func() (any, error) {
		return measure.Fluctuation(perTarget)
	})
	if err != nil {
		return err
	}
	return r.putAll(ctx, ExperimentMovingAttack, map[string]any{
		MetricFluctuation: fluct,
	})
}

// ShuffleExperiment applies one of the shuffling/removal perturbations,
// collects simulated answers against the transformed questions, and reports
// accuracy and recall balance.
func (r *Runner) ShuffleExperiment(ctx context.Context, questions []model.Question, kind model.PerturbationKind) error {
	r.logger.Info(ctx, "running perturbation experiment",
		logger.String("kind", string(kind)),
		logger.Int("questions", len(questions)))

	perturbed, err := r.perturbAll(questions, kind, "")
	if err != nil {
		return err
	}
	set, err := r.answerAll(ctx, perturbed)
	if err != nil {
		return err
	}

	acc, err := r.timed(MetricAccuracy, func() (any, error) {
		return measure.Accuracy(perturbed, set)
	})
	if err != nil {
		return err
	}
	recall, err := r.timed(MetricRecallBalance, func() (any, error) {
		return measure.RecallBalance(perturbed, set)
	})
	if err != nil {
		return err
	}

	return r.putAll(ctx, string(kind), map[string]any{
		MetricAccuracy:      acc,
		MetricRecallBalance: recall,
	})
}

// Report snapshots all results accumulated so far.
func (r *Runner) Report(ctx context.Context) []repository.Result {
	return r.store.Snapshot(ctx)
}

func (r *Runner) perturbAll(questions []model.Question, kind model.PerturbationKind, target string) ([]model.Perturbed, error) {
	out, err := r.engine.ApplyAll(questions, kind, target)
	if err != nil {
		return nil, err
	}
	for range out {
		metrics.RecordPerturbation(string(kind))
	}
	return out, nil
}

// answerAll collects one simulated answer per question. A failed answer is
// logged and left out of the set, which scores it as wrong.
func (r *Runner) answerAll(ctx context.Context, questions []model.Perturbed) (measure.ResponseSet, error) {
	set := make(measure.ResponseSet, len(questions))
	for i := range questions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}
		resp, err := r.answerer.Answer(ctx, &questions[i])
		if err != nil {
			r.logger.Warn(ctx, "answerer failed; scoring as wrong",
				logger.String("question", questions[i].ID),
				logger.Error(err))
			continue
		}
		set[resp.QuestionID] = resp
	}
	r.countScored(questions, set)
	return set, nil
}

func (r *Runner) countScored(questions []model.Perturbed, set measure.ResponseSet) {
	for i := range questions {
		metrics.RecordResponseScored()
		resp, ok := set[questions[i].ID]
		if !ok || !scoring.MatchAnswer(&questions[i], resp.Answer).OK {
			metrics.RecordResponseUnmatched()
		}
	}
}

func (r *Runner) putAll(ctx context.Context, experiment string, values map[string]any) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.store.Put(ctx, repository.Result{
			Experiment: experiment,
			Metric:     name,
			Value:      values[name],
		}); err != nil {
			return err
		}
	}
	return nil
}

// timed runs one metric computation and records its duration. The raw
// metric errors (empty batch etc.) pass through unchanged.
func (r *Runner) timed(metric string, fn func() (any, error)) (any, error) {
	start := time.Now()
	v, err := fn()
	metrics.ObserveMetricDuration(metric, float64(time.Since(start).Nanoseconds())/1e6)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func asPerturbed(questions []model.Question) []model.Perturbed {
	out := make([]model.Perturbed, len(questions))
	for i := range questions {
		out[i] = model.Unperturbed(questions[i])
	}
	return out
}
