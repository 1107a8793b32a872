package synth

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/okian/odp/internal/domain/measure"
	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/internal/domain/perturb"
	"github.com/okian/odp/internal/domain/scoring"
	"github.com/okian/odp/pkg/logger"
)

const floatTolerance = 1e-9

// VerifyDataset sanity-checks generated data against the toolkit's own
// invariants: prevalence fractions sum to one, perturbations preserve option
// content, and a content-matching oracle shows zero accuracy spread under
// the answer-moving attack.
func VerifyDataset(ctx context.Context, cfg *Config, questions []model.Question, stats *Stats) error {
	logger.Get().Info(ctx, "verifying generated dataset", logger.Int("questions", len(questions)))

	if err := verifyPrevalence(questions); err != nil {
		return err
	}
	stats.ChecksRun++

	engine := perturb.New(perturb.WithSeed(cfg.Seed))
	for _, kind := range []model.PerturbationKind{model.ShuffleContents, model.ShuffleIDs, model.RemoveIDs} {
		for i := range questions {
			p, err := engine.Apply(questions[i], kind, "")
			if err != nil {
				return fmt.Errorf("verification perturbation failed: %w", err)
			}
			if err := verifyContentPreserved(&questions[i], &p); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			logger.Get().Debug(ctx, "content preserved",
				logger.String("kind", string(kind)),
				logger.String("question", questions[i].ID))
		}
		stats.ChecksRun++
	}

	if err := verifyOracleSpread(ctx, cfg, questions); err != nil {
		return err
	}
	stats.ChecksRun++

	logger.Get().Info(ctx, "dataset verification passed", logger.Int("checks", stats.ChecksRun))
	return nil
}

func verifyPrevalence(questions []model.Question) error {
	prev, err := measure.Prevalence(questions)
	if err != nil {
		return err
	}
	sum := 0.0
	for _, f := range prev.PerID {
		sum += f
	}
	if math.Abs(sum-1.0) > floatTolerance {
		return fmt.Errorf("%w: prevalence sums to %f, want 1.0", ErrVerification, sum)
	}
	return nil
}

// verifyContentPreserved checks the permutation property: the multiset of
// option texts is unchanged and the ID map is a bijection.
func verifyContentPreserved(orig *model.Question, p *model.Perturbed) error {
	if len(orig.Options) != len(p.Options) {
		return fmt.Errorf("%w: option count changed from %d to %d", ErrVerification, len(orig.Options), len(p.Options))
	}
	a := sortedTexts(orig.Options)
	b := sortedTexts(p.Options)
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("%w: option contents changed for question %q", ErrVerification, orig.ID)
		}
	}
	seen := make(map[string]struct{}, len(p.IDMap))
	for _, origID := range p.IDMap {
		if _, dup := seen[origID]; dup {
			return fmt.Errorf("%w: id map is not a bijection for question %q", ErrVerification, orig.ID)
		}
		seen[origID] = struct{}{}
	}
	return nil
}

// verifyOracleSpread runs the answer-moving attack with the content oracle;
// any non-zero spread means scoring leaked position information.
func verifyOracleSpread(ctx context.Context, cfg *Config, questions []model.Question) error {
	engine := perturb.New(perturb.WithSeed(cfg.Seed))
	targets := questions[0].OptionIDs()
	perTarget := make(map[string]float64, len(targets))
	oracle := scoring.ContentOracle{}

	for _, target := range targets {
		moved, err := engine.ApplyAll(questions, model.MoveGroundTruth, target)
		if err != nil {
			return err
		}
		set := make(measure.ResponseSet, len(moved))
		for i := range moved {
			resp, err := oracle.Answer(ctx, &moved[i])
			if err != nil {
				return err
			}
			set[resp.QuestionID] = resp
		}
		acc, err := measure.Accuracy(moved, set)
		if err != nil {
			return err
		}
		perTarget[target] = acc.Value
	}

	fluct, err := measure.Fluctuation(perTarget)
	if err != nil {
		return err
	}
	if fluct.Spread > floatTolerance {
		return fmt.Errorf("%w: oracle accuracy spread %f, want 0", ErrVerification, fluct.Spread)
	}
	return nil
}

func sortedTexts(options []model.Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Text
	}
	sort.Strings(out)
	return out
}
