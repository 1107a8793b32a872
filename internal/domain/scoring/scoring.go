// Package scoring matches raw model answers to option IDs and defines the
// contract for simulated answer sources used in perturbation experiments.
package scoring

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/okian/odp/internal/domain/model"
)

// Match is the outcome of resolving a raw answer against a question's
// options. OK is false when the answer named no option at all; callers score
// such responses as wrong rather than dropping them.
type Match struct {
	OptionID string
	Index    int
	OK       bool
}

// MatchAnswer resolves a raw model answer to one of the question's options.
//
// Labeled questions match on the visible ID: the trimmed answer must start
// with an option ID, case-insensitively ("b) the mitochondria" matches "B").
// Unlabeled questions fall back to content: the option whose text is most
// similar to the answer wins, using Ratcliff/Obershelp similarity.
//
// An answer that names no option is reported as unmatched, not coerced to
// the first option.
func MatchAnswer(q *model.Perturbed, answer string) Match {
	if q.Unlabeled {
		return matchByContent(&q.Question, answer)
	}
	return matchByID(&q.Question, answer)
}

func matchByID(q *model.Question, answer string) Match {
	cleaned := strings.ToLower(strings.TrimSpace(answer))
	if cleaned == "" {
		return Match{Index: -1}
	}
	for i, o := range q.Options {
		if strings.HasPrefix(cleaned, strings.ToLower(o.ID)) {
			return Match{OptionID: o.ID, Index: i, OK: true}
		}
	}
	return Match{Index: -1}
}

func matchByContent(q *model.Question, answer string) Match {
	cleaned := strings.TrimSpace(answer)
	if cleaned == "" {
		return Match{Index: -1}
	}
	sim := metrics.NewRatcliffObershelp()
	best := Match{Index: -1}
	bestScore := 0.0
	for i, o := range q.Options {
		score := strutil.Similarity(o.Text, cleaned, sim)
		if score > bestScore {
			bestScore = score
			best = Match{OptionID: o.ID, Index: i, OK: true}
		}
	}
	return best
}

// IsCorrect reports whether the raw answer resolves to the question's
// ground-truth option. Unmatched answers are wrong.
func IsCorrect(q *model.Perturbed, answer string) bool {
	m := MatchAnswer(q, answer)
	return m.OK && m.OptionID == q.GroundTruth
}
