// Package report renders experiment results for human or machine
// consumption. It is the thin edge of the toolkit: plotting and richer
// presentation belong to external tooling fed by the JSON form.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/okian/odp/internal/adapters/repository"
	"github.com/okian/odp/internal/domain/measure"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders results to w in the named format.
func Write(w io.Writer, format string, results []repository.Result) error {
	switch format {
	case FormatText, "":
		return WriteText(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteJSON renders results as a JSON object keyed by "experiment/metric".
func WriteJSON(w io.Writer, results []repository.Result) error {
	out := make(map[string]any, len(results))
	for _, r := range results {
		out[r.Key()] = r.Value
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}

// WriteText renders results as a readable block per metric.
func WriteText(w io.Writer, results []repository.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "== %s\n", r.Key()); err != nil {
			return fmt.Errorf("%w: %w", ErrRenderFailed, err)
		}
		if err := writeValue(w, r.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, value any) error {
	var err error
	switch v := value.(type) {
	case measure.PrevalenceResult:
		err = writeFractions(w, v.PerID, v.Counts)
	case measure.ChoicePrevalenceResult:
		if err = writeFractions(w, v.PerID, v.Counts); err == nil {
			_, err = fmt.Fprintf(w, "   unmatched: %d of %d\n", v.Unmatched, v.Total)
		}
	case measure.AccuracyResult:
		_, err = fmt.Fprintf(w, "   accuracy: %.4f (%d of %d)\n", v.Value, v.Correct, v.Total)
	case measure.FluctuationResult:
		if err = writeFractions(w, v.PerTarget, nil); err == nil {
			_, err = fmt.Fprintf(w, "   spread: %.4f (min %.4f, max %.4f, variance %.6f)\n", v.Spread, v.Min, v.Max, v.Variance)
		}
	case measure.RecallBalanceResult:
		if err = writeFractions(w, v.Recalls, v.Totals); err != nil {
			return err
		}
		if v.Defined {
			_, err = fmt.Fprintf(w, "   recall std: %.4f\n", v.Std)
		} else {
			_, err = fmt.Fprintf(w, "   recall std: undefined, no ground truth at %v\n", v.Undefined)
		}
	default:
		_, err = fmt.Fprintf(w, "   %v\n", v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}

func writeFractions(w io.Writer, perID map[string]float64, counts map[string]int) error {
	ids := make([]string, 0, len(perID))
	for id := range perID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if counts != nil {
			if _, err := fmt.Fprintf(w, "   %-4s %.4f (%d)\n", id, perID[id], counts[id]); err != nil {
				return fmt.Errorf("%w: %w", ErrRenderFailed, err)
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "   %-4s %.4f\n", id, perID[id]); err != nil {
			return fmt.Errorf("%w: %w", ErrRenderFailed, err)
		}
	}
	return nil
}
