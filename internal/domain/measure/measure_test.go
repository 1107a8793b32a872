package measure_test

import (
	"testing"

	"github.com/okian/odp/internal/domain/measure"
	"github.com/okian/odp/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// evenDataset builds n questions with the ground truth rotating across the
// four positions, one question per position when n == 4.
func evenDataset(n int) []model.Question {
	labels := []string{"A", "B", "C", "D"}
	out := make([]model.Question, n)
	for i := range out {
		q := model.Question{
			ID:   "q" + labels[i%4] + string(rune('0'+i/4)),
			Text: "pick the marked option",
			Options: []model.Option{
				{ID: "A", Text: "alpha"},
				{ID: "B", Text: "bravo"},
				{ID: "C", Text: "charlie"},
				{ID: "D", Text: "delta"},
			},
			GroundTruth: labels[i%4],
		}
		out[i] = q
	}
	return out
}

func asPerturbed(questions []model.Question) []model.Perturbed {
	out := make([]model.Perturbed, len(questions))
	for i := range questions {
		out[i] = model.Unperturbed(questions[i])
	}
	return out
}

func answersOf(questions []model.Question, pick func(model.Question) string) measure.ResponseSet {
	set := make(measure.ResponseSet, len(questions))
	for _, q := range questions {
		set[q.ID] = model.Response{QuestionID: q.ID, Answer: pick(q)}
	}
	return set
}

func TestPrevalence(t *testing.T) {
	Convey("Given an evenly distributed dataset", t, func() {
		questions := evenDataset(4)

		Convey("Then prevalence is 0.25 at every position and sums to one", func() {
			res, err := measure.Prevalence(questions)
			So(err, ShouldBeNil)
			So(res.Total, ShouldEqual, 4)
			sum := 0.0
			for _, id := range []string{"A", "B", "C", "D"} {
				So(res.PerID[id], ShouldAlmostEqual, 0.25)
				So(res.Counts[id], ShouldEqual, 1)
				sum += res.PerID[id]
			}
			So(sum, ShouldAlmostEqual, 1.0)
		})

		Convey("An empty batch fails", func() {
			_, err := measure.Prevalence(nil)
			So(err, ShouldWrap, measure.ErrEmptyBatch)
		})
	})
}

func TestAccuracy(t *testing.T) {
	Convey("Given a scored batch", t, func() {
		questions := evenDataset(4)
		batch := asPerturbed(questions)

		Convey("A model answering every ground truth scores 1.0", func() {
			set := answersOf(questions, func(q model.Question) string { return q.GroundTruth })
			res, err := measure.Accuracy(batch, set)
			So(err, ShouldBeNil)
			So(res.Value, ShouldAlmostEqual, 1.0)
			So(res.Correct, ShouldEqual, 4)
		})

		Convey("Missing responses count as wrong, not as omitted", func() {
			set := measure.ResponseSet{
				questions[0].ID: {QuestionID: questions[0].ID, Answer: questions[0].GroundTruth},
			}
			res, err := measure.Accuracy(batch, set)
			So(err, ShouldBeNil)
			So(res.Value, ShouldAlmostEqual, 0.25)
			So(res.Total, ShouldEqual, 4)
		})

		Convey("Unparseable responses count as wrong", func() {
			set := answersOf(questions, func(model.Question) string { return "no idea, sorry" })
			res, err := measure.Accuracy(batch, set)
			So(err, ShouldBeNil)
			So(res.Value, ShouldAlmostEqual, 0.0)
		})
	})
}

func TestChoicePrevalence(t *testing.T) {
	Convey("Given a model that always answers A", t, func() {
		questions := evenDataset(4)
		batch := asPerturbed(questions)
		set := answersOf(questions, func(model.Question) string { return "A" })

		Convey("Then all choice mass sits on A", func() {
			res, err := measure.ChoicePrevalence(batch, set)
			So(err, ShouldBeNil)
			So(res.PerID["A"], ShouldAlmostEqual, 1.0)
			So(res.Unmatched, ShouldEqual, 0)
		})

		Convey("Unmatched answers are tallied separately", func() {
			garbled := answersOf(questions, func(model.Question) string { return "???" })
			res, err := measure.ChoicePrevalence(batch, garbled)
			So(err, ShouldBeNil)
			So(res.Unmatched, ShouldEqual, 4)
			So(res.PerID, ShouldBeEmpty)
		})
	})
}

func TestFluctuation(t *testing.T) {
	Convey("Given per-target accuracies", t, func() {
		Convey("A flat profile has zero spread", func() {
			res, err := measure.Fluctuation(map[string]float64{"A": 0.8, "B": 0.8, "C": 0.8, "D": 0.8})
			So(err, ShouldBeNil)
			So(res.Spread, ShouldAlmostEqual, 0.0)
			So(res.Variance, ShouldAlmostEqual, 0.0)
		})

		Convey("The always-A profile has full spread", func() {
			res, err := measure.Fluctuation(map[string]float64{"A": 1.0, "B": 0.0, "C": 0.0, "D": 0.0})
			So(err, ShouldBeNil)
			So(res.Min, ShouldAlmostEqual, 0.0)
			So(res.Max, ShouldAlmostEqual, 1.0)
			So(res.Spread, ShouldAlmostEqual, 1.0)
			So(res.Variance, ShouldAlmostEqual, 0.1875)
		})

		Convey("No targets fails", func() {
			_, err := measure.Fluctuation(nil)
			So(err, ShouldWrap, measure.ErrEmptyBatch)
		})
	})
}

func TestRecallBalance(t *testing.T) {
	Convey("Given an evenly distributed dataset", t, func() {
		questions := evenDataset(4)
		batch := asPerturbed(questions)

		Convey("An always-correct model has zero recall spread", func() {
			set := answersOf(questions, func(q model.Question) string { return q.GroundTruth })
			res, err := measure.RecallBalance(batch, set)
			So(err, ShouldBeNil)
			So(res.Defined, ShouldBeTrue)
			So(res.Err(), ShouldBeNil)
			So(res.Std, ShouldAlmostEqual, 0.0)
		})

		Convey("An always-A model has a positive recall spread", func() {
			set := answersOf(questions, func(model.Question) string { return "A" })
			res, err := measure.RecallBalance(batch, set)
			So(err, ShouldBeNil)
			So(res.Defined, ShouldBeTrue)
			So(res.Recalls["A"], ShouldAlmostEqual, 1.0)
			So(res.Recalls["B"], ShouldAlmostEqual, 0.0)
			So(res.Std, ShouldBeGreaterThan, 0.0)
		})

		Convey("A position with no ground truth is reported, not dropped", func() {
			// All ground truths on A; B, C, D never occur.
			skewed := evenDataset(4)
			for i := range skewed {
				skewed[i].GroundTruth = "A"
			}
			set := answersOf(skewed, func(model.Question) string { return "A" })
			res, err := measure.RecallBalance(asPerturbed(skewed), set)
			So(err, ShouldBeNil)
			So(res.Defined, ShouldBeFalse)
			So(res.Undefined, ShouldResemble, []string{"B", "C", "D"})
			So(res.Err(), ShouldWrap, measure.ErrInsufficientData)
		})
	})
}
