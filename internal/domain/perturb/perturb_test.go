package perturb_test

import (
	"sort"
	"testing"

	"github.com/okian/odp/internal/domain/model"
	"github.com/okian/odp/internal/domain/perturb"
	. "github.com/smartystreets/goconvey/convey"
)

func question(id, gt string) model.Question {
	return model.Question{
		ID:   id,
		Text: "Which planet is known as the red planet?",
		Options: []model.Option{
			{ID: "A", Text: "Venus"},
			{ID: "B", Text: "Mars"},
			{ID: "C", Text: "Jupiter"},
			{ID: "D", Text: "Saturn"},
		},
		GroundTruth: gt,
	}
}

func texts(options []model.Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Text
	}
	sort.Strings(out)
	return out
}

func assertBijection(p model.Perturbed, original model.Question) {
	So(p.IDMap, ShouldHaveLength, len(original.Options))
	seen := make(map[string]bool)
	for _, origID := range p.IDMap {
		So(seen[origID], ShouldBeFalse)
		seen[origID] = true
		So(original.OptionIndex(origID), ShouldBeGreaterThanOrEqualTo, 0)
	}
}

func TestMoveGroundTruth(t *testing.T) {
	Convey("Given a perturbation engine", t, func() {
		engine := perturb.New(perturb.WithSeed(7))

		Convey("When moving the ground truth to another position", func() {
			q := question("q1", "B")
			p, err := engine.MoveGroundTruth(q, "D")

			Convey("Then the new ground truth sits at the target", func() {
				So(err, ShouldBeNil)
				So(p.GroundTruth, ShouldEqual, "D")
				So(p.Options[3].Text, ShouldEqual, "Mars")
			})

			Convey("And the option contents are preserved", func() {
				So(texts(p.Options), ShouldResemble, texts(q.Options))
				assertBijection(p, q)
			})

			Convey("And the input question is untouched", func() {
				So(q.GroundTruth, ShouldEqual, "B")
				So(q.Options[1].Text, ShouldEqual, "Mars")
			})
		})

		Convey("When the target already holds the ground truth", func() {
			q := question("q1", "B")
			p, err := engine.MoveGroundTruth(q, "B")

			Convey("Then the question is unchanged", func() {
				So(err, ShouldBeNil)
				So(p.GroundTruth, ShouldEqual, "B")
				So(p.Options[1].Text, ShouldEqual, "Mars")
				assertBijection(p, q)
			})
		})

		Convey("When the target is not an option", func() {
			_, err := engine.MoveGroundTruth(question("q1", "B"), "Z")

			Convey("Then it fails with an invalid parameter error", func() {
				So(err, ShouldWrap, perturb.ErrInvalidParameter)
			})
		})
	})
}

func TestShufflePerturbations(t *testing.T) {
	Convey("Given a perturbation engine", t, func() {
		q := question("q1", "B")

		Convey("ShuffleContents keeps IDs in place and tracks the ground truth", func() {
			p, err := perturb.New(perturb.WithSeed(3)).ShuffleContents(q)
			So(err, ShouldBeNil)
			So(p.OptionIDs(), ShouldResemble, []string{"A", "B", "C", "D"})
			So(texts(p.Options), ShouldResemble, texts(q.Options))
			assertBijection(p, q)

			gi := p.GroundTruthIndex()
			So(gi, ShouldBeGreaterThanOrEqualTo, 0)
			So(p.Options[gi].Text, ShouldEqual, "Mars")
		})

		Convey("ShuffleIDs keeps content order and moves the ground-truth ID", func() {
			p, err := perturb.New(perturb.WithSeed(3)).ShuffleIDs(q)
			So(err, ShouldBeNil)
			for i := range q.Options {
				So(p.Options[i].Text, ShouldEqual, q.Options[i].Text)
			}
			assertBijection(p, q)
			So(p.Options[1].ID, ShouldEqual, p.GroundTruth)
		})

		Convey("RemoveIDs switches to positional keys and marks the question unlabeled", func() {
			p, err := perturb.New().RemoveIDs(q)
			So(err, ShouldBeNil)
			So(p.Unlabeled, ShouldBeTrue)
			So(p.OptionIDs(), ShouldResemble, []string{"0", "1", "2", "3"})
			So(p.GroundTruth, ShouldEqual, "1")
			So(p.IDMap["1"], ShouldEqual, "B")
		})

		Convey("The same seed reproduces the same shuffles", func() {
			p1, err1 := perturb.New(perturb.WithSeed(11)).ShuffleContents(q)
			p2, err2 := perturb.New(perturb.WithSeed(11)).ShuffleContents(q)
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(p1.Options, ShouldResemble, p2.Options)
			So(p1.GroundTruth, ShouldEqual, p2.GroundTruth)
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given the Apply dispatcher", t, func() {
		engine := perturb.New(perturb.WithSeed(5))
		q := question("q1", "A")

		Convey("It routes every known kind", func() {
			for _, kind := range []model.PerturbationKind{
				model.ShuffleContents, model.ShuffleIDs, model.RemoveIDs,
			} {
				p, err := engine.Apply(q, kind, "")
				So(err, ShouldBeNil)
				So(p.Kind, ShouldEqual, kind)
			}
			p, err := engine.Apply(q, model.MoveGroundTruth, "C")
			So(err, ShouldBeNil)
			So(p.GroundTruth, ShouldEqual, "C")
		})

		Convey("It rejects unknown kinds", func() {
			_, err := engine.Apply(q, model.PerturbationKind("transpose"), "")
			So(err, ShouldWrap, perturb.ErrInvalidParameter)
		})

		Convey("ApplyAll preserves input order", func() {
			qs := []model.Question{question("q1", "A"), question("q2", "C")}
			out, err := engine.ApplyAll(qs, model.MoveGroundTruth, "B")
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, 2)
			So(out[0].ID, ShouldEqual, "q1")
			So(out[1].ID, ShouldEqual, "q2")
			So(out[0].GroundTruth, ShouldEqual, "B")
			So(out[1].GroundTruth, ShouldEqual, "B")
		})
	})
}
