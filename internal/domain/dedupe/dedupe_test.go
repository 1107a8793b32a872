package dedupe_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/okian/odp/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given an in-memory deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("A fresh ID is recorded, a repeat is flagged", func() {
			So(d.SeenAndRecord(ctx, "q1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "q1"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "q2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})

		Convey("When bounded, the oldest ID is evicted first", func() {
			small := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			So(small.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			So(small.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			So(small.SeenAndRecord(ctx, "c"), ShouldBeFalse) // evicts "a"
			So(small.Size(), ShouldEqual, 2)
			So(small.SeenAndRecord(ctx, "a"), ShouldBeFalse) // forgotten
			So(small.SeenAndRecord(ctx, "c"), ShouldBeTrue)
		})

		Convey("Unbounded mode never evicts", func() {
			unbounded := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				So(unbounded.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i)), ShouldBeFalse)
			}
			So(unbounded.Size(), ShouldEqual, 1000)
		})
	})
}
