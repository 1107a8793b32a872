package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/odp/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then it carries sensible analysis defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DatasetFormat, convey.ShouldEqual, "mmlu")
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.Experiments, convey.ShouldResemble, []string{"baseline"})
			convey.So(cfg.Answerer, convey.ShouldEqual, "oracle")
			convey.So(cfg.ReportFormat, convey.ShouldEqual, "text")
		})
	})
}

func TestLoadValidation(t *testing.T) {
	convey.Convey("Given no dataset path anywhere", t, func() {
		t.Setenv("ODP_CONFIG", "")
		t.Setenv("ODP_DATASET_PATH", "")

		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails validation", func() {
			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})
	})
}

func TestLoadFromEnv(t *testing.T) {
	convey.Convey("Given configuration in the environment", t, func() {
		t.Setenv("ODP_DATASET_PATH", "/data/mmlu.csv")
		t.Setenv("ODP_DATASET_FORMAT", "arc")
		t.Setenv("ODP_LOG_LEVEL", "debug")
		t.Setenv("ODP_ANSWERER", "fixed")
		t.Setenv("ODP_FIXED_OPTION", "B")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then env values override the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "/data/mmlu.csv")
			convey.So(cfg.DatasetFormat, convey.ShouldEqual, "arc")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			convey.So(cfg.Answerer, convey.ShouldEqual, "fixed")
			convey.So(cfg.FixedOption, convey.ShouldEqual, "B")
		})

		convey.Convey("And untouched fields keep their defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.ReportFormat, convey.ShouldEqual, "text")
		})
	})
}

func TestLoadFromFile(t *testing.T) {
	convey.Convey("Given a YAML configuration file", t, func() {
		path := filepath.Join(t.TempDir(), "odp.yaml")
		body := []byte("dataset_path: /data/records.jsonl\ndataset_format: records\nseed: 7\nexperiments:\n  - baseline\n  - moving_attack\n")
		convey.So(os.WriteFile(path, body, 0600), convey.ShouldBeNil)
		t.Setenv("ODP_CONFIG", path)

		convey.Convey("When only the file is present", func() {
			cfg, err := config.Load(context.Background())

			convey.Convey("Then file values land in the config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "/data/records.jsonl")
				convey.So(cfg.DatasetFormat, convey.ShouldEqual, "records")
				convey.So(cfg.Seed, convey.ShouldEqual, 7)
				convey.So(cfg.Experiments, convey.ShouldResemble, []string{"baseline", "moving_attack"})
			})
		})

		convey.Convey("When the environment also sets a value", func() {
			t.Setenv("ODP_DATASET_FORMAT", "mmlu")
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the environment wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatasetFormat, convey.ShouldEqual, "mmlu")
				convey.So(cfg.DatasetPath, convey.ShouldEqual, "/data/records.jsonl")
			})
		})
	})

	convey.Convey("Given a missing configuration file", t, func() {
		t.Setenv("ODP_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := config.Load(context.Background())

		convey.Convey("Then loading fails with a load error", func() {
			convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
		})
	})
}
