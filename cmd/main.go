package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/odp/internal/adapters/dataset"
	"github.com/okian/odp/internal/adapters/report"
	app "github.com/okian/odp/internal/app"
	"github.com/okian/odp/internal/config"
	"github.com/okian/odp/internal/domain/scoring"
	"github.com/okian/odp/pkg/logger"
	"github.com/okian/odp/pkg/metrics"
)

// Output file permission constants.
const (
	reportFilePermission = 0600
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	loader, err := dataset.ForFormat(cfg.DatasetFormat,
		dataset.WithSampleSize(cfg.SampleSize),
		dataset.WithSeed(cfg.Seed),
	)
	if err != nil {
		return err
	}

	log.Info(ctx, "loading dataset",
		logger.String("path", cfg.DatasetPath),
		logger.String("format", cfg.DatasetFormat))
	batch, err := loader.Load(ctx, cfg.DatasetPath)
	if err != nil {
		return err
	}
	if !batch.Skipped.Empty() {
		log.Warn(ctx, "records skipped during load", logger.Int("skipped", batch.Skipped.Len()))
		for _, rec := range batch.Skipped.Records {
			log.Debug(ctx, "skipped record", logger.String("record", rec.String()))
		}
	}
	log.Info(ctx, "dataset loaded",
		logger.Int("questions", len(batch.Questions)),
		logger.Int("responses", len(batch.Responses)))

	answerer, err := buildAnswerer(cfg)
	if err != nil {
		return err
	}

	runner := app.New(
		app.WithLogger(log),
		app.WithSeed(cfg.Seed),
		app.WithAnswerer(answerer),
		app.WithTargets(cfg.AttackTargets),
	)
	if err := runner.Run(ctx, batch.Questions, batch.Responses, cfg.Experiments); err != nil {
		return err
	}

	if err := writeReport(ctx, cfg, runner); err != nil {
		return err
	}

	// Dump run counters; this replaces a scrape endpoint in a batch tool.
	log.Info(ctx, "run counters")
	if err := metrics.WriteSummary(os.Stdout); err != nil {
		log.Warn(ctx, "failed to dump metrics", logger.Error(err))
	}
	return nil
}

func buildAnswerer(cfg *config.Config) (scoring.Answerer, error) {
	switch cfg.Answerer {
	case "", "oracle":
		return scoring.ContentOracle{}, nil
	case "fixed":
		return &scoring.FixedID{ID: cfg.FixedOption}, nil
	case "biased":
		return scoring.NewPositionBiased(cfg.BiasPosition, cfg.Bias, cfg.Seed), nil
	case "uniform":
		return scoring.NewUniform(cfg.Seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown answerer %q", config.ErrInvalidConfig, cfg.Answerer)
	}
}

func writeReport(ctx context.Context, cfg *config.Config, runner *app.Runner) error {
	out := os.Stdout
	if cfg.ReportPath != "" {
		f, err := os.OpenFile(cfg.ReportPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePermission)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck // close error is secondary to write errors
		out = f
	}
	return report.Write(out, cfg.ReportFormat, runner.Report(ctx))
}
