package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/odp/internal/synth"
)

// Default configuration constants.
const (
	defaultNumQuestions = 1000
	defaultNumOptions   = 4
	defaultSeed         = 42
	defaultGenTimeout   = 10 * time.Minute
)

func main() {
	var (
		numQuestions = flag.Int("questions", defaultNumQuestions, "Number of questions to generate")
		numOptions   = flag.Int("options", defaultNumOptions, "Options per question")
		skew         = flag.Float64("skew", 0, "Extra ground-truth probability mass on the first position")
		answerer     = flag.String("answerer", "oracle", "Simulated model: oracle, fixed, biased, uniform")
		fixedOption  = flag.String("fixed", "A", "Option ID the fixed answerer always picks")
		seed         = flag.Int64("seed", defaultSeed, "Random seed")
		outputFile   = flag.String("output", "", "Output file (default: synthetic_records_TIMESTAMP.jsonl)")
		logFile      = flag.String("log", "", "Log file (default: gen_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	if err := synth.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultGenTimeout)
	defer cancel()

	config := &synth.Config{
		NumQuestions: *numQuestions,
		NumOptions:   *numOptions,
		Skew:         *skew,
		Answerer:     *answerer,
		FixedOption:  *fixedOption,
		Seed:         *seed,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if err := synth.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
