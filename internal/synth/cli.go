package synth

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/odp/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "gen_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the dataset generator.
func ShowHelp() {
	os.Stdout.WriteString(`ODP Synthetic Dataset Generator
===============================

Generates a synthetic multiple-choice dataset plus simulated model responses
in the records JSONL format consumed by the analysis runner.

Usage:
  go run cmd/gen-dataset/main.go [options]

Options:
  -questions int
        Number of questions to generate (default 1000)
  -options int
        Options per question (default 4)
  -skew float
        Extra ground-truth probability mass on the first position (default 0)
  -answerer string
        Simulated model: oracle, fixed, biased, uniform (default "oracle")
  -fixed string
        Option ID the fixed answerer always picks (default "A")
  -seed int
        Random seed (default 42)
  -output string
        Output file (default: synthetic_records_TIMESTAMP.jsonl)
  -log string
        Log file (default: gen_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Unbiased dataset answered by the content oracle
  go run cmd/gen-dataset/main.go -questions 5000

  # Position-skewed dataset answered by an always-"A" model
  go run cmd/gen-dataset/main.go -skew 0.5 -answerer fixed -fixed A
`)
}
