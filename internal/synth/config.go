package synth

import "time"

// Config holds configuration for synthetic dataset generation.
type Config struct {
	NumQuestions int     // Number of questions to generate
	NumOptions   int     // Options per question
	Skew         float64 // Extra probability mass on the first position's ground truth
	Answerer     string  // Simulated model: oracle, fixed, biased, uniform
	FixedOption  string  // Option ID for the fixed answerer
	Seed         int64   // Seed for all generation randomness
	OutputFile   string  // Output file for the records JSONL
	Verbose      bool    // Log at debug level, including per-check verification detail
}

// Stats holds generation statistics.
type Stats struct {
	QuestionsGenerated int
	ResponsesSimulated int
	ChecksRun          int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
