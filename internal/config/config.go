// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment on top of defaults in Load.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains the configuration of one analysis run.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DatasetPath points at the dataset file to analyze.
	DatasetPath string `koanf:"dataset_path"`

	// DatasetFormat selects the loader: mmlu, arc, or records.
	DatasetFormat string `koanf:"dataset_format"`

	// SampleSize limits the number of questions loaded; 0 loads all.
	SampleSize int `koanf:"sample_size"`

	// Seed drives all randomness in the run (sampling, shuffles,
	// simulated answerers) for reproducibility.
	Seed int64 `koanf:"seed"`

	// Experiments lists the experiments to run, in order.
	Experiments []string `koanf:"experiments"`

	// AttackTargets lists the option IDs the answer-moving attack cycles
	// through. Empty means every option ID of the first question.
	AttackTargets []string `koanf:"attack_targets"`

	// Answerer selects the simulated model for perturbation experiments:
	// oracle, fixed, biased, or uniform.
	Answerer string `koanf:"answerer"`

	// FixedOption is the option ID the fixed answerer always picks.
	FixedOption string `koanf:"fixed_option"`

	// BiasPosition and Bias parameterize the biased answerer.
	BiasPosition int     `koanf:"bias_position"`
	Bias         float64 `koanf:"bias"`

	// ReportFormat is text or json; ReportPath empty writes to stdout.
	ReportFormat string `koanf:"report_format"`
	ReportPath   string `koanf:"report_path"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		DatasetFormat: "mmlu",
		Seed:          42,
		Experiments:   []string{"baseline"},
		Answerer:      "oracle",
		FixedOption:   "A",
		Bias:          1.0,
		ReportFormat:  "text",
	}
}
