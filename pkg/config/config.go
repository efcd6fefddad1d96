package config

import "time"

// Config holds all runtime configuration
type Config struct {
	// AWS settings
	Region           string
	Profile          string
	AthenaBucket     string
	CloudTrailBucket string
	Database         string
	TableName        string
	Year             string

	// Polling settings
	PollInterval time.Duration
	// PollTimeout bounds a single query execution. Zero polls until the
	// query reaches a terminal state.
	PollTimeout time.Duration
	PollRateRPS int

	// Output settings
	OutputDir string
	Format    string

	// Baseline settings
	BaselinePath   string
	UpdateBaseline bool

	// Analysis settings
	ExcludeFunctions []string
	FailOnStale      bool

	// Operational flags
	Verbose bool
	DryRun  bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Region:       "us-east-1",
		Profile:      "default",
		Database:     "default",
		TableName:    "cloudtrail_lambda_logs",
		PollInterval: 5 * time.Second,
		PollTimeout:  0,
		PollRateRPS:  2,
		OutputDir:    "./report",
		Format:       "text",
		Verbose:      false,
		DryRun:       false,
	}
}
