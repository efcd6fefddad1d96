package models

import "time"

// Report is the complete output structure
type Report struct {
	Tool           string         `json:"tool"`
	Version        string         `json:"version"`
	Timestamp      string         `json:"timestamp"`
	Metadata       Metadata       `json:"metadata"`
	Reconciliation Reconciliation `json:"reconciliation"`
}

// Metadata contains report generation info
type Metadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	Region           string    `json:"region"`
	Year             string    `json:"year"`
	TableName        string    `json:"table_name"`
	QueryIDs         []string  `json:"query_ids"`
	AnalysisDuration string    `json:"analysis_duration"`
	Version          string    `json:"version"`
	BaselineApplied  bool      `json:"baseline_applied"`
}

// Reconciliation is the outcome of diffing the live function inventory
// against the invoked-function set from the audit log. It exists only for
// the duration of one run and is never persisted by the pipeline.
type Reconciliation struct {
	TotalFunctions int `json:"total_functions"`

	// UsedFunctions are the distinct ARNs the usage query reported as
	// invoked within the trailing 30-day window.
	UsedFunctions []string `json:"used_functions"`

	// StaleFunctions is inventory minus used, sorted case-insensitively.
	StaleFunctions []string `json:"stale_functions"`

	// StaleCount is len(inventory) - len(used), kept as an arithmetic
	// difference of counts. It diverges from len(StaleFunctions) whenever
	// the audit log names a function that no longer exists; CountAnomaly
	// records that divergence instead of correcting it.
	StaleCount   int  `json:"stale_count"`
	CountAnomaly bool `json:"count_anomaly"`

	// SuppressedFunctions are stale ARNs hidden by the baseline file.
	SuppressedFunctions int `json:"suppressed_functions,omitempty"`
}
