package models

// QueryStatus is the lifecycle state of an Athena query execution.
type QueryStatus string

const (
	StatusQueued    QueryStatus = "QUEUED"
	StatusRunning   QueryStatus = "RUNNING"
	StatusSucceeded QueryStatus = "SUCCEEDED"
	StatusFailed    QueryStatus = "FAILED"
	StatusCancelled QueryStatus = "CANCELLED"
)

// Terminal reports whether the status can no longer change.
func (s QueryStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// QueryJob is one submitted Athena query execution. Jobs are created on
// submission, transition only forward, and are never reused.
type QueryJob struct {
	ID     string
	Label  string
	SQL    string
	Status QueryStatus
}

// ResultRow is one row of an Athena result set. Row 0 of a result set is
// column metadata, not data.
type ResultRow []string
