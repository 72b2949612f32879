package supervisor

import (
	"time"

	"github.com/13rac1/claudepod/internal/store"
)

// ActivityState describes what a running job appears to be doing.
type ActivityState string

const (
	// ActivityActive indicates the job produced output within the last few
	// seconds.
	ActivityActive ActivityState = "active"
	// ActivityProcessing indicates no recent output but meaningful CPU use.
	ActivityProcessing ActivityState = "processing"
	// ActivityIdle indicates neither recent output nor meaningful CPU use.
	ActivityIdle ActivityState = "idle"
)

// StartResult is returned by Start once the watcher is running.
type StartResult struct {
	JobID      string
	SessionKey string
	Status     store.JobStatus
}

// StatusResult is the inspection snapshot returned by Status.
type StatusResult struct {
	JobID                string
	SessionKey           string
	Status               store.JobStatus
	ElapsedSeconds       int
	OutputSize           int64
	LastOutputSecondsAgo float64
	ActivityState        ActivityState
	TailOutput           string
	ExitCode             *int
	ErrorKind            store.ErrorKind
	ErrorMessage         string
	Metrics              *store.Metrics
}

// OutputResult is one bounded read of a job's output log with its header.
type OutputResult struct {
	JobID   string
	Status  store.JobStatus
	Offset  int64
	Size    int64
	Total   int64
	HasMore bool
	Content []byte
}

// CancelResult reports the outcome of a cancel request.
type CancelResult struct {
	JobID           string
	AlreadyTerminal bool
	Status          store.JobStatus
}

// CleanupResult reports which idle sessions were removed.
type CleanupResult struct {
	Removed           []string
	WorkspacesDeleted bool
}

// JobSummary is the compact job view attached to a session listing.
type JobSummary struct {
	JobID          string
	Status         store.JobStatus
	ElapsedSeconds int
}

// SessionSummary is the enriched session view returned by Sessions.
type SessionSummary struct {
	SessionKey      string
	Age             time.Duration
	TimeSinceActive time.Duration
	MessageCount    int
	ActiveJob       *JobSummary
}
