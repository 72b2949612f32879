// Package store persists sessions, jobs, and append-only output logs.
//
// Each session lives under <sessionsDir>/<sessionKey>/ with a session.json
// record, a .claude/ credential sink, and a jobs/ directory holding one
// <jobId>.json record and one <jobId>.log output file per job. Records are
// written with a temp file plus atomic rename so concurrent readers always
// observe a complete record.
package store

import (
	"strings"
	"time"

	"github.com/13rac1/claudepod/internal/validation"
)

// JobStatus represents the lifecycle status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job record exists but the container has
	// not been confirmed started.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the container is running.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job finished with exit code 0 and no
	// terminal signal.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job reached a terminal failure.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the job was cancelled.
	JobStatusCancelled JobStatus = "cancelled"
)

// ValidJobStatuses returns all valid job status values.
func ValidJobStatuses() []JobStatus {
	return []JobStatus{JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
}

// IsValid returns true if the status is a known value.
func (s JobStatus) IsValid() bool {
	for _, valid := range ValidJobStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// ParseJobStatus normalizes and validates a status value from user input.
func ParseJobStatus(value string) (JobStatus, error) {
	status := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidJobStatus, status, ValidJobStatuses())
	}
	return status, nil
}

// Terminal returns true once the status can never change again.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// Active returns true while the job counts as the session's active job.
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// ErrorKind classifies a terminal job failure.
type ErrorKind string

const (
	// ErrorKindStartupTimeout indicates no output within the startup window.
	ErrorKindStartupTimeout ErrorKind = "startup_timeout"
	// ErrorKindIdleTimeout indicates no output within the idle window.
	ErrorKindIdleTimeout ErrorKind = "idle_timeout"
	// ErrorKindOOM indicates the container was killed for exceeding memory.
	ErrorKindOOM ErrorKind = "oom"
	// ErrorKindCrash indicates a non-zero exit without a more specific kind.
	ErrorKindCrash ErrorKind = "crash"
	// ErrorKindSpawnFailed indicates the runtime could not create the container.
	ErrorKindSpawnFailed ErrorKind = "spawn_failed"
	// ErrorKindRateLimit indicates the assistant reported a usage limit.
	ErrorKindRateLimit ErrorKind = "rate_limit"
	// ErrorKindAuthTokenExpired indicates the assistant's OAuth token expired.
	ErrorKindAuthTokenExpired ErrorKind = "auth_token_expired"
	// ErrorKindAuthFailed indicates the assistant failed to authenticate.
	ErrorKindAuthFailed ErrorKind = "auth_failed"
)

// Session stores per-session state.
type Session struct {
	SessionKey         string    `json:"session_key"`
	AssistantSessionID string    `json:"assistant_session_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	LastActivity       time.Time `json:"last_activity"`
	MessageCount       int       `json:"message_count"`
	ActiveJobID        string    `json:"active_job_id,omitempty"`
}

// Metrics is a point-in-time container resource snapshot attached to a job.
type Metrics struct {
	MemMB      float64 `json:"mem_mb,omitempty"`
	MemLimitMB float64 `json:"mem_limit_mb,omitempty"`
	MemPct     float64 `json:"mem_pct,omitempty"`
	CPUPct     float64 `json:"cpu_pct,omitempty"`
}

// Job stores the persistent state of one prompt execution.
type Job struct {
	JobID         string    `json:"job_id"`
	SessionKey    string    `json:"session_key"`
	ContainerName string    `json:"container_name"`
	Status        JobStatus `json:"status"`
	Prompt        string    `json:"prompt"`
	CreatedAt     time.Time `json:"created_at"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	CompletedAt   time.Time `json:"completed_at,omitempty"`
	ExitCode      *int      `json:"exit_code,omitempty"`
	ErrorKind     ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	OutputFile    string    `json:"output_file"`
	Metrics       *Metrics  `json:"metrics,omitempty"`
}

// OutputChunk is one bounded read of a job's output log.
type OutputChunk struct {
	Content   []byte
	Size      int64
	TotalSize int64
	HasMore   bool
}

// OutputTail is the trailing slice of a job's output log.
type OutputTail struct {
	Content              string
	TotalSize            int64
	LastOutputSecondsAgo float64
}
