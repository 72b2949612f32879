package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// jobReadAttempts bounds retries when a job record reads empty or
	// unparseable under a concurrent atomic rename.
	jobReadAttempts = 3
	jobReadBackoff  = 50 * time.Millisecond
)

// CreateJob allocates a job ID, writes the job record, and creates its
// empty output file.
func (s *Store) CreateJob(key, prompt, containerName string) (*Job, error) {
	session, err := s.GetSession(key)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}

	jobID := uuid.NewString()
	job := &Job{
		JobID:         jobID,
		SessionKey:    key,
		ContainerName: containerName,
		Status:        JobStatusPending,
		Prompt:        prompt,
		CreatedAt:     s.now().UTC(),
		OutputFile:    s.outputPath(key, jobID),
	}

	if err := writeRecord(s.jobPath(key, jobID), job); err != nil {
		return nil, err
	}

	out, err := os.OpenFile(job.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close output file: %w", err)
	}

	return job, nil
}

// GetJob returns the job, or nil if it definitively does not exist. An
// empty or unparseable record is retried with increasing backoff because a
// concurrent writer may be mid-rename.
func (s *Store) GetJob(key, jobID string) (*Job, error) {
	if err := validateSessionKey(key); err != nil {
		return nil, err
	}

	path := s.jobPath(key, jobID)
	var lastErr error
	for attempt := 1; attempt <= jobReadAttempts; attempt++ {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read job record: %w", err)
		}

		if len(data) == 0 {
			lastErr = fmt.Errorf("empty job record")
		} else {
			var job Job
			jsonErr := json.Unmarshal(data, &job)
			if jsonErr == nil {
				return &job, nil
			}
			lastErr = jsonErr
		}

		if attempt < jobReadAttempts {
			time.Sleep(jobReadBackoff * time.Duration(attempt))
		}
	}
	return nil, fmt.Errorf("parse job record %s: %w", jobID, lastErr)
}

// UpdateJob applies mutate to the current job record and atomically
// replaces it. Terminal records never revert to a non-terminal status.
func (s *Store) UpdateJob(key, jobID string, mutate func(*Job)) (*Job, error) {
	job, err := s.GetJob(key, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	wasTerminal := job.Status.Terminal()
	mutate(job)
	if wasTerminal && !job.Status.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrJobTerminal, jobID)
	}

	if err := writeRecord(s.jobPath(key, jobID), job); err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns all jobs for a session. A missing jobs directory yields
// an empty list; records that fail to parse after retries are skipped.
func (s *Store) ListJobs(key string) ([]Job, error) {
	if err := validateSessionKey(key); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.jobsDir(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read jobs dir: %w", err)
	}

	jobs := make([]Job, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) < 6 || name[len(name)-5:] != ".json" {
			continue
		}
		job, err := s.GetJob(key, name[:len(name)-5])
		if err != nil || job == nil {
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// GetActiveJob resolves the session's active job pointer.
func (s *Store) GetActiveJob(key string) (*Job, error) {
	session, err := s.GetSession(key)
	if err != nil {
		return nil, err
	}
	if session == nil || session.ActiveJobID == "" {
		return nil, nil
	}
	return s.GetJob(key, session.ActiveJobID)
}

// MarkJobTerminal transitions a job to a terminal status, setting the
// completion fields atomically with the status.
func (s *Store) MarkJobTerminal(key, jobID string, status JobStatus, exitCode *int, kind ErrorKind, message string) (*Job, error) {
	return s.MarkJobTerminalAt(key, jobID, status, exitCode, kind, message, s.now().UTC())
}

// MarkJobTerminalAt is MarkJobTerminal with an explicit completion time,
// used when reconciliation learns the real finish time from the runtime.
func (s *Store) MarkJobTerminalAt(key, jobID string, status JobStatus, exitCode *int, kind ErrorKind, message string, completedAt time.Time) (*Job, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("status %q is not terminal", status)
	}
	if completedAt.IsZero() {
		completedAt = s.now().UTC()
	}
	return s.UpdateJob(key, jobID, func(job *Job) {
		job.Status = status
		job.CompletedAt = completedAt
		job.ExitCode = exitCode
		job.ErrorKind = kind
		job.ErrorMessage = message
	})
}

// NewJobID is exposed for tests that need to fabricate job records.
func NewJobID() string {
	return uuid.NewString()
}
