package supervisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/13rac1/claudepod/internal/age"
	"github.com/13rac1/claudepod/internal/store"
)

// Cleanup deletes sessions idle beyond the configured timeout. Workspaces
// are preserved unless deleteWorkspaces opts in: they hold user code, and
// losing a workspace loses that code.
func (s *Supervisor) Cleanup(ctx context.Context, deleteWorkspaces bool) (*CleanupResult, error) {
	removed, err := s.store.CleanupIdleSessions()
	if err != nil {
		return nil, err
	}

	if deleteWorkspaces {
		for _, key := range removed {
			if err := s.store.DeleteWorkspace(key); err != nil {
				s.log.Warn("delete workspace", "session", key, "error", err)
			}
		}
	}

	return &CleanupResult{
		Removed:           removed,
		WorkspacesDeleted: deleteWorkspaces,
	}, nil
}

// Jobs lists a session's jobs, newest first, optionally filtered by
// status.
func (s *Supervisor) Jobs(ctx context.Context, sessionKey string, statusFilter store.JobStatus) ([]store.Job, error) {
	session, err := s.store.GetSession(sessionKey)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionKey)
	}

	jobs, err := s.store.ListJobs(sessionKey)
	if err != nil {
		return nil, err
	}

	filtered := jobs[:0]
	for _, job := range jobs {
		if statusFilter != "" && job.Status != statusFilter {
			continue
		}
		filtered = append(filtered, job)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	return filtered, nil
}

// Sessions returns the enriched session listing.
func (s *Supervisor) Sessions(ctx context.Context) ([]SessionSummary, error) {
	sessions, err := s.store.ListSessions()
	if err != nil {
		return nil, err
	}

	now := s.now()
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary := SessionSummary{
			SessionKey:   session.SessionKey,
			MessageCount: session.MessageCount,
		}
		if d, ok := age.AgeData(session.CreatedAt, now); ok {
			summary.Age = d
		}
		if d, ok := age.AgeData(session.LastActivity, now); ok {
			summary.TimeSinceActive = d
		}

		if session.ActiveJobID != "" {
			job, err := s.store.GetJob(session.SessionKey, session.ActiveJobID)
			if err == nil && job != nil {
				elapsed, _ := age.ElapsedData(job.CreatedAt, job.StartedAt, job.CompletedAt, now)
				summary.ActiveJob = &JobSummary{
					JobID:          job.JobID,
					Status:         job.Status,
					ElapsedSeconds: int(elapsed.Seconds()),
				}
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
