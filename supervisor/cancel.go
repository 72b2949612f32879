package supervisor

import (
	"context"
	"strings"

	"github.com/13rac1/claudepod/internal/store"
)

// Cancel stops a job's container and forces the cancelled terminal state.
// Idempotent: cancelling a job that already reached a terminal status is a
// no-op reported in the result, not an error. When Cancel returns, the
// container has been told to terminate and the record is terminal; a
// watcher racing this path observes the status change and exits without
// overwriting.
func (s *Supervisor) Cancel(ctx context.Context, jobID, sessionKey string) (*CancelResult, error) {
	job, err := s.resolveJob(jobID, sessionKey)
	if err != nil {
		return nil, err
	}

	if job.Status.Terminal() {
		return &CancelResult{
			JobID:           job.JobID,
			AlreadyTerminal: true,
			Status:          job.Status,
		}, nil
	}

	// Persist the cancelled state before killing the container. The watcher
	// only wakes once the kill ends its log stream, so by then it observes
	// a non-running status and exits without overwriting.
	terminal, err := s.store.MarkJobTerminal(job.SessionKey, job.JobID, store.JobStatusCancelled, job.ExitCode, "", "cancelled by request")
	if err != nil {
		return nil, err
	}

	s.runtime.Kill(ctx, job.ContainerName)
	if err := s.store.SetActiveJob(job.SessionKey, ""); err != nil {
		s.log.Warn("clear active job", "session", job.SessionKey, "error", err)
	}

	s.notifyTerminal(ctx, terminal)

	return &CancelResult{
		JobID:  job.JobID,
		Status: store.JobStatusCancelled,
	}, nil
}

// splitLines splits raw log bytes into lines for the transcript parser.
func splitLines(data []byte) []string {
	return strings.Split(string(data), "\n")
}
