package supervisor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/13rac1/claudepod/docker"
)

// reconcileParallelism bounds concurrent container inspections during the
// start-up pass.
const reconcileParallelism = 4

// Reconcile aligns persisted job state with actual container state. It
// runs once at start-up and is entirely best-effort: every error is
// swallowed because the status path heals the same inconsistencies on
// demand. No notifications are emitted; nobody was waiting in these
// sessions.
func (s *Supervisor) Reconcile(ctx context.Context) {
	containers, err := s.runtime.ListByPrefix(ctx, docker.NamePrefix)
	if err != nil {
		s.log.Warn("list containers for reconciliation", "error", err)
		return
	}
	if len(containers) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileParallelism)
	for _, container := range containers {
		g.Go(func() error {
			s.reconcileContainer(ctx, container)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()
}

// reconcileContainer handles one discovered container.
func (s *Supervisor) reconcileContainer(ctx context.Context, container docker.ContainerInfo) {
	sessionKey, ok := docker.SessionKeyFromName(container.Name)
	if !ok {
		// Not one of ours.
		return
	}

	job, err := s.store.GetActiveJob(sessionKey)
	if err != nil {
		s.log.Warn("load active job for reconciliation", "session", sessionKey, "error", err)
		return
	}

	if job == nil || job.ContainerName != container.Name {
		// Stale container: no persisted job is waiting on it.
		s.log.Debug("removing orphan container", "container", container.Name)
		s.runtime.Kill(ctx, container.Name)
		return
	}

	if container.Running {
		// The normal watcher-or-status path will handle it.
		return
	}

	status, err := s.runtime.GetStatus(ctx, container.Name)
	if err != nil {
		s.log.Warn("inspect orphan container", "container", container.Name, "error", err)
		return
	}

	exitCode := -1
	var finishedAt time.Time
	oomKilled := false
	if status != nil {
		exitCode = status.ExitCode
		finishedAt = status.FinishedAt
		oomKilled = status.OOMKilled
	}

	s.log.Debug("reconciling stopped job", "job_id", job.JobID, "exit_code", exitCode)
	s.finishStoppedJob(ctx, job, exitCode, finishedAt, oomKilled)
}
