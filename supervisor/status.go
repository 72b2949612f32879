package supervisor

import (
	"context"
	"time"

	"github.com/13rac1/claudepod/docker"
	"github.com/13rac1/claudepod/internal/age"
	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/stream"
)

const (
	// statusTailBytes bounds the output preview attached to a status result.
	statusTailBytes = 500
	// activeWindow is how recently the log must have grown for a job to
	// count as actively producing output.
	activeWindow = 10 * time.Second
	// processingCPUPct is the CPU threshold separating processing from idle.
	processingCPUPct = 20.0
)

// Status inspects a job. For a job still marked running it performs a
// best-effort synchronous reconciliation against the runtime, so a dead
// watcher cannot leave a job running forever: the status path itself heals
// the record.
func (s *Supervisor) Status(ctx context.Context, jobID, sessionKey string) (*StatusResult, error) {
	job, err := s.resolveJob(jobID, sessionKey)
	if err != nil {
		return nil, err
	}

	var metrics *store.Metrics
	if job.Status == store.JobStatusRunning {
		job, metrics = s.reconcileRunning(ctx, job)
	}

	size, mtime, err := s.store.OutputInfo(job.SessionKey, job.JobID)
	if err != nil {
		return nil, err
	}

	tail, err := s.store.ReadJobOutputTail(job.SessionKey, job.JobID, statusTailBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	elapsed, _ := age.ElapsedData(job.CreatedAt, job.StartedAt, job.CompletedAt, now)

	result := &StatusResult{
		JobID:                job.JobID,
		SessionKey:           job.SessionKey,
		Status:               job.Status,
		ElapsedSeconds:       int(elapsed.Seconds()),
		OutputSize:           size,
		LastOutputSecondsAgo: tail.LastOutputSecondsAgo,
		ActivityState:        activityState(now, mtime, metrics),
		TailOutput:           tail.Content,
		ExitCode:             job.ExitCode,
		ErrorKind:            job.ErrorKind,
		ErrorMessage:         job.ErrorMessage,
		Metrics:              metrics,
	}
	if result.Metrics == nil {
		result.Metrics = job.Metrics
	}
	return result, nil
}

// reconcileRunning checks a running job against actual container state.
// A container that stopped behind the watcher's back gets the same terminal
// classification the watcher would have written; a live container
// contributes a metrics snapshot.
func (s *Supervisor) reconcileRunning(ctx context.Context, job *store.Job) (*store.Job, *store.Metrics) {
	status, err := s.runtime.GetStatus(ctx, job.ContainerName)
	if err != nil {
		s.log.Debug("inspect container", "job_id", job.JobID, "error", err)
		return job, nil
	}

	if status != nil && status.Running {
		stats, err := s.runtime.GetStats(ctx, job.ContainerName)
		if err != nil || stats == nil {
			return job, nil
		}
		metrics := &store.Metrics{
			MemMB:      stats.MemMB,
			MemLimitMB: stats.MemLimitMB,
			MemPct:     stats.MemPct,
			CPUPct:     stats.CPUPct,
		}
		if updated, err := s.store.UpdateJob(job.SessionKey, job.JobID, func(j *store.Job) {
			j.Metrics = metrics
		}); err == nil {
			job = updated
		}
		return job, metrics
	}

	// Container stopped or gone: mirror the watcher's terminal handling.
	exitCode := -1
	finishedAt := time.Time{}
	oomKilled := false
	if status != nil {
		exitCode = status.ExitCode
		finishedAt = status.FinishedAt
		oomKilled = status.OOMKilled
	}

	healed := s.finishStoppedJob(ctx, job, exitCode, finishedAt, oomKilled)
	return healed, nil
}

// finishStoppedJob drains remaining logs, classifies, persists the
// terminal state, clears the active pointer, and removes the container.
// Shared by the status self-heal path and the start-up reconciler; neither
// emits a notification.
func (s *Supervisor) finishStoppedJob(ctx context.Context, job *store.Job, exitCode int, finishedAt time.Time, oomKilled bool) *store.Job {
	text, signal := s.drainLogs(ctx, job.ContainerName)
	if text != "" {
		if err := s.store.AppendJobOutput(job.SessionKey, job.JobID, []byte(text)); err != nil {
			s.log.Debug("append drained output", "job_id", job.JobID, "error", err)
		}
	}

	if oomKilled && exitCode == 0 {
		exitCode = oomExitCode
	}
	status, kind, message := classifyTerminal(exitCode, signal)

	exit := exitCode
	terminal, err := s.store.MarkJobTerminalAt(job.SessionKey, job.JobID, status, &exit, kind, message, finishedAt.UTC())
	if err != nil {
		s.log.Warn("persist reconciled terminal state", "job_id", job.JobID, "error", err)
		return job
	}
	if err := s.store.SetActiveJob(job.SessionKey, ""); err != nil {
		s.log.Warn("clear active job", "session", job.SessionKey, "error", err)
	}
	s.runtime.Kill(ctx, job.ContainerName)
	return terminal
}

// drainLogs fetches whatever the container logged and extracts assistant
// text plus the last terminal signal.
func (s *Supervisor) drainLogs(ctx context.Context, containerName string) (string, stream.Event) {
	data, err := s.runtime.GetLogs(ctx, containerName, docker.LogsOptions{})
	if err != nil || len(data) == 0 {
		return "", nil
	}

	var signal terminalSignal
	var text []byte
	for _, line := range splitLines(data) {
		event, ok := stream.ParseLine(line, s.now())
		if !ok {
			continue
		}
		if fragment, isText := event.(stream.TextFragment); isText {
			text = append(text, fragment.Text...)
			continue
		}
		signal.observe(event)
	}
	return string(text), signal.event
}

// activityState derives what a job appears to be doing from its output
// log's mtime and CPU usage.
func activityState(now, lastOutput time.Time, metrics *store.Metrics) ActivityState {
	if !lastOutput.IsZero() && now.Sub(lastOutput) <= activeWindow {
		return ActivityActive
	}
	if metrics != nil && metrics.CPUPct > processingCPUPct {
		return ActivityProcessing
	}
	return ActivityIdle
}
