package supervisor

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/13rac1/claudepod/internal/logging"
	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/stream"
)

// watch follows one running job's container to its end: it streams the
// transcript, appends extracted text to the output log, tracks terminal
// signals, and persists the terminal classification. Exactly one watcher
// exists per running job, which makes it the output log's only writer.
func (s *Supervisor) watch(ctx context.Context, sessionKey, jobID, containerName string) {
	defer s.watchers.Done()

	ctx = logging.ContextAttrs(ctx,
		slog.String("session", sessionKey),
		slog.String("job_id", jobID),
	)
	s.log.DebugContext(ctx, "watcher started", "container", containerName)

	var signal terminalSignal
	var lineBuf bytes.Buffer

	handleLine := func(line string) {
		event, ok := stream.ParseLine(line, s.now())
		if !ok {
			return
		}
		switch ev := event.(type) {
		case stream.TextFragment:
			if err := s.store.AppendJobOutput(sessionKey, jobID, []byte(ev.Text)); err != nil {
				s.log.DebugContext(ctx, "append output", "error", err)
			}
		case stream.SessionInit:
			// Record the assistant's handle so the next start can resume.
			if err := s.store.SetAssistantSession(sessionKey, ev.SessionID); err != nil {
				s.log.DebugContext(ctx, "record assistant session", "error", err)
			}
		default:
			signal.observe(event)
		}
	}

	onChunk := func(chunk []byte) {
		lineBuf.Write(chunk)
		for {
			line, err := lineBuf.ReadString('\n')
			if err != nil {
				// Partial line; put it back and wait for more bytes.
				lineBuf.Reset()
				lineBuf.WriteString(line)
				break
			}
			handleLine(line)
		}
	}

	exitCode, err := s.runtime.StreamLogs(ctx, containerName, onChunk)
	if err != nil {
		// One retry on transport failure; a second failure classifies as a
		// crash with whatever exit code we have.
		s.log.WarnContext(ctx, "log stream failed, retrying", "error", err)
		exitCode, err = s.runtime.StreamLogs(ctx, containerName, onChunk)
		if err != nil {
			s.log.WarnContext(ctx, "log stream failed twice", "error", err)
		}
	}

	// Drain any final partial line.
	if lineBuf.Len() > 0 {
		handleLine(lineBuf.String())
	}

	job, jerr := s.store.GetJob(sessionKey, jobID)
	if jerr != nil || job == nil {
		s.log.WarnContext(ctx, "load job after stream end", "error", jerr)
		return
	}
	if job.Status != store.JobStatusRunning {
		// Someone else (cancel) already persisted a terminal state.
		s.log.DebugContext(ctx, "job no longer running, watcher exits", "status", string(job.Status))
		return
	}

	status, kind, message := classifyTerminal(exitCode, signal.event)
	if err != nil {
		status, kind = store.JobStatusFailed, store.ErrorKindCrash
		message = "log stream lost: " + err.Error()
	}

	exit := exitCode
	terminal, terr := s.store.MarkJobTerminal(sessionKey, jobID, status, &exit, kind, message)
	if terr != nil {
		s.log.WarnContext(ctx, "persist terminal state", "error", terr)
		return
	}
	if err := s.store.SetActiveJob(sessionKey, ""); err != nil {
		s.log.WarnContext(ctx, "clear active job", "error", err)
	}

	s.runtime.Kill(ctx, containerName)
	s.notifyTerminal(ctx, terminal)
	s.log.DebugContext(ctx, "watcher finished", "status", string(status))
}

// notifyTerminal fires the completion notification. Best-effort: failures
// are logged, never retried, and never block job state.
func (s *Supervisor) notifyTerminal(ctx context.Context, job *store.Job) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	size, _, err := s.store.OutputInfo(job.SessionKey, job.JobID)
	if err != nil {
		s.log.DebugContext(ctx, "stat output for notification", "error", err)
	}

	event := notifyEvent(job, size)
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.WarnContext(ctx, "deliver notification", "error", err)
	}
}
