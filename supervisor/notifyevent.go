package supervisor

import (
	"time"

	"github.com/13rac1/claudepod/internal/age"
	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/notify"
)

// notifyEvent builds the terminal-transition payload for a job.
func notifyEvent(job *store.Job, outputSize int64) notify.Event {
	elapsed, _ := age.ElapsedData(job.CreatedAt, job.StartedAt, job.CompletedAt, time.Now())
	return notify.Event{
		JobID:          job.JobID,
		SessionKey:     job.SessionKey,
		Status:         string(job.Status),
		ElapsedSeconds: int(elapsed.Seconds()),
		OutputSize:     outputSize,
		ExitCode:       job.ExitCode,
		ErrorKind:      string(job.ErrorKind),
	}
}
