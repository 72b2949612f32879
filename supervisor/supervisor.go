// Package supervisor owns the lifecycle of sessions, jobs, and their
// backing containers.
//
// A start request launches a detached container and a watcher goroutine
// that follows its transcript, persists output, and classifies the
// terminal state. Status, output, cancel, cleanup, and the sessions
// listing read and mutate that state. On start-up, Reconcile aligns
// persisted jobs with whatever containers actually exist.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/13rac1/claudepod/docker"
	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/notify"
)

// Options configures a Supervisor.
type Options struct {
	Store    *store.Store
	Runtime  Runtime
	Notifier notify.Notifier
	Log      *slog.Logger

	// Image is the container image jobs run in.
	Image string
	// MemoryMB and CPUs bound each job container; zero leaves the limit to
	// the runtime default.
	MemoryMB int
	CPUs     float64
	// Network selects the container network mode.
	Network string

	// HasCredentials asserts that an authentication capability exists for
	// job containers. Start refuses to run without it.
	HasCredentials bool
	// CredentialFile, when set, is copied into the session's credential
	// sink before each start.
	CredentialFile string
	// Env is passed through to every job container.
	Env map[string]string

	// now overrides the clock in tests.
	now func() time.Time
}

// Supervisor coordinates the Store, the Runtime, and the Notifier.
type Supervisor struct {
	store    *store.Store
	runtime  Runtime
	notifier notify.Notifier
	log      *slog.Logger
	opts     Options
	now      func() time.Time

	watchers sync.WaitGroup
}

// New creates a Supervisor.
func New(opts Options) *Supervisor {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Noop{}
	}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return &Supervisor{
		store:    opts.Store,
		runtime:  opts.Runtime,
		notifier: notifier,
		log:      log,
		opts:     opts,
		now:      now,
	}
}

// Wait blocks until every watcher spawned so far has finished. Intended
// for shutdown paths and tests; new jobs may still be started afterwards.
func (s *Supervisor) Wait() {
	s.watchers.Wait()
}

// Start runs a prompt as a new job for the session. Preconditions fail
// without any state change; after the container is confirmed started the
// job is running and a watcher owns it.
func (s *Supervisor) Start(ctx context.Context, sessionKey, prompt string) (*StartResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if !s.opts.HasCredentials {
		return nil, ErrAuthUnavailable
	}
	if !s.runtime.CheckImage(ctx, s.opts.Image) {
		return nil, fmt.Errorf("%w: %s", ErrImageMissing, s.opts.Image)
	}

	session, err := s.store.GetOrCreateSession(sessionKey)
	if err != nil {
		return nil, err
	}

	active, err := s.store.GetActiveJob(sessionKey)
	if err != nil {
		return nil, err
	}
	if active != nil {
		if active.Status.Active() {
			return nil, fmt.Errorf("session %s %w (%s)", sessionKey, ErrActiveJobExists, active.JobID)
		}
		// Stale pointer to a terminal job; clear it and continue.
		if err := s.store.SetActiveJob(sessionKey, ""); err != nil {
			return nil, err
		}
	}

	if s.opts.CredentialFile != "" {
		if err := s.store.MaterializeCredentials(sessionKey, s.opts.CredentialFile); err != nil {
			return nil, err
		}
	}

	workspace, err := s.store.EnsureWorkspace(sessionKey)
	if err != nil {
		return nil, err
	}

	containerName := docker.ContainerName(sessionKey)
	job, err := s.store.CreateJob(sessionKey, prompt, containerName)
	if err != nil {
		return nil, err
	}

	_, err = s.runtime.StartDetached(ctx, docker.StartOptions{
		Name:            containerName,
		Image:           s.opts.Image,
		Prompt:          prompt,
		ResumeSessionID: session.AssistantSessionID,
		WorkspaceDir:    workspace,
		CredentialDir:   s.store.CredentialDir(sessionKey),
		Env:             s.opts.Env,
		MemoryMB:        s.opts.MemoryMB,
		CPUs:            s.opts.CPUs,
		Network:         s.opts.Network,
	})
	if err != nil {
		if _, terr := s.store.MarkJobTerminal(sessionKey, job.JobID, store.JobStatusFailed, nil, store.ErrorKindSpawnFailed, err.Error()); terr != nil {
			s.log.Warn("record spawn failure", "job_id", job.JobID, "error", terr)
		}
		return nil, fmt.Errorf("start container: %w", err)
	}

	startedAt := s.now().UTC()
	if _, err := s.store.UpdateJob(sessionKey, job.JobID, func(j *store.Job) {
		j.Status = store.JobStatusRunning
		j.StartedAt = startedAt
	}); err != nil {
		return nil, err
	}
	if err := s.store.SetActiveJob(sessionKey, job.JobID); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateSession(sessionKey, ""); err != nil {
		s.log.Warn("bump session activity", "session", sessionKey, "error", err)
	}

	s.watchers.Add(1)
	go s.watch(context.WithoutCancel(ctx), sessionKey, job.JobID, containerName)

	return &StartResult{
		JobID:      job.JobID,
		SessionKey: sessionKey,
		Status:     store.JobStatusRunning,
	}, nil
}
