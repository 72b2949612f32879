package store

import "errors"

var (
	// ErrSessionNotFound indicates the requested session is missing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrJobNotFound indicates the requested job is missing.
	ErrJobNotFound = errors.New("job not found")
	// ErrActiveJobExists indicates the session already has a pending or
	// running job.
	ErrActiveJobExists = errors.New("session already has an active job")
	// ErrJobTerminal indicates an update tried to move a terminal job back
	// to a non-terminal status.
	ErrJobTerminal = errors.New("job already reached a terminal status")
	// ErrInvalidSessionKey indicates a session key unusable as a directory
	// component.
	ErrInvalidSessionKey = errors.New("invalid session key")
	// ErrInvalidJobStatus indicates an unknown job status value.
	ErrInvalidJobStatus = errors.New("invalid job status")
)
