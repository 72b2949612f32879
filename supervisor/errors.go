package supervisor

import (
	"errors"

	"github.com/13rac1/claudepod/internal/store"
)

var (
	// ErrEmptyPrompt indicates a start request without a prompt.
	ErrEmptyPrompt = errors.New("prompt is required")
	// ErrAuthUnavailable indicates no authentication capability was
	// configured for job containers.
	ErrAuthUnavailable = errors.New("no authentication available for job containers")
	// ErrImageMissing indicates the configured container image does not exist.
	ErrImageMissing = errors.New("container image not found")
	// ErrJobNotFound indicates no session owns the requested job.
	ErrJobNotFound = errors.New("job not found")
	// ErrSessionNotFound indicates the requested session is missing.
	ErrSessionNotFound = store.ErrSessionNotFound
	// ErrActiveJobExists indicates the session already has a pending or
	// running job.
	ErrActiveJobExists = store.ErrActiveJobExists
)
