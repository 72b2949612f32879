package supervisor

import (
	"context"

	"github.com/13rac1/claudepod/docker"
)

// Runtime is the container runtime port. The supervisor knows only these
// operations; flags, process plumbing, and sandboxing belong to the
// implementation. docker.Client satisfies this interface.
type Runtime interface {
	// CheckImage reports whether the configured image is available.
	CheckImage(ctx context.Context, image string) bool

	// StartDetached launches a job container and returns its container ID.
	StartDetached(ctx context.Context, opts docker.StartOptions) (string, error)

	// StreamLogs follows the container's combined output until it exits,
	// then returns the exit code (-1 when unknown).
	StreamLogs(ctx context.Context, name string, onChunk func([]byte)) (int, error)

	// GetLogs fetches logs without following. Nil means the container is gone.
	GetLogs(ctx context.Context, name string, opts docker.LogsOptions) ([]byte, error)

	// GetStatus inspects the container; nil means it does not exist.
	GetStatus(ctx context.Context, name string) (*docker.ContainerStatus, error)

	// GetStats samples resource usage; nil means the container is not running.
	GetStats(ctx context.Context, name string) (*docker.ContainerStats, error)

	// ListByPrefix returns all containers whose name begins with prefix.
	ListByPrefix(ctx context.Context, prefix string) ([]docker.ContainerInfo, error)

	// Kill force-removes the container. Idempotent; never errors.
	Kill(ctx context.Context, name string)
}
