// Package docker runs supervisor jobs as detached containers via the
// Docker CLI. It owns all sandboxing decisions: resource limits, volume
// mounts, and network mode live here, not in the supervisor.
package docker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// inspectTimeout bounds container introspection calls (status, stats). The
// supervisor never waits longer than this for a snapshot.
const inspectTimeout = 5 * time.Second

// StartOptions configures a detached job container.
type StartOptions struct {
	Name            string            // container name (--name)
	Image           string            // image to run
	Prompt          string            // prompt passed to the assistant
	ResumeSessionID string            // assistant session to resume; empty starts fresh
	WorkspaceDir    string            // host workspace mounted at /workspace
	CredentialDir   string            // host credential sink mounted at /home/claude/.claude
	Env             map[string]string // extra environment variables
	MemoryMB        int               // memory limit; 0 leaves it unset
	CPUs            float64           // CPU limit; 0 leaves it unset
	Network         string            // network mode; empty uses the default
}

// ContainerStatus is a point-in-time container state snapshot.
type ContainerStatus struct {
	Running    bool
	ExitCode   int
	StartedAt  time.Time
	FinishedAt time.Time
	OOMKilled  bool
}

// ContainerStats is a point-in-time resource usage snapshot.
type ContainerStats struct {
	MemMB      float64
	MemLimitMB float64
	MemPct     float64
	CPUPct     float64
}

// ContainerInfo describes one container found by ListByPrefix.
type ContainerInfo struct {
	Name      string
	Running   bool
	CreatedAt time.Time
}

// LogsOptions bounds a non-streaming log fetch.
type LogsOptions struct {
	Since string // e.g. "10m"; empty fetches from the start
	Tail  int    // last N lines; 0 fetches everything
}

// Client executes container operations through the docker CLI binary.
type Client struct {
	bin string
	log *slog.Logger
}

// NewClient returns a Client using the docker binary on PATH.
func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{bin: "docker", log: log}
}

// CheckImage reports whether the image exists locally.
func (c *Client) CheckImage(ctx context.Context, image string) bool {
	cmd := exec.CommandContext(ctx, c.bin, "image", "inspect", image)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil
}

// StartDetached launches a job container and returns its container ID.
func (c *Client) StartDetached(ctx context.Context, opts StartOptions) (string, error) {
	args := runArgs(opts)

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("docker run: %s", msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// StreamLogs follows the container's combined stdout/stderr, delivering
// chunks in arrival order until the container exits, then returns the exit
// code. A container that vanished mid-stream reports exit code -1.
func (c *Client) StreamLogs(ctx context.Context, name string, onChunk func([]byte)) (int, error) {
	cmd := exec.CommandContext(ctx, c.bin, "logs", "-f", name)

	// The container's stdout and stderr both fold into one arrival-order
	// stream; docker logs -f terminates when the container exits.
	writer := &chunkWriter{fn: onChunk}
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return -1, fmt.Errorf("docker logs: %w", err)
		}
		// docker logs itself failed (container likely removed). Treat as
		// EOF with unknown exit code.
		c.log.Debug("docker logs exited nonzero", "container", name, "error", err)
	}

	return c.waitExitCode(ctx, name), nil
}

// chunkWriter adapts an io.Writer to the StreamLogs chunk callback.
type chunkWriter struct {
	fn func([]byte)
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	w.fn(chunk)
	return len(p), nil
}

// waitExitCode resolves a stopped container's exit code, falling back to
// inspect when docker wait fails. Unknown is -1.
func (c *Client) waitExitCode(ctx context.Context, name string) int {
	waitCtx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(waitCtx, c.bin, "wait", name)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err == nil {
		if code, err := strconv.Atoi(strings.TrimSpace(stdout.String())); err == nil {
			return code
		}
	}

	status, err := c.GetStatus(ctx, name)
	if err != nil || status == nil || status.Running {
		return -1
	}
	return status.ExitCode
}

// GetLogs fetches logs without following. Returns nil when the container
// is gone.
func (c *Client) GetLogs(ctx context.Context, name string, opts LogsOptions) ([]byte, error) {
	args := logsArgs(name, opts)

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = cmd.Stdout
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("docker logs: %w", err)
	}
	return stdout.Bytes(), nil
}

// inspectState mirrors the .State document of docker inspect.
type inspectState struct {
	Running    bool   `json:"Running"`
	ExitCode   int    `json:"ExitCode"`
	OOMKilled  bool   `json:"OOMKilled"`
	StartedAt  string `json:"StartedAt"`
	FinishedAt string `json:"FinishedAt"`
}

// GetStatus inspects the container. Returns nil for an absent container.
// The call is bounded by the introspection timeout.
func (c *Client) GetStatus(ctx context.Context, name string) (*ContainerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, "inspect", "--format", "{{json .State}}", name)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("docker inspect: %w", err)
	}

	var state inspectState
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &state); err != nil {
		return nil, fmt.Errorf("parse inspect output: %w", err)
	}

	return &ContainerStatus{
		Running:    state.Running,
		ExitCode:   state.ExitCode,
		OOMKilled:  state.OOMKilled,
		StartedAt:  parseDockerTime(state.StartedAt),
		FinishedAt: parseDockerTime(state.FinishedAt),
	}, nil
}

// GetStats samples resource usage. Returns nil when the container is not
// running. The call is bounded by the introspection timeout.
func (c *Client) GetStats(ctx context.Context, name string) (*ContainerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, inspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, "stats", "--no-stream", "--format", "{{json .}}", name)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("docker stats: %w", err)
	}

	stats, err := parseStats(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// psRecord mirrors one line of docker ps --format json output.
type psRecord struct {
	Names     string `json:"Names"`
	State     string `json:"State"`
	CreatedAt string `json:"CreatedAt"`
}

// ListByPrefix returns all containers (running or not) whose name begins
// with prefix.
func (c *Client) ListByPrefix(ctx context.Context, prefix string) ([]ContainerInfo, error) {
	cmd := exec.CommandContext(ctx, c.bin, "ps", "-a", "--filter", "name="+prefix, "--format", "{{json .}}")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("docker ps: %w", err)
	}

	containers := make([]ContainerInfo, 0)
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record psRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}
		// The docker name filter matches substrings; enforce the prefix.
		if !strings.HasPrefix(record.Names, prefix) {
			continue
		}
		containers = append(containers, ContainerInfo{
			Name:      record.Names,
			Running:   record.State == "running",
			CreatedAt: parsePsTime(record.CreatedAt),
		})
	}
	return containers, nil
}

// Kill force-removes the session's container. Idempotent: a container that
// is already gone is success.
func (c *Client) Kill(ctx context.Context, name string) {
	cmd := exec.CommandContext(ctx, c.bin, "rm", "-f", name)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		c.log.Debug("docker rm", "container", name, "error", err)
	}
}

// parseDockerTime parses inspect's RFC3339Nano timestamps. Docker reports
// a zero value as 0001-01-01T00:00:00Z, which parses to a zero time.
func parseDockerTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parsePsTime parses docker ps CreatedAt values like
// "2025-06-01 12:00:00 +0000 UTC".
func parsePsTime(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05 -0700 MST", value)
	if err != nil {
		return time.Time{}
	}
	return t
}
