package docker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeDockerScript stands in for the docker binary. Behavior is driven by
// FAKE_* environment variables so each test scripts its own responses.
const fakeDockerScript = `#!/bin/sh
cmd="$1"
case "$cmd" in
image)
  exit "${FAKE_IMAGE_EXIT:-0}"
  ;;
run)
  if [ -n "$FAKE_RUN_ERROR" ]; then
    echo "$FAKE_RUN_ERROR" >&2
    exit 125
  fi
  echo "abc123def456"
  ;;
logs)
  printf '%s' "$FAKE_LOGS"
  exit "${FAKE_LOGS_EXIT:-0}"
  ;;
wait)
  if [ -n "$FAKE_WAIT_ERROR" ]; then
    exit 1
  fi
  echo "${FAKE_WAIT_CODE:-0}"
  ;;
inspect)
  if [ -n "$FAKE_INSPECT_EXIT" ]; then
    exit "$FAKE_INSPECT_EXIT"
  fi
  echo "$FAKE_STATE"
  ;;
stats)
  if [ -n "$FAKE_STATS_EXIT" ]; then
    exit "$FAKE_STATS_EXIT"
  fi
  echo "$FAKE_STATS"
  ;;
ps)
  printf '%s' "$FAKE_PS"
  ;;
rm)
  exit "${FAKE_RM_EXIT:-0}"
  ;;
*)
  echo "unexpected subcommand $cmd" >&2
  exit 64
  ;;
esac
`

// newFakeClient installs the fake docker binary on PATH and returns a
// Client that will resolve it.
func newFakeClient(t *testing.T) *Client {
	t.Helper()

	binDir := t.TempDir()
	script := filepath.Join(binDir, "docker")
	require.NoError(t, os.WriteFile(script, []byte(fakeDockerScript), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return NewClient(nil)
}

func TestCheckImage(t *testing.T) {
	c := newFakeClient(t)

	require.True(t, c.CheckImage(context.Background(), "present:latest"))

	t.Setenv("FAKE_IMAGE_EXIT", "1")
	require.False(t, c.CheckImage(context.Background(), "missing:latest"))
}

func TestStartDetachedReturnsContainerID(t *testing.T) {
	c := newFakeClient(t)

	id, err := c.StartDetached(context.Background(), StartOptions{
		Name:   "claude-alpha",
		Image:  "img",
		Prompt: "hello",
	})
	require.NoError(t, err)
	require.Equal(t, "abc123def456", id)
}

func TestStartDetachedSurfacesDaemonError(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_RUN_ERROR", "Conflict. The container name is already in use")

	_, err := c.StartDetached(context.Background(), StartOptions{
		Name:   "claude-alpha",
		Image:  "img",
		Prompt: "hello",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already in use")
}

func TestStreamLogsDeliversChunksAndExitCode(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_LOGS", "line one\nline two\n")
	t.Setenv("FAKE_WAIT_CODE", "137")

	var received []byte
	code, err := c.StreamLogs(context.Background(), "claude-alpha", func(chunk []byte) {
		received = append(received, chunk...)
	})
	require.NoError(t, err)
	require.Equal(t, 137, code)
	require.Equal(t, "line one\nline two\n", string(received))
}

func TestStreamLogsFallsBackToInspectExitCode(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_LOGS", "tail\n")
	t.Setenv("FAKE_WAIT_ERROR", "1")
	t.Setenv("FAKE_STATE", `{"Running":false,"ExitCode":7,"StartedAt":"2025-06-01T12:00:00Z","FinishedAt":"2025-06-01T12:05:00Z"}`)

	code, err := c.StreamLogs(context.Background(), "claude-alpha", func([]byte) {})
	require.NoError(t, err)
	require.Equal(t, 7, code)
}

func TestStreamLogsUnknownExitWhenContainerVanished(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_WAIT_ERROR", "1")
	t.Setenv("FAKE_INSPECT_EXIT", "1")

	code, err := c.StreamLogs(context.Background(), "claude-ghost", func([]byte) {})
	require.NoError(t, err)
	require.Equal(t, -1, code)
}

func TestGetLogsGoneContainerIsNil(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_LOGS_EXIT", "1")

	data, err := c.GetLogs(context.Background(), "claude-ghost", LogsOptions{})
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestGetStatusParsesState(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_STATE", `{"Running":true,"ExitCode":0,"OOMKilled":false,"StartedAt":"2025-06-01T12:00:00.5Z","FinishedAt":"0001-01-01T00:00:00Z"}`)

	status, err := c.GetStatus(context.Background(), "claude-alpha")
	require.NoError(t, err)
	require.NotNil(t, status)
	require.True(t, status.Running)
	require.Equal(t, 2025, status.StartedAt.Year())
	require.True(t, status.FinishedAt.IsZero())
}

func TestGetStatusAbsentContainer(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_INSPECT_EXIT", "1")

	status, err := c.GetStatus(context.Background(), "claude-ghost")
	require.NoError(t, err)
	require.Nil(t, status)
}

func TestGetStatsNotRunningIsNil(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_STATS_EXIT", "1")

	stats, err := c.GetStats(context.Background(), "claude-ghost")
	require.NoError(t, err)
	require.Nil(t, stats)
}

func TestGetStatsParsesUsage(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_STATS", `{"CPUPerc":"42.00%","MemPerc":"10.00%","MemUsage":"512MiB / 4GiB"}`)

	stats, err := c.GetStats(context.Background(), "claude-alpha")
	require.NoError(t, err)
	require.NotNil(t, stats)
	require.InDelta(t, 42.0, stats.CPUPct, 0.001)
	require.InDelta(t, 512, stats.MemMB, 0.001)
}

func TestListByPrefixFiltersAndParses(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_PS", `{"Names":"claude-alpha","State":"running","CreatedAt":"2025-06-01 12:00:00 +0000 UTC"}
{"Names":"claude-beta","State":"exited","CreatedAt":"2025-06-01 11:00:00 +0000 UTC"}
{"Names":"claudette","State":"running","CreatedAt":"bogus"}
not json at all
`)

	containers, err := c.ListByPrefix(context.Background(), "claude-")
	require.NoError(t, err)
	require.Len(t, containers, 2)

	require.Equal(t, "claude-alpha", containers[0].Name)
	require.True(t, containers[0].Running)
	require.Equal(t, time.June, containers[0].CreatedAt.Month())

	require.Equal(t, "claude-beta", containers[1].Name)
	require.False(t, containers[1].Running)
}

func TestKillNeverErrors(t *testing.T) {
	c := newFakeClient(t)
	t.Setenv("FAKE_RM_EXIT", "1")

	// Kill has no error to return; it must simply not panic or block.
	c.Kill(context.Background(), "claude-ghost")
}
