package docker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunArgsFullOptions(t *testing.T) {
	args := runArgs(StartOptions{
		Name:          "claude-alpha",
		Image:         "claudepod-runner:latest",
		Prompt:        "hello",
		WorkspaceDir:  "/home/u/ws/alpha",
		CredentialDir: "/home/u/.local/state/claudepod/sessions/alpha/.claude",
		Env:           map[string]string{"B": "2", "A": "1"},
		MemoryMB:      4096,
		CPUs:          2,
		Network:       "none",
	})

	joined := strings.Join(args, " ")
	require.True(t, strings.HasPrefix(joined, "run -d --name claude-alpha"))
	require.Contains(t, joined, "--memory 4096m")
	require.Contains(t, joined, "--cpus 2")
	require.Contains(t, joined, "--network none")
	require.Contains(t, joined, "-v /home/u/ws/alpha:/workspace -w /workspace")
	require.Contains(t, joined, "-v /home/u/.local/state/claudepod/sessions/alpha/.claude:/home/claude/.claude")
	// Env flags are emitted in sorted key order.
	require.Contains(t, joined, "-e A=1 -e B=2")
	require.True(t, strings.HasSuffix(joined, "claudepod-runner:latest claude -p hello --output-format stream-json --verbose"))
}

func TestRunArgsMinimalOptions(t *testing.T) {
	args := runArgs(StartOptions{
		Name:   "claude-",
		Image:  "img",
		Prompt: "p",
	})

	joined := strings.Join(args, " ")
	require.Equal(t, "run -d --name claude- img claude -p p --output-format stream-json --verbose", joined)
}

func TestRunArgsResume(t *testing.T) {
	args := runArgs(StartOptions{
		Name:            "claude-alpha",
		Image:           "img",
		Prompt:          "continue",
		ResumeSessionID: "sess-42",
	})

	joined := strings.Join(args, " ")
	require.Contains(t, joined, "--resume sess-42")
}

func TestLogsArgs(t *testing.T) {
	require.Equal(t, []string{"logs", "claude-a"}, logsArgs("claude-a", LogsOptions{}))
	require.Equal(t,
		[]string{"logs", "--since", "10m", "--tail", "200", "claude-a"},
		logsArgs("claude-a", LogsOptions{Since: "10m", Tail: 200}))
}
