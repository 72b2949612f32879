package docker

import (
	"fmt"
	"sort"
	"strconv"
)

// assistantCommand is the fixed command shape jobs run inside the
// container. The transcript arrives as newline-delimited JSON on stdout.
func assistantCommand(prompt, resumeSessionID string) []string {
	cmd := []string{"claude", "-p", prompt, "--output-format", "stream-json", "--verbose"}
	if resumeSessionID != "" {
		cmd = append(cmd, "--resume", resumeSessionID)
	}
	return cmd
}

// runArgs builds the docker CLI arguments for a detached job container.
func runArgs(opts StartOptions) []string {
	args := []string{"run", "-d", "--name", opts.Name}

	if opts.MemoryMB > 0 {
		args = append(args, "--memory", fmt.Sprintf("%dm", opts.MemoryMB))
	}
	if opts.CPUs > 0 {
		args = append(args, "--cpus", strconv.FormatFloat(opts.CPUs, 'f', -1, 64))
	}
	if opts.Network != "" {
		args = append(args, "--network", opts.Network)
	}
	if opts.WorkspaceDir != "" {
		args = append(args, "-v", opts.WorkspaceDir+":/workspace", "-w", "/workspace")
	}
	if opts.CredentialDir != "" {
		args = append(args, "-v", opts.CredentialDir+":/home/claude/.claude")
	}

	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}

	args = append(args, opts.Image)
	args = append(args, assistantCommand(opts.Prompt, opts.ResumeSessionID)...)
	return args
}

// logsArgs builds the docker CLI arguments for a bounded log fetch.
func logsArgs(name string, opts LogsOptions) []string {
	args := []string{"logs"}
	if opts.Since != "" {
		args = append(args, "--since", opts.Since)
	}
	if opts.Tail > 0 {
		args = append(args, "--tail", strconv.Itoa(opts.Tail))
	}
	return append(args, name)
}
