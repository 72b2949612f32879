package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/13rac1/claudepod/docker"
)

var attachCmd = &cobra.Command{
	Use:   "attach <session>",
	Short: "Open a shell inside a session's running container",
	Long: `Attach starts an interactive shell in the session's job container
for debugging. The job keeps running; detach with exit or ctrl-d.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	containerName := docker.ContainerName(args[0])

	shell := exec.Command("docker", "exec", "-it", containerName, "/bin/bash")
	ptmx, err := pty.Start(shell)
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	// Track terminal resizes for the lifetime of the shell.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go func() {
		for range winch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				continue
			}
		}
	}()
	winch <- syscall.SIGWINCH
	defer func() {
		signal.Stop(winch)
		close(winch)
	}()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("set raw terminal: %w", err)
	}
	defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(os.Stdout, ptmx)

	if err := shell.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitError{code: exitErr.ExitCode()}
		}
		return err
	}
	return nil
}
