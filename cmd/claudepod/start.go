package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start [prompt]",
	Short: "Run a prompt as a new job",
	Long: `Start launches a detached container running the prompt and returns
immediately with the job id. Use status and output to follow it. With no
prompt argument the prompt is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var (
	startSession string
	startWait    bool
)

func init() {
	startCmd.Flags().StringVar(&startSession, "session", "default", "session key the job belongs to")
	startCmd.Flags().BoolVar(&startWait, "wait", false, "stay attached until the job reaches a terminal state")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	prompt, err := resolvePrompt(args, os.Stdin)
	if err != nil {
		return err
	}

	result, err := a.supervisor.Start(cmd.Context(), startSession, prompt)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "job %s started in session %s (%s)\n",
		result.JobID, result.SessionKey, result.Status)

	if !startWait {
		// The container keeps running detached. Without a resident watcher
		// the status path classifies the result on the next inspection.
		return nil
	}

	a.supervisor.Wait()
	status, err := a.supervisor.Status(cmd.Context(), result.JobID, result.SessionKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "job %s finished: %s\n", status.JobID, status.Status)
	if status.ErrorMessage != "" {
		fmt.Fprintln(cmd.OutOrStdout(), status.ErrorMessage)
	}
	return nil
}

func resolvePrompt(args []string, reader io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}

	prompt := strings.TrimSuffix(string(data), "\n")
	prompt = strings.TrimSuffix(prompt, "\r")
	return prompt, nil
}
