package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/internal/age"
	"github.com/13rac1/claudepod/supervisor"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Inspect a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusSession string

func init() {
	statusCmd.Flags().StringVar(&statusSession, "session", "", "session key owning the job (searched when omitted)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	result, err := a.supervisor.Status(cmd.Context(), args[0], statusSession)
	if errors.Is(err, supervisor.ErrJobNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "job %s not found\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("job"), result.JobID)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("session"), result.SessionKey)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("status"), styledStatus(result.Status))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("elapsed"), age.FormatShort(time.Duration(result.ElapsedSeconds)*time.Second))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("activity"), string(result.ActivityState))
	fmt.Fprintf(out, "%s %d bytes", labelStyle.Render("output"), result.OutputSize)
	if result.OutputSize > 0 {
		fmt.Fprintf(out, " (last write %s)", age.FormatShort(time.Duration(result.LastOutputSecondsAgo)*time.Second))
	}
	fmt.Fprintln(out)

	if result.ExitCode != nil {
		fmt.Fprintf(out, "%s %d\n", labelStyle.Render("exit"), *result.ExitCode)
	}
	if result.ErrorKind != "" {
		fmt.Fprintf(out, "%s %s: %s\n", labelStyle.Render("error"), result.ErrorKind, result.ErrorMessage)
	}
	if result.Metrics != nil {
		fmt.Fprintf(out, "%s cpu %.1f%%, mem %.0f/%.0f MB\n",
			labelStyle.Render("usage"), result.Metrics.CPUPct, result.Metrics.MemMB, result.Metrics.MemLimitMB)
	}
	if result.TailOutput != "" {
		fmt.Fprintf(out, "\n%s\n%s\n", dimStyle.Render("--- tail ---"), wrapToTerminal(result.TailOutput))
	}
	return nil
}
