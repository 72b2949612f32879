package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/internal/age"
	"github.com/13rac1/claudepod/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List a session's jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

var (
	jobsSession string
	jobsStatus  string
)

func init() {
	jobsCmd.Flags().StringVar(&jobsSession, "session", "default", "session key to list")
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "only show jobs with this status")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	var filter store.JobStatus
	if jobsStatus != "" {
		filter, err = store.ParseJobStatus(jobsStatus)
		if err != nil {
			return err
		}
	}

	jobs, err := a.supervisor.Jobs(cmd.Context(), jobsSession, filter)
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no jobs")
		return nil
	}

	now := time.Now()
	headers := []string{"JOB", "STATUS", "AGE", "ELAPSED", "PROMPT"}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		elapsed := "-"
		if d, ok := age.ElapsedData(job.CreatedAt, job.StartedAt, job.CompletedAt, now); ok {
			elapsed = age.FormatShort(d)
		}
		rows = append(rows, []string{
			job.JobID,
			string(job.Status),
			age.FormatAgo(job.CreatedAt, now),
			elapsed,
			truncateTableCell(job.Prompt),
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), formatTable(headers, rows))
	return nil
}
