package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/internal/age"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	summaries, err := a.supervisor.Sessions(cmd.Context())
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
		return nil
	}

	headers := []string{"SESSION", "AGE", "IDLE", "MSGS", "ACTIVE JOB"}
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		activeJob := "-"
		if summary.ActiveJob != nil {
			activeJob = fmt.Sprintf("%s (%s, %s)",
				truncateTableCell(summary.ActiveJob.JobID),
				summary.ActiveJob.Status,
				age.FormatShort(secondsToDuration(summary.ActiveJob.ElapsedSeconds)))
		}
		rows = append(rows, []string{
			summary.SessionKey,
			age.FormatShort(summary.Age),
			age.FormatShort(summary.TimeSinceActive),
			strconv.Itoa(summary.MessageCount),
			activeJob,
		})
	}

	fmt.Fprint(cmd.OutOrStdout(), formatTable(headers, rows))
	return nil
}
