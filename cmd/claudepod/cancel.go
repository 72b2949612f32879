package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/supervisor"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a running job",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

var cancelSession string

func init() {
	cancelCmd.Flags().StringVar(&cancelSession, "session", "", "session key owning the job (searched when omitted)")
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	result, err := a.supervisor.Cancel(cmd.Context(), args[0], cancelSession)
	if errors.Is(err, supervisor.ErrJobNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "job %s not found\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	if result.AlreadyTerminal {
		fmt.Fprintf(cmd.OutOrStdout(), "job %s already %s\n", result.JobID, result.Status)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "job %s cancelled\n", result.JobID)
	return nil
}
