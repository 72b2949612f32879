package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete idle sessions",
	Long: `Cleanup removes sessions whose last activity is older than the
configured idle timeout. Workspaces are preserved unless
--delete-workspaces is given; they hold user code.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

var cleanupDeleteWorkspaces bool

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDeleteWorkspaces, "delete-workspaces", false, "also delete the removed sessions' workspaces")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	result, err := a.supervisor.Cleanup(cmd.Context(), cleanupDeleteWorkspaces)
	if err != nil {
		return err
	}

	if len(result.Removed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no idle sessions")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d session(s): %s\n",
		len(result.Removed), strings.Join(result.Removed, ", "))
	return nil
}
