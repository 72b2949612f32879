package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resident supervisor",
	Long: `Serve reconciles persisted jobs against actual container state,
then keeps running: idle sessions are cleaned up on the configured cron
schedule until the process is interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	schedule := a.config.Cleanup.Schedule
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	ctx := cmd.Context()
	a.supervisor.Reconcile(ctx)
	fmt.Fprintln(cmd.OutOrStdout(), "reconciliation finished")

	scheduler := cron.New()
	_, err = scheduler.AddFunc(schedule, func() {
		result, err := a.supervisor.Cleanup(ctx, false)
		if err != nil {
			a.log.Warn("scheduled cleanup", "error", err)
			return
		}
		if len(result.Removed) > 0 {
			a.log.Info("scheduled cleanup removed sessions", "count", len(result.Removed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	scheduler.Start()
	fmt.Fprintf(cmd.OutOrStdout(), "cleanup scheduled (%s); press ctrl-c to stop\n", schedule)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	signal.Stop(interrupt)

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	a.supervisor.Wait()
	return nil
}
