// Package main implements the claudepod CLI tool.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/docker"
	"github.com/13rac1/claudepod/internal/config"
	"github.com/13rac1/claudepod/internal/logging"
	"github.com/13rac1/claudepod/internal/store"
	"github.com/13rac1/claudepod/notify"
	"github.com/13rac1/claudepod/supervisor"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "claudepod",
	Short: "Claudepod - supervise Claude Code jobs in containers",
	Long: `Claudepod runs prompts as detached containers, captures their
transcripts, and tracks per-session job state on disk.`,
	SilenceUsage: true,
}

var (
	flagConfig  string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to claudepod.toml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// exitError carries a subprocess exit code through cobra.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func (e exitError) ExitCode() int {
	return e.code
}

// app bundles everything a subcommand needs.
type app struct {
	config     *config.Config
	store      *store.Store
	supervisor *supervisor.Supervisor
	log        *slog.Logger
}

// openApp loads config, probes authentication, and wires the supervisor.
func openApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	log := logging.New(flagVerbose)

	st := store.New(store.Options{
		SessionsDir:   cfg.Storage.SessionsDir,
		WorkspacesDir: cfg.Storage.WorkspacesDir,
		IdleTimeout:   time.Duration(cfg.Session.IdleTimeoutSeconds) * time.Second,
		Log:           log,
	})

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Webhook.URL != "" {
		hook, err := notify.NewWebhook(cfg.Webhook.URL)
		if err != nil {
			return nil, err
		}
		notifier = hook
	}

	auth := discoverAuth()

	sup := supervisor.New(supervisor.Options{
		Store:          st,
		Runtime:        docker.NewClient(log),
		Notifier:       notifier,
		Log:            log,
		Image:          cfg.Container.Image,
		MemoryMB:       cfg.Container.MemoryMB,
		CPUs:           cfg.Container.CPUs,
		Network:        cfg.Container.Network,
		HasCredentials: auth.available,
		CredentialFile: auth.credentialFile,
		Env:            auth.env,
	})

	return &app{
		config:     cfg,
		store:      st,
		supervisor: sup,
		log:        log,
	}, nil
}
