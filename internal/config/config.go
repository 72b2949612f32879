// Package config handles loading claudepod.toml configuration files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/13rac1/claudepod/internal/paths"
)

// Default values applied when a key is absent from every config file.
const (
	DefaultImage              = "claudepod-runner:latest"
	DefaultMemoryMB           = 4096
	DefaultCPUs               = 2.0
	DefaultIdleTimeoutSeconds = 3600
	DefaultCleanupSchedule    = "@every 10m"
)

// Config represents the claudepod.toml configuration file.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Container Container `toml:"container"`
	Session   Session   `toml:"session"`
	Webhook   Webhook   `toml:"webhook"`
	Cleanup   Cleanup   `toml:"cleanup"`
}

// Storage contains on-disk layout configuration.
type Storage struct {
	// SessionsDir holds session records, job records, and output logs.
	// A leading ~ expands to the user's home directory.
	SessionsDir string `toml:"sessions-dir"`

	// WorkspacesDir holds per-session workspace directories.
	// A leading ~ expands to the user's home directory.
	WorkspacesDir string `toml:"workspaces-dir"`
}

// Container contains container runtime configuration.
type Container struct {
	// Image is the container image jobs run in.
	Image string `toml:"image"`
	// MemoryMB is the container memory limit in megabytes.
	MemoryMB int `toml:"memory-mb"`
	// CPUs is the container CPU limit.
	CPUs float64 `toml:"cpus"`
	// Network selects the container network mode; empty uses the runtime default.
	Network string `toml:"network"`
}

// Session contains session lifecycle configuration.
type Session struct {
	// IdleTimeoutSeconds is how long a session may sit idle before cleanup
	// deletes it.
	IdleTimeoutSeconds int `toml:"idle-timeout-seconds"`
}

// Webhook contains completion notification configuration.
type Webhook struct {
	// URL receives a POST for every terminal job transition. Empty disables
	// notifications.
	URL string `toml:"url"`
}

// Cleanup contains the serve-mode cleanup scheduler configuration.
type Cleanup struct {
	// Schedule is a cron spec (robfig/cron standard format, @every accepted).
	Schedule string `toml:"schedule"`
}

// Load loads configuration from the global config file and an optional
// explicit path. Keys in the explicit file win. Returns defaults if no
// config files exist.
func Load(explicitPath string) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	localCfg, localMeta := &Config{}, toml.MetaData{}
	if explicitPath != "" {
		localCfg, localMeta, err = loadConfigFile(explicitPath)
		if err != nil {
			return nil, err
		}
	}

	merged := mergeConfigs(globalCfg, localCfg, globalMeta, localMeta)
	if err := merged.applyDefaults(); err != nil {
		return nil, err
	}
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, localCfg *Config, globalMeta, localMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if localCfg == nil {
		localCfg = &Config{}
	}

	merged := Config{}
	merged.Storage.SessionsDir = mergeString(localMeta.IsDefined("storage", "sessions-dir"), localCfg.Storage.SessionsDir, globalCfg.Storage.SessionsDir)
	merged.Storage.WorkspacesDir = mergeString(localMeta.IsDefined("storage", "workspaces-dir"), localCfg.Storage.WorkspacesDir, globalCfg.Storage.WorkspacesDir)
	merged.Container.Image = mergeString(localMeta.IsDefined("container", "image"), localCfg.Container.Image, globalCfg.Container.Image)
	merged.Container.Network = mergeString(localMeta.IsDefined("container", "network"), localCfg.Container.Network, globalCfg.Container.Network)
	merged.Webhook.URL = mergeString(localMeta.IsDefined("webhook", "url"), localCfg.Webhook.URL, globalCfg.Webhook.URL)
	merged.Cleanup.Schedule = mergeString(localMeta.IsDefined("cleanup", "schedule"), localCfg.Cleanup.Schedule, globalCfg.Cleanup.Schedule)

	merged.Container.MemoryMB = mergeInt(localMeta.IsDefined("container", "memory-mb"), localCfg.Container.MemoryMB, globalCfg.Container.MemoryMB)
	merged.Session.IdleTimeoutSeconds = mergeInt(localMeta.IsDefined("session", "idle-timeout-seconds"), localCfg.Session.IdleTimeoutSeconds, globalCfg.Session.IdleTimeoutSeconds)
	if localMeta.IsDefined("container", "cpus") {
		merged.Container.CPUs = localCfg.Container.CPUs
	} else {
		merged.Container.CPUs = globalCfg.Container.CPUs
	}

	return &merged
}

func mergeString(localDefined bool, localValue, globalValue string) string {
	value := globalValue
	if localDefined {
		value = localValue
	}
	return strings.TrimSpace(value)
}

func mergeInt(localDefined bool, localValue, globalValue int) int {
	if localDefined {
		return localValue
	}
	return globalValue
}

func (c *Config) applyDefaults() error {
	if c.Storage.SessionsDir == "" {
		dir, err := paths.DefaultSessionsDir()
		if err != nil {
			return err
		}
		c.Storage.SessionsDir = dir
	} else {
		dir, err := paths.ExpandHome(c.Storage.SessionsDir)
		if err != nil {
			return err
		}
		c.Storage.SessionsDir = dir
	}

	if c.Storage.WorkspacesDir == "" {
		dir, err := paths.DefaultWorkspacesDir()
		if err != nil {
			return err
		}
		c.Storage.WorkspacesDir = dir
	} else {
		dir, err := paths.ExpandHome(c.Storage.WorkspacesDir)
		if err != nil {
			return err
		}
		c.Storage.WorkspacesDir = dir
	}

	if c.Container.Image == "" {
		c.Container.Image = DefaultImage
	}
	if c.Container.MemoryMB <= 0 {
		c.Container.MemoryMB = DefaultMemoryMB
	}
	if c.Container.CPUs <= 0 {
		c.Container.CPUs = DefaultCPUs
	}
	if c.Session.IdleTimeoutSeconds <= 0 {
		c.Session.IdleTimeoutSeconds = DefaultIdleTimeoutSeconds
	}
	if c.Cleanup.Schedule == "" {
		c.Cleanup.Schedule = DefaultCleanupSchedule
	}
	return nil
}
