package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Container.Image != DefaultImage {
		t.Fatalf("expected default image, got %q", cfg.Container.Image)
	}
	if cfg.Session.IdleTimeoutSeconds != DefaultIdleTimeoutSeconds {
		t.Fatalf("expected default idle timeout, got %d", cfg.Session.IdleTimeoutSeconds)
	}
	if cfg.Cleanup.Schedule != DefaultCleanupSchedule {
		t.Fatalf("expected default cleanup schedule, got %q", cfg.Cleanup.Schedule)
	}
	want := filepath.Join(home, ".local", "state", "claudepod", "sessions")
	if cfg.Storage.SessionsDir != want {
		t.Fatalf("expected default sessions dir %q, got %q", want, cfg.Storage.SessionsDir)
	}
}

func TestLoadExplicitOverridesGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	globalDir := filepath.Join(home, ".config", "claudepod")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, globalDir, "claudepod.toml", `
[container]
image = "global-image"
memory-mb = 1024

[webhook]
url = "https://global.example.com/hook"
`)

	explicit := writeConfig(t, t.TempDir(), "claudepod.toml", `
[container]
image = "local-image"
`)

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Container.Image != "local-image" {
		t.Fatalf("expected explicit image to win, got %q", cfg.Container.Image)
	}
	if cfg.Container.MemoryMB != 1024 {
		t.Fatalf("expected global memory limit to survive, got %d", cfg.Container.MemoryMB)
	}
	if cfg.Webhook.URL != "https://global.example.com/hook" {
		t.Fatalf("expected global webhook url, got %q", cfg.Webhook.URL)
	}
}

func TestLoadExpandsHomeInDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	explicit := writeConfig(t, t.TempDir(), "claudepod.toml", `
[storage]
sessions-dir = "~/custom/sessions"
`)

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := filepath.Join(home, "custom", "sessions")
	if cfg.Storage.SessionsDir != want {
		t.Fatalf("expected %q, got %q", want, cfg.Storage.SessionsDir)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	explicit := writeConfig(t, t.TempDir(), "claudepod.toml", "[container\nimage=")
	if _, err := Load(explicit); err == nil {
		t.Fatal("expected parse error")
	}
}
