package paths

import (
	"path/filepath"
	"testing"
)

func TestDefaultSessionsDirUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultSessionsDir()
	if err != nil {
		t.Fatalf("default sessions dir: %v", err)
	}

	want := filepath.Join(home, ".local", "state", "claudepod", "sessions")
	if dir != want {
		t.Fatalf("expected %q, got %q", want, dir)
	}
}

func TestDefaultWorkspacesDirUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := DefaultWorkspacesDir()
	if err != nil {
		t.Fatalf("default workspaces dir: %v", err)
	}

	want := filepath.Join(home, ".local", "share", "claudepod", "workspaces")
	if dir != want {
		t.Fatalf("expected %q, got %q", want, dir)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/sessions", filepath.Join(home, "sessions")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~user/path", "~user/path"},
	}

	for _, tt := range tests {
		got, err := ExpandHome(tt.input)
		if err != nil {
			t.Fatalf("expand %q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("expand %q: expected %q, got %q", tt.input, tt.want, got)
		}
	}
}
