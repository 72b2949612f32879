// Package testsupport provides helpers for CLI-level tests.
package testsupport

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce     sync.Once
	claudepodPath string
	buildErr      error
)

// BuildClaudepod builds the claudepod binary once and returns its path.
func BuildClaudepod(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "claudepod-bin-")
		if err != nil {
			buildErr = err
			return
		}

		claudepodPath = filepath.Join(binDir, "claudepod")
		cmd := exec.Command("go", "build", "-o", claudepodPath, "./cmd/claudepod")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build claudepod: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("build claudepod binary: %v", buildErr)
	}
	return claudepodPath
}

// SetupScriptEnv prepares a testscript environment: an isolated HOME and
// the claudepod binary on PATH.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	binary := BuildClaudepod(t)

	home := filepath.Join(env.WorkDir, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		return fmt.Errorf("create script home: %w", err)
	}

	env.Setenv("HOME", home)
	env.Setenv("PATH", filepath.Dir(binary)+string(os.PathListSeparator)+env.Getenv("PATH"))
	return nil
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
