package main

import (
	"os"
	"path/filepath"
)

// authCapability is what credential discovery found on the host. The
// supervisor core only sees the boolean; the file and env are opaque
// material handed to the container.
type authCapability struct {
	available      bool
	credentialFile string
	env            map[string]string
}

// discoverAuth probes for assistant credentials: a Claude credential file
// in the user's home, falling back to an API key in the environment.
func discoverAuth() authCapability {
	if home, err := os.UserHomeDir(); err == nil {
		credFile := filepath.Join(home, ".claude", ".credentials.json")
		if info, err := os.Stat(credFile); err == nil && !info.IsDir() {
			return authCapability{available: true, credentialFile: credFile}
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return authCapability{
			available: true,
			env:       map[string]string{"ANTHROPIC_API_KEY": key},
		}
	}

	return authCapability{}
}
