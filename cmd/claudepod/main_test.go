package main

import "testing"

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "claudepod" {
		t.Fatalf("expected root command name claudepod, got %q", rootCmd.Use)
	}
}

func TestAllOperationsRegistered(t *testing.T) {
	want := map[string]bool{
		"start":    false,
		"status":   false,
		"output":   false,
		"cancel":   false,
		"cleanup":  false,
		"sessions": false,
		"jobs":     false,
		"serve":    false,
		"attach":   false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("expected %s command to be registered", name)
		}
	}
}

func TestVersionString(t *testing.T) {
	if versionString() == "" {
		t.Fatal("expected a version string")
	}
}
