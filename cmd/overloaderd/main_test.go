package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandRejectsMissingConfigValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"HEVY_API_KEY", "WEBHOOK_TOKEN", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(key, "")
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "hevy.api_key is required") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}

func TestRootCommandRejectsArguments(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected positional arguments to be rejected")
	}
}
