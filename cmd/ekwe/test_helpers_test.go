package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir     string
	configPath  string
	datasetPath string
}

func setupCLITestEnv(t *testing.T, datasetJSON string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")

	datasetPath := filepath.Join(base, "dictionary.json")
	if err := os.WriteFile(datasetPath, []byte(datasetJSON), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[github]\nrepo = \"owner/words\"\n\n[paths]\ndataset_file = %q\naudio_dir = %q\nstate_dir = %q\nlog_dir = %q\n",
		datasetPath,
		filepath.Join(base, "assets", "audio"),
		filepath.Join(base, "state"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:     base,
		configPath:  configPath,
		datasetPath: datasetPath,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
