package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ekwe/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	path := writeConfig(t, `
[github]
repo = "owner/words"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %v %v", resolved, exists)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("base url default: %q", cfg.GitHub.BaseURL)
	}
	if cfg.Reconcile.Label != "audio-needed" {
		t.Errorf("label default: %q", cfg.Reconcile.Label)
	}
	if cfg.Harvest.ResolvedLabel != cfg.Reconcile.Label {
		t.Errorf("resolved label should fall back to reconcile label, got %q", cfg.Harvest.ResolvedLabel)
	}
	if cfg.Harvest.AudioExtension != ".mp3" {
		t.Errorf("audio extension default: %q", cfg.Harvest.AudioExtension)
	}
	if !filepath.IsAbs(cfg.Paths.DatasetFile) {
		t.Errorf("dataset file should be absolute, got %q", cfg.Paths.DatasetFile)
	}
}

func TestInspectSkipsValidation(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if exists || resolved != path {
		t.Fatalf("unexpected resolution: %v %v", resolved, exists)
	}
	if cfg.GitHub.Repo != "" {
		t.Fatalf("fresh install should have no repo, got %q", cfg.GitHub.Repo)
	}
	if cfg.Reconcile.Label != "audio-needed" {
		t.Errorf("label default: %q", cfg.Reconcile.Label)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "github.repo") {
		t.Fatalf("Load must still reject the missing repo, got %v", err)
	}
}

func TestLoadRejectsMalformedRepo(t *testing.T) {
	path := writeConfig(t, `
[github]
repo = "not-a-repo"
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "owner/name") {
		t.Fatalf("expected owner/name validation error, got %v", err)
	}
}

func TestLoadRejectsUnknownPolicies(t *testing.T) {
	path := writeConfig(t, `
[github]
repo = "owner/words"

[reconcile]
duplicate_policy = "shred"
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "duplicate_policy") {
		t.Fatalf("expected duplicate_policy error, got %v", err)
	}

	path = writeConfig(t, `
[github]
repo = "owner/words"

[reconcile]
on_rate_limit = "panic"
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "on_rate_limit") {
		t.Fatalf("expected on_rate_limit error, got %v", err)
	}
}

func TestEnvironmentTokenWins(t *testing.T) {
	t.Setenv("GH_TOKEN", "env-token")
	path := writeConfig(t, `
[github]
repo = "owner/words"
token = "file-token"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Token != "env-token" {
		t.Fatalf("expected environment token to win, got %q", cfg.GitHub.Token)
	}
}

func TestStrictHostsRequiresTrustedHosts(t *testing.T) {
	path := writeConfig(t, `
[github]
repo = "owner/words"

[harvest]
strict_hosts = true
`)
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "trusted_hosts") {
		t.Fatalf("expected trusted_hosts error, got %v", err)
	}
}

func TestRequireToken(t *testing.T) {
	t.Setenv("GH_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	path := writeConfig(t, `
[github]
repo = "owner/words"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireToken(); err == nil {
		t.Fatal("expected missing token error")
	}
	cfg.GitHub.Token = "tok"
	if err := cfg.RequireToken(); err != nil {
		t.Fatalf("unexpected token error: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[reconcile]") {
		t.Fatal("sample config missing reconcile section")
	}
}
