package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// GitHub contains connection settings for the tracker repository.
type GitHub struct {
	Repo           string `toml:"repo"`
	Token          string `toml:"token"`
	BaseURL        string `toml:"base_url"`
	UploadBaseURL  string `toml:"upload_base_url"`
	Branch         string `toml:"branch"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Reconcile contains settings for the issue reconciliation pass.
type Reconcile struct {
	Label           string `toml:"label"`
	TitlePrefix     string `toml:"title_prefix"`
	MaxCreations    int    `toml:"max_creations"`
	PaceMillis      int    `toml:"pace_ms"`
	RetryAttempts   int    `toml:"retry_attempts"`
	RetryBaseMillis int    `toml:"retry_base_ms"`
	OnRateLimit     string `toml:"on_rate_limit"`
	DuplicatePolicy string `toml:"duplicate_policy"`
}

// Harvest contains settings for the audio harvesting pass.
type Harvest struct {
	ResolvedLabel  string   `toml:"resolved_label"`
	StrictHosts    bool     `toml:"strict_hosts"`
	TrustedHosts   []string `toml:"trusted_hosts"`
	AudioExtension string   `toml:"audio_extension"`
}

// Paths contains file and directory configuration.
type Paths struct {
	DatasetFile string `toml:"dataset_file"`
	AudioDir    string `toml:"audio_dir"`
	// AudioURLPath is the asset directory as it appears inside the hosted
	// repository, used when building raw-content URLs. It stays relative
	// while AudioDir is expanded to a local absolute path.
	AudioURLPath string `toml:"audio_url_path"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Rate limit policies accepted by [reconcile] on_rate_limit.
const (
	RateLimitRetry = "retry"
	RateLimitAbort = "abort"
)

// Duplicate removal policies accepted by [reconcile] duplicate_policy.
const (
	DuplicateClose  = "close"
	DuplicateDelete = "delete"
)

// Config encapsulates all configuration values for ekwe.
//
// Configuration sections by subsystem:
//   - GitHub: tracker repository, credential, and endpoints
//   - Reconcile: issue creation label, pacing, caps, and policies
//   - Harvest: resolved-issue label and candidate strictness
//   - Paths: dataset file, audio asset directory, state and log directories
//   - Logging: log format and level
type Config struct {
	GitHub    GitHub    `toml:"github"`
	Reconcile Reconcile `toml:"reconcile"`
	Harvest   Harvest   `toml:"harvest"`
	Paths     Paths     `toml:"paths"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ekwe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg, resolvedPath, exists, err := Inspect(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

// Inspect locates and parses a configuration file without validating it.
// Commands that only display effective values use it so they still work on a
// fresh install, before required fields like github.repo are filled in. Path
// fields are expanded and normalized the same way Load does.
func Inspect(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ekwe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AudioDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireToken fails when no tracker credential is configured. Mutating
// commands call this before any remote call; read-only commands do not.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.GitHub.Token) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/ekwe/config.toml"
		}
		return fmt.Errorf("github.token is required. Set GH_TOKEN env var or edit %s (create with 'ekwe config init')", defaultPath)
	}
	return nil
}

// LockFilePath returns the flock path guarding mutating runs.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.Paths.StateDir, "ekwe.lock")
}

// IssuedDBPath returns the path of the issued-words cache database.
func (c *Config) IssuedDBPath() string {
	return filepath.Join(c.Paths.StateDir, "issued.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
