package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGitHub()
	c.normalizeReconcile()
	c.normalizeHarvest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DatasetFile) == "" {
		c.Paths.DatasetFile = defaultDatasetFile
	}
	if c.Paths.DatasetFile, err = expandPath(c.Paths.DatasetFile); err != nil {
		return fmt.Errorf("paths.dataset_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	c.Paths.AudioURLPath = strings.Trim(strings.TrimSpace(c.Paths.AudioURLPath), "/")
	if c.Paths.AudioURLPath == "" {
		c.Paths.AudioURLPath = defaultAudioURLPath
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGitHub() {
	c.GitHub.Repo = strings.TrimSpace(c.GitHub.Repo)

	// The environment wins over the file so CI can inject a short-lived token.
	if value, ok := os.LookupEnv("GH_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.GitHub.Token = value
	} else if value, ok := os.LookupEnv("GITHUB_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.GitHub.Token = value
	}
	c.GitHub.Token = strings.TrimSpace(c.GitHub.Token)

	c.GitHub.BaseURL = strings.TrimRight(strings.TrimSpace(c.GitHub.BaseURL), "/")
	if c.GitHub.BaseURL == "" {
		c.GitHub.BaseURL = defaultBaseURL
	}
	c.GitHub.UploadBaseURL = strings.TrimRight(strings.TrimSpace(c.GitHub.UploadBaseURL), "/")
	if c.GitHub.UploadBaseURL == "" {
		c.GitHub.UploadBaseURL = defaultUploadBaseURL
	}
	c.GitHub.Branch = strings.TrimSpace(c.GitHub.Branch)
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = defaultBranch
	}
	if c.GitHub.RequestTimeout <= 0 {
		c.GitHub.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeReconcile() {
	c.Reconcile.Label = strings.TrimSpace(c.Reconcile.Label)
	if c.Reconcile.Label == "" {
		c.Reconcile.Label = defaultLabel
	}
	if c.Reconcile.TitlePrefix == "" {
		c.Reconcile.TitlePrefix = defaultTitlePrefix
	}
	if c.Reconcile.MaxCreations <= 0 {
		c.Reconcile.MaxCreations = defaultMaxCreations
	}
	if c.Reconcile.PaceMillis < 0 {
		c.Reconcile.PaceMillis = defaultPaceMillis
	}
	if c.Reconcile.RetryAttempts <= 0 {
		c.Reconcile.RetryAttempts = defaultRetryAttempts
	}
	if c.Reconcile.RetryBaseMillis <= 0 {
		c.Reconcile.RetryBaseMillis = defaultRetryBaseMillis
	}
	c.Reconcile.OnRateLimit = strings.ToLower(strings.TrimSpace(c.Reconcile.OnRateLimit))
	if c.Reconcile.OnRateLimit == "" {
		c.Reconcile.OnRateLimit = defaultOnRateLimit
	}
	c.Reconcile.DuplicatePolicy = strings.ToLower(strings.TrimSpace(c.Reconcile.DuplicatePolicy))
	if c.Reconcile.DuplicatePolicy == "" {
		c.Reconcile.DuplicatePolicy = defaultDuplicatePolicy
	}
}

func (c *Config) normalizeHarvest() {
	// The label used to find resolved issues is explicit configuration; it
	// defaults to the creation label instead of being inferred mid-run.
	c.Harvest.ResolvedLabel = strings.TrimSpace(c.Harvest.ResolvedLabel)
	if c.Harvest.ResolvedLabel == "" {
		c.Harvest.ResolvedLabel = c.Reconcile.Label
	}
	hosts := c.Harvest.TrustedHosts[:0]
	for _, host := range c.Harvest.TrustedHosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host != "" {
			hosts = append(hosts, host)
		}
	}
	c.Harvest.TrustedHosts = hosts
	c.Harvest.AudioExtension = strings.ToLower(strings.TrimSpace(c.Harvest.AudioExtension))
	if c.Harvest.AudioExtension == "" {
		c.Harvest.AudioExtension = defaultAudioExtension
	}
	if !strings.HasPrefix(c.Harvest.AudioExtension, ".") {
		c.Harvest.AudioExtension = "." + c.Harvest.AudioExtension
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
