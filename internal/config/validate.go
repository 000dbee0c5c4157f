package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateHarvest(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGitHub() error {
	if c.GitHub.Repo == "" {
		return errors.New("github.repo must be set (owner/name)")
	}
	parts := strings.Split(c.GitHub.Repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("github.repo %q must be of the form owner/name", c.GitHub.Repo)
	}
	if c.GitHub.RequestTimeout <= 0 {
		return errors.New("github.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if strings.TrimSpace(c.Reconcile.TitlePrefix) == "" {
		return errors.New("reconcile.title_prefix must not be blank")
	}
	switch c.Reconcile.OnRateLimit {
	case RateLimitRetry, RateLimitAbort:
	default:
		return fmt.Errorf("reconcile.on_rate_limit %q must be %q or %q", c.Reconcile.OnRateLimit, RateLimitRetry, RateLimitAbort)
	}
	switch c.Reconcile.DuplicatePolicy {
	case DuplicateClose, DuplicateDelete:
	default:
		return fmt.Errorf("reconcile.duplicate_policy %q must be %q or %q", c.Reconcile.DuplicatePolicy, DuplicateClose, DuplicateDelete)
	}
	return nil
}

func (c *Config) validateHarvest() error {
	if c.Harvest.StrictHosts && len(c.Harvest.TrustedHosts) == 0 {
		return errors.New("harvest.strict_hosts requires at least one entry in harvest.trusted_hosts")
	}
	if c.Harvest.AudioExtension == "." {
		return errors.New("harvest.audio_extension must name an extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	return nil
}
