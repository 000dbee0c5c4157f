package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ekwe/internal/config"
	"ekwe/internal/dataset"
	"ekwe/internal/logging"
	"ekwe/internal/services"
	"ekwe/internal/tracker"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runEnvironment bundles what every mutating command needs: a logger tagged
// with the run ID, the loaded dataset, a tracker client, and the held
// single-instance lock.
type runEnvironment struct {
	cfg     *config.Config
	logger  *slog.Logger
	runID   string
	entries *dataset.Collection
	client  *tracker.Client
	lock    *flock.Flock
}

// newRunEnvironment validates the credential, takes the run lock, and loads
// everything a pass touches. The caller must call release when done.
func newRunEnvironment(c *commandContext) (*runEnvironment, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "load", "", err)
	}
	if err := cfg.RequireToken(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "credential", "", err)
	}

	lock := flock.New(cfg.LockFilePath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another ekwe run is already in progress")
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("init logger: %w", err)
	}
	runID := uuid.NewString()

	entries, err := dataset.Load(cfg.Paths.DatasetFile)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	client, err := tracker.New(cfg.GitHub.Repo, cfg.GitHub.Token, cfg.GitHub.BaseURL,
		time.Duration(cfg.GitHub.RequestTimeout)*time.Second)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("tracker client: %w", err)
	}

	return &runEnvironment{
		cfg:     cfg,
		logger:  logger,
		runID:   runID,
		entries: entries,
		client:  client,
		lock:    lock,
	}, nil
}

// annotate stamps the run's correlation ID onto the context so every log
// line written during the pass carries it.
func (e *runEnvironment) annotate(ctx context.Context) context.Context {
	return services.WithRunID(ctx, e.runID)
}

func (e *runEnvironment) release() {
	if err := e.lock.Unlock(); err != nil {
		e.logger.Warn("release run lock", slog.Any("error", err))
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
