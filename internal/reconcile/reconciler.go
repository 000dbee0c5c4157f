package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ekwe/internal/config"
	"ekwe/internal/dataset"
	"ekwe/internal/dedup"
	"ekwe/internal/issued"
	"ekwe/internal/services"
	"ekwe/internal/tracker"
)

// maxBackoff bounds a single rate-limit wait regardless of what the service
// suggested.
const maxBackoff = 2 * time.Minute

// Tracker is the slice of the tracker client the reconciler consumes.
type Tracker interface {
	SearchIssues(ctx context.Context, word, label string) ([]tracker.Issue, error)
	CreateIssue(ctx context.Context, title, body string, labels []string) (*tracker.Issue, error)
	CloseIssue(ctx context.Context, number int64) error
	PostComment(ctx context.Context, number int64, text string) error
	DeleteIssue(ctx context.Context, nodeID string) error
}

// Summary reports what one reconcile pass did.
type Summary struct {
	Missing           int
	Created           int
	Reused            int
	CachedSkips       int
	DuplicatesRemoved int
	Failures          int
	Aborted           bool
}

// Reconciler ensures every dictionary entry without audio has exactly one
// open tracking issue.
type Reconciler struct {
	cfg     *config.Config
	entries *dataset.Collection
	client  Tracker
	cache   *issued.Store
	logger  *slog.Logger
	dryRun  bool
}

// New constructs a reconciler. The issued cache and the tracker client are
// required; dryRun suppresses every mutating call.
func New(cfg *config.Config, entries *dataset.Collection, client Tracker, cache *issued.Store, logger *slog.Logger, dryRun bool) (*Reconciler, error) {
	if cfg == nil || entries == nil || client == nil || cache == nil {
		return nil, errors.New("reconciler requires config, dataset, tracker client, and issued cache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		cfg:     cfg,
		entries: entries,
		client:  client,
		cache:   cache,
		logger:  logger.With(slog.String("component", "reconciler")),
		dryRun:  dryRun,
	}, nil
}

// Run walks the dataset in stored order and converges tracker state. Per-entry
// failures are logged and skipped; only context cancellation and issued-cache
// I/O surface as errors. A sustained rate limit ends the pass early with
// Summary.Aborted set — everything recorded so far stays recorded.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	for _, entry := range r.entries.Entries() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if entry.AudioURL != "" {
			continue
		}
		sum.Missing++
		word := entry.Word
		entryCtx := services.WithWord(ctx, word)

		known, err := r.cache.Has(entryCtx, word)
		if err != nil {
			return sum, fmt.Errorf("issued cache: %w", err)
		}
		if known {
			sum.CachedSkips++
			continue
		}

		issues, err := r.searchWithBackoff(entryCtx, word)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return sum, err
			}
			// Rate limits and hard failures alike leave the entry unissued
			// for a future run; a search failure never poisons later words.
			sum.Failures++
			r.logger.WarnContext(entryCtx, "search failed, entry left for next run", slog.Any("error", err))
			continue
		}

		canonical, extras := dedup.Resolve(issues)
		for _, dup := range extras {
			if r.removeDuplicate(entryCtx, canonical, dup) {
				sum.DuplicatesRemoved++
			} else {
				sum.Failures++
			}
			if err := r.pace(entryCtx); err != nil {
				return sum, err
			}
		}

		if canonical != nil {
			r.logger.InfoContext(entryCtx, "issue already open", slog.Int64("issue", canonical.Number))
			if err := r.markIssued(entryCtx, word); err != nil {
				return sum, err
			}
			sum.Reused++
			continue
		}

		if sum.Created >= r.cfg.Reconcile.MaxCreations {
			r.logger.DebugContext(entryCtx, "creation cap reached, deferring to next run")
			continue
		}

		created, abort, err := r.createIssue(entryCtx, entry)
		if err != nil {
			return sum, err
		}
		if abort {
			sum.Aborted = true
			r.logger.WarnContext(entryCtx, "rate limited beyond retry budget, ending pass early")
			return sum, nil
		}
		if !created {
			sum.Failures++
			continue
		}
		sum.Created++
		if err := r.markIssued(entryCtx, word); err != nil {
			return sum, err
		}
		if err := r.pace(entryCtx); err != nil {
			return sum, err
		}
	}

	return sum, nil
}

func (r *Reconciler) markIssued(ctx context.Context, word string) error {
	if r.dryRun {
		return nil
	}
	if err := r.cache.Add(ctx, word); err != nil {
		return fmt.Errorf("issued cache: %w", err)
	}
	return nil
}

// searchWithBackoff retries rate-limited searches within the configured
// budget; any other failure returns immediately.
func (r *Reconciler) searchWithBackoff(ctx context.Context, word string) ([]tracker.Issue, error) {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.Reconcile.RetryAttempts; attempt++ {
		issues, err := r.client.SearchIssues(ctx, word, r.cfg.Reconcile.Label)
		if err == nil {
			return issues, nil
		}
		lastErr = err
		if !errors.Is(err, tracker.ErrRateLimited) {
			return nil, err
		}
		if r.cfg.Reconcile.OnRateLimit == config.RateLimitAbort {
			return nil, err
		}
		if attempt < r.cfg.Reconcile.RetryAttempts {
			if waitErr := r.backoff(ctx, attempt, err); waitErr != nil {
				return nil, waitErr
			}
		}
	}
	return nil, lastErr
}

// createIssue returns (created, abortPass, fatalErr). Rate limits are retried
// within the budget; exhaustion or an abort policy ends the pass. Validation
// failures (4xx) leave the entry for a future run.
func (r *Reconciler) createIssue(ctx context.Context, entry *dataset.Entry) (bool, bool, error) {
	title := tracker.TitleForWord(r.cfg.Reconcile.TitlePrefix, entry.Word)
	body := issueBody(entry)

	if r.dryRun {
		r.logger.InfoContext(ctx, "dry-run: would create issue", slog.String("title", title))
		return true, false, nil
	}

	for attempt := 1; attempt <= r.cfg.Reconcile.RetryAttempts; attempt++ {
		issue, err := r.client.CreateIssue(ctx, title, body, []string{r.cfg.Reconcile.Label})
		if err == nil {
			r.logger.InfoContext(ctx, "issue created", slog.Int64("issue", issue.Number))
			return true, false, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, false, err
		}
		if !errors.Is(err, tracker.ErrRateLimited) {
			r.logger.WarnContext(ctx, "issue creation failed", slog.Any("error", err))
			return false, false, nil
		}
		if r.cfg.Reconcile.OnRateLimit == config.RateLimitAbort {
			return false, true, nil
		}
		if attempt < r.cfg.Reconcile.RetryAttempts {
			if waitErr := r.backoff(ctx, attempt, err); waitErr != nil {
				return false, false, waitErr
			}
		}
	}
	return false, true, nil
}

// removeDuplicate posts an explanatory comment and then closes or deletes the
// duplicate per the configured policy. Returns false when removal failed; a
// single duplicate's failure never blocks the rest.
func (r *Reconciler) removeDuplicate(ctx context.Context, canonical *tracker.Issue, dup tracker.Issue) bool {
	ctx = services.WithIssue(ctx, dup.Number)
	kept := slog.Int64("canonical", canonical.Number)
	if r.dryRun {
		r.logger.InfoContext(ctx, "dry-run: would remove duplicate issue", kept)
		return true
	}

	note := fmt.Sprintf("Duplicate request for this word; tracking continues in #%d.", canonical.Number)
	if err := r.client.PostComment(ctx, dup.Number, note); err != nil {
		r.logger.WarnContext(ctx, "duplicate comment failed", slog.Any("error", err))
	}

	switch r.cfg.Reconcile.DuplicatePolicy {
	case config.DuplicateDelete:
		if err := r.client.DeleteIssue(ctx, dup.NodeID); err != nil {
			r.logger.WarnContext(ctx, "duplicate delete failed", slog.Any("error", err))
			return false
		}
		r.logger.InfoContext(ctx, "duplicate issue deleted", kept)
	default:
		if err := r.client.CloseIssue(ctx, dup.Number); err != nil {
			r.logger.WarnContext(ctx, "duplicate close failed", slog.Any("error", err))
			return false
		}
		r.logger.InfoContext(ctx, "duplicate issue closed", kept)
	}
	return true
}

// pace sleeps the configured delay between mutating remote calls.
func (r *Reconciler) pace(ctx context.Context) error {
	return sleepContext(ctx, time.Duration(r.cfg.Reconcile.PaceMillis)*time.Millisecond)
}

// backoff waits before a rate-limited retry: the service's suggested wait
// when it gave one, otherwise the configured base delay doubled per attempt,
// both capped.
func (r *Reconciler) backoff(ctx context.Context, attempt int, cause error) error {
	delay := time.Duration(r.cfg.Reconcile.RetryBaseMillis) * time.Millisecond
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			delay = maxBackoff
			break
		}
	}
	var rateErr *tracker.RateLimitError
	if errors.As(cause, &rateErr) && rateErr.RetryAfter > delay {
		delay = rateErr.RetryAfter
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return sleepContext(ctx, delay)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// issueBody renders the request body posted to the tracker. The wording is
// what contributors already know from the existing issues; the word line ends
// with two spaces, a markdown hard line break.
func issueBody(entry *dataset.Entry) string {
	return fmt.Sprintf("### 🗣 Audio Needed\n\n"+
		"**Igbo Word**: `%s`  \n"+
		"**Definition**: %s\n\n"+
		"📢 Please upload an `.mp3` file as a comment below by dragging and dropping it.\n\n"+
		"Once approved, it will be added to the repository and linked in the dataset.\n",
		entry.Word, entry.FirstDefinition("N/A"))
}
