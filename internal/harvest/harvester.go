package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ekwe/internal/assets"
	"ekwe/internal/config"
	"ekwe/internal/dataset"
	"ekwe/internal/services"
	"ekwe/internal/tracker"
)

// Tracker is the slice of the tracker client the harvester consumes.
type Tracker interface {
	ListIssues(ctx context.Context, state, label string) ([]tracker.Issue, error)
	ListComments(ctx context.Context, issue tracker.Issue) ([]tracker.Comment, error)
	FetchURL(ctx context.Context, rawURL string) (int, string, []byte, error)
}

// Summary reports what one harvest pass did.
type Summary struct {
	IssuesScanned  int
	Updated        int
	AlreadyStored  int
	Failures       int
	DatasetChanged bool
}

// Harvester scans resolved issues for uploaded recordings, stores the audio
// locally, and records the public link into the dataset.
type Harvester struct {
	cfg     *config.Config
	entries *dataset.Collection
	client  Tracker
	store   *assets.Store
	logger  *slog.Logger
	dryRun  bool
}

// New constructs a harvester over an already-loaded dataset and asset store.
func New(cfg *config.Config, entries *dataset.Collection, client Tracker, store *assets.Store, logger *slog.Logger, dryRun bool) (*Harvester, error) {
	if cfg == nil || entries == nil || client == nil || store == nil {
		return nil, errors.New("harvester requires config, dataset, tracker client, and asset store")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harvester{
		cfg:     cfg,
		entries: entries,
		client:  client,
		store:   store,
		logger:  logger.With(slog.String("component", "harvester")),
		dryRun:  dryRun,
	}, nil
}

// Run lists closed labeled issues and resolves each matching dataset entry
// from the first comment link that actually serves audio. The dataset is
// written once at the end, and only when an entry changed.
func (h *Harvester) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	issues, err := h.client.ListIssues(ctx, tracker.StateClosed, h.cfg.Harvest.ResolvedLabel)
	if err != nil {
		return sum, fmt.Errorf("list resolved issues: %w", err)
	}

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.IssuesScanned++

		word := tracker.WordFromTitle(h.cfg.Reconcile.TitlePrefix, issue.Title)
		if word == "" {
			continue
		}
		issueCtx := services.WithIssue(services.WithWord(ctx, word), issue.Number)

		entry, ok := h.entries.FindUnresolved(word)
		if !ok {
			continue
		}

		resolved, err := h.resolveEntry(issueCtx, issue, entry, &sum)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return sum, err
			}
			sum.Failures++
			h.logger.WarnContext(issueCtx, "harvest failed, entry left for next run", slog.Any("error", err))
			continue
		}
		if resolved {
			sum.Updated++
		} else {
			h.logger.WarnContext(issueCtx, "no usable audio found in comments")
		}
	}

	if h.dryRun {
		changed, err := h.entries.Changed()
		if err != nil {
			return sum, err
		}
		sum.DatasetChanged = changed
		return sum, nil
	}

	changed, err := h.entries.Save()
	if err != nil {
		return sum, fmt.Errorf("save dataset: %w", err)
	}
	sum.DatasetChanged = changed
	return sum, nil
}

// resolveEntry walks the issue's comments oldest first and takes the first
// link that passes validation. Returns false without error when no comment
// held usable audio.
func (h *Harvester) resolveEntry(ctx context.Context, issue tracker.Issue, entry *dataset.Entry, sum *Summary) (bool, error) {
	comments, err := h.client.ListComments(ctx, issue)
	if err != nil {
		return false, fmt.Errorf("list comments: %w", err)
	}

	ext := h.cfg.Harvest.AudioExtension
	slug := assets.Slug(entry.Word)

	for _, comment := range comments {
		for _, link := range ExtractCandidates(comment.Body, h.cfg.Harvest.StrictHosts, h.cfg.Harvest.TrustedHosts) {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			data, ok := h.fetchAudio(ctx, link, ext)
			if !ok {
				continue
			}
			if h.dryRun {
				h.logger.InfoContext(ctx, "dry-run: would store audio", slog.String("url", link))
				return true, nil
			}
			if h.store.Exists(slug, ext) {
				sum.AlreadyStored++
				h.logger.WarnContext(ctx, "asset already stored, linking existing file", slog.String("slug", slug))
			} else if _, err := h.store.Write(slug, ext, data); err != nil {
				h.logger.WarnContext(ctx, "storing audio failed, trying next candidate",
					slog.String("url", link), slog.Any("error", err))
				continue
			}
			entry.AudioURL = assets.PublicURL(h.cfg.GitHub.UploadBaseURL, h.cfg.GitHub.Repo, h.cfg.GitHub.Branch, h.cfg.Paths.AudioURLPath, slug, ext)
			h.logger.InfoContext(ctx, "audio harvested", slog.String("source", link), slog.String("asset", slug+ext))
			return true, nil
		}
	}
	return false, nil
}

// fetchAudio downloads a candidate and reports whether the response is
// acceptable audio. Network failures and rejections are logged at debug and
// skipped; the next candidate gets its chance.
func (h *Harvester) fetchAudio(ctx context.Context, link, ext string) ([]byte, bool) {
	status, contentType, data, err := h.client.FetchURL(ctx, link)
	if err != nil {
		h.logger.DebugContext(ctx, "candidate fetch failed", slog.String("url", link), slog.Any("error", err))
		return nil, false
	}
	if status < 200 || status > 299 {
		h.logger.DebugContext(ctx, "candidate rejected by status", slog.String("url", link), slog.Int("status", status))
		return nil, false
	}
	if !acceptableAudio(contentType, link, ext) {
		h.logger.DebugContext(ctx, "candidate is not audio", slog.String("url", link), slog.String("content_type", contentType))
		return nil, false
	}
	if len(data) == 0 {
		h.logger.DebugContext(ctx, "candidate body empty", slog.String("url", link))
		return nil, false
	}
	return data, true
}

// acceptableAudio accepts a declared audio content type, and falls back to
// the URL's extension when the server only says octet-stream or nothing
// at all.
func acceptableAudio(contentType, link, ext string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(ct, "audio") {
		return true
	}
	switch {
	case ct == "", strings.HasPrefix(ct, "application/octet-stream"), strings.HasPrefix(ct, "binary/octet-stream"):
		trimmed := link
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		return strings.HasSuffix(strings.ToLower(trimmed), ext)
	}
	return false
}
