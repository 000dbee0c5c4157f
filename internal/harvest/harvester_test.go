package harvest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ekwe/internal/assets"
	"ekwe/internal/config"
	"ekwe/internal/dataset"
	"ekwe/internal/harvest"
	"ekwe/internal/logging"
	"ekwe/internal/tracker"
)

type fetchResponse struct {
	status      int
	contentType string
	body        []byte
}

type fakeTracker struct {
	issues      []tracker.Issue
	comments    map[int64][]tracker.Comment
	commentErrs map[int64]error
	responses   map[string]fetchResponse
}

func (f *fakeTracker) ListIssues(_ context.Context, state, label string) ([]tracker.Issue, error) {
	if state != tracker.StateClosed {
		return nil, fmt.Errorf("unexpected state %q", state)
	}
	if label == "" {
		return nil, errors.New("label must be set")
	}
	return f.issues, nil
}

func (f *fakeTracker) ListComments(_ context.Context, issue tracker.Issue) ([]tracker.Comment, error) {
	if err := f.commentErrs[issue.Number]; err != nil {
		return nil, err
	}
	return f.comments[issue.Number], nil
}

func (f *fakeTracker) FetchURL(_ context.Context, rawURL string) (int, string, []byte, error) {
	resp, ok := f.responses[rawURL]
	if !ok {
		return 0, "", nil, fmt.Errorf("connection refused: %s", rawURL)
	}
	return resp.status, resp.contentType, resp.body, nil
}

func closedIssue(number int64, word string) tracker.Issue {
	return tracker.Issue{
		Number:    number,
		Title:     "Add Audio for: " + word,
		State:     tracker.StateClosed,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testSetup(t *testing.T, datasetJSON string) (*config.Config, *dataset.Collection, *assets.Store, string) {
	t.Helper()
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "dictionary.json")
	if err := os.WriteFile(datasetPath, []byte(datasetJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	entries, err := dataset.Load(datasetPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	audioDir := filepath.Join(dir, "assets", "audio")
	store, err := assets.NewStore(audioDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg := config.Default()
	cfg.GitHub.Repo = "owner/words"
	cfg.Harvest.ResolvedLabel = cfg.Reconcile.Label
	cfg.Paths.DatasetFile = datasetPath
	cfg.Paths.AudioDir = audioDir
	return &cfg, entries, store, audioDir
}

func newHarvester(t *testing.T, cfg *config.Config, entries *dataset.Collection, client harvest.Tracker, store *assets.Store, dryRun bool) *harvest.Harvester {
	t.Helper()
	h, err := harvest.New(cfg, entries, client, store, logging.NewNop(), dryRun)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestRunHarvestsFirstValidCandidate(t *testing.T) {
	cfg, entries, store, audioDir := testSetup(t, `[{"igboWord": "ọkụkọ"}]`)
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(7, "ọkụkọ")},
		comments: map[int64][]tracker.Comment{
			7: {
				{Body: "see https://example.com/page.html"},
				{Body: "uploaded https://example.com/okuko.mp3"},
			},
		},
		responses: map[string]fetchResponse{
			"https://example.com/page.html": {status: 200, contentType: "text/html", body: []byte("<html>")},
			"https://example.com/okuko.mp3": {status: 200, contentType: "audio/mpeg", body: []byte("ID3audio")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 1 || !sum.DatasetChanged || sum.Failures != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	// The slug folds the diacritics, so the asset lands as okuko.mp3.
	stored, err := os.ReadFile(filepath.Join(audioDir, "okuko.mp3"))
	if err != nil || string(stored) != "ID3audio" {
		t.Fatalf("asset not stored: %v", err)
	}

	reloaded, err := dataset.Load(cfg.Paths.DatasetFile)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	entry := reloaded.Entries()[0]
	want := "https://raw.githubusercontent.com/owner/words/main/assets/audio/okuko.mp3"
	if entry.AudioURL != want {
		t.Fatalf("AudioURL = %q, want %q", entry.AudioURL, want)
	}
}

func TestRunSkipsResolvedAndUnparsableIssues(t *testing.T) {
	cfg, entries, store, _ := testSetup(t,
		`[{"igboWord": "udo", "audioUrl": "https://raw.githubusercontent.com/owner/words/main/assets/audio/udo.mp3"}]`)
	fake := &fakeTracker{
		issues: []tracker.Issue{
			closedIssue(1, "udo"),
			{Number: 2, Title: "General discussion", State: tracker.StateClosed},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.IssuesScanned != 2 || sum.Updated != 0 || sum.DatasetChanged {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestRunLenientContentTypeFallsBackToExtension(t *testing.T) {
	cfg, entries, store, _ := testSetup(t, `[{"igboWord": "udo"}]`)
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(3, "udo")},
		comments: map[int64][]tracker.Comment{
			3: {{Body: "https://example.com/udo.mp3"}},
		},
		responses: map[string]fetchResponse{
			"https://example.com/udo.mp3": {status: 200, contentType: "application/octet-stream", body: []byte("bytes")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 1 {
		t.Fatalf("octet-stream mp3 should be accepted, got %+v", sum)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	cfg, entries, store, audioDir := testSetup(t, `[{"igboWord": "udo"}]`)
	before, err := os.ReadFile(cfg.Paths.DatasetFile)
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(3, "udo")},
		comments: map[int64][]tracker.Comment{
			3: {{Body: "https://example.com/udo.mp3"}},
		},
		responses: map[string]fetchResponse{
			"https://example.com/udo.mp3": {status: 200, contentType: "audio/mpeg", body: []byte("bytes")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 1 {
		t.Fatalf("dry run should report intended work, got %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "udo.mp3")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run must not write assets")
	}
	after, err := os.ReadFile(cfg.Paths.DatasetFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("dry run must not rewrite the dataset")
	}
}

func TestRunLinksExistingAssetOnSlugCollision(t *testing.T) {
	cfg, entries, store, audioDir := testSetup(t, `[{"igboWord": "udo"}]`)
	if err := os.WriteFile(filepath.Join(audioDir, "udo.mp3"), []byte("earlier upload"), 0o644); err != nil {
		t.Fatal(err)
	}
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(3, "udo")},
		comments: map[int64][]tracker.Comment{
			3: {{Body: "https://example.com/udo.mp3"}},
		},
		responses: map[string]fetchResponse{
			"https://example.com/udo.mp3": {status: 200, contentType: "audio/mpeg", body: []byte("new bytes")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 1 || sum.AlreadyStored != 1 {
		t.Fatalf("entry should link the stored asset, got %+v", sum)
	}
	stored, err := os.ReadFile(filepath.Join(audioDir, "udo.mp3"))
	if err != nil || string(stored) != "earlier upload" {
		t.Fatalf("existing asset must not be replaced: %q %v", stored, err)
	}
}

func TestRunStoreFailureMovesOnToNextCandidate(t *testing.T) {
	cfg, entries, store, audioDir := testSetup(t, `[{"igboWord": "udo"}, {"igboWord": "mmiri"}]`)
	// A directory squatting on the asset path makes the store's rename fail
	// without the path counting as an existing asset.
	if err := os.MkdirAll(filepath.Join(audioDir, "udo.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(1, "udo"), closedIssue(2, "mmiri")},
		comments: map[int64][]tracker.Comment{
			1: {{Body: "https://example.com/udo.mp3"}},
			2: {{Body: "https://example.com/mmiri.mp3"}},
		},
		responses: map[string]fetchResponse{
			"https://example.com/udo.mp3":   {status: 200, contentType: "audio/mpeg", body: []byte("bytes")},
			"https://example.com/mmiri.mp3": {status: 200, contentType: "audio/mpeg", body: []byte("bytes")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 1 {
		t.Fatalf("mmiri should still resolve, got %+v", sum)
	}
	if _, ok := entries.FindUnresolved("udo"); !ok {
		t.Fatal("udo must remain unresolved for the next run")
	}
	if _, err := os.Stat(filepath.Join(audioDir, "mmiri.mp3")); err != nil {
		t.Fatalf("mmiri asset missing: %v", err)
	}
}

func TestRunCommentFailureDoesNotBlockOtherIssues(t *testing.T) {
	cfg, entries, store, _ := testSetup(t, `[{"igboWord": "udo"}, {"igboWord": "mmiri"}]`)
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(1, "udo"), closedIssue(2, "mmiri")},
		comments: map[int64][]tracker.Comment{
			2: {{Body: "https://example.com/mmiri.mp3"}},
		},
		commentErrs: map[int64]error{
			1: errors.New("boom"),
		},
		responses: map[string]fetchResponse{
			"https://example.com/mmiri.mp3": {status: 200, contentType: "audio/mpeg", body: []byte("bytes")},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failures != 1 || sum.Updated != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestRunNoUsableLinksLeavesEntryUnresolved(t *testing.T) {
	cfg, entries, store, _ := testSetup(t, `[{"igboWord": "udo"}]`)
	fake := &fakeTracker{
		issues: []tracker.Issue{closedIssue(3, "udo")},
		comments: map[int64][]tracker.Comment{
			3: {{Body: "thanks, will record soon!"}},
		},
	}

	sum, err := newHarvester(t, cfg, entries, fake, store, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Updated != 0 || sum.Failures != 0 || sum.DatasetChanged {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if _, ok := entries.FindUnresolved("udo"); !ok {
		t.Fatal("entry must remain unresolved")
	}
}
