package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is the append-only directory of downloaded audio files. Existing
// files are never overwritten or removed; a slug collision means the asset is
// already resolved and the new bytes are dropped by the caller.
type Store struct {
	dir string
}

// NewStore creates the asset directory when missing and returns the store.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("asset directory must be set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the on-disk path for a slug and extension.
func (s *Store) Path(slug, ext string) string {
	return filepath.Join(s.dir, slug+ext)
}

// Exists reports whether an asset is already stored for the slug.
func (s *Store) Exists(slug, ext string) bool {
	info, err := os.Stat(s.Path(slug, ext))
	return err == nil && !info.IsDir()
}

// Write persists audio bytes atomically (temp file + rename). It refuses to
// replace an existing asset.
func (s *Store) Write(slug, ext string, data []byte) (string, error) {
	target := s.Path(slug, ext)
	if s.Exists(slug, ext) {
		return "", fmt.Errorf("asset %s already exists", target)
	}

	tmp, err := os.CreateTemp(s.dir, ".asset-*")
	if err != nil {
		return "", fmt.Errorf("create temp asset: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close asset: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("store asset: %w", err)
	}
	return target, nil
}

// PublicURL builds the raw-content reference recorded into the dataset for a
// stored asset. relDir is the asset directory relative to the repository
// root, e.g. "assets/audio".
func PublicURL(uploadBase, repo, branch, relDir, slug, ext string) string {
	parts := []string{strings.TrimRight(uploadBase, "/"), repo, branch}
	rel := strings.Trim(filepath.ToSlash(relDir), "/")
	if rel != "" {
		parts = append(parts, rel)
	}
	parts = append(parts, slug+ext)
	return strings.Join(parts, "/")
}
