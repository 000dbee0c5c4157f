package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one dictionary record. Only the word, the audio reference, and the
// definitions are interpreted; every other field round-trips untouched so a
// rewrite never loses data this tool does not model.
type Entry struct {
	Word     string
	AudioURL string

	extra map[string]json.RawMessage
}

type definitionGroup struct {
	Definitions []string `json:"definitions"`
}

// UnmarshalJSON decodes the interpreted fields and stashes the rest.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["igboWord"]; ok {
		if err := json.Unmarshal(v, &e.Word); err != nil {
			return fmt.Errorf("igboWord: %w", err)
		}
		delete(raw, "igboWord")
	}
	if v, ok := raw["audioUrl"]; ok {
		if err := json.Unmarshal(v, &e.AudioURL); err != nil {
			return fmt.Errorf("audioUrl: %w", err)
		}
		delete(raw, "audioUrl")
	}
	e.extra = raw
	return nil
}

// MarshalJSON re-emits the interpreted fields alongside the preserved ones.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.extra)+2)
	for k, v := range e.extra {
		out[k] = v
	}
	word, err := json.Marshal(e.Word)
	if err != nil {
		return nil, err
	}
	out["igboWord"] = word
	if e.AudioURL != "" {
		audio, err := json.Marshal(e.AudioURL)
		if err != nil {
			return nil, err
		}
		out["audioUrl"] = audio
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(out[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FirstDefinition returns the first available definition text, or fallback
// when the entry carries none. Definitions nest one level: an array of groups
// each holding an array of strings.
func (e *Entry) FirstDefinition(fallback string) string {
	raw, ok := e.extra["definitions"]
	if !ok {
		return fallback
	}
	var groups []definitionGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return fallback
	}
	for _, group := range groups {
		for _, def := range group.Definitions {
			if strings.TrimSpace(def) != "" {
				return def
			}
		}
	}
	return fallback
}

// Collection is the in-memory dataset: the full entry list in stored order
// plus a by-word index and the snapshot used for change detection.
type Collection struct {
	path     string
	entries  []*Entry
	byWord   map[string]*Entry
	snapshot []byte
}

// Load reads the dataset file in full. A missing or unreadable file is fatal
// for the caller; duplicate words are rejected because the word is the join
// key against tracker issues.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	byWord := make(map[string]*Entry, len(entries))
	for i, entry := range entries {
		word := strings.TrimSpace(entry.Word)
		if word == "" {
			return nil, fmt.Errorf("dataset entry %d has no igboWord", i)
		}
		if _, exists := byWord[entry.Word]; exists {
			return nil, fmt.Errorf("dataset contains duplicate word %q", entry.Word)
		}
		byWord[entry.Word] = entry
	}

	c := &Collection{path: path, entries: entries, byWord: byWord}
	snapshot, err := c.marshal()
	if err != nil {
		return nil, err
	}
	c.snapshot = snapshot
	return c, nil
}

// Entries returns the entries in stored order.
func (c *Collection) Entries() []*Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	return len(c.entries)
}

// FindUnresolved returns the entry for word only when it still lacks audio.
func (c *Collection) FindUnresolved(word string) (*Entry, bool) {
	entry, ok := c.byWord[word]
	if !ok || entry.AudioURL != "" {
		return nil, false
	}
	return entry, true
}

// Changed reports whether any entry differs from the loaded snapshot.
func (c *Collection) Changed() (bool, error) {
	current, err := c.marshal()
	if err != nil {
		return false, err
	}
	return !bytes.Equal(current, c.snapshot), nil
}

// Save rewrites the dataset file atomically, but only when content changed.
// Returns true when a write happened.
func (c *Collection) Save() (bool, error) {
	current, err := c.marshal()
	if err != nil {
		return false, err
	}
	if bytes.Equal(current, c.snapshot) {
		return false, nil
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return false, fmt.Errorf("create temp dataset: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(current); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("close dataset: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return false, err
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("replace dataset: %w", err)
	}
	c.snapshot = current
	return true, nil
}

func (c *Collection) marshal() ([]byte, error) {
	if c.entries == nil {
		return nil, errors.New("dataset not loaded")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.entries); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return buf.Bytes(), nil
}
