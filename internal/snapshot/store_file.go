// Copyright (c) 2026 Toile. All rights reserved.
// Author: contact@toile.app

package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toileapp/toile/internal/platform/apperr"
)

// Store is the persistence boundary for snapshots.
type Store interface {
	// Write persists the snapshot and returns the filename it was stored under.
	Write(s *Snapshot) (string, error)
	List() ([]Meta, error)
	Get(id string) (*Snapshot, error)
}

// FileStore keeps each snapshot as one pretty-printed JSON file named
// "snapshot-<timestamp>-<id>.json" in a flat directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the snapshot directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: could not create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Write(s *Snapshot) (string, error) {
	// Colons are not filesystem-safe everywhere, so the timestamp is
	// flattened before going into the filename.
	stamp := strings.ReplaceAll(s.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
	filename := fmt.Sprintf("snapshot-%s-%s.json", stamp, s.ID)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("snapshot: marshal failed: %w", err))
	}
	if err := os.WriteFile(filepath.Join(f.dir, filename), data, 0o644); err != nil {
		return "", apperr.Internal(fmt.Errorf("snapshot: write failed: %w", err))
	}
	return filename, nil
}

// List returns metadata for every stored snapshot, newest first. Files that
// do not parse as snapshots are skipped rather than failing the whole
// listing.
func (f *FileStore) List() ([]Meta, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("snapshot: read directory failed: %w", err))
	}

	metas := make([]Meta, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "snapshot-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		s, err := f.read(name)
		if err != nil {
			continue
		}
		metas = append(metas, Meta{
			ID:        s.ID,
			Filename:  name,
			Timestamp: s.Timestamp,
			Message:   s.Message,
			Author:    s.Author,
			Nodes:     len(s.Nodes),
			Edges:     len(s.Edges),
		})
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Timestamp.After(metas[j].Timestamp)
	})
	return metas, nil
}

func (f *FileStore) Get(id string) (*Snapshot, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("snapshot: read directory failed: %w", err))
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, "-"+id+".json") {
			continue
		}
		return f.read(name)
	}
	return nil, apperr.NotFound("Snapshot")
}

func (f *FileStore) read(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, filename))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("snapshot: read failed: %w", err))
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperr.Internal(fmt.Errorf("snapshot: corrupt file %s: %w", filename, err))
	}
	return &s, nil
}
