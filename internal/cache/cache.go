// Package cache is the local persistence layer: an opaque key→blob store
// under one root directory.
//
// Layout, matching what earlier tooling for this archive used:
//
//	<root>/<studyID>.json             study metadata document
//	<root>/<studyID>_<datasetID>.json assembled dataset
//	<root>/<studyID>/<basename>       downloaded raw data files
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrMiss is returned when a requested entry is not in the cache.
var ErrMiss = errors.New("cache miss")

// Store is a file-backed blob store rooted at a single directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating the directory if needed.
// A leading "~" in dir expands to the user's home directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache: root directory must not be empty")
	}

	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cache: resolving home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating root %s: %w", dir, err)
	}

	return &Store{root: dir}, nil
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

// MetadataPath returns the on-disk location for a study's metadata document.
func (s *Store) MetadataPath(studyID string) string {
	return filepath.Join(s.root, studyID+".json")
}

// DatasetPath returns the on-disk location for an assembled dataset.
func (s *Store) DatasetPath(studyID, datasetID string) string {
	return filepath.Join(s.root, fmt.Sprintf("%s_%s.json", studyID, datasetID))
}

// DataFilePath returns the local path a remote data file is cached at:
// a per-study directory plus the URL's base name.
func (s *Store) DataFilePath(studyID, fileURL string) string {
	base := fileURL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return filepath.Join(s.root, studyID, base)
}

// LoadMetadata reads a study's cached metadata blob.
// Returns ErrMiss when no entry exists.
func (s *Store) LoadMetadata(studyID string) ([]byte, error) {
	return s.load(s.MetadataPath(studyID))
}

// SaveMetadata writes a study's metadata blob.
func (s *Store) SaveMetadata(studyID string, blob []byte) error {
	return s.save(s.MetadataPath(studyID), blob)
}

// LoadDataset reads a cached assembled dataset blob.
// Returns ErrMiss when no entry exists.
func (s *Store) LoadDataset(studyID, datasetID string) ([]byte, error) {
	return s.load(s.DatasetPath(studyID, datasetID))
}

// SaveDataset writes an assembled dataset blob.
func (s *Store) SaveDataset(studyID, datasetID string, blob []byte) error {
	return s.save(s.DatasetPath(studyID, datasetID), blob)
}

func (s *Store) load(path string) ([]byte, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMiss, path)
		}
		return nil, fmt.Errorf("cache: reading %s: %w", path, err)
	}
	return blob, nil
}

func (s *Store) save(path string, blob []byte) error {
	// Write to a temp file in the same directory, then rename, so a
	// crashed write never leaves a truncated cache entry behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("cache: creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: renaming %s: %w", path, err)
	}
	return nil
}
