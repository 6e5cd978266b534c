package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMetadataRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.LoadMetadata("12345"); !errors.Is(err, ErrMiss) {
		t.Fatalf("LoadMetadata() before save error = %v, want ErrMiss", err)
	}

	blob := []byte(`{"studyName":"x"}`)
	if err := s.SaveMetadata("12345", blob); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}

	got, err := s.LoadMetadata("12345")
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("LoadMetadata() = %q, want %q", got, blob)
	}

	// One file per study id, named by the study id.
	if _, err := os.Stat(filepath.Join(s.Root(), "12345.json")); err != nil {
		t.Errorf("expected metadata cache file: %v", err)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.LoadDataset("12345", "all"); !errors.Is(err, ErrMiss) {
		t.Fatalf("LoadDataset() before save error = %v, want ErrMiss", err)
	}

	blob := []byte(`{"study_id":"12345"}`)
	if err := s.SaveDataset("12345", "all", blob); err != nil {
		t.Fatalf("SaveDataset() error = %v", err)
	}

	got, err := s.LoadDataset("12345", "all")
	if err != nil {
		t.Fatalf("LoadDataset() error = %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("LoadDataset() = %q, want %q", got, blob)
	}

	// One file per (study id, dataset id) pair.
	if _, err := os.Stat(filepath.Join(s.Root(), "12345_all.json")); err != nil {
		t.Errorf("expected dataset cache file: %v", err)
	}
}

func TestDataFilePath(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := s.DataFilePath("12345", "https://example.org/pub/data/core1.txt")
	want := filepath.Join(s.Root(), "12345", "core1.txt")
	if got != want {
		t.Errorf("DataFilePath() = %q, want %q", got, want)
	}
}

func TestNew_EmptyDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") expected error")
	}
}
