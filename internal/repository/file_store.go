package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fileStore keeps a collection as one JSON array in a flat file
type fileStore[T any] struct {
	path       string
	collection string
	check      func([]T) error
}

// NewFileStore creates a store backed by the JSON file at path.
// check, when non-nil, validates every decoded collection.
func NewFileStore[T any](path, collection string, check func([]T) error) RecordStore[T] {
	return &fileStore[T]{path: path, collection: collection, check: check}
}

// Load reads the whole collection; a missing or empty file is an empty collection
func (s *fileStore[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s store: %w", s.collection, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s store: %w", s.collection, err)
	}
	if records == nil {
		records = []T{}
	}

	if s.check != nil {
		if err := s.check(records); err != nil {
			return nil, fmt.Errorf("failed to load %s store: %w", s.collection, err)
		}
	}

	return records, nil
}

// Save rewrites the file with the given collection.
// The data goes to a temp file first and is renamed into place.
func (s *fileStore[T]) Save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []T{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode %s store: %w", s.collection, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s store: %w", s.collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s store: %w", s.collection, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s store: %w", s.collection, err)
	}

	return nil
}
