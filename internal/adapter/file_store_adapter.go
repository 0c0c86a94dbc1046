package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"vocab-quiz/internal/domain"
)

// FileStoreAdapter implements domain.KVStore on a single JSON file holding
// a string-to-string object. Every Set rewrites the file through a
// temporary file and a rename so a crash never leaves it half written.
type FileStoreAdapter struct {
	mu   sync.Mutex
	path string
}

// NewFileStoreAdapter creates the parent directory of path if needed.
func NewFileStoreAdapter(path string) (*FileStoreAdapter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}
	return &FileStoreAdapter{path: path}, nil
}

func (f *FileStoreAdapter) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readLocked()
	if err != nil {
		return "", err
	}
	val, ok := entries[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return val, nil
}

func (f *FileStoreAdapter) Set(_ context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readLocked()
	if err != nil {
		// An unreadable file is replaced rather than blocking every write.
		entries = map[string]string{}
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Ping checks that the store file is readable.
func (f *FileStoreAdapter) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.readLocked()
	return err
}

func (f *FileStoreAdapter) readLocked() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}
	return entries, nil
}
