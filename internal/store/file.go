package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/okarpenko/staybase/internal/model"
)

// FileStore persists the hotel collection as a single JSON array on
// disk. Every mutation rewrites the whole file; a mutex serializes
// read-modify-write cycles and writes go through a temp file and
// rename so a crash mid-write cannot corrupt the previous state.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a FileStore for the given path. The parent
// directory is created if needed, and a missing file is initialized
// with an empty collection.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	fs := &FileStore{
		path:   path,
		logger: logger,
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking data file: %w", err)
		}

		if err := fs.writeLocked([]model.Hotel{}); err != nil {
			return nil, err
		}

		logger.Info("initialized empty data file", zap.String("path", path))
	}

	return fs, nil
}

// ReadAll parses the entire backing file. It fails if the file is
// missing or holds malformed JSON.
func (fs *FileStore) ReadAll() ([]model.Hotel, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.readLocked()
}

// WriteAll replaces the backing file with the given collection.
func (fs *FileStore) WriteAll(hotels []model.Hotel) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.writeLocked(hotels)
}

// Mutate runs fn on the current collection and writes back its result,
// holding the lock across the whole read-modify-write cycle so
// concurrent mutations cannot lose updates. If fn returns an error the
// file is left untouched.
func (fs *FileStore) Mutate(fn func([]model.Hotel) ([]model.Hotel, error)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	hotels, err := fs.readLocked()
	if err != nil {
		return err
	}

	updated, err := fn(hotels)
	if err != nil {
		return err
	}

	return fs.writeLocked(updated)
}

func (fs *FileStore) readLocked() ([]model.Hotel, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}

	var hotels []model.Hotel
	if err := json.Unmarshal(data, &hotels); err != nil {
		return nil, fmt.Errorf("parsing data file: %w", err)
	}

	return hotels, nil
}

func (fs *FileStore) writeLocked(hotels []model.Hotel) error {
	data, err := json.MarshalIndent(hotels, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".hotels-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing data file: %w", err)
	}

	return nil
}
