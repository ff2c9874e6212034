package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/meteomap/pkg/errors"
)

// FileStore stores each key as a JSON file in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns ~/.config/meteomap/storage.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "get home dir")
	}
	return filepath.Join(home, ".config", "meteomap", "storage"), nil
}

// NewFileStore creates a file store in dir, creating it if needed. An empty
// dir means DefaultDir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, storageErr(BackendFile, "create dir", err)
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry wraps stored data with metadata.
type fileEntry struct {
	Key     string    `json:"key"`
	Data    []byte    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// Get reads the value for key. A corrupt entry is removed and reported as
// a miss.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageErr(BackendFile, "read", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes the value for key through a temporary file so a crash never
// leaves a half-written entry.
func (s *FileStore) Set(ctx context.Context, key string, data []byte) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return err
	}
	entry, err := json.Marshal(fileEntry{Key: key, Data: data, SavedAt: time.Now().UTC()})
	if err != nil {
		return storageErr(BackendFile, "encode", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return storageErr(BackendFile, "create temp", err)
	}
	if _, err := tmp.Write(entry); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return storageErr(BackendFile, "write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return storageErr(BackendFile, "close", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return storageErr(BackendFile, "rename", err)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return storageErr(BackendFile, "remove", err)
	}
	return nil
}

func (s *FileStore) Name() string { return BackendFile }

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file that holds key. Keys are hashed so any string is a
// safe file name.
func (s *FileStore) Path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

var _ Store = (*FileStore)(nil)
