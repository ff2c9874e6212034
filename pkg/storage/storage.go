// Package storage provides key/value backends for the autosave slot.
//
// The editor keeps exactly one well-known key, [AutosaveKey], which holds the
// latest serialized project and is overwritten wholesale on every autosave
// tick. Explicit project export never touches it.
//
// # Backends
//
//   - [MemoryStore]: in-process map, used by tests and the HTTP service when
//     persistence is disabled
//   - [FileStore]: one JSON file per key under a directory (default backend)
//   - [SQLiteStore]: a single-table SQLite database
//   - [RedisStore]: a Redis server
//   - [MongoStore]: a MongoDB collection
//
// [Open] builds a backend from a [Config]. All backends are safe for
// concurrent use. Failures are reported as errors.ErrCodeStorage; callers on
// the autosave path log and swallow them.
package storage

import (
	"context"

	"github.com/matzehuels/meteomap/pkg/errors"
)

// AutosaveKey is the key the latest autosave is stored under.
const AutosaveKey = "meteomap:autosave"

// Store is a minimal key/value store.
type Store interface {
	// Get returns the value for key. A missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Name identifies the backend in logs and metrics.
	Name() string

	// Close releases the backend's resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// Path is the directory of the file backend or the database file of the
	// sqlite backend.
	Path string `toml:"path"`

	RedisURL string `toml:"redis_url"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open creates the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.Path)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
}

func storageErr(backend, op string, err error) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "%s %s", backend, op)
}
