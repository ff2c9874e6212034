// Package config loads meteomap settings.
//
// Settings come from a TOML file (default ~/.config/meteomap/config.toml)
// and are then overridden by METEOMAP_* environment variables. A missing
// default file is not an error; every setting has a default.
//
//	[storage]
//	backend = "sqlite"
//	path = "/var/lib/meteomap/autosave.db"
//
//	[autosave]
//	period = "30s"
//
//	[export]
//	pixel_ratio = 2
//	fill = "#ffffff"
//
//	[server]
//	addr = ":8080"
//
//	[catalog]
//	path = "my-icons.toml"
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/meteomap/pkg/autosave"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/export"
	"github.com/matzehuels/meteomap/pkg/storage"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "METEOMAP_"

// Config holds all settings.
type Config struct {
	Storage  storage.Config `toml:"storage"`
	Autosave Autosave       `toml:"autosave"`
	Export   Export         `toml:"export"`
	Server   Server         `toml:"server"`
	Catalog  Catalog        `toml:"catalog"`
}

// Autosave configures the periodic save of the open document.
type Autosave struct {
	Enabled bool          `toml:"enabled"`
	Period  time.Duration `toml:"period"`
}

// Export configures PNG rendering.
type Export struct {
	PixelRatio float64 `toml:"pixel_ratio"`
	Fill       string  `toml:"fill"`
	Width      int     `toml:"width"`
}

// Server configures the HTTP service.
type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Catalog points at an optional catalog file replacing the built-in one.
type Catalog struct {
	Path string `toml:"path"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Storage:  storage.Config{Backend: storage.BackendFile},
		Autosave: Autosave{Enabled: true, Period: autosave.DefaultPeriod},
		Export: Export{
			PixelRatio: export.DefaultPixelRatio,
			Fill:       export.DefaultFill,
			Width:      export.DefaultWidth,
		},
		Server: Server{Addr: ":8080", ShutdownTimeout: 10 * time.Second},
	}
}

// DefaultPath returns ~/.config/meteomap/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "meteomap", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "meteomap", "config.toml"), nil
}

// Load reads the config file at path and applies environment overrides. An
// empty path loads the default file if it exists; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			switch {
			case stderrors.Is(err, fs.ErrNotExist) && !explicit:
			case stderrors.Is(err, fs.ErrNotExist):
				return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
			default:
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("STORAGE_BACKEND", &c.Storage.Backend)
	str("STORAGE_PATH", &c.Storage.Path)
	str("REDIS_URL", &c.Storage.RedisURL)
	str("MONGO_URI", &c.Storage.MongoURI)
	str("MONGO_DATABASE", &c.Storage.MongoDatabase)
	str("MONGO_COLLECTION", &c.Storage.MongoCollection)
	str("EXPORT_FILL", &c.Export.Fill)
	str("SERVER_ADDR", &c.Server.Addr)
	str("CATALOG_PATH", &c.Catalog.Path)

	if v, ok := os.LookupEnv(EnvPrefix + "AUTOSAVE_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envErr("AUTOSAVE_ENABLED", v, err)
		}
		c.Autosave.Enabled = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "AUTOSAVE_PERIOD"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr("AUTOSAVE_PERIOD", v, err)
		}
		c.Autosave.Period = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "EXPORT_PIXEL_RATIO"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envErr("EXPORT_PIXEL_RATIO", v, err)
		}
		c.Export.PixelRatio = f
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr("SHUTDOWN_TIMEOUT", v, err)
		}
		c.Server.ShutdownTimeout = d
	}
	return nil
}

func envErr(name, value string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, name, value)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	case storage.BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage backend redis requires redis_url")
		}
	case storage.BackendMongo:
		if c.Storage.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "storage backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}
	if c.Autosave.Period <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "autosave period must be positive, got %s", c.Autosave.Period)
	}
	if c.Export.PixelRatio <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "export pixel_ratio must be positive, got %v", c.Export.PixelRatio)
	}
	if c.Export.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "export width must be positive, got %d", c.Export.Width)
	}
	if err := errors.ValidateColor(c.Export.Fill); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "export fill")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server addr cannot be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server shutdown_timeout must be positive")
	}
	return nil
}
