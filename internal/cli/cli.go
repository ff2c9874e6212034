// Package cli implements the meteomap command-line interface.
//
// This package provides the terminal map editor, the HTTP editing service
// and batch commands for rendering, validating and inspecting project files.
// The CLI is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - edit: Open the terminal editor on a project file or the autosave
//   - serve: Serve an editing session over HTTP
//   - render: Rasterize a project file to PNG
//   - legend: Print the legend derived from a project file
//   - validate: Check a project file without opening it
//   - storage: Inspect or clear the autosave slot
//
// # Configuration
//
// Settings are read from ~/.config/meteomap/config.toml (or --config) and
// METEOMAP_* environment variables. See internal/config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/internal/config"
	"github.com/matzehuels/meteomap/pkg/buildinfo"
	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "meteomap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Meteomap draws weather maps",
		Long:         `Meteomap is an editor for weather maps: place icons, temperatures, wind badges and pressure zones on a background map, then export the result as PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/meteomap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.legendCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Setup
// =============================================================================

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "storage", cfg.Storage.Backend, "catalog", cfg.Catalog.Path)
	c.cfg = cfg
	return cfg, nil
}

// catalog returns the configured catalog, or the built-in one.
func (c *CLI) catalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.Load(cfg.Catalog.Path)
}

// openStore opens the configured autosave backend.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	s, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("storage opened", "backend", s.Name())
	return s, nil
}
