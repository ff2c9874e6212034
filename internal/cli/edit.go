package cli

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/internal/config"
	"github.com/matzehuels/meteomap/internal/tui"
	"github.com/matzehuels/meteomap/pkg/autosave"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/editor"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/interact"
	"github.com/matzehuels/meteomap/pkg/project"
	"github.com/matzehuels/meteomap/pkg/storage"
)

// editOptions holds configuration for the edit command.
type editOptions struct {
	logFile    string
	noAutosave bool
}

// editCommand creates the edit command for the terminal map editor.
func (c *CLI) editCommand() *cobra.Command {
	opts := editOptions{}

	cmd := &cobra.Command{
		Use:   "edit [project]",
		Short: "Open the terminal map editor",
		Long: `Open the terminal map editor.

With a project file, the editor starts from that file and ctrl+s saves back to
it. A missing file starts an empty map saved under that name. Without a
project, the last autosave is restored.`,
		Example: `  meteomap edit
  meteomap edit forecast.json --log-file /tmp/meteomap.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runEdit(cmd.Context(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the editor runs")
	cmd.Flags().BoolVar(&opts.noAutosave, "no-autosave", false, "disable periodic autosave")

	return cmd
}

// runEdit loads the starting document, runs the editor and saves once more on exit.
func (c *CLI) runEdit(ctx context.Context, path string, opts editOptions) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	cat, err := c.catalog(cfg)
	if err != nil {
		return err
	}

	logger, closeLog, err := fileLogger(opts.logFile, c.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, err := c.startDocument(ctx, path, store)
	if err != nil {
		return err
	}

	sessionOpts := []editor.Option{}
	if doc != nil {
		sessionOpts = append(sessionOpts, editor.WithDocument(*doc))
	}
	machine := interact.New(editor.New(cat, sessionOpts...), interact.WithLogger(logger))

	savePath := path
	if savePath == "" {
		savePath = "meteomap.json"
	}
	model := tui.New(machine, tui.WithPath(savePath), tui.WithLogger(logger))

	saver := newAutosaver(cfg, store, model.Snapshot, opts.noAutosave, logger)
	if saver != nil {
		saver.Start(ctx)
	}

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, runErr := prog.Run()

	if saver != nil {
		saver.Stop()
		if err := saver.SaveNow(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("final autosave failed", "err", err)
		}
	}
	return runErr
}

// startDocument returns the document the editor opens with, or nil for a
// fresh one. A project path wins over the autosave. A broken autosave is
// logged and skipped.
func (c *CLI) startDocument(ctx context.Context, path string, store storage.Store) (*document.Document, error) {
	if path != "" {
		doc, err := project.ImportFile(path)
		if errors.Is(err, errors.ErrCodeNotFound) {
			c.Logger.Info("new project", "path", path)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("project loaded", "path", filepath.Base(path), "elements", len(doc.Elements))
		return &doc, nil
	}

	doc, ok, err := autosave.Restore(ctx, store)
	if err != nil {
		c.Logger.Warn("autosave not restored", "backend", store.Name(), "err", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	c.Logger.Debug("autosave restored", "backend", store.Name(), "elements", len(doc.Elements))
	return &doc, nil
}

// newAutosaver returns nil when autosave is switched off.
func newAutosaver(cfg *config.Config, store storage.Store, src autosave.Source, disabled bool, logger *log.Logger) *autosave.Autosaver {
	if disabled || !cfg.Autosave.Enabled {
		return nil
	}
	return autosave.New(store, src,
		autosave.WithPeriod(cfg.Autosave.Period),
		autosave.WithLogger(logger),
	)
}
