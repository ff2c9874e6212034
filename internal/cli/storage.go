package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/pkg/project"
	"github.com/matzehuels/meteomap/pkg/storage"
)

// storageCommand creates the autosave management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage the autosave slot",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageShowCommand())
	cmd.AddCommand(c.storageClearCommand())

	return cmd
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show where the autosave is kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			printKeyValue(out, "backend", store.Name())
			printKeyValue(out, "location", storeLocation(store, cfg.Storage))
			printKeyValue(out, "key", storage.AutosaveKey)
			return nil
		},
	}
}

// storageShowCommand creates the "storage show" subcommand.
func (c *CLI) storageShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the autosaved project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			data, ok, err := store.Get(cmd.Context(), storage.AutosaveKey)
			if err != nil {
				return err
			}
			if !ok {
				printInfo(out, "Nothing autosaved yet")
				return nil
			}
			doc, err := project.Unmarshal(data)
			if err != nil {
				printWarning(out, "Autosave is unreadable and will be ignored")
				return err
			}

			printKeyValue(out, "saved", savedAt(data))
			printKeyValue(out, "background", doc.Background.ID)
			printKeyValue(out, "elements", kindSummary(doc.Elements))
			printKeyValue(out, "size", formatBytes(len(data)))
			return nil
		},
	}
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the autosave",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), storage.AutosaveKey); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Cleared autosave")
			printDetail(cmd.OutOrStdout(), "Backend: %s", store.Name())
			return nil
		},
	}
}

// storeLocation describes where store keeps its data. Credentials in
// connection strings are redacted.
func storeLocation(store storage.Store, cfg storage.Config) string {
	switch s := store.(type) {
	case *storage.FileStore:
		return s.Path(storage.AutosaveKey)
	case *storage.SQLiteStore:
		return s.Path()
	case *storage.MemoryStore:
		return "process memory"
	}
	raw := cfg.RedisURL
	if store.Name() == storage.BackendMongo {
		raw = cfg.MongoURI + " " + cfg.MongoDatabase + "." + cfg.MongoCollection
	}
	return redact(raw)
}

// redact hides the password of the URL at the start of s.
func redact(s string) string {
	head, rest, _ := strings.Cut(s, " ")
	u, err := url.Parse(head)
	if err != nil {
		return s
	}
	if rest != "" {
		return u.Redacted() + " " + rest
	}
	return u.Redacted()
}

// savedAt reads the timestamp header of a serialized project.
func savedAt(data []byte) string {
	var hdr struct {
		Timestamp int64 `json:"timestamp"`
	}
	if json.Unmarshal(data, &hdr) != nil || hdr.Timestamp == 0 {
		return "unknown"
	}
	return time.UnixMilli(hdr.Timestamp).Format(time.DateTime)
}

// formatBytes renders n as a short human-readable size.
func formatBytes(n int) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KiB", float64(n)/unit)
	}
	return fmt.Sprintf("%.1f MiB", float64(n)/(unit*unit))
}
