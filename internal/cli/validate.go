package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/project"
)

// validateCommand creates the validate command, which checks a project file
// the way import does without opening an editor.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project>",
		Short: "Check a project file",
		Long: `Check a project file.

The file is parsed exactly as the editor imports it. Icon references that do
not resolve against the catalog are reported as warnings; they render with
the default icon.`,
		Example: `  meteomap validate forecast.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			cat, err := c.catalog(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			doc, err := project.ImportFile(args[0])
			if err != nil {
				printError(out, "%s is not a valid project", args[0])
				return err
			}

			printSuccess(out, "%s is a valid project", args[0])
			printKeyValue(out, "background", doc.Background.ID)
			printKeyValue(out, "aspect", doc.Background.AspectRatio)
			printKeyValue(out, "elements", kindSummary(doc.Elements))
			if len(doc.CustomIcons) > 0 {
				printKeyValue(out, "custom", fmt.Sprintf("%d icons", len(doc.CustomIcons)))
			}
			for _, ref := range danglingRefs(doc, doc.Resolver(cat)) {
				printWarning(out, "icon %q is not in the catalog", ref)
			}
			return nil
		},
	}
}

// kindSummary counts elements per kind in palette order, e.g. "3 icon, 1 wind".
func kindSummary(elements []document.Element) string {
	if len(elements) == 0 {
		return "none"
	}
	counts := make(map[document.Kind]int)
	for _, e := range elements {
		counts[e.Kind()]++
	}
	var parts []string
	for _, k := range document.Kinds {
		if n := counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, ", ")
}

// danglingRefs returns the icon references r cannot resolve, once each.
func danglingRefs(doc document.Document, r *catalog.Resolver) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, e := range doc.Elements {
		ic, ok := e.Body.(document.Icon)
		if !ok || seen[ic.Ref] {
			continue
		}
		seen[ic.Ref] = true
		if _, found := r.Lookup(ic.Ref); !found {
			refs = append(refs, ic.Ref)
		}
	}
	return refs
}
