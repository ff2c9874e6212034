package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/pkg/legend"
	"github.com/matzehuels/meteomap/pkg/project"
)

// legendCommand creates the legend command, which prints the legend a
// project file would show.
func (c *CLI) legendCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "legend <project>",
		Short:   "Print the legend of a project file",
		Example: `  meteomap legend forecast.json`,
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
			doc, err := project.ImportFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entries := legend.Derive(doc.Elements, doc.Resolver(cat))
			if len(entries) == 0 {
				printInfo(out, "Legend is empty")
				return nil
			}
			printTable(out, []string{"Group", "Symbol", "Label", "Count"}, legendRows(entries))
			return nil
		},
	}
}

// legendRows flattens entries into table rows.
func legendRows(entries []legend.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Group.String(), e.Glyph, e.Label, strconv.Itoa(e.Count)})
	}
	return rows
}
