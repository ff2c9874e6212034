package cli

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/export"
	"github.com/matzehuels/meteomap/pkg/project"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string  // output PNG path
	pixelRatio float64 // pixel density multiplier
	fill       string  // color painted under transparent regions
	width      int     // stage width in CSS pixels
	background string  // background image file
}

// renderCommand creates the render command for rasterizing a project file.
//
// Unset flags fall back to the [export] section of the config file.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Render a project file to PNG",
		Example: `  meteomap render forecast.json
  meteomap render forecast.json -o out.png --pixel-ratio 1 --background europe.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: project name with .png)")
	cmd.Flags().Float64Var(&opts.pixelRatio, "pixel-ratio", 0, "pixel density multiplier (default from config)")
	cmd.Flags().StringVar(&opts.fill, "fill", "", "fill color under transparent regions, e.g. #ffffff")
	cmd.Flags().IntVar(&opts.width, "width", 0, "stage width in pixels (default from config)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background image (PNG or JPEG)")

	return cmd
}

// runRender reads the project, renders it and writes the PNG.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	cat, err := c.catalog(cfg)
	if err != nil {
		return err
	}

	doc, err := project.ImportFile(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("project loaded", "path", input, "elements", len(doc.Elements))

	bg, err := loadBackground(opts.background)
	if err != nil {
		return err
	}

	width := opts.width
	if width <= 0 {
		width = cfg.Export.Width
	}
	ratio := opts.pixelRatio
	if ratio <= 0 {
		ratio = cfg.Export.PixelRatio
	}
	fill := opts.fill
	if fill == "" {
		fill = cfg.Export.Fill
	}

	output := opts.output
	if output == "" {
		output = outputPath(input)
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Rendering "+filepath.Base(input)+"...")
	spinner.Start()

	stage := export.NewStage(doc, doc.Resolver(cat), width, bg)
	data, err := export.Export(ctx, export.NewRasterizer(), stage,
		export.WithPixelRatio(ratio),
		export.WithFill(fill),
	)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Render failed: " + errors.UserMessage(err))
		return err
	}
	spinner.Stop()

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "write %s", output)
	}
	prog.done("Rendered " + filepath.Base(output))

	out := cmd.OutOrStdout()
	printSuccess(out, "Rendered %d elements", len(doc.Elements))
	printFile(out, output)
	return nil
}

// outputPath replaces the extension of input with .png.
func outputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}

// loadBackground decodes the image at path. An empty path means no image.
func loadBackground(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open background %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open background %s", path)
	}
	defer f.Close()
	return export.LoadBackground(f)
}
