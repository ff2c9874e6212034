// Package export rasterizes the current map to an image.
//
// The editor core never draws anything itself. It hands a [Stage] (the
// document plus everything needed to draw it) to a [Rasterizer] and gets
// encoded image bytes back. [NewRasterizer] returns the built-in PNG
// rasterizer; front ends with their own rendering pipeline can supply a
// different implementation.
//
// Export failures are reported as errors.ErrCodeExport. They never touch the
// document, so the caller can show a notice and carry on editing.
package export

import (
	"context"
	"image"
	"time"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/observability"
)

// Defaults for export options.
const (
	DefaultPixelRatio = 2.0
	DefaultFill       = "#ffffff"
	DefaultWidth      = 1200
)

// Stage is the resolved visual state handed to a rasterizer.
type Stage struct {
	Document   document.Document
	Resolver   *catalog.Resolver
	Width      int
	Height     int
	Background image.Image // nil draws the fill only
}

// NewStage builds a stage of the given CSS pixel width whose height follows
// the document's aspect ratio.
func NewStage(doc document.Document, r *catalog.Resolver, width int, bg image.Image) Stage {
	if width <= 0 {
		width = DefaultWidth
	}
	ratio, err := errors.ParseAspectRatio(doc.Background.AspectRatio)
	if err != nil {
		ratio, _ = errors.ParseAspectRatio(catalog.DefaultAspectRatio)
	}
	return Stage{
		Document:   doc,
		Resolver:   r,
		Width:      width,
		Height:     int(float64(width)*ratio + 0.5),
		Background: bg,
	}
}

// Options configures a rasterization.
type Options struct {
	// PixelRatio multiplies the stage size (2 renders at double density).
	PixelRatio float64
	// Fill is the hex color painted under transparent regions.
	Fill string
}

// Option sets an export option.
type Option func(*Options)

// WithPixelRatio sets the pixel density multiplier. Non-positive values keep
// the default.
func WithPixelRatio(r float64) Option {
	return func(o *Options) {
		if r > 0 {
			o.PixelRatio = r
		}
	}
}

// WithFill sets the background fill color (#rgb, #rrggbb or #rrggbbaa).
func WithFill(hex string) Option {
	return func(o *Options) {
		if hex != "" {
			o.Fill = hex
		}
	}
}

// Rasterizer renders a stage to encoded image bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, st Stage, opts Options) ([]byte, error)
}

// RasterizerFunc adapts a function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, st Stage, opts Options) ([]byte, error)

// Rasterize calls f.
func (f RasterizerFunc) Rasterize(ctx context.Context, st Stage, opts Options) ([]byte, error) {
	return f(ctx, st, opts)
}

// Export renders st with r. Option validation errors are returned as is;
// rasterizer failures are wrapped as errors.ErrCodeExport.
func Export(ctx context.Context, r Rasterizer, st Stage, opts ...Option) ([]byte, error) {
	o := Options{PixelRatio: DefaultPixelRatio, Fill: DefaultFill}
	for _, opt := range opts {
		opt(&o)
	}
	if err := errors.ValidateColor(o.Fill); err != nil {
		return nil, err
	}
	if st.Width <= 0 || st.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "stage has no size (%dx%d)", st.Width, st.Height)
	}

	hooks := observability.Export()
	hooks.OnExportStart(ctx, o.PixelRatio)
	start := time.Now()

	data, err := r.Rasterize(ctx, st, o)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeExport, err, "rasterize stage")
	}
	hooks.OnExportComplete(ctx, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return data, nil
}
