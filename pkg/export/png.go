package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
)

// Zone colors.
const (
	anticycloneColor = "#1d4ed8"
	depressionColor  = "#b91c1c"
)

var (
	fontsOnce sync.Once
	regular   *truetype.Font
	bold      *truetype.Font
	fontsErr  error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// LoadBackground decodes a PNG or JPEG background image.
func LoadBackground(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode background image")
	}
	return img, nil
}

type pngRasterizer struct{}

// NewRasterizer returns the built-in rasterizer. It draws with gg using the
// Go fonts and encodes PNG.
func NewRasterizer() Rasterizer {
	return pngRasterizer{}
}

// Rasterize draws the stage: fill, background image, then every element in
// document order.
func (pngRasterizer) Rasterize(ctx context.Context, st Stage, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	k := opts.PixelRatio
	w := int(math.Round(float64(st.Width) * k))
	h := int(math.Round(float64(st.Height) * k))
	dc := gg.NewContext(w, h)
	dc.SetHexColor(opts.Fill)
	dc.Clear()

	if st.Background != nil {
		b := st.Background.Bounds()
		dc.Push()
		dc.Scale(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
		dc.DrawImage(st.Background, -b.Min.X, -b.Min.Y)
		dc.Pop()
	}

	p := painter{dc: dc, k: k, w: float64(w), h: float64(h), st: st}
	for _, e := range st.Document.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.element(e)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// painter draws elements in device pixels. k is the pixel ratio; w and h are
// the device size of the stage.
type painter struct {
	dc   *gg.Context
	k    float64
	w, h float64
	st   Stage
}

func (p painter) element(e document.Element) {
	x := e.X * p.w / 100
	y := e.Y * p.h / 100
	switch b := e.Body.(type) {
	case document.Icon:
		p.icon(x, y, b)
	case document.Label:
		p.badge(x, y, b.Text, b.Style)
	case document.Temperature:
		p.badge(x, y, b.Display(), b.Style)
	case document.Wind:
		p.badge(x, y, "➶ "+b.Display(), b.Style)
	case document.PressureZone:
		p.zone(x, y, b)
	default:
		panic(fmt.Sprintf("export: unknown element body %T", e.Body))
	}
}

func (p painter) icon(x, y float64, ic document.Icon) {
	glyph := p.st.Resolver.Resolve(ic.Ref).Glyph
	size := ic.Size * p.k
	p.dc.SetRGBA(1, 1, 1, 0.6)
	p.dc.DrawCircle(x, y, size/2)
	p.dc.Fill()
	p.dc.SetFontFace(face(regular, size*0.7))
	p.dc.SetHexColor("#111827")
	p.dc.DrawStringAnchored(glyph, x, y, 0.5, 0.35)
}

func (p painter) badge(x, y float64, text string, s document.TextStyle) {
	size := s.FontSize * p.k
	p.dc.SetFontFace(face(bold, size))
	tw, th := p.dc.MeasureString(text)
	pad := size * 0.3
	bw, bh := tw+2*pad, th+2*pad

	if s.ShowBackground {
		p.dc.SetRGBA(1, 1, 1, 0.85)
		p.dc.DrawRoundedRectangle(x-bw/2, y-bh/2, bw, bh, pad)
		p.dc.Fill()
	}
	if s.ShowBorder {
		p.dc.SetHexColor(s.Color)
		p.dc.SetLineWidth(math.Max(1, p.k))
		p.dc.DrawRoundedRectangle(x-bw/2, y-bh/2, bw, bh, pad)
		p.dc.Stroke()
	}
	p.dc.SetHexColor(s.Color)
	p.dc.DrawStringAnchored(text, x, y, 0.5, 0.35)
}

func (p painter) zone(x, y float64, z document.PressureZone) {
	r := z.Radius * p.w / 100
	c, letter := anticycloneColor, "A"
	if z.Zone == document.Depression {
		c, letter = depressionColor, "D"
	}

	p.dc.SetHexColor(c)
	p.dc.SetLineWidth(2 * p.k)
	p.dc.SetDash(6*p.k, 4*p.k)
	p.dc.DrawCircle(x, y, r)
	p.dc.Stroke()
	p.dc.SetDash()

	// Arrowhead on the rim at 12 o'clock, pointing along the rotation.
	dir := 1.0
	if z.Rotation() == document.CounterClockwise {
		dir = -1
	}
	a := 6 * p.k
	p.dc.MoveTo(x+dir*a, y-r)
	p.dc.LineTo(x-dir*a/2, y-r-a)
	p.dc.LineTo(x-dir*a/2, y-r+a)
	p.dc.ClosePath()
	p.dc.Fill()

	p.dc.SetFontFace(face(bold, math.Max(12*p.k, r*0.6)))
	p.dc.DrawStringAnchored(letter, x, y, 0.5, 0.35)
}
