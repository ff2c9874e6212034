package geometry

import "math"

// Mapper maps a pixel grid onto the stage. Origin is the stage's top-left
// corner in the front end's pixel space; Width and Height are its size.
type Mapper struct {
	Origin Point
	Width  float64
	Height float64
}

// NewMapper returns a mapper for a stage of the given pixel size at the origin.
func NewMapper(width, height float64) Mapper {
	return Mapper{Width: width, Height: height}
}

// WithAspect returns a mapper of the given pixel width whose height follows
// ratio (height/width, as returned by errors.ParseAspectRatio).
func WithAspect(width, ratio float64) Mapper {
	return Mapper{Width: width, Height: width * ratio}
}

// Valid reports whether the mapper has a usable, non-empty size.
func (m Mapper) Valid() bool {
	return m.Width > 0 && m.Height > 0
}

// ToPercent converts a pixel position to stage percent, clamped to [0,100].
func (m Mapper) ToPercent(px Point) Point {
	return ClampPoint(m.ToPercentUnclamped(px))
}

// ToPercentUnclamped converts a pixel position to stage percent without
// clamping. Positions outside the stage map outside 0..100.
func (m Mapper) ToPercentUnclamped(px Point) Point {
	if !m.Valid() {
		return Point{}
	}
	return Point{
		X: (px.X - m.Origin.X) * 100 / m.Width,
		Y: (px.Y - m.Origin.Y) * 100 / m.Height,
	}
}

// ToPixels converts a stage-percent position to pixels.
func (m Mapper) ToPixels(pct Point) Point {
	return Point{
		X: m.Origin.X + pct.X*m.Width/100,
		Y: m.Origin.Y + pct.Y*m.Height/100,
	}
}

// DeltaToPercent converts a pixel offset to a percent offset.
func (m Mapper) DeltaToPercent(d Point) Point {
	if !m.Valid() {
		return Point{}
	}
	return Point{X: d.X * 100 / m.Width, Y: d.Y * 100 / m.Height}
}

// WidthPercentToPixels converts a length in percent of stage width to pixels.
func (m Mapper) WidthPercentToPixels(v float64) float64 {
	return v * m.Width / 100
}

// WidthPercentDistance returns the distance between two percent points,
// measured in percent of the stage width.
func (m Mapper) WidthPercentDistance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if m.Valid() {
		dy = dy * m.Height / m.Width
	}
	return math.Hypot(dx, dy)
}

// Contains reports whether a pixel position lies on the stage.
func (m Mapper) Contains(px Point) bool {
	return Rect{Min: m.Origin, Max: Point{X: m.Origin.X + m.Width, Y: m.Origin.Y + m.Height}}.Contains(px)
}
