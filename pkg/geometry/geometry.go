// Package geometry converts between stage pixels and stage percent.
//
// Every element on the map is positioned in stage-percent coordinates: 0..100
// on each axis, independent of how large the stage is drawn. Front ends
// (the browser page, the terminal editor, the raster exporter) each have
// their own pixel grid, described by a [Mapper].
//
// Pressure-zone radii are expressed in percent of the stage width, so
// distances use [Mapper.WidthPercentDistance], which corrects the vertical
// component for the stage's aspect ratio.
package geometry

import "math"

// Point is a position. Depending on context it is in pixels or stage percent.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle given by two corners in any order.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// RectFrom builds a normalized rectangle from two arbitrary corners.
func RectFrom(a, b Point) Rect {
	return Rect{
		Min: Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
		Max: Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
	}.Normalize()
}

// Normalize swaps corners so that Min <= Max on both axes.
func (r Rect) Normalize() Rect {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// Contains reports whether p lies inside r, bounds inclusive.
func (r Rect) Contains(p Point) bool {
	r = r.Normalize()
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { n := r.Normalize(); return n.Max.X - n.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { n := r.Normalize(); return n.Max.Y - n.Min.Y }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent limits v to the stage range [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// ClampPoint clamps both coordinates of a percent point to the stage.
func ClampPoint(p Point) Point {
	return Point{X: ClampPercent(p.X), Y: ClampPercent(p.Y)}
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Centroid returns the mean of pts, or the zero point for an empty slice.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{X: c.X / n, Y: c.Y / n}
}
