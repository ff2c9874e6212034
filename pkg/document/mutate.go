package document

import (
	"math"

	"github.com/matzehuels/meteomap/pkg/geometry"
)

// CopyOffset is the offset, in stage percent on both axes, applied to
// duplicated and anchorless pasted copies.
const CopyOffset = 5.0

// Patch is a partial update. Nil fields are left unchanged; fields that do
// not apply to the target's kind are ignored.
type Patch struct {
	X, Y *float64

	IconRef *string
	Size    *float64

	Text  *string
	Value *string
	Speed *int

	FontSize       *float64
	Color          *string
	ShowBackground *bool
	ShowBorder     *bool

	Zone       *ZoneType
	Radius     *float64
	Hemisphere *Hemisphere
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Find returns the element with the given id.
func Find(elements []Element, id string) (Element, bool) {
	for _, e := range elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// Add appends e, clamped. The caller must supply a unique id.
func Add(elements []Element, e Element) []Element {
	out := make([]Element, 0, len(elements)+1)
	out = append(out, elements...)
	return append(out, Clamp(e))
}

// Update merges p into the element with the given id. It is a no-op when
// the id is absent or the element is locked.
func Update(elements []Element, id string, p Patch) []Element {
	return mapElements(elements, func(e Element) Element {
		if e.ID != id || e.Locked {
			return e
		}
		return Clamp(applyPatch(e, p))
	})
}

func applyPatch(e Element, p Patch) Element {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	switch v := e.Body.(type) {
	case Icon:
		setIf(&v.Ref, p.IconRef)
		setIf(&v.Size, p.Size)
		e.Body = v
	case Label:
		setIf(&v.Text, p.Text)
		v.Style = patchStyle(v.Style, p)
		e.Body = v
	case Temperature:
		setIf(&v.Value, p.Value)
		v.Style = patchStyle(v.Style, p)
		e.Body = v
	case Wind:
		setIf(&v.SpeedKmh, p.Speed)
		v.Style = patchStyle(v.Style, p)
		e.Body = v
	case PressureZone:
		setIf(&v.Zone, p.Zone)
		setIf(&v.Radius, p.Radius)
		setIf(&v.Hemisphere, p.Hemisphere)
		e.Body = v
	default:
		panic(unknownBody(e.Body))
	}
	return e
}

func patchStyle(s TextStyle, p Patch) TextStyle {
	setIf(&s.FontSize, p.FontSize)
	setIf(&s.Color, p.Color)
	setIf(&s.ShowBackground, p.ShowBackground)
	setIf(&s.ShowBorder, p.ShowBorder)
	return s
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Remove drops every element whose id is in ids, locked or not.
func Remove(elements []Element, ids []string) []Element {
	drop := idSet(ids)
	out := make([]Element, 0, len(elements))
	for _, e := range elements {
		if !drop[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// Move offsets every unlocked element in ids by (dx, dy) percent. Each
// coordinate is clamped to the stage independently.
func Move(elements []Element, ids []string, dx, dy float64) []Element {
	move := idSet(ids)
	return mapElements(elements, func(e Element) Element {
		if !move[e.ID] || e.Locked {
			return e
		}
		e.X = geometry.ClampPercent(e.X + dx)
		e.Y = geometry.ClampPercent(e.Y + dy)
		return e
	})
}

// SetLocked sets the lock flag of every element in ids.
func SetLocked(elements []Element, ids []string, locked bool) []Element {
	set := idSet(ids)
	return mapElements(elements, func(e Element) Element {
		if set[e.ID] {
			e.Locked = locked
		}
		return e
	})
}

// SizeMetric returns the value a resize gesture acts on: icon size, font
// size for text kinds, radius for pressure zones.
func SizeMetric(b Body) float64 {
	switch v := b.(type) {
	case Icon:
		return v.Size
	case Label:
		return v.Style.FontSize
	case Temperature:
		return v.Style.FontSize
	case Wind:
		return v.Style.FontSize
	case PressureZone:
		return v.Radius
	}
	panic(unknownBody(b))
}

// Resize sets the size metric of the element with the given id, clamped to
// its kind's range. Font sizes are rounded to one decimal. Locked elements
// are left alone.
func Resize(elements []Element, id string, metric float64) []Element {
	return mapElements(elements, func(e Element) Element {
		if e.ID != id || e.Locked {
			return e
		}
		e.Body = withMetric(e.Body, metric)
		return e
	})
}

func withMetric(b Body, m float64) Body {
	switch v := b.(type) {
	case Icon:
		v.Size = clampIconSize(m)
		return v
	case Label:
		v.Style.FontSize = clampFontSize(m)
		return v
	case Temperature:
		v.Style.FontSize = clampFontSize(m)
		return v
	case Wind:
		v.Style.FontSize = clampFontSize(m)
		return v
	case PressureZone:
		v.Radius = clampRadius(m)
		return v
	}
	panic(unknownBody(b))
}

// Duplicate appends an unlocked copy of every element in ids, offset by
// CopyOffset and clamped. It returns the new slice and the copies' ids in
// the order they were appended.
func Duplicate(elements []Element, ids []string, newID func() string) ([]Element, []string) {
	dup := idSet(ids)
	var src []Element
	for _, e := range elements {
		if dup[e.ID] {
			src = append(src, e)
		}
	}
	return Paste(elements, src, nil, newID)
}

// Paste appends unlocked copies of items with fresh ids. With a nil anchor
// each copy is offset by CopyOffset from its original position. With an
// anchor the copies are re-centred so their centroid lands on the anchor,
// preserving their relative offsets. Positions are clamped.
func Paste(elements []Element, items []Element, anchor *geometry.Point, newID func() string) ([]Element, []string) {
	if len(items) == 0 {
		return elements, nil
	}
	delta := geometry.Point{X: CopyOffset, Y: CopyOffset}
	if anchor != nil {
		pts := make([]geometry.Point, len(items))
		for i, it := range items {
			pts[i] = geometry.Point{X: it.X, Y: it.Y}
		}
		delta = anchor.Sub(geometry.Centroid(pts))
	}

	out := make([]Element, 0, len(elements)+len(items))
	out = append(out, elements...)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		c := it
		c.ID = newID()
		c.Locked = false
		c.X += delta.X
		c.Y += delta.Y
		out = append(out, Clamp(c))
		ids = append(ids, c.ID)
	}
	return out, ids
}

// ElementAt returns the top-most element under p. Point-like elements are
// hit within tolerance percent of their anchor; pressure zones are hit
// anywhere inside their radius.
func ElementAt(elements []Element, p geometry.Point, tolerance float64) (Element, bool) {
	for i := len(elements) - 1; i >= 0; i-- {
		e := elements[i]
		reach := tolerance
		if z, ok := e.Body.(PressureZone); ok {
			reach = math.Max(reach, z.Radius)
		}
		if math.Hypot(p.X-e.X, p.Y-e.Y) <= reach {
			return e, true
		}
	}
	return Element{}, false
}

// IDsWithin returns the ids of elements whose anchor lies inside r, bounds
// inclusive, in document order.
func IDsWithin(elements []Element, r geometry.Rect) []string {
	r = r.Normalize()
	var ids []string
	for _, e := range elements {
		if r.Contains(geometry.Point{X: e.X, Y: e.Y}) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Equal reports whether a and b hold the same elements in the same order.
func Equal(a, b []Element) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mapElements(elements []Element, fn func(Element) Element) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = fn(e)
	}
	return out
}

func idSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
