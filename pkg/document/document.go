// Package document is the in-memory model of a weather map.
//
// A map is an ordered sequence of [Element] values placed on a background.
// Insertion order is z-order: later elements are drawn on top, hit-testing
// walks the sequence backwards and the legend uses it to break ties.
//
// # Element kinds
//
// Each element carries a [Body], a closed sum type with exactly five
// implementations: [Icon], [Label], [Temperature], [Wind] and [PressureZone].
// Body has an unexported marker method, so no other package can add a kind.
// Consumers switch over the concrete types and panic in the default branch;
// a new kind fails loudly in every consumer's tests until it is handled.
//
// # Mutators
//
// All mutators are functional: they take the full element slice and return
// a fresh one, never modifying their input. Bodies are values, so a returned
// slice shares nothing mutable with its input and can be stored directly as
// a history snapshot.
//
// Mutators are total. Unknown ids are ignored, out-of-range values are
// clamped, and locked elements are skipped by every edit except
// [SetLocked] and [Remove].
package document

import (
	"github.com/matzehuels/meteomap/pkg/catalog"
)

// DefaultBackgroundID is the background a fresh document starts on.
const DefaultBackgroundID = "france"

// Background references a catalog background. Source is the resolved image
// location; an empty Source means no image (plain fill).
type Background struct {
	ID          string
	Source      string
	AspectRatio string
}

// Document is the aggregate edited in a session.
type Document struct {
	Elements    []Element
	Background  Background
	CustomIcons []catalog.Icon
}

// New returns an empty document on the given background.
func New(bg Background) Document {
	if bg.AspectRatio == "" {
		bg.AspectRatio = catalog.DefaultAspectRatio
	}
	return Document{Background: bg}
}

// BackgroundFrom builds a Background reference from a catalog entry.
func BackgroundFrom(bg catalog.Background) Background {
	ratio := bg.AspectRatio
	if ratio == "" {
		ratio = catalog.DefaultAspectRatio
	}
	return Background{ID: bg.ID, Source: bg.URL, AspectRatio: ratio}
}

// Resolver returns an icon resolver over the built-in catalog and the
// document's custom icons.
func (d Document) Resolver(c *catalog.Catalog) *catalog.Resolver {
	return catalog.NewResolver(c, d.CustomIcons)
}
