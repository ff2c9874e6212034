// Package legend derives the map legend from the placed elements.
//
// [Derive] is a pure function of the element sequence and the icon
// resolver. It keeps no state, so calling it on every render is both cheap
// enough and always consistent with the document.
package legend

import (
	"fmt"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
)

// Group is the legend section an entry belongs to. Sections are emitted in
// declaration order.
type Group int

const (
	GroupIcon Group = iota
	GroupPressure
	GroupWind
)

func (g Group) String() string {
	switch g {
	case GroupIcon:
		return "icon"
	case GroupPressure:
		return "pressure"
	case GroupWind:
		return "wind"
	}
	return fmt.Sprintf("Group(%d)", int(g))
}

// Entry is one legend line.
type Entry struct {
	Group Group
	Key   string // icon id, zone type or "wind"
	Glyph string
	Label string
	Count int
}

// Fixed entries for pressure zones and wind.
var (
	anticycloneEntry = Entry{Group: GroupPressure, Key: string(document.Anticyclone), Glyph: "A", Label: "Anticyclone"}
	depressionEntry  = Entry{Group: GroupPressure, Key: string(document.Depression), Glyph: "D", Label: "Dépression"}
	windEntry        = Entry{Group: GroupWind, Key: "wind", Glyph: "➶", Label: "Vent"}
)

// Derive returns the legend for elements. Icons are grouped by resolved
// catalog entry, so every dangling reference shares the default entry.
// Pressure zones are grouped by zone type and all wind badges share one
// entry. Labels and temperatures are not listed. Within a group, entries
// keep the order in which they were first seen.
func Derive(elements []document.Element, r *catalog.Resolver) []Entry {
	var groups [3][]Entry
	index := make(map[Group]map[string]int)

	add := func(e Entry) {
		m := index[e.Group]
		if m == nil {
			m = make(map[string]int)
			index[e.Group] = m
		}
		if i, ok := m[e.Key]; ok {
			groups[e.Group][i].Count++
			return
		}
		e.Count = 1
		m[e.Key] = len(groups[e.Group])
		groups[e.Group] = append(groups[e.Group], e)
	}

	for _, el := range elements {
		switch b := el.Body.(type) {
		case document.Icon:
			ic := r.Resolve(b.Ref)
			add(Entry{Group: GroupIcon, Key: ic.ID, Glyph: ic.Glyph, Label: ic.Label})
		case document.PressureZone:
			if b.Zone == document.Depression {
				add(depressionEntry)
			} else {
				add(anticycloneEntry)
			}
		case document.Wind:
			add(windEntry)
		case document.Label, document.Temperature:
		default:
			panic(fmt.Sprintf("legend: unknown element body %T", el.Body))
		}
	}

	var out []Entry
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
