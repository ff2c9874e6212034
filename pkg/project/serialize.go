package project

import (
	"fmt"
	"time"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
)

// Serialize converts doc into a record stamped with at.
func Serialize(doc document.Document, at time.Time) Record {
	rec := Record{
		Version:     SchemaVersion,
		Timestamp:   at.UnixMilli(),
		BgID:        doc.Background.ID,
		AspectRatio: doc.Background.AspectRatio,
		Elements:    make([]ElementRecord, len(doc.Elements)),
		CustomIcons: append([]catalog.Icon{}, doc.CustomIcons...),
	}
	if doc.Background.Source != "" {
		src := doc.Background.Source
		rec.BgURL = &src
	}
	for i, e := range doc.Elements {
		rec.Elements[i] = EncodeElement(e)
	}
	return rec
}

// EncodeElement returns the file record of one element.
func EncodeElement(e document.Element) ElementRecord {
	r := ElementRecord{
		ID:     e.ID,
		Type:   string(e.Kind()),
		X:      e.X,
		Y:      e.Y,
		Locked: e.Locked,
	}
	switch b := e.Body.(type) {
	case document.Icon:
		r.IconRef = ptr(b.Ref)
		r.Size = ptr(b.Size)
	case document.Label:
		r.Text = ptr(b.Text)
		encodeStyle(&r, b.Style)
	case document.Temperature:
		r.Value = ptr(b.Value)
		encodeStyle(&r, b.Style)
	case document.Wind:
		r.SpeedKmh = ptr(b.SpeedKmh)
		encodeStyle(&r, b.Style)
	case document.PressureZone:
		r.ZoneType = ptr(string(b.Zone))
		r.Radius = ptr(b.Radius)
		r.Hemisphere = ptr(string(b.Hemisphere))
	default:
		panic(fmt.Sprintf("project: unknown element body %T", e.Body))
	}
	return r
}

func encodeStyle(r *ElementRecord, s document.TextStyle) {
	r.FontSize = ptr(s.FontSize)
	r.Color = ptr(s.Color)
	r.ShowBackground = ptr(s.ShowBackground)
	r.ShowBorder = ptr(s.ShowBorder)
}

// Deserialize validates rec and rebuilds the document it describes.
func Deserialize(rec Record) (document.Document, error) {
	if rec.Version <= 0 {
		return document.Document{}, errors.New(errors.ErrCodeInvalidProject, "missing or invalid version tag")
	}
	if rec.Version > SchemaVersion {
		return document.Document{}, errors.New(errors.ErrCodeUnsupportedVersion,
			"project version %d is newer than supported version %d", rec.Version, SchemaVersion)
	}

	doc := document.Document{
		Background: document.Background{
			ID:          rec.BgID,
			AspectRatio: rec.AspectRatio,
		},
	}
	if doc.Background.ID == "" {
		doc.Background.ID = document.DefaultBackgroundID
	}
	if rec.BgURL != nil {
		doc.Background.Source = *rec.BgURL
	}
	if _, err := errors.ParseAspectRatio(doc.Background.AspectRatio); err != nil {
		doc.Background.AspectRatio = catalog.DefaultAspectRatio
	}

	seen := make(map[string]bool, len(rec.Elements))
	for i, r := range rec.Elements {
		if err := errors.ValidateElementID(r.ID); err != nil {
			return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "element %d", i)
		}
		if seen[r.ID] {
			return document.Document{}, errors.New(errors.ErrCodeInvalidProject, "element %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true

		e, err := decodeElement(r)
		if err != nil {
			return document.Document{}, errors.Wrap(errors.ErrCodeInvalidProject, err, "element %q", r.ID)
		}
		doc.Elements = append(doc.Elements, e)
	}

	icons := make(map[string]bool, len(rec.CustomIcons))
	for _, ic := range rec.CustomIcons {
		if ic.ID == "" || icons[ic.ID] {
			continue
		}
		icons[ic.ID] = true
		if ic.Glyph == "" {
			ic.Glyph = catalog.DefaultIcon.Glyph
		}
		doc.CustomIcons = append(doc.CustomIcons, ic)
	}
	return doc, nil
}

func decodeElement(r ElementRecord) (document.Element, error) {
	kind, ok := document.ParseKind(r.Type)
	if !ok {
		return document.Element{}, errors.New(errors.ErrCodeInvalidElement, "unknown element type %q", r.Type)
	}

	var body document.Body
	switch def := document.DefaultBody(kind, "").(type) {
	case document.Icon:
		def.Ref = deref(r.IconRef, def.Ref)
		def.Size = deref(r.Size, def.Size)
		body = def
	case document.Label:
		def.Text = deref(r.Text, def.Text)
		def.Style = decodeStyle(r, def.Style)
		body = def
	case document.Temperature:
		def.Value = deref(r.Value, def.Value)
		def.Style = decodeStyle(r, def.Style)
		body = def
	case document.Wind:
		def.SpeedKmh = deref(r.SpeedKmh, def.SpeedKmh)
		def.Style = decodeStyle(r, def.Style)
		body = def
	case document.PressureZone:
		def.Zone = document.ZoneType(deref(r.ZoneType, string(def.Zone)))
		def.Radius = deref(r.Radius, def.Radius)
		def.Hemisphere = document.Hemisphere(deref(r.Hemisphere, string(def.Hemisphere)))
		body = def
	default:
		panic(fmt.Sprintf("project: unknown element body %T", def))
	}

	return document.Clamp(document.Element{
		ID:     r.ID,
		X:      r.X,
		Y:      r.Y,
		Locked: r.Locked,
		Body:   body,
	}), nil
}

func decodeStyle(r ElementRecord, def document.TextStyle) document.TextStyle {
	return document.TextStyle{
		FontSize:       deref(r.FontSize, def.FontSize),
		Color:          deref(r.Color, def.Color),
		ShowBackground: deref(r.ShowBackground, def.ShowBackground),
		ShowBorder:     deref(r.ShowBorder, def.ShowBorder),
	}
}

func ptr[T any](v T) *T { return &v }

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
