package project

import (
	"github.com/matzehuels/meteomap/pkg/catalog"
)

// SchemaVersion is the version tag written by this package.
const SchemaVersion = 1

// Record is the on-disk project record.
type Record struct {
	Version     int             `json:"version"`
	Timestamp   int64           `json:"timestamp"`
	BgID        string          `json:"bgId"`
	BgURL       *string         `json:"bgUrl"`
	AspectRatio string          `json:"aspectRatio"`
	Elements    []ElementRecord `json:"elements"`
	CustomIcons []catalog.Icon  `json:"customIcons"`
}

// ElementRecord is one element in the flat file encoding. Optional fields
// are pointers so a missing field can be told apart from a zero value.
type ElementRecord struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Locked bool    `json:"locked,omitempty"`

	IconRef *string  `json:"iconRef,omitempty"`
	Size    *float64 `json:"size,omitempty"`

	Text     *string `json:"text,omitempty"`
	Value    *string `json:"value,omitempty"`
	SpeedKmh *int    `json:"speedKmh,omitempty"`

	FontSize       *float64 `json:"fontSize,omitempty"`
	Color          *string  `json:"color,omitempty"`
	ShowBackground *bool    `json:"showBackground,omitempty"`
	ShowBorder     *bool    `json:"showBorder,omitempty"`

	ZoneType   *string  `json:"zoneType,omitempty"`
	Radius     *float64 `json:"radius,omitempty"`
	Hemisphere *string  `json:"hemisphere,omitempty"`
}
