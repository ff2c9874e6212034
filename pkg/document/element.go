package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names an element kind. The values are the type tags of the project
// file format.
type Kind string

const (
	KindIcon         Kind = "icon"
	KindLabel        Kind = "label"
	KindTemperature  Kind = "temperature"
	KindWind         Kind = "wind"
	KindPressureZone Kind = "pressureZone"
)

// Kinds lists every element kind in palette order.
var Kinds = []Kind{KindIcon, KindLabel, KindTemperature, KindWind, KindPressureZone}

// ParseKind validates a kind tag.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Value ranges.
const (
	MinIconSize = 16.0
	MaxIconSize = 200.0
	MinFontSize = 10.0
	MaxFontSize = 80.0
	MinSpeed    = 0
	MaxSpeed    = 300
	MinRadius   = 2.0
	MaxRadius   = 50.0
)

// Defaults for freshly placed elements.
const (
	DefaultIconSize = 48.0
	DefaultRadius   = 8.0
	DefaultSpeed    = 30
)

// Element is one item placed on the map. X and Y are stage percent.
type Element struct {
	ID     string
	X, Y   float64
	Locked bool
	Body   Body
}

// Kind returns the kind of the element's body.
func (e Element) Kind() Kind {
	return e.Body.Kind()
}

// Body is the kind-specific part of an element. It is implemented by Icon,
// Label, Temperature, Wind and PressureZone only.
type Body interface {
	Kind() Kind
	isBody()
}

// TextStyle is shared by the text-like kinds.
type TextStyle struct {
	FontSize       float64
	Color          string
	ShowBackground bool
	ShowBorder     bool
}

// Icon is a catalog glyph. Ref is a built-in or custom icon id.
type Icon struct {
	Ref  string
	Size float64
}

// Label is free text.
type Label struct {
	Text  string
	Style TextStyle
}

// Temperature is a temperature badge. Value is free-form.
type Temperature struct {
	Value string
	Style TextStyle
}

// Wind is a wind-speed badge.
type Wind struct {
	SpeedKmh int
	Style    TextStyle
}

// ZoneType distinguishes high and low pressure.
type ZoneType string

const (
	Anticyclone ZoneType = "anticyclone"
	Depression  ZoneType = "depression"
)

// Hemisphere governs the rotation of a pressure zone.
type Hemisphere string

const (
	North Hemisphere = "north"
	South Hemisphere = "south"
)

// Rotation is the direction a pressure zone's overlay spins.
type Rotation string

const (
	Clockwise        Rotation = "clockwise"
	CounterClockwise Rotation = "counter-clockwise"
)

// PressureZone is a circular high or low pressure marker. Radius is in
// percent of the stage width.
type PressureZone struct {
	Zone       ZoneType
	Radius     float64
	Hemisphere Hemisphere
}

func (Icon) Kind() Kind         { return KindIcon }
func (Label) Kind() Kind        { return KindLabel }
func (Temperature) Kind() Kind  { return KindTemperature }
func (Wind) Kind() Kind         { return KindWind }
func (PressureZone) Kind() Kind { return KindPressureZone }

func (Icon) isBody()         {}
func (Label) isBody()        {}
func (Temperature) isBody()  {}
func (Wind) isBody()         {}
func (PressureZone) isBody() {}

// Display returns the rendered badge text.
func (t Temperature) Display() string {
	if strings.Contains(t.Value, "°") {
		return t.Value
	}
	return t.Value + "°C"
}

// Display returns the rendered badge text.
func (w Wind) Display() string {
	return strconv.Itoa(w.SpeedKmh) + " km/h"
}

// Rotation returns the spin direction. Air flows clockwise around a
// northern anticyclone and counter-clockwise around a northern depression;
// the southern hemisphere mirrors both.
func (z PressureZone) Rotation() Rotation {
	cw := z.Zone == Anticyclone
	if z.Hemisphere == South {
		cw = !cw
	}
	if cw {
		return Clockwise
	}
	return CounterClockwise
}

// DefaultTextStyle returns the initial style for a text kind.
func DefaultTextStyle(k Kind) TextStyle {
	switch k {
	case KindTemperature:
		return TextStyle{FontSize: 22, Color: "#dc2626", ShowBackground: true}
	case KindWind:
		return TextStyle{FontSize: 16, Color: "#1e3a8a", ShowBackground: true}
	default:
		return TextStyle{FontSize: 18, Color: "#111827", ShowBackground: true, ShowBorder: true}
	}
}

// DefaultBody returns the body a placement tool creates for k. iconRef is
// used by KindIcon only.
func DefaultBody(k Kind, iconRef string) Body {
	switch k {
	case KindIcon:
		return Icon{Ref: iconRef, Size: DefaultIconSize}
	case KindLabel:
		return Label{Text: "Texte", Style: DefaultTextStyle(k)}
	case KindTemperature:
		return Temperature{Value: "20", Style: DefaultTextStyle(k)}
	case KindWind:
		return Wind{SpeedKmh: DefaultSpeed, Style: DefaultTextStyle(k)}
	case KindPressureZone:
		return PressureZone{Zone: Anticyclone, Radius: DefaultRadius, Hemisphere: North}
	}
	panic(fmt.Sprintf("document: unknown kind %q", k))
}

// StyleOf returns the text style of a text-like body.
func StyleOf(b Body) (TextStyle, bool) {
	switch v := b.(type) {
	case Label:
		return v.Style, true
	case Temperature:
		return v.Style, true
	case Wind:
		return v.Style, true
	case Icon, PressureZone:
		return TextStyle{}, false
	}
	panic(unknownBody(b))
}

func unknownBody(b Body) string {
	return fmt.Sprintf("document: unknown element body %T", b)
}
