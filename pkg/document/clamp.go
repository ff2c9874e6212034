package document

import (
	"math"

	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

// Clamp returns e with its position and body forced into range.
func Clamp(e Element) Element {
	e.X = geometry.ClampPercent(e.X)
	e.Y = geometry.ClampPercent(e.Y)
	e.Body = clampBody(e.Body)
	return e
}

func clampBody(b Body) Body {
	switch v := b.(type) {
	case Icon:
		v.Size = clampIconSize(v.Size)
		return v
	case Label:
		v.Style = clampStyle(v.Style, KindLabel)
		return v
	case Temperature:
		v.Style = clampStyle(v.Style, KindTemperature)
		return v
	case Wind:
		v.SpeedKmh = clampSpeed(v.SpeedKmh)
		v.Style = clampStyle(v.Style, KindWind)
		return v
	case PressureZone:
		v.Radius = clampRadius(v.Radius)
		if v.Zone != Depression {
			v.Zone = Anticyclone
		}
		if v.Hemisphere != South {
			v.Hemisphere = North
		}
		return v
	}
	panic(unknownBody(b))
}

func clampStyle(s TextStyle, k Kind) TextStyle {
	s.FontSize = clampFontSize(s.FontSize)
	if errors.ValidateColor(s.Color) != nil {
		s.Color = DefaultTextStyle(k).Color
	}
	return s
}

func clampIconSize(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultIconSize
	}
	return geometry.Clamp(v, MinIconSize, MaxIconSize)
}

func clampFontSize(v float64) float64 {
	if math.IsNaN(v) {
		return MinFontSize
	}
	return geometry.Round1(geometry.Clamp(v, MinFontSize, MaxFontSize))
}

func clampRadius(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultRadius
	}
	return geometry.Clamp(v, MinRadius, MaxRadius)
}

func clampSpeed(v int) int {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}
