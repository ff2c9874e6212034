package geometry

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRectFromNormalizesCorners(t *testing.T) {
	r := RectFrom(Point{30, 5}, Point{10, 25})
	if r.Min != (Point{10, 5}) || r.Max != (Point{30, 25}) {
		t.Fatalf("RectFrom = %+v", r)
	}
	if r.Width() != 20 || r.Height() != 20 {
		t.Errorf("size = %vx%v, want 20x20", r.Width(), r.Height())
	}
}

func TestRectContainsInclusive(t *testing.T) {
	r := Rect{Min: Point{30, 30}, Max: Point{0, 0}}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{30, 30}, true},
		{Point{15, 30}, true},
		{Point{30.01, 10}, false},
		{Point{-1, 10}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if ClampPercent(150) != 100 || ClampPercent(-20) != 0 || ClampPercent(42) != 42 {
		t.Error("ClampPercent out of range")
	}
	if Clamp(5, 16, 200) != 16 {
		t.Error("Clamp lower bound")
	}
}

func TestRound1(t *testing.T) {
	if Round1(12.34) != 12.3 || Round1(12.36) != 12.4 {
		t.Errorf("Round1 = %v, %v", Round1(12.34), Round1(12.36))
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([]Point{{10, 10}, {14, 10}})
	if c != (Point{12, 10}) {
		t.Errorf("Centroid = %v, want {12 10}", c)
	}
	if Centroid(nil) != (Point{}) {
		t.Error("Centroid(nil) should be zero")
	}
}

func TestMapperRoundTrip(t *testing.T) {
	m := Mapper{Origin: Point{100, 50}, Width: 800, Height: 450}

	pct := m.ToPercent(Point{500, 275})
	if !almost(pct.X, 50) || !almost(pct.Y, 50) {
		t.Fatalf("ToPercent = %v, want {50 50}", pct)
	}
	px := m.ToPixels(pct)
	if !almost(px.X, 500) || !almost(px.Y, 275) {
		t.Errorf("ToPixels = %v, want {500 275}", px)
	}
}

func TestMapperClampsOutsideStage(t *testing.T) {
	m := NewMapper(200, 100)
	pct := m.ToPercent(Point{-50, 300})
	if pct != (Point{0, 100}) {
		t.Errorf("ToPercent = %v, want {0 100}", pct)
	}
	raw := m.ToPercentUnclamped(Point{-50, 300})
	if !almost(raw.X, -25) || !almost(raw.Y, 300) {
		t.Errorf("ToPercentUnclamped = %v", raw)
	}
}

func TestMapperZeroSize(t *testing.T) {
	var m Mapper
	if m.Valid() {
		t.Error("zero mapper should be invalid")
	}
	if m.ToPercent(Point{10, 10}) != (Point{}) {
		t.Error("zero mapper should map to origin")
	}
}

func TestWidthPercentDistance(t *testing.T) {
	// 16:9 stage: 10% of height is 5.625% of width.
	m := WithAspect(1600, 9.0/16.0)
	d := m.WidthPercentDistance(Point{50, 50}, Point{50, 60})
	if !almost(d, 5.625) {
		t.Errorf("vertical distance = %v, want 5.625", d)
	}
	d = m.WidthPercentDistance(Point{50, 50}, Point{53, 50})
	if !almost(d, 3) {
		t.Errorf("horizontal distance = %v, want 3", d)
	}
}

func TestDeltaToPercent(t *testing.T) {
	m := NewMapper(400, 200)
	d := m.DeltaToPercent(Point{40, 20})
	if d != (Point{10, 10}) {
		t.Errorf("DeltaToPercent = %v, want {10 10}", d)
	}
}
