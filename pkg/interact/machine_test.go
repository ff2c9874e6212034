package interact

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/editor"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

// newMachine returns a machine over a 1000x1000 px stage, so 10 px is 1%.
func newMachine(t *testing.T) (*Machine, *editor.Session) {
	t.Helper()
	n := 0
	s := editor.New(nil, editor.WithIDGenerator(func() string {
		n++
		return "e" + strconv.Itoa(n)
	}))
	return New(s, WithMapper(geometry.NewMapper(1000, 1000))), s
}

func at(x, y float64) PointerEvent {
	return PointerEvent{Pos: geometry.Point{X: x, Y: y}}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var sunTool = Tool{Kind: document.KindIcon, IconRef: "sun"}

func TestPlaceThenUndo(t *testing.T) {
	m, s := newMachine(t)
	if !m.SelectTool(sunTool) || m.Mode() != Placing {
		t.Fatalf("SelectTool: mode = %v", m.Mode())
	}
	m.PointerDown(at(100, 200))

	if m.Mode() != Idle || !m.Tool().IsSelect() {
		t.Errorf("after placement mode = %v, tool = %+v", m.Mode(), m.Tool())
	}
	els := s.Elements()
	if len(els) != 1 || els[0].X != 10 || els[0].Y != 20 {
		t.Fatalf("elements = %+v", els)
	}
	if !reflect.DeepEqual(s.Selected(), []string{els[0].ID}) {
		t.Errorf("placed element not selected: %v", s.Selected())
	}

	if !m.Key(KeyEvent{Key: "z", Mods: Modifiers{Ctrl: true}}) {
		t.Fatal("Ctrl+Z not handled")
	}
	if len(s.Elements()) != 0 {
		t.Errorf("elements after undo = %d", len(s.Elements()))
	}
}

func TestShiftMultiPlace(t *testing.T) {
	m, s := newMachine(t)
	m.SelectTool(sunTool)
	shift := at(100, 100)
	shift.Mods.Shift = true
	m.PointerDown(shift)
	shift.Pos.X = 300
	m.PointerDown(shift)

	if m.Mode() != Placing {
		t.Errorf("shift placement left mode %v", m.Mode())
	}
	m.PointerDown(at(500, 100))
	if m.Mode() != Idle || len(s.Elements()) != 3 {
		t.Errorf("mode %v, %d elements", m.Mode(), len(s.Elements()))
	}
}

func TestShiftOnlyRepeatsIcons(t *testing.T) {
	m, _ := newMachine(t)
	m.SelectTool(Tool{Kind: document.KindLabel})
	ev := at(100, 100)
	ev.Mods.Shift = true
	m.PointerDown(ev)
	if m.Mode() != Idle {
		t.Errorf("label placement with shift left mode %v", m.Mode())
	}
}

func TestCancelPlacement(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(m *Machine)
	}{
		{"escape", func(m *Machine) { m.Key(KeyEvent{Key: "Escape"}) }},
		{"right click", func(m *Machine) {
			ev := at(100, 100)
			ev.Button = ButtonRight
			m.PointerDown(ev)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newMachine(t)
			m.SelectTool(sunTool)
			tt.cancel(m)
			if m.Mode() != Idle || len(s.Elements()) != 0 {
				t.Errorf("mode %v, %d elements", m.Mode(), len(s.Elements()))
			}
		})
	}
}

func TestDragDoesNotSpamHistory(t *testing.T) {
	m, s := newMachine(t)
	id := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	base := s.HistoryLen()

	m.PointerDown(at(100, 100))
	if m.Mode() != Dragging {
		t.Fatalf("mode = %v, want dragging", m.Mode())
	}
	for i := 1; i <= 20; i++ {
		m.PointerMove(at(100+float64(i)*20, 100+float64(i)*20))
	}
	m.PointerUp(at(500, 500))

	if got := s.HistoryLen(); got != base+1 {
		t.Errorf("HistoryLen() = %d, want %d", got, base+1)
	}
	e, _ := s.Find(id)
	if !near(e.X, 50) || !near(e.Y, 50) {
		t.Errorf("element at (%v,%v), want (50,50)", e.X, e.Y)
	}
	if m.Mode() != Idle {
		t.Errorf("mode = %v after pointer-up", m.Mode())
	}
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	m, s := newMachine(t)
	s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	base := s.HistoryLen()
	m.PointerDown(at(100, 100))
	m.PointerUp(at(100, 100))
	if s.HistoryLen() != base {
		t.Errorf("click added history: %d -> %d", base, s.HistoryLen())
	}
}

func TestClampedGestureDoesNotCommit(t *testing.T) {
	tests := []struct {
		name   string
		body   document.Body
		pos    geometry.Point
		resize bool
		moves  []float64
	}{
		{"drag past the right edge", document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 100, Y: 50}, false, []float64{1100, 1250}},
		{"drag back to the start", document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 50, Y: 50}, false, []float64{700, 500}},
		{"grow past the maximum size", document.Icon{Ref: "sun", Size: document.MaxIconSize}, geometry.Point{X: 50, Y: 50}, true, []float64{600, 800}},
		{"shrink past the minimum font", document.Label{Text: "Nord", Style: document.TextStyle{FontSize: document.MinFontSize, Color: "#000"}}, geometry.Point{X: 50, Y: 50}, true, []float64{400, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newMachine(t)
			id := s.Place(tt.body, tt.pos)
			before, _ := s.Find(id)
			base := s.HistoryLen()

			down := PointerEvent{Pos: geometry.Point{X: tt.pos.X * 10, Y: tt.pos.Y * 10}}
			if tt.resize {
				down.Target = &Target{ElementID: id, Handle: HandleResize}
			}
			m.PointerDown(down)
			if !m.Mode().Gesture() {
				t.Fatalf("mode = %v, want a gesture", m.Mode())
			}
			for _, x := range tt.moves {
				m.PointerMove(at(x, down.Pos.Y))
			}
			m.PointerUp(at(tt.moves[len(tt.moves)-1], down.Pos.Y))

			if got := s.HistoryLen(); got != base {
				t.Errorf("HistoryLen() = %d, want %d", got, base)
			}
			if after, _ := s.Find(id); after != before {
				t.Errorf("element changed: %+v -> %+v", before, after)
			}
			if m.Mode() != Idle {
				t.Errorf("mode = %v after pointer-up", m.Mode())
			}
		})
	}
}

func TestDragMovesSelectionAndSkipsLocked(t *testing.T) {
	m, s := newMachine(t)
	a := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	b := s.Place(document.DefaultBody(document.KindIcon, "rain"), geometry.Point{X: 30, Y: 10})
	c := s.Place(document.DefaultBody(document.KindIcon, "snow"), geometry.Point{X: 60, Y: 10})
	s.SetLocked(true, c)
	s.Select(a, b, c)

	m.PointerDown(PointerEvent{Pos: geometry.Point{X: 100, Y: 100}, Target: &Target{ElementID: a}})
	m.PointerMove(at(150, 200))
	m.PointerUp(at(150, 200))

	ea, _ := s.Find(a)
	eb, _ := s.Find(b)
	ec, _ := s.Find(c)
	if !near(ea.X, 15) || !near(ea.Y, 20) || !near(eb.X, 35) || !near(eb.Y, 20) {
		t.Errorf("moved to a=(%v,%v) b=(%v,%v)", ea.X, ea.Y, eb.X, eb.Y)
	}
	if ec.X != 60 || ec.Y != 10 {
		t.Errorf("locked element moved to (%v,%v)", ec.X, ec.Y)
	}
}

func TestLockedElementDoesNotDrag(t *testing.T) {
	m, s := newMachine(t)
	id := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	s.SetLocked(true, id)
	s.ClearSelection()

	m.PointerDown(at(100, 100))
	if m.Mode() != Idle {
		t.Errorf("mode = %v, want idle", m.Mode())
	}
	if !s.IsSelected(id) {
		t.Error("locked element should still be selectable")
	}
}

func TestModifierTogglesSelection(t *testing.T) {
	m, s := newMachine(t)
	a := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	b := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 50, Y: 50})
	s.Select(a)

	ev := at(500, 500)
	ev.Mods.Shift = true
	m.PointerDown(ev)
	m.PointerUp(ev)
	if !reflect.DeepEqual(s.Selected(), []string{a, b}) {
		t.Errorf("after shift-click selected = %v", s.Selected())
	}

	m.PointerDown(ev)
	if m.Mode() != Idle {
		t.Errorf("toggling off should not start a drag, mode = %v", m.Mode())
	}
	if !reflect.DeepEqual(s.Selected(), []string{a}) {
		t.Errorf("after second shift-click selected = %v", s.Selected())
	}
}

func TestPointerLeaveRollsBack(t *testing.T) {
	m, s := newMachine(t)
	id := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	base := s.HistoryLen()

	m.PointerDown(at(100, 100))
	m.PointerMove(at(400, 400))
	m.PointerLeave()

	e, _ := s.Find(id)
	if e.X != 10 || e.Y != 10 {
		t.Errorf("element at (%v,%v) after leave, want (10,10)", e.X, e.Y)
	}
	if s.HistoryLen() != base || m.Mode() != Idle {
		t.Errorf("history %d (want %d), mode %v", s.HistoryLen(), base, m.Mode())
	}
}

func TestResetAbandonsGesture(t *testing.T) {
	m, s := newMachine(t)
	id := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})

	m.PointerDown(at(100, 100))
	m.PointerMove(at(300, 300))
	m.Reset()

	e, _ := s.Find(id)
	if e.X != 10 || e.Y != 10 {
		t.Errorf("element at (%v,%v) after reset, want (10,10)", e.X, e.Y)
	}
	if m.Mode() != Idle || !m.Tool().IsSelect() {
		t.Errorf("after reset mode = %v, tool = %+v", m.Mode(), m.Tool())
	}

	m.SelectTool(sunTool)
	m.Reset()
	if m.Mode() != Idle {
		t.Errorf("reset kept placement armed: %v", m.Mode())
	}
}

func TestMarqueeSelection(t *testing.T) {
	m, s := newMachine(t)
	a := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	b := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 20, Y: 20})
	s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 90, Y: 90})
	base := s.HistoryLen()

	m.PointerDown(at(0, 0))
	if m.Mode() != Marquee {
		t.Fatalf("mode = %v, want marquee", m.Mode())
	}
	m.PointerMove(at(300, 300))
	if st := m.State(); st.Marquee == nil || st.Marquee.Max.X != 30 {
		t.Errorf("marquee preview = %+v", st.Marquee)
	}
	m.PointerUp(at(300, 300))

	if !reflect.DeepEqual(s.Selected(), []string{a, b}) {
		t.Errorf("Selected() = %v, want [%s %s]", s.Selected(), a, b)
	}
	if s.HistoryLen() != base {
		t.Error("marquee selection must not add history")
	}

	m.PointerDown(at(500, 600))
	m.PointerUp(at(550, 650))
	if len(s.Selected()) != 0 {
		t.Errorf("empty marquee should clear selection, got %v", s.Selected())
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name string
		body document.Body
		dx   float64
		want float64
	}{
		{"icon grows", document.Icon{Ref: "sun", Size: 48}, 100, 128},
		{"icon clamps", document.Icon{Ref: "sun", Size: 48}, -100, document.MinIconSize},
		{"label", document.DefaultBody(document.KindLabel, ""), 15, 25.5},
		{"wind rounds", document.Wind{SpeedKmh: 10, Style: document.TextStyle{FontSize: 16, Color: "#000"}}, 3, 17.5},
		{"text clamps", document.DefaultBody(document.KindTemperature, ""), 400, document.MaxFontSize},
		{"zone follows pointer", document.PressureZone{Zone: document.Anticyclone, Radius: 5, Hemisphere: document.North}, 120, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newMachine(t)
			id := s.Place(tt.body, geometry.Point{X: 50, Y: 50})
			base := s.HistoryLen()

			m.PointerDown(PointerEvent{Pos: geometry.Point{X: 500, Y: 500}, Target: &Target{ElementID: id, Handle: HandleResize}})
			if m.Mode() != Resizing {
				t.Fatalf("mode = %v, want resizing", m.Mode())
			}
			m.PointerMove(at(500+tt.dx/2, 500))
			m.PointerMove(at(500+tt.dx, 500))
			m.PointerUp(at(500+tt.dx, 500))

			e, _ := s.Find(id)
			if got := document.SizeMetric(e.Body); !near(got, tt.want) {
				t.Errorf("metric = %v, want %v", got, tt.want)
			}
			if s.HistoryLen() != base+1 {
				t.Errorf("resize added %d snapshots, want 1", s.HistoryLen()-base)
			}
		})
	}
}

func TestDrawZone(t *testing.T) {
	m, s := newMachine(t)
	m.SelectTool(Tool{Kind: document.KindPressureZone, Zone: document.Depression})
	m.SetHemisphere(document.South)

	m.PointerDown(at(500, 500))
	if m.Mode() != DrawingZone {
		t.Fatalf("mode = %v, want drawingZone", m.Mode())
	}
	m.PointerMove(at(600, 500))
	if st := m.State(); st.Zone == nil || !near(st.Zone.Radius, 10) {
		t.Errorf("zone preview = %+v", st.Zone)
	}
	if len(s.Elements()) != 0 {
		t.Error("zone committed before pointer-up")
	}
	m.PointerUp(at(500, 700))

	els := s.Elements()
	if len(els) != 1 {
		t.Fatalf("elements = %d", len(els))
	}
	z := els[0].Body.(document.PressureZone)
	if z.Zone != document.Depression || z.Hemisphere != document.South || !near(z.Radius, 20) {
		t.Errorf("zone = %+v", z)
	}
	if els[0].X != 50 || els[0].Y != 50 {
		t.Errorf("zone centre = (%v,%v)", els[0].X, els[0].Y)
	}
	if m.Mode() != Idle {
		t.Errorf("mode = %v after drawing", m.Mode())
	}
}

func TestEscapeCancelsZoneDrawing(t *testing.T) {
	m, s := newMachine(t)
	m.SelectTool(Tool{Kind: document.KindPressureZone})
	m.PointerDown(at(500, 500))
	m.PointerMove(at(900, 500))
	m.Key(KeyEvent{Key: "Escape"})
	m.PointerUp(at(900, 500))
	if len(s.Elements()) != 0 || m.Mode() != Idle {
		t.Errorf("mode %v, %d elements", m.Mode(), len(s.Elements()))
	}
}

func TestGestureBlocksNewGesture(t *testing.T) {
	m, s := newMachine(t)
	s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	m.PointerDown(at(100, 100))

	if m.SelectTool(sunTool) {
		t.Error("SelectTool during a drag should be refused")
	}
	m.PointerDown(at(900, 900))
	if m.Mode() != Dragging {
		t.Errorf("mode = %v, want dragging", m.Mode())
	}
	if m.Key(KeyEvent{Key: "z", Mods: Modifiers{Meta: true}}) {
		t.Error("undo during a drag should be refused")
	}
}

func TestStrayEventsAreIgnored(t *testing.T) {
	m, s := newMachine(t)
	m.PointerUp(at(100, 100))
	m.PointerMove(at(200, 200))
	m.PointerLeave()
	m.ContextAction(ActionDelete)
	if m.Mode() != Idle || s.HistoryLen() != 1 {
		t.Errorf("mode %v, history %d", m.Mode(), s.HistoryLen())
	}
}

func TestKeyboard(t *testing.T) {
	m, s := newMachine(t)
	a := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})

	cmd := Modifiers{Ctrl: true}
	if m.Key(KeyEvent{Key: "Delete", InTextInput: true}) {
		t.Error("Delete in a text input should be suppressed")
	}
	if m.Key(KeyEvent{Key: "c", Mods: cmd, InTextInput: true}) {
		t.Error("copy in a text input should be suppressed")
	}
	if !m.Key(KeyEvent{Key: "c", Mods: cmd}) {
		t.Fatal("Ctrl+C not handled")
	}
	if !m.Key(KeyEvent{Key: "V", Mods: cmd}) {
		t.Fatal("Ctrl+V not handled")
	}
	els := s.Elements()
	if len(els) != 2 || els[1].X != 15 || els[1].Y != 15 {
		t.Fatalf("after paste elements = %+v", els)
	}
	if !m.Key(KeyEvent{Key: "Backspace"}) {
		t.Fatal("Backspace not handled")
	}
	if _, ok := s.Find(a); !ok || len(s.Elements()) != 1 {
		t.Errorf("Backspace should delete only the pasted copy, elements = %+v", s.Elements())
	}
	if !m.Key(KeyEvent{Key: "z", Mods: cmd, InTextInput: true}) {
		t.Error("undo must fire inside text inputs")
	}
	if len(s.Elements()) != 2 {
		t.Errorf("undo did not restore the copy: %d elements", len(s.Elements()))
	}
}

func TestContextMenu(t *testing.T) {
	m, s := newMachine(t)
	id := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	s.ClearSelection()

	ev := at(100, 100)
	ev.Button = ButtonRight
	m.PointerDown(ev)
	if m.Mode() != ContextMenu {
		t.Fatalf("mode = %v, want contextMenu", m.Mode())
	}
	menu := m.Menu()
	if menu == nil || menu.Target != id || !reflect.DeepEqual(menu.Actions, []Action{ActionDuplicate, ActionLock, ActionDelete}) {
		t.Fatalf("Menu() = %+v", menu)
	}
	if !m.ContextAction(ActionLock) {
		t.Fatal("lock action failed")
	}
	if e, _ := s.Find(id); !e.Locked {
		t.Error("element not locked")
	}

	m.PointerDown(ev)
	if got := m.Menu().Actions[1]; got != ActionUnlock {
		t.Errorf("locked element menu offers %v", got)
	}
	m.Key(KeyEvent{Key: "Escape"})
	if m.Mode() != Idle || m.Menu() != nil {
		t.Error("Escape should close the menu")
	}

	m.PointerDown(ev)
	m.ContextAction(ActionDuplicate)
	if len(s.Elements()) != 2 {
		t.Fatalf("duplicate: %d elements", len(s.Elements()))
	}
	if dup := s.Elements()[1]; dup.Locked {
		t.Error("duplicate of a locked element must be unlocked")
	}

	m.PointerDown(ev)
	m.ContextAction(ActionDelete)
	if _, ok := s.Find(id); ok {
		t.Error("locked element should be deletable from the menu")
	}
}

func TestStageMenuPastesAtPointer(t *testing.T) {
	m, s := newMachine(t)
	a := s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 10, Y: 10})
	b := s.Place(document.DefaultBody(document.KindIcon, "rain"), geometry.Point{X: 20, Y: 10})

	ev := at(700, 400)
	ev.Button = ButtonRight
	m.PointerDown(ev)
	if m.Mode() != Idle || m.Menu() != nil {
		t.Fatalf("empty clipboard opened a menu: mode %v", m.Mode())
	}

	s.Select(a, b)
	s.Copy()
	m.PointerDown(ev)
	menu := m.Menu()
	if menu == nil || menu.Target != "" || !reflect.DeepEqual(menu.Actions, []Action{ActionPaste}) {
		t.Fatalf("Menu() = %+v", menu)
	}
	if menu.At != (geometry.Point{X: 70, Y: 40}) {
		t.Errorf("menu anchor = %+v", menu.At)
	}
	if m.ContextAction(ActionDelete) {
		t.Error("delete ran without a target")
	}

	m.PointerDown(ev)
	if !m.ContextAction(ActionPaste) {
		t.Fatal("paste action failed")
	}
	els := s.Elements()
	if len(els) != 4 {
		t.Fatalf("elements = %d, want 4", len(els))
	}
	// The copies keep their spacing, centred on the pointer.
	if !near(els[2].X, 65) || !near(els[3].X, 75) || !near(els[2].Y, 40) {
		t.Errorf("pasted at (%v,%v) and (%v,%v)", els[2].X, els[2].Y, els[3].X, els[3].Y)
	}
	if !reflect.DeepEqual(s.Selected(), []string{els[2].ID, els[3].ID}) {
		t.Errorf("Selected() = %v", s.Selected())
	}
	if m.Mode() != Idle {
		t.Errorf("mode = %v after paste", m.Mode())
	}
}

func TestDeleteDuringShiftPlacement(t *testing.T) {
	m, s := newMachine(t)
	m.SelectTool(sunTool)
	ev := at(100, 100)
	ev.Mods.Shift = true
	m.PointerDown(ev)
	ev.Pos.X = 300
	m.PointerDown(ev)

	if !m.Key(KeyEvent{Key: "Delete"}) {
		t.Fatal("Delete refused while placing")
	}
	els := s.Elements()
	if len(els) != 1 || els[0].X != 10 {
		t.Errorf("elements after delete = %+v", els)
	}
	if m.Mode() != Placing || m.Tool() != sunTool {
		t.Errorf("delete disarmed the tool: mode %v, tool %+v", m.Mode(), m.Tool())
	}

	m.PointerDown(at(500, 500))
	if !m.Key(KeyEvent{Key: "Backspace"}) || len(s.Elements()) != 1 {
		t.Errorf("Backspace after placement: %d elements", len(s.Elements()))
	}
}

func TestGhostPreview(t *testing.T) {
	m, _ := newMachine(t)
	m.SelectTool(sunTool)
	m.PointerMove(at(250, 750))
	st := m.State()
	if st.Ghost == nil || st.Ghost.Pos != (geometry.Point{X: 25, Y: 75}) || st.Ghost.Tool != sunTool {
		t.Errorf("ghost = %+v", st.Ghost)
	}
	m.PointerLeave()
	if m.State().Ghost != nil {
		t.Error("ghost should disappear when the pointer leaves")
	}
}

func TestModeString(t *testing.T) {
	if DrawingZone.String() != "drawingZone" || Mode(99).String() != "unknown" {
		t.Errorf("Mode.String mismatch")
	}
	if _, ok := ParseAction("explode"); ok {
		t.Error("ParseAction accepted an unknown action")
	}
}
