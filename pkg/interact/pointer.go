package interact

import (
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

// PointerDown handles a button press on the stage.
func (m *Machine) PointerDown(ev PointerEvent) {
	switch m.mode {
	case Dragging, Resizing, DrawingZone, Marquee:
		return
	case ContextMenu:
		m.menu = nil
		m.mode = Idle
		return
	case Placing:
		m.placingDown(ev)
		return
	}

	target, ok := m.resolveTarget(ev)
	if ev.Button == ButtonRight {
		if ok {
			m.openMenu(target.ElementID, ev.Pos)
		} else {
			m.openStageMenu(ev.Pos)
		}
		return
	}
	if ev.Button != ButtonLeft {
		return
	}
	if !ok {
		p := m.pct(ev.Pos)
		m.mode = Marquee
		m.gesture = gesture{box: geometry.Rect{Min: p, Max: p}}
		return
	}
	if target.Handle == HandleResize && m.startResize(target.ElementID, ev.Pos) {
		return
	}
	m.startDrag(target.ElementID, ev)
}

func (m *Machine) placingDown(ev PointerEvent) {
	if ev.Button == ButtonRight {
		m.toIdle()
		return
	}
	if ev.Button != ButtonLeft {
		return
	}
	p := m.pct(ev.Pos)
	if m.tool.Kind == document.KindPressureZone {
		m.mode = DrawingZone
		m.gesture = gesture{center: p, radius: document.MinRadius}
		return
	}
	id := m.session.Place(m.tool.body(), p)
	m.logger.Debug("element placed", "id", id, "kind", m.tool.Kind, "x", p.X, "y", p.Y)
	if m.tool.Kind == document.KindIcon && ev.Mods.Shift {
		return
	}
	m.toIdle()
}

func (m *Machine) resolveTarget(ev PointerEvent) (Target, bool) {
	if ev.Target != nil {
		if _, ok := m.session.Find(ev.Target.ElementID); ok {
			return *ev.Target, true
		}
		return Target{}, false
	}
	e, ok := document.ElementAt(m.session.Elements(), m.pct(ev.Pos), m.tolerance)
	if !ok {
		return Target{}, false
	}
	return Target{ElementID: e.ID}, true
}

func (m *Machine) startDrag(id string, ev PointerEvent) {
	e, _ := m.session.Find(id)
	selected := m.session.IsSelected(id)
	switch {
	case ev.Mods.Shift || ev.Mods.Command():
		m.session.Toggle(id)
		selected = !selected
	case !selected:
		m.session.Select(id)
		selected = true
	}
	if e.Locked || !selected {
		return
	}
	m.mode = Dragging
	m.gesture = gesture{
		ids:  m.session.Selected(),
		last: m.mapper.ToPercentUnclamped(ev.Pos),
	}
}

func (m *Machine) startResize(id string, px geometry.Point) bool {
	if !m.session.IsSelected(id) {
		m.session.Select(id)
	}
	start := make(map[string]float64)
	var ids []string
	for _, sid := range m.session.Selected() {
		e, ok := m.session.Find(sid)
		if !ok || e.Locked {
			continue
		}
		start[sid] = document.SizeMetric(e.Body)
		ids = append(ids, sid)
	}
	if len(ids) == 0 {
		return false
	}
	m.mode = Resizing
	m.gesture = gesture{ids: ids, origin: px, start: start}
	return true
}

// PointerMove handles pointer motion over the stage.
func (m *Machine) PointerMove(ev PointerEvent) {
	p := m.pct(ev.Pos)
	m.hover = &p

	switch m.mode {
	case Dragging:
		cur := m.mapper.ToPercentUnclamped(ev.Pos)
		d := cur.Sub(m.gesture.last)
		m.gesture.last = cur
		if d.X == 0 && d.Y == 0 {
			return
		}
		if m.session.MoveTransient(d.X, d.Y, m.gesture.ids...) {
			m.gesture.moved = true
		}
	case Resizing:
		m.resizeTo(ev.Pos)
	case DrawingZone:
		m.gesture.radius = m.zoneRadius(m.gesture.center, p)
	case Marquee:
		m.gesture.box.Max = p
	}
}

func (m *Machine) resizeTo(px geometry.Point) {
	dx := px.X - m.gesture.origin.X
	p := m.pct(px)
	for _, id := range m.gesture.ids {
		e, ok := m.session.Find(id)
		if !ok {
			continue
		}
		start := m.gesture.start[id]
		var metric float64
		switch e.Body.(type) {
		case document.Icon:
			metric = start + dx*IconResizeFactor
		case document.Label, document.Temperature, document.Wind:
			metric = start + dx*TextResizeFactor
		case document.PressureZone:
			metric = m.zoneRadius(geometry.Point{X: e.X, Y: e.Y}, p)
		default:
			panic("interact: unknown element body")
		}
		if m.session.ResizeTransient(id, metric) {
			m.gesture.moved = true
		}
	}
}

func (m *Machine) zoneRadius(center, p geometry.Point) float64 {
	return geometry.Clamp(m.mapper.WidthPercentDistance(center, p), document.MinRadius, document.MaxRadius)
}

// PointerUp ends the active gesture.
func (m *Machine) PointerUp(ev PointerEvent) {
	switch m.mode {
	case Dragging:
		m.PointerMove(ev)
		if m.gesture.moved && m.session.CommitGesture("move") {
			m.logger.Debug("drag committed", "ids", len(m.gesture.ids))
		}
		m.toIdle()
	case Resizing:
		m.resizeTo(ev.Pos)
		if m.gesture.moved {
			m.session.CommitGesture("resize")
		}
		m.toIdle()
	case DrawingZone:
		g := m.gesture
		g.radius = m.zoneRadius(g.center, m.pct(ev.Pos))
		body := document.PressureZone{Zone: m.zoneType(), Radius: g.radius, Hemisphere: m.hemisphere}
		id := m.session.Place(body, g.center)
		m.logger.Debug("zone drawn", "id", id, "zone", body.Zone, "radius", body.Radius)
		m.toIdle()
	case Marquee:
		m.gesture.box.Max = m.pct(ev.Pos)
		ids := document.IDsWithin(m.session.Elements(), m.gesture.box)
		if len(ids) == 0 {
			m.session.ClearSelection()
		} else {
			m.session.Select(ids...)
		}
		m.toIdle()
	}
}

func (m *Machine) zoneType() document.ZoneType {
	if m.tool.Zone == document.Depression {
		return document.Depression
	}
	return document.Anticyclone
}

// PointerLeave handles the pointer leaving the stage. A drag or resize in
// progress is rolled back; a zone being drawn is discarded and the tool
// stays armed; a marquee is abandoned.
func (m *Machine) PointerLeave() {
	m.hover = nil
	switch m.mode {
	case Dragging, Resizing:
		if m.gesture.moved {
			m.session.Rollback()
			m.logger.Debug("gesture rolled back", "mode", m.mode)
		}
		m.toIdle()
	case DrawingZone:
		m.mode = Placing
		m.gesture = gesture{}
	case Marquee:
		m.toIdle()
	}
}
