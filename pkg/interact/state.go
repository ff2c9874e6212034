package interact

import (
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

// Ghost is the placement preview under the pointer.
type Ghost struct {
	Tool Tool           `json:"tool"`
	Pos  geometry.Point `json:"pos"`
}

// ZonePreview is the pressure zone being drawn.
type ZonePreview struct {
	Zone   document.ZoneType `json:"zoneType"`
	Center geometry.Point    `json:"center"`
	Radius float64           `json:"radius"`
}

// State is a read-only view of the machine for front ends.
type State struct {
	Mode     Mode           `json:"mode"`
	Tool     Tool           `json:"tool"`
	Selected []string       `json:"selected"`
	Ghost    *Ghost         `json:"ghost,omitempty"`
	Zone     *ZonePreview   `json:"zone,omitempty"`
	Marquee  *geometry.Rect `json:"marquee,omitempty"`
	Menu     *Menu          `json:"menu,omitempty"`
	CanUndo  bool           `json:"canUndo"`
	CanPaste bool           `json:"canPaste"`
}

// State returns the current view state.
func (m *Machine) State() State {
	st := State{
		Mode:     m.mode,
		Tool:     m.tool,
		Selected: m.session.Selected(),
		Menu:     m.Menu(),
		CanUndo:  m.session.CanUndo() && !m.mode.Gesture(),
		CanPaste: m.session.CanPaste(),
	}
	if st.Selected == nil {
		st.Selected = []string{}
	}
	switch m.mode {
	case Placing:
		if m.hover != nil {
			st.Ghost = &Ghost{Tool: m.tool, Pos: *m.hover}
		}
	case DrawingZone:
		st.Zone = &ZonePreview{Zone: m.zoneType(), Center: m.gesture.center, Radius: m.gesture.radius}
	case Marquee:
		r := m.gesture.box.Normalize()
		st.Marquee = &r
	}
	return st
}
