package interact

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/editor"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

// Resize sensitivity, in metric units per horizontal pixel.
const (
	IconResizeFactor = 0.8
	TextResizeFactor = 0.5
)

// DefaultTolerance is the hit radius, in stage percent, for point-like
// elements.
const DefaultTolerance = 2.5

// Mode is the machine's current state.
type Mode int

const (
	Idle Mode = iota
	Placing
	Dragging
	Resizing
	DrawingZone
	Marquee
	ContextMenu
)

var modeNames = [...]string{"idle", "placing", "dragging", "resizing", "drawingZone", "marquee", "contextMenu"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Gesture reports whether the mode consumes pointer events until it ends.
func (m Mode) Gesture() bool {
	switch m {
	case Dragging, Resizing, DrawingZone, Marquee:
		return true
	}
	return false
}

// Tool is a palette entry. The zero Tool is the selection tool.
type Tool struct {
	Kind    document.Kind     `json:"kind,omitempty"`
	IconRef string            `json:"iconRef,omitempty"`
	Zone    document.ZoneType `json:"zoneType,omitempty"`
}

// SelectTool is the selection tool.
var SelectTool = Tool{}

// IsSelect reports whether t is the selection tool.
func (t Tool) IsSelect() bool { return t.Kind == "" }

func (t Tool) body() document.Body {
	b := document.DefaultBody(t.Kind, t.IconRef)
	if z, ok := b.(document.PressureZone); ok && t.Zone != "" {
		z.Zone = t.Zone
		return z
	}
	return b
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers are the modifier keys held during an event.
type Modifiers struct {
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Meta  bool `json:"meta,omitempty"`
	Alt   bool `json:"alt,omitempty"`
}

// Command reports whether Ctrl or Cmd is held.
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// Handle identifies a part of an element under the pointer.
type Handle string

const (
	HandleBody   Handle = ""
	HandleResize Handle = "resize"
)

// Target is what the front end found under the pointer. When an event has
// no target the machine hit-tests the document itself.
type Target struct {
	ElementID string `json:"elementId"`
	Handle    Handle `json:"handle,omitempty"`
}

// PointerEvent is a pointer event in front-end pixels.
type PointerEvent struct {
	Pos    geometry.Point
	Button Button
	Mods   Modifiers
	Target *Target
}

// KeyEvent is a key press. Key uses browser key names ("z", "Delete",
// "Escape").
type KeyEvent struct {
	Key         string
	Mods        Modifiers
	InTextInput bool
}

// Machine is the interaction controller. It is not safe for concurrent use.
type Machine struct {
	session    *editor.Session
	mapper     geometry.Mapper
	tolerance  float64
	hemisphere document.Hemisphere
	logger     *log.Logger

	mode    Mode
	tool    Tool
	hover   *geometry.Point
	gesture gesture
	menu    *Menu
}

// gesture is the transient bookkeeping of the active gesture.
type gesture struct {
	ids    []string
	last   geometry.Point
	moved  bool
	origin geometry.Point // pixels, resize only
	start  map[string]float64
	center geometry.Point
	radius float64
	box    geometry.Rect
}

// Option configures a Machine.
type Option func(*Machine)

// WithMapper sets the stage viewport.
func WithMapper(m geometry.Mapper) Option {
	return func(mc *Machine) { mc.mapper = m }
}

// WithTolerance sets the hit radius in stage percent.
func WithTolerance(pct float64) Option {
	return func(mc *Machine) {
		if pct > 0 {
			mc.tolerance = pct
		}
	}
}

// WithHemisphere sets the hemisphere of newly drawn pressure zones.
func WithHemisphere(h document.Hemisphere) Option {
	return func(mc *Machine) { mc.hemisphere = h }
}

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(mc *Machine) {
		if l != nil {
			mc.logger = l
		}
	}
}

// New creates a machine driving s.
func New(s *editor.Session, opts ...Option) *Machine {
	m := &Machine{
		session:    s,
		mapper:     geometry.NewMapper(1000, 1000*9.0/16),
		tolerance:  DefaultTolerance,
		hemisphere: document.North,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the driven session.
func (m *Machine) Session() *editor.Session { return m.session }

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Tool returns the armed tool.
func (m *Machine) Tool() Tool { return m.tool }

// Mapper returns the stage viewport.
func (m *Machine) Mapper() geometry.Mapper { return m.mapper }

// SetMapper updates the stage viewport, for example after a resize of the
// front end. It is ignored during a gesture.
func (m *Machine) SetMapper(mp geometry.Mapper) {
	if !m.mode.Gesture() {
		m.mapper = mp
	}
}

// Hemisphere returns the hemisphere used for new pressure zones.
func (m *Machine) Hemisphere() document.Hemisphere { return m.hemisphere }

// SetHemisphere changes the hemisphere used for new pressure zones.
func (m *Machine) SetHemisphere(h document.Hemisphere) { m.hemisphere = h }

// SelectTool arms t. The selection tool returns to Idle. Tools cannot be
// switched during a gesture.
func (m *Machine) SelectTool(t Tool) bool {
	if m.mode.Gesture() {
		return false
	}
	if !t.IsSelect() {
		if _, ok := document.ParseKind(string(t.Kind)); !ok {
			return false
		}
	}
	m.menu = nil
	m.tool = t
	if t.IsSelect() {
		m.mode = Idle
	} else {
		m.mode = Placing
	}
	m.logger.Debug("tool selected", "kind", t.Kind, "icon", t.IconRef)
	return true
}

func (m *Machine) toIdle() {
	m.mode = Idle
	m.tool = SelectTool
	m.gesture = gesture{}
}

func (m *Machine) pct(px geometry.Point) geometry.Point {
	return m.mapper.ToPercent(px)
}

// Reset abandons any gesture, closes the context menu and disarms the tool.
// Front ends call it before replacing the session's document.
func (m *Machine) Reset() {
	if m.mode.Gesture() && m.gesture.moved {
		m.session.Rollback()
	}
	m.menu = nil
	m.hover = nil
	m.toIdle()
}

// Replace resets the machine and swaps doc into the session.
func (m *Machine) Replace(doc document.Document) {
	m.Reset()
	m.session.Replace(doc)
}
