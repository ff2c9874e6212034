package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/interact"
)

// nudgeStep is how far the arrow keys move the selection, in stage percent.
// Shift multiplies it by five.
const nudgeStep = 1.0

// fieldEdit is an in-progress edit of the primary value of one element:
// icon reference, label text, temperature value or wind speed.
type fieldEdit struct {
	id   string
	kind document.Kind
	buf  []rune
}

func editValue(b document.Body) string {
	switch v := b.(type) {
	case document.Icon:
		return v.Ref
	case document.Label:
		return v.Text
	case document.Temperature:
		return v.Value
	case document.Wind:
		return strconv.Itoa(v.SpeedKmh)
	}
	return ""
}

func (f *fieldEdit) patch() (document.Patch, error) {
	text := string(f.buf)
	switch f.kind {
	case document.KindIcon:
		text = strings.TrimSpace(text)
		if text == "" {
			return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "icon reference cannot be empty")
		}
		return document.Patch{IconRef: &text}, nil
	case document.KindLabel:
		return document.Patch{Text: &text}, nil
	case document.KindTemperature:
		return document.Patch{Value: &text}, nil
	case document.KindWind:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "wind speed %q is not a number", text)
		}
		return document.Patch{Speed: &n}, nil
	}
	return document.Patch{}, errors.New(errors.ErrCodeInvalidInput, "%s has no editable text", f.kind)
}

// beginEdit starts editing the single selected element. Pressure zones have
// no text; e flips their type instead.
func (m *Model) beginEdit() {
	if m.machine.Mode() != interact.Idle {
		return
	}
	s := m.machine.Session()
	sel := s.Selected()
	if len(sel) != 1 {
		m.fail(errors.New(errors.ErrCodeInvalidInput, "select exactly one element to edit"))
		return
	}
	e, ok := s.Find(sel[0])
	if !ok {
		return
	}
	if e.Locked {
		m.fail(errors.New(errors.ErrCodeLocked, "element is locked"))
		return
	}
	if z, ok := e.Body.(document.PressureZone); ok {
		next := document.Depression
		if z.Zone == document.Depression {
			next = document.Anticyclone
		}
		s.Update(e.ID, document.Patch{Zone: &next})
		m.info("zone: " + string(next))
		return
	}
	m.edit = &fieldEdit{id: e.ID, kind: e.Kind(), buf: []rune(editValue(e.Body))}
}

// editKey handles keys while a field edit is open. Only undo reaches the
// machine, flagged as text input so nothing else fires.
func (m Model) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.commitEdit()
	case tea.KeyEsc:
		m.edit = nil
	case tea.KeyBackspace:
		if n := len(m.edit.buf); n > 0 {
			m.edit.buf = m.edit.buf[:n-1]
		}
	case tea.KeySpace:
		m.edit.buf = append(m.edit.buf, ' ')
	case tea.KeyRunes:
		m.edit.buf = append(m.edit.buf, msg.Runes...)
	case tea.KeyCtrlZ:
		m.machine.Key(interact.KeyEvent{Key: "z", Mods: interact.Modifiers{Ctrl: true}, InTextInput: true})
		e, ok := m.machine.Session().Find(m.edit.id)
		if !ok {
			m.edit = nil
			break
		}
		m.edit.buf = []rune(editValue(e.Body))
	}
	return m, nil
}

func (m *Model) commitEdit() {
	p, err := m.edit.patch()
	if err != nil {
		m.fail(err)
		return
	}
	id := m.edit.id
	m.edit = nil
	if m.machine.Session().Update(id, p) {
		m.logger.Debug("element edited", "id", id)
		m.info("updated")
	}
}

func (m *Model) nudge(dx, dy float64) {
	if m.machine.Mode() != interact.Idle {
		return
	}
	s := m.machine.Session()
	s.Move(dx, dy, s.Selected()...)
}

// nudgeFor maps arrow keys to a selection offset.
func nudgeFor(key string) (dx, dy float64, ok bool) {
	step := nudgeStep
	if k, found := strings.CutPrefix(key, "shift+"); found {
		key, step = k, 5*nudgeStep
	}
	switch key {
	case "left":
		return -step, 0, true
	case "right":
		return step, 0, true
	case "up":
		return 0, -step, true
	case "down":
		return 0, step, true
	}
	return 0, 0, false
}

// cycleBackground switches to the next catalog background.
func (m *Model) cycleBackground() {
	s := m.machine.Session()
	bgs := s.Catalog().Backgrounds
	next := 0
	for i, bg := range bgs {
		if bg.ID == s.Background().ID {
			next = (i + 1) % len(bgs)
			break
		}
	}
	bg := s.SetBackground(bgs[next].ID)
	m.info("background: " + bg.ID + " " + bg.AspectRatio)
}
