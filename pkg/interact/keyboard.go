package interact

import "strings"

// Key handles a key press and reports whether it was consumed.
func (m *Machine) Key(ev KeyEvent) bool {
	key := ev.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}

	if ev.Mods.Command() && key == "z" {
		return m.undo()
	}
	if ev.InTextInput {
		return false
	}

	switch {
	case key == "Escape":
		return m.escape()
	case key == "Delete" || key == "Backspace":
		// Shift placement keeps the tool armed; deleting the last drop is allowed.
		if m.mode != Idle && m.mode != Placing {
			return false
		}
		return m.session.DeleteSelection() > 0
	case ev.Mods.Command() && key == "c":
		if m.mode.Gesture() {
			return false
		}
		return m.session.Copy() > 0
	case ev.Mods.Command() && key == "v":
		if m.mode.Gesture() {
			return false
		}
		return m.session.Paste(nil) != nil
	}
	return false
}

// undo is refused while a gesture holds transient state.
func (m *Machine) undo() bool {
	if m.mode.Gesture() {
		return false
	}
	if m.mode == ContextMenu {
		m.menu = nil
		m.mode = Idle
	}
	return m.session.Undo()
}

func (m *Machine) escape() bool {
	switch m.mode {
	case Placing, DrawingZone, Marquee:
		m.toIdle()
		return true
	case ContextMenu:
		m.menu = nil
		m.mode = Idle
		return true
	}
	return false
}

// Undo undoes the last committed change, as Ctrl/Cmd+Z does.
func (m *Machine) Undo() bool {
	return m.undo()
}
