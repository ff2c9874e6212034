package interact

import "github.com/matzehuels/meteomap/pkg/geometry"

// Action is a context menu entry.
type Action string

const (
	ActionDelete    Action = "delete"
	ActionDuplicate Action = "duplicate"
	ActionLock      Action = "lock"
	ActionUnlock    Action = "unlock"
	ActionPaste     Action = "paste"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionDelete, ActionDuplicate, ActionLock, ActionUnlock, ActionPaste:
		return a, true
	}
	return "", false
}

// Menu is an open context menu. Target is empty for the stage menu, which
// offers paste at At (stage percent).
type Menu struct {
	Target  string         `json:"target"`
	Pos     geometry.Point `json:"pos"`
	At      geometry.Point `json:"at"`
	Actions []Action       `json:"actions"`
}

// Menu returns the open context menu, or nil.
func (m *Machine) Menu() *Menu {
	if m.menu == nil {
		return nil
	}
	c := *m.menu
	c.Actions = append([]Action(nil), m.menu.Actions...)
	return &c
}

func (m *Machine) openMenu(id string, px geometry.Point) {
	if !m.session.IsSelected(id) {
		m.session.Select(id)
	}
	e, _ := m.session.Find(id)
	lockAction := ActionLock
	if e.Locked {
		lockAction = ActionUnlock
	}
	m.menu = &Menu{
		Target:  id,
		Pos:     px,
		At:      m.pct(px),
		Actions: []Action{ActionDuplicate, lockAction, ActionDelete},
	}
	m.mode = ContextMenu
}

// openStageMenu opens the empty-stage menu. Nothing opens while the
// clipboard is empty.
func (m *Machine) openStageMenu(px geometry.Point) {
	if !m.session.CanPaste() {
		return
	}
	m.menu = &Menu{Pos: px, At: m.pct(px), Actions: []Action{ActionPaste}}
	m.mode = ContextMenu
}

// ContextAction runs a on the open menu's target and closes the menu. When
// the target is part of a larger selection the action applies to all of it.
// Paste inserts the clipboard anchored where the menu was opened.
func (m *Machine) ContextAction(a Action) bool {
	if m.mode != ContextMenu || m.menu == nil {
		return false
	}
	menu := *m.menu
	m.menu = nil
	m.mode = Idle

	if a == ActionPaste {
		at := menu.At
		return m.session.Paste(&at) != nil
	}
	if menu.Target == "" {
		return false
	}
	ids := []string{menu.Target}
	if m.session.IsSelected(menu.Target) {
		ids = m.session.Selected()
	}

	switch a {
	case ActionDelete:
		return m.session.Remove(ids...) > 0
	case ActionDuplicate:
		return m.session.Duplicate(ids...) != nil
	case ActionLock:
		return m.session.SetLocked(true, ids...)
	case ActionUnlock:
		return m.session.SetLocked(false, ids...)
	}
	return false
}

// CloseMenu closes the context menu without running an action.
func (m *Machine) CloseMenu() {
	if m.mode == ContextMenu {
		m.menu = nil
		m.mode = Idle
	}
}
