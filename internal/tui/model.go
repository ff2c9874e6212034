// Package tui implements the terminal map editor.
//
// The stage fills the terminal below a title line; one cell is one stage
// pixel. Mouse events are forwarded to an [interact.Machine] unchanged, so
// placing, dragging, marquee selection and zone drawing behave exactly as in
// the browser front end. Holding Alt while pressing on an element starts a
// resize instead of a drag.
//
// # Keys
//
//	s          selection tool
//	1-9        icon tools (catalog order)
//	l t w      label, temperature and wind tools
//	a d        anticyclone and depression tools
//	h          toggle hemisphere for new zones
//	e          edit the selected element (enter applies, esc cancels);
//	           flips anticyclone and depression on a zone
//	arrows     nudge the selection (shift for larger steps)
//	+ -        grow or shrink the selection
//	b          next background
//	ctrl+z     undo
//	del        delete selection
//	ctrl+c/v   copy and paste elements
//	y          copy the project file to the system clipboard
//	p          import a project file from the system clipboard
//	ctrl+s     save to the project path
//	esc        cancel placement or close the context menu
//	1-9        pick a context menu entry while the menu is open
//	q          quit
package tui

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/geometry"
	"github.com/matzehuels/meteomap/pkg/interact"
	"github.com/matzehuels/meteomap/pkg/project"
)

// Layout: title line, stage border, stage, border, two status lines.
const (
	stageLeft  = 1
	stageTop   = 2
	chromeRows = 5
	chromeCols = 2
)

// resizeStep scales the selection on + and -.
const resizeStep = 1.1

// Model is the bubbletea model of the editor.
type Model struct {
	mu      *sync.Mutex
	machine *interact.Machine
	logger  *log.Logger
	clock   clockwork.Clock

	copyText  func(string) error
	pasteText func() (string, error)

	path      string
	width     int
	height    int
	outside   bool
	edit      *fieldEdit
	notice    string
	noticeErr bool
}

// Option configures a Model.
type Option func(*Model)

// WithPath sets the project file written by ctrl+s.
func WithPath(p string) Option {
	return func(m *Model) { m.path = p }
}

// WithLogger sets the logger. The terminal is owned by the UI, so the
// logger should write to a file or be discarded.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock sets the clock used to stamp saved projects.
func WithClock(c clockwork.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(copyText func(string) error, pasteText func() (string, error)) Option {
	return func(m *Model) {
		m.copyText = copyText
		m.pasteText = pasteText
	}
}

// New creates an editor model driving mc.
func New(mc *interact.Machine, opts ...Option) Model {
	m := Model{
		mu:        &sync.Mutex{},
		machine:   mc,
		logger:    log.New(io.Discard),
		clock:     clockwork.NewRealClock(),
		copyText:  clipboard.WriteAll,
		pasteText: clipboard.ReadAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Snapshot returns the current document. It matches autosave.Source and
// shares the update loop's lock.
func (m Model) Snapshot(context.Context) (document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machine.Session().Document(), nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := m.stageSize()
		if cols > 0 && rows > 0 {
			m.machine.SetMapper(geometry.Mapper{
				Origin: geometry.Point{X: stageLeft, Y: stageTop},
				Width:  float64(cols),
				Height: float64(rows),
			})
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m Model) stageSize() (cols, rows int) {
	return m.width - chromeCols, m.height - chromeRows
}

func (m Model) inStage(x, y int) bool {
	cols, rows := m.stageSize()
	return x >= stageLeft && x < stageLeft+cols && y >= stageTop && y < stageTop+rows
}

func (m *Model) mouse(msg tea.MouseMsg) {
	ev := interact.PointerEvent{
		Pos:  geometry.Point{X: float64(msg.X), Y: float64(msg.Y)},
		Mods: interact.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl, Alt: msg.Alt},
	}
	switch msg.Button {
	case tea.MouseButtonRight:
		ev.Button = interact.ButtonRight
	case tea.MouseButtonMiddle:
		ev.Button = interact.ButtonMiddle
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown || !m.inStage(msg.X, msg.Y) {
			return
		}
		m.outside = false
		if msg.Alt && ev.Button == interact.ButtonLeft {
			ev.Target = m.resizeTarget(ev.Pos)
		}
		m.machine.PointerDown(ev)
	case tea.MouseActionMotion:
		if !m.inStage(msg.X, msg.Y) {
			if !m.outside {
				m.outside = true
				m.machine.PointerLeave()
			}
			return
		}
		m.outside = false
		m.machine.PointerMove(ev)
	case tea.MouseActionRelease:
		m.machine.PointerUp(ev)
	}
}

func (m *Model) resizeTarget(px geometry.Point) *interact.Target {
	p := m.machine.Mapper().ToPercent(px)
	e, ok := document.ElementAt(m.machine.Session().Elements(), p, interact.DefaultTolerance)
	if !ok {
		return nil
	}
	return &interact.Target{ElementID: e.ID, Handle: interact.HandleResize}
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice, m.noticeErr = "", false
	if m.edit != nil {
		return m.editKey(msg)
	}
	if dx, dy, ok := nudgeFor(msg.String()); ok {
		m.nudge(dx, dy)
		return m, nil
	}
	switch msg.String() {
	case "q", "ctrl+q":
		return m, tea.Quit
	case "ctrl+s":
		m.save()
		return m, nil
	case "y":
		m.yank()
		return m, nil
	case "p":
		m.importClipboard()
		return m, nil
	case "e":
		m.beginEdit()
		return m, nil
	case "b":
		m.cycleBackground()
		return m, nil
	case "h":
		h := document.South
		if m.machine.Hemisphere() == document.South {
			h = document.North
		}
		m.machine.SetHemisphere(h)
		m.info("hemisphere: " + string(h))
		return m, nil
	case "+", "=":
		m.resizeSelection(resizeStep)
		return m, nil
	case "-":
		m.resizeSelection(1 / resizeStep)
		return m, nil
	}

	if menu := m.machine.Menu(); menu != nil {
		if k := msg.String(); len(k) == 1 && k[0] >= '1' && int(k[0]-'1') < len(menu.Actions) {
			m.machine.ContextAction(menu.Actions[k[0]-'1'])
			return m, nil
		}
	}
	if tool, ok := m.toolFor(msg.String()); ok {
		m.machine.SelectTool(tool)
		return m, nil
	}
	if ev, ok := keyEvent(msg); ok {
		m.machine.Key(ev)
	}
	return m, nil
}

// keyEvent translates a terminal key into the editor's key names.
func keyEvent(msg tea.KeyMsg) (interact.KeyEvent, bool) {
	switch msg.Type {
	case tea.KeyEsc:
		return interact.KeyEvent{Key: "Escape"}, true
	case tea.KeyDelete:
		return interact.KeyEvent{Key: "Delete"}, true
	case tea.KeyBackspace:
		return interact.KeyEvent{Key: "Backspace"}, true
	case tea.KeyCtrlZ:
		return interact.KeyEvent{Key: "z", Mods: interact.Modifiers{Ctrl: true}}, true
	case tea.KeyCtrlC:
		return interact.KeyEvent{Key: "c", Mods: interact.Modifiers{Ctrl: true}}, true
	case tea.KeyCtrlV:
		return interact.KeyEvent{Key: "v", Mods: interact.Modifiers{Ctrl: true}}, true
	}
	return interact.KeyEvent{}, false
}

func (m Model) toolFor(key string) (interact.Tool, bool) {
	switch key {
	case "s":
		return interact.SelectTool, true
	case "l":
		return interact.Tool{Kind: document.KindLabel}, true
	case "t":
		return interact.Tool{Kind: document.KindTemperature}, true
	case "w":
		return interact.Tool{Kind: document.KindWind}, true
	case "a":
		return interact.Tool{Kind: document.KindPressureZone, Zone: document.Anticyclone}, true
	case "d":
		return interact.Tool{Kind: document.KindPressureZone, Zone: document.Depression}, true
	}
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		icons := m.machine.Session().Catalog().Icons
		if i := int(key[0] - '1'); i < len(icons) {
			return interact.Tool{Kind: document.KindIcon, IconRef: icons[i].ID}, true
		}
	}
	return interact.Tool{}, false
}

func (m *Model) resizeSelection(factor float64) {
	if m.machine.Mode() != interact.Idle {
		return
	}
	s := m.machine.Session()
	for _, id := range s.Selected() {
		if e, ok := s.Find(id); ok && !e.Locked {
			s.Resize(id, document.SizeMetric(e.Body)*factor)
		}
	}
}

func (m *Model) save() {
	if m.path == "" {
		m.fail(errors.New(errors.ErrCodeInvalidInput, "no project path; start with meteomap edit <file>"))
		return
	}
	if err := project.ExportFile(m.path, m.machine.Session().Document(), m.clock.Now()); err != nil {
		m.fail(err)
		return
	}
	m.logger.Info("project saved", "path", m.path)
	m.info("saved " + m.path)
}

func (m *Model) yank() {
	data, err := project.Marshal(m.machine.Session().Document(), m.clock.Now())
	if err == nil {
		err = m.copyText(string(data))
	}
	if err != nil {
		m.fail(err)
		return
	}
	m.info("project copied to clipboard")
}

func (m *Model) importClipboard() {
	text, err := m.pasteText()
	if err != nil {
		m.fail(err)
		return
	}
	doc, err := project.Read(strings.NewReader(text))
	if err != nil {
		m.fail(err)
		return
	}
	m.machine.Replace(doc)
	m.info("project imported from clipboard")
}

func (m *Model) info(s string) {
	m.notice, m.noticeErr = s, false
}

func (m *Model) fail(err error) {
	m.logger.Warn("editor action failed", "err", err)
	m.notice, m.noticeErr = errors.UserMessage(err), true
}
