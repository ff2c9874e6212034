package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/geometry"
	"github.com/matzehuels/meteomap/pkg/interact"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan = lipgloss.Color("36")
	colorRed  = lipgloss.Color("167")
	colorBlue = lipgloss.Color("75")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	styleSelected = lipgloss.NewStyle().Reverse(true)
	styleLocked   = lipgloss.NewStyle().Foreground(colorGray)
	styleGhost    = lipgloss.NewStyle().Foreground(colorDim)
	styleHigh     = lipgloss.NewStyle().Foreground(colorBlue)
	styleLow      = lipgloss.NewStyle().Foreground(colorRed)
	styleMarquee  = lipgloss.NewStyle().Foreground(colorCyan)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Canvas
// =============================================================================

// cell is one terminal cell. An empty text marks the right half of a wide
// rune drawn in the previous cell.
type cell struct {
	text  string
	style *lipgloss.Style
}

type canvas struct {
	cols, rows int
	cells      [][]cell
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range c.cells {
		c.cells[y] = make([]cell, cols)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{text: " "}
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st *lipgloss.Style) {
	if y < 0 || y >= c.rows || x < 0 || x >= c.cols {
		return
	}
	w := runewidth.RuneWidth(r)
	if w == 2 && x+1 >= c.cols {
		return
	}
	c.cells[y][x] = cell{text: string(r), style: st}
	if w == 2 {
		c.cells[y][x+1] = cell{style: st}
	}
}

// text writes s centred on (x, y).
func (c *canvas) text(x, y int, s string, st *lipgloss.Style) {
	x -= runewidth.StringWidth(s) / 2
	for _, r := range s {
		c.set(x, y, r, st)
		x += max(runewidth.RuneWidth(r), 1)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cl := range row {
			if cl.style != nil && cl.text != "" {
				b.WriteString(cl.style.Render(cl.text))
			} else {
				b.WriteString(cl.text)
			}
		}
	}
	return b.String()
}

// =============================================================================
// View
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cols, rows := m.stageSize()
	if cols < 10 || rows < 5 {
		return "terminal too small"
	}

	c := newCanvas(cols, rows)
	st := m.machine.State()
	m.drawElements(c, st)
	m.drawOverlays(c, st)

	var b strings.Builder
	b.WriteString(styleTitle.Render("meteomap") + " " + styleDim.Render(m.title()))
	b.WriteByte('\n')
	b.WriteString(styleBorder.Render(c.String()))
	b.WriteByte('\n')
	b.WriteString(m.statusLine(st))
	b.WriteByte('\n')
	b.WriteString(m.legendLine())
	return b.String()
}

func (m Model) title() string {
	bg := m.machine.Session().Background()
	name := m.path
	if name == "" {
		name = "untitled"
	}
	return fmt.Sprintf("%s · %s %s", name, bg.ID, bg.AspectRatio)
}

// toCell maps a stage-percent point to a canvas cell.
func (m Model) toCell(p geometry.Point) (int, int) {
	px := m.machine.Mapper().ToPixels(p)
	return int(math.Floor(px.X)) - stageLeft, int(math.Floor(px.Y)) - stageTop
}

func (m Model) drawElements(c *canvas, st interact.State) {
	s := m.machine.Session()
	r := s.Resolver()
	for _, e := range s.Elements() {
		x, y := m.toCell(geometry.Point{X: e.X, Y: e.Y})
		var style *lipgloss.Style
		switch {
		case s.IsSelected(e.ID):
			style = &styleSelected
		case e.Locked:
			style = &styleLocked
		}

		switch b := e.Body.(type) {
		case document.Icon:
			c.text(x, y, r.Resolve(b.Ref).Glyph, style)
		case document.Label:
			c.text(x, y, b.Text, style)
		case document.Temperature:
			c.text(x, y, b.Display(), style)
		case document.Wind:
			c.text(x, y, "➶"+b.Display(), style)
		case document.PressureZone:
			zs, letter := &styleHigh, "A"
			if b.Zone == document.Depression {
				zs, letter = &styleLow, "D"
			}
			m.drawCircle(c, geometry.Point{X: e.X, Y: e.Y}, b.Radius, zs)
			if style == nil {
				style = zs
			}
			c.text(x, y, letter, style)
		default:
			panic(fmt.Sprintf("tui: unknown element body %T", e.Body))
		}
	}
}

// drawCircle outlines a zone. Radius is in percent of the stage width.
func (m Model) drawCircle(c *canvas, center geometry.Point, radius float64, st *lipgloss.Style) {
	mp := m.machine.Mapper()
	cx := mp.ToPixels(center)
	r := mp.WidthPercentToPixels(radius)
	steps := max(int(2*math.Pi*r), 12)
	for i := range steps {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx.X + r*math.Cos(a)
		// Terminal cells are about twice as tall as wide.
		y := cx.Y + r*math.Sin(a)/2
		c.set(int(math.Floor(x))-stageLeft, int(math.Floor(y))-stageTop, '·', st)
	}
}

func (m Model) drawOverlays(c *canvas, st interact.State) {
	if st.Ghost != nil {
		x, y := m.toCell(st.Ghost.Pos)
		c.text(x, y, m.ghostGlyph(st.Ghost.Tool), &styleGhost)
	}
	if st.Zone != nil {
		zs := &styleHigh
		if st.Zone.Zone == document.Depression {
			zs = &styleLow
		}
		m.drawCircle(c, st.Zone.Center, st.Zone.Radius, zs)
	}
	if st.Marquee != nil {
		x0, y0 := m.toCell(st.Marquee.Min)
		x1, y1 := m.toCell(st.Marquee.Max)
		for x := x0; x <= x1; x++ {
			c.set(x, y0, '─', &styleMarquee)
			c.set(x, y1, '─', &styleMarquee)
		}
		for y := y0; y <= y1; y++ {
			c.set(x0, y, '│', &styleMarquee)
			c.set(x1, y, '│', &styleMarquee)
		}
	}
	if st.Menu != nil {
		hint := menuHint(st.Menu)
		x, y := int(st.Menu.Pos.X)-stageLeft, int(st.Menu.Pos.Y)-stageTop
		c.text(x+runewidth.StringWidth(hint)/2+1, y, hint, &styleMarquee)
	}
}

func (m Model) ghostGlyph(t interact.Tool) string {
	switch t.Kind {
	case document.KindIcon:
		return m.machine.Session().Resolver().Resolve(t.IconRef).Glyph
	case document.KindPressureZone:
		if t.Zone == document.Depression {
			return "D"
		}
		return "A"
	}
	return "+"
}

func (m Model) statusLine(st interact.State) string {
	tool := "select"
	if !st.Tool.IsSelect() {
		tool = string(st.Tool.Kind)
		if st.Tool.IconRef != "" {
			tool += ":" + st.Tool.IconRef
		}
		if st.Tool.Zone != "" {
			tool += ":" + string(st.Tool.Zone)
		}
	}
	line := fmt.Sprintf("%s · %s · %d selected · %s", st.Mode, tool, len(st.Selected), m.machine.Hemisphere())
	if m.edit != nil {
		prompt := fmt.Sprintf("edit %s: %s▏", m.edit.kind, string(m.edit.buf))
		line = styleMarquee.Render(prompt) + styleDim.Render("  enter apply · esc cancel")
		if m.notice != "" && m.noticeErr {
			line += "  " + styleError.Render(m.notice)
		}
		return line
	}
	if m.notice != "" {
		if m.noticeErr {
			return styleDim.Render(line) + "  " + styleError.Render(m.notice)
		}
		return styleDim.Render(line) + "  " + m.notice
	}
	return styleDim.Render(line)
}

func menuHint(menu *interact.Menu) string {
	names := make([]string, len(menu.Actions))
	for i, a := range menu.Actions {
		names[i] = fmt.Sprintf("%d %s", i+1, a)
	}
	return strings.Join(names, "  ")
}

func (m Model) legendLine() string {
	entries := m.machine.Session().Legend()
	if len(entries) == 0 {
		return styleDim.Render("legend: empty")
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s %s ×%d", e.Glyph, e.Label, e.Count)
	}
	return styleDim.Render("legend: ") + strings.Join(parts, styleDim.Render(" · "))
}
