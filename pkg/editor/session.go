// Package editor ties the document model, undo history, selection and
// clipboard into one editing session.
//
// A [Session] is the single owner of the element sequence. Every structural
// change goes through it and is committed to history exactly once; gestures
// in progress use the transient methods and are committed (or rolled back)
// when they end.
//
// Sessions are not safe for concurrent use. Front ends serialise access:
// the terminal editor drives the session from its update loop and the HTTP
// service holds a mutex around it.
package editor

import (
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/geometry"
	"github.com/matzehuels/meteomap/pkg/history"
	"github.com/matzehuels/meteomap/pkg/legend"
	"github.com/matzehuels/meteomap/pkg/observability"
	"github.com/matzehuels/meteomap/pkg/project"
)

// Session is one editing session.
type Session struct {
	catalog     *catalog.Catalog
	history     *history.Store[[]document.Element]
	selection   document.Selection
	clipboard   document.Clipboard
	background  document.Background
	customIcons []catalog.Icon
	newID       func() string
	revision    uint64
}

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator replaces the uuid-based id generator. Tests use it for
// deterministic ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithDocument starts the session from doc instead of an empty map.
func WithDocument(doc document.Document) Option {
	return func(s *Session) {
		s.history = history.New(doc.Elements)
		s.background = doc.Background
		s.customIcons = append([]catalog.Icon(nil), doc.CustomIcons...)
	}
}

// New creates a session over the given catalog. A nil catalog means the
// built-in one.
func New(c *catalog.Catalog, opts ...Option) *Session {
	if c == nil {
		c = catalog.Builtin()
	}
	bg, _ := c.Background(document.DefaultBackgroundID)
	s := &Session{
		catalog:    c,
		history:    history.New[[]document.Element](nil),
		background: document.BackgroundFrom(bg),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// Read access
// =============================================================================

// Catalog returns the built-in catalog the session resolves against.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Elements returns the live element sequence. Callers must not modify it.
func (s *Session) Elements() []document.Element { return s.history.Current() }

// Find returns the live element with the given id.
func (s *Session) Find(id string) (document.Element, bool) {
	return document.Find(s.Elements(), id)
}

// Document returns the session's document.
func (s *Session) Document() document.Document {
	return document.Document{
		Elements:    s.Elements(),
		Background:  s.background,
		CustomIcons: append([]catalog.Icon(nil), s.customIcons...),
	}
}

// Resolver returns an icon resolver over built-in and custom icons.
func (s *Session) Resolver() *catalog.Resolver {
	return catalog.NewResolver(s.catalog, s.customIcons)
}

// Legend derives the legend for the live elements.
func (s *Session) Legend() []legend.Entry {
	return legend.Derive(s.Elements(), s.Resolver())
}

// Revision increases on every change to the live document, transient or not.
func (s *Session) Revision() uint64 { return s.revision }

// HistoryLen returns the number of retained snapshots.
func (s *Session) HistoryLen() int { return s.history.Len() }

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// NewID returns a fresh element id.
func (s *Session) NewID() string { return s.newID() }

// =============================================================================
// Selection and clipboard
// =============================================================================

// Selected returns the selected ids.
func (s *Session) Selected() []string { return s.selection.IDs() }

// IsSelected reports whether id is selected.
func (s *Session) IsSelected(id string) bool { return s.selection.Contains(id) }

// Select replaces the selection with the ids that exist.
func (s *Session) Select(ids ...string) {
	s.selection.Select(ids)
	s.selection.Prune(s.Elements())
}

// Toggle flips the membership of id.
func (s *Session) Toggle(id string) {
	if _, ok := s.Find(id); ok || s.selection.Contains(id) {
		s.selection.Toggle(id)
	}
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() { s.selection.Clear() }

// Copy copies the selection to the clipboard and returns how many elements
// were copied.
func (s *Session) Copy() int {
	return s.clipboard.Copy(s.Elements(), s.selection.IDs())
}

// CanPaste reports whether the clipboard holds anything.
func (s *Session) CanPaste() bool { return !s.clipboard.Empty() }

// Paste inserts the clipboard contents and selects the copies. A nil anchor
// offsets the copies from their originals.
func (s *Session) Paste(anchor *geometry.Point) []string {
	if s.clipboard.Empty() {
		return nil
	}
	out, ids := document.Paste(s.Elements(), s.clipboard.Items(), anchor, s.newID)
	s.commit("paste", out)
	s.selection.Select(ids)
	return ids
}

// =============================================================================
// Committed mutations
// =============================================================================

// Place adds a new element at pos (stage percent), selects it and returns
// its id.
func (s *Session) Place(body document.Body, pos geometry.Point) string {
	id := s.newID()
	s.commit("add", document.Add(s.Elements(), document.Element{ID: id, X: pos.X, Y: pos.Y, Body: body}))
	s.selection.Select([]string{id})
	return id
}

// Update applies p to the element id. It records history only when the
// element actually changed.
func (s *Session) Update(id string, p document.Patch) bool {
	before, ok := s.Find(id)
	if !ok {
		return false
	}
	out := document.Update(s.Elements(), id, p)
	after, _ := document.Find(out, id)
	if after == before {
		return false
	}
	s.commit("update", out)
	return true
}

// Remove deletes ids, locked or not, and drops them from the selection.
func (s *Session) Remove(ids ...string) int {
	before := s.Elements()
	out := document.Remove(before, ids)
	n := len(before) - len(out)
	if n == 0 {
		return 0
	}
	s.commit("remove", out)
	s.selection.Prune(out)
	return n
}

// DeleteSelection removes every selected element.
func (s *Session) DeleteSelection() int {
	return s.Remove(s.selection.IDs()...)
}

// Duplicate copies ids with an offset and selects the copies.
func (s *Session) Duplicate(ids ...string) []string {
	out, created := document.Duplicate(s.Elements(), ids, s.newID)
	if len(created) == 0 {
		return nil
	}
	s.commit("duplicate", out)
	s.selection.Select(created)
	return created
}

// SetLocked locks or unlocks ids.
func (s *Session) SetLocked(locked bool, ids ...string) bool {
	changed := false
	for _, id := range ids {
		if e, ok := s.Find(id); ok && e.Locked != locked {
			changed = true
		}
	}
	if !changed {
		return false
	}
	op := "unlock"
	if locked {
		op = "lock"
	}
	s.commit(op, document.SetLocked(s.Elements(), ids, locked))
	return true
}

// Move offsets ids by (dx, dy) percent as one undo step. It records nothing
// when every target is locked or already pinned at the stage edge.
func (s *Session) Move(dx, dy float64, ids ...string) bool {
	return s.commitChanged("move", document.Move(s.Elements(), ids, dx, dy))
}

// Resize sets the size metric of id as one undo step. It records nothing
// when the clamped metric equals the current one.
func (s *Session) Resize(id string, metric float64) bool {
	return s.commitChanged("resize", document.Resize(s.Elements(), id, metric))
}

// Undo restores the previous snapshot. Selected ids that no longer exist
// are dropped.
func (s *Session) Undo() bool {
	ok := s.history.Undo()
	observability.Editor().OnUndo(ok)
	if ok {
		s.revision++
		s.selection.Prune(s.Elements())
	}
	return ok
}

// =============================================================================
// Gestures
// =============================================================================

// MoveTransient offsets ids without recording history. It reports whether
// the live elements changed.
func (s *Session) MoveTransient(dx, dy float64, ids ...string) bool {
	return s.setTransient(document.Move(s.Elements(), ids, dx, dy))
}

// ResizeTransient sets the size metric of id without recording history. It
// reports whether the live elements changed.
func (s *Session) ResizeTransient(id string, metric float64) bool {
	return s.setTransient(document.Resize(s.Elements(), id, metric))
}

// CommitGesture records the live state as one undo step. A gesture that
// ended where it started records nothing and reports false.
func (s *Session) CommitGesture(op string) bool {
	if document.Equal(s.Elements(), s.history.Committed()) {
		s.history.Rollback()
		return false
	}
	s.history.CommitCurrent()
	observability.Editor().OnCommit(op, len(s.Elements()))
	return true
}

// Rollback discards transient changes.
func (s *Session) Rollback() {
	s.history.Rollback()
	s.revision++
	s.selection.Prune(s.Elements())
}

// =============================================================================
// Document level
// =============================================================================

// Background returns the current background reference.
func (s *Session) Background() document.Background { return s.background }

// SetBackground switches to the catalog background id. Unknown ids fall back
// to the catalog's first background. Background changes are not undoable.
func (s *Session) SetBackground(id string) document.Background {
	bg, _ := s.catalog.Background(id)
	s.background = document.BackgroundFrom(bg)
	s.revision++
	return s.background
}

// SetAspectRatio overrides the stage aspect ratio ("16:9").
func (s *Session) SetAspectRatio(ratio string) {
	s.background.AspectRatio = ratio
	s.revision++
}

// CustomIcons returns the user-defined icons.
func (s *Session) CustomIcons() []catalog.Icon {
	return append([]catalog.Icon(nil), s.customIcons...)
}

// AddCustomIcon defines or redefines a custom icon.
func (s *Session) AddCustomIcon(ic catalog.Icon) {
	for i, c := range s.customIcons {
		if c.ID == ic.ID {
			s.customIcons[i] = ic
			s.revision++
			return
		}
	}
	s.customIcons = append(s.customIcons, ic)
	s.revision++
}

// Replace swaps in an imported document. History restarts from it and the
// selection and clipboard are emptied.
func (s *Session) Replace(doc document.Document) {
	s.history.Reset(doc.Elements)
	s.background = doc.Background
	s.customIcons = append([]catalog.Icon(nil), doc.CustomIcons...)
	s.selection.Clear()
	s.clipboard = document.Clipboard{}
	s.revision++
}

// Import reads a project file from r and replaces the document with it. On
// error the session is left untouched.
func (s *Session) Import(r io.Reader) error {
	doc, err := project.Read(r)
	if err != nil {
		return err
	}
	s.Replace(doc)
	return nil
}

// Export writes the document to w as a project file stamped with at.
func (s *Session) Export(w io.Writer, at time.Time) error {
	return project.Write(w, s.Document(), at)
}

func (s *Session) commit(op string, elements []document.Element) {
	s.history.Commit(elements)
	s.revision++
	observability.Editor().OnCommit(op, len(elements))
}

func (s *Session) commitChanged(op string, elements []document.Element) bool {
	if document.Equal(elements, s.Elements()) {
		return false
	}
	s.commit(op, elements)
	return true
}

func (s *Session) setTransient(elements []document.Element) bool {
	if document.Equal(elements, s.Elements()) {
		return false
	}
	s.history.SetTransient(elements)
	s.revision++
	return true
}
