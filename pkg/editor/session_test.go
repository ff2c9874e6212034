package editor

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/meteomap/pkg/catalog"
	"github.com/matzehuels/meteomap/pkg/document"
	"github.com/matzehuels/meteomap/pkg/errors"
	"github.com/matzehuels/meteomap/pkg/geometry"
)

func newTestSession(opts ...Option) *Session {
	n := 0
	ids := WithIDGenerator(func() string {
		n++
		return "e" + strconv.Itoa(n)
	})
	return New(nil, append([]Option{ids}, opts...)...)
}

func sun() document.Body { return document.DefaultBody(document.KindIcon, "sun") }

func TestPlaceThenUndo(t *testing.T) {
	s := newTestSession()
	id := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	if id != "e1" || len(s.Elements()) != 1 {
		t.Fatalf("Place = %q, elements %d", id, len(s.Elements()))
	}
	if !reflect.DeepEqual(s.Selected(), []string{"e1"}) {
		t.Errorf("Selected() = %v", s.Selected())
	}
	if !s.Undo() {
		t.Fatal("Undo() = false")
	}
	if len(s.Elements()) != 0 {
		t.Errorf("elements after undo = %d", len(s.Elements()))
	}
	if len(s.Selected()) != 0 {
		t.Errorf("selection kept a deleted id: %v", s.Selected())
	}
	if s.Undo() {
		t.Error("second Undo() should be a no-op")
	}
}

func TestDragCommitsOnce(t *testing.T) {
	s := newTestSession()
	id := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	base := s.HistoryLen()

	for i := 0; i < 20; i++ {
		s.MoveTransient(2, 2, id)
	}
	s.CommitGesture("move")

	if got := s.HistoryLen() - base; got != 1 {
		t.Errorf("drag added %d snapshots, want 1", got)
	}
	e, _ := s.Find(id)
	if e.X != 50 || e.Y != 50 {
		t.Errorf("element at (%v,%v), want (50,50)", e.X, e.Y)
	}
	s.Undo()
	e, _ = s.Find(id)
	if e.X != 10 || e.Y != 10 {
		t.Errorf("after undo at (%v,%v), want (10,10)", e.X, e.Y)
	}
}

func TestClampedMovesRecordNothing(t *testing.T) {
	s := newTestSession()
	id := s.Place(document.Icon{Ref: "sun", Size: document.MaxIconSize}, geometry.Point{X: 100, Y: 0})
	base := s.HistoryLen()
	rev := s.Revision()

	if s.Move(10, -10, id) {
		t.Error("Move at the stage corner reported a change")
	}
	if s.Resize(id, 500) {
		t.Error("Resize past the maximum reported a change")
	}
	if s.MoveTransient(5, 0, id) || s.ResizeTransient(id, 250) {
		t.Error("clamped transient update reported a change")
	}
	if s.HistoryLen() != base || s.Revision() != rev {
		t.Errorf("history %d -> %d, revision %d -> %d", base, s.HistoryLen(), rev, s.Revision())
	}

	if !s.MoveTransient(-20, 0, id) || !s.MoveTransient(20, 0, id) {
		t.Fatal("transient round trip reported no change")
	}
	if s.CommitGesture("move") {
		t.Error("gesture ending at its start was committed")
	}
	if s.HistoryLen() != base {
		t.Errorf("HistoryLen() = %d, want %d", s.HistoryLen(), base)
	}

	if !s.Move(-10, 5, id) || s.HistoryLen() != base+1 {
		t.Errorf("Move inside the stage: history %d, want %d", s.HistoryLen(), base+1)
	}
}

func TestRollbackDiscardsTransient(t *testing.T) {
	s := newTestSession()
	id := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	s.ResizeTransient(id, 120)
	s.Rollback()
	e, _ := s.Find(id)
	if got := document.SizeMetric(e.Body); got != document.DefaultIconSize {
		t.Errorf("size after rollback = %v", got)
	}
}

func TestUpdateSkipsNoops(t *testing.T) {
	s := newTestSession()
	id := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	n := s.HistoryLen()

	if s.Update("missing", document.Patch{}) {
		t.Error("Update(missing) reported a change")
	}
	size := document.DefaultIconSize
	if s.Update(id, document.Patch{Size: &size}) {
		t.Error("Update with identical value reported a change")
	}
	if s.HistoryLen() != n {
		t.Errorf("no-op updates added history: %d -> %d", n, s.HistoryLen())
	}

	s.SetLocked(true, id)
	size = 90
	if s.Update(id, document.Patch{Size: &size}) {
		t.Error("Update on a locked element reported a change")
	}
}

func TestCopyPaste(t *testing.T) {
	s := newTestSession()
	a := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	b := s.Place(sun(), geometry.Point{X: 14, Y: 10})
	s.Select(a, b)
	if n := s.Copy(); n != 2 {
		t.Fatalf("Copy() = %d", n)
	}

	ids := s.Paste(&geometry.Point{X: 50, Y: 50})
	if len(ids) != 2 || !reflect.DeepEqual(s.Selected(), ids) {
		t.Fatalf("Paste ids = %v, selected %v", ids, s.Selected())
	}
	p1, _ := s.Find(ids[0])
	p2, _ := s.Find(ids[1])
	if p1.X != 48 || p2.X != 52 || p1.Y != 50 {
		t.Errorf("pasted at (%v,%v) (%v,%v)", p1.X, p1.Y, p2.X, p2.Y)
	}

	ids = s.Paste(nil)
	p3, _ := s.Find(ids[0])
	if p3.X != 15 || p3.Y != 15 {
		t.Errorf("offset paste at (%v,%v), want (15,15)", p3.X, p3.Y)
	}
}

func TestDeleteSelectionPrunes(t *testing.T) {
	s := newTestSession()
	a := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	b := s.Place(sun(), geometry.Point{X: 20, Y: 20})
	s.SetLocked(true, a)
	s.Select(a, b)

	if n := s.DeleteSelection(); n != 2 {
		t.Errorf("DeleteSelection() = %d, want 2", n)
	}
	if len(s.Selected()) != 0 || len(s.Elements()) != 0 {
		t.Errorf("selected %v, elements %d", s.Selected(), len(s.Elements()))
	}
}

func TestDuplicateSelectsCopies(t *testing.T) {
	s := newTestSession()
	a := s.Place(sun(), geometry.Point{X: 10, Y: 10})
	ids := s.Duplicate(a)
	if len(ids) != 1 || !reflect.DeepEqual(s.Selected(), ids) {
		t.Fatalf("Duplicate = %v, selected %v", ids, s.Selected())
	}
	if s.Duplicate("missing") != nil {
		t.Error("Duplicate(missing) should return nil")
	}
}

func TestReplace(t *testing.T) {
	s := newTestSession()
	s.Place(sun(), geometry.Point{X: 10, Y: 10})
	s.Select("e1")
	s.Copy()

	doc := document.Document{
		Elements:    []document.Element{{ID: "x", X: 1, Y: 2, Body: sun()}},
		Background:  document.Background{ID: "europe", AspectRatio: "4:3"},
		CustomIcons: []catalog.Icon{{ID: "hail", Glyph: "H", Label: "Grêle"}},
	}
	s.Replace(doc)

	if !reflect.DeepEqual(s.Document(), doc) {
		t.Errorf("Document() = %+v, want %+v", s.Document(), doc)
	}
	if s.CanUndo() || s.CanPaste() || len(s.Selected()) != 0 {
		t.Error("Replace should reset history, clipboard and selection")
	}
}

func TestLegendUsesCustomIcons(t *testing.T) {
	s := newTestSession()
	s.AddCustomIcon(catalog.Icon{ID: "hail", Glyph: "H", Label: "Grêle"})
	s.Place(document.Icon{Ref: "hail", Size: 40}, geometry.Point{X: 5, Y: 5})
	entries := s.Legend()
	if len(entries) != 1 || entries[0].Label != "Grêle" {
		t.Errorf("Legend() = %+v", entries)
	}
}

func TestSetBackground(t *testing.T) {
	s := newTestSession()
	if bg := s.SetBackground("world"); bg.AspectRatio != "16:9" {
		t.Errorf("SetBackground(world) = %+v", bg)
	}
	if bg := s.SetBackground("nowhere"); bg.ID != s.Catalog().Backgrounds[0].ID {
		t.Errorf("unknown background should fall back, got %+v", bg)
	}
}

func TestImportExport(t *testing.T) {
	src := newTestSession()
	src.Place(sun(), geometry.Point{X: 25, Y: 75})
	src.SetLocked(true, "e1")

	var buf bytes.Buffer
	if err := src.Export(&buf, time.UnixMilli(1700000000000)); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	dst := newTestSession()
	dst.Place(sun(), geometry.Point{X: 1, Y: 1})
	dst.Select("e1")
	if err := dst.Import(&buf); err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if !reflect.DeepEqual(dst.Elements(), src.Elements()) {
		t.Errorf("imported elements = %+v, want %+v", dst.Elements(), src.Elements())
	}
	if dst.CanUndo() || len(dst.Selected()) != 0 {
		t.Errorf("import kept history or selection: undo=%v selected=%v", dst.CanUndo(), dst.Selected())
	}
}

func TestImportInvalidKeepsDocument(t *testing.T) {
	s := newTestSession()
	s.Place(sun(), geometry.Point{X: 10, Y: 10})
	rev := s.Revision()

	err := s.Import(strings.NewReader(`{"elements": []}`))
	if !errors.Is(err, errors.ErrCodeInvalidProject) {
		t.Fatalf("Import() error = %v, want INVALID_PROJECT", err)
	}
	if len(s.Elements()) != 1 || s.Revision() != rev {
		t.Errorf("failed import changed the session")
	}
}
