package document

// Selection is an ordered set of element ids. The zero value is empty and
// ready to use. Selection changes are never recorded in history.
type Selection struct {
	ids []string
}

// NewSelection returns a selection of ids, duplicates dropped.
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	s.Select(ids)
	return s
}

// Select replaces the selection.
func (s *Selection) Select(ids []string) {
	s.ids = s.ids[:0:0]
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			s.ids = append(s.ids, id)
		}
	}
}

// Toggle adds id if absent and removes it if present.
func (s *Selection) Toggle(id string) {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return
		}
	}
	s.ids = append(s.ids, id)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = nil
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Prune drops ids that no longer name an element.
func (s *Selection) Prune(elements []Element) {
	present := make(map[string]bool, len(elements))
	for _, e := range elements {
		present[e.ID] = true
	}
	kept := s.ids[:0:0]
	for _, id := range s.ids {
		if present[id] {
			kept = append(kept, id)
		}
	}
	s.ids = kept
}

// Clipboard holds detached copies of elements. Copies carry no id; fresh
// ids are assigned on paste.
type Clipboard struct {
	items []Element
}

// Copy replaces the clipboard with the elements named by ids, in document
// order. Copying nothing leaves the clipboard unchanged.
func (c *Clipboard) Copy(elements []Element, ids []string) int {
	want := idSet(ids)
	var items []Element
	for _, e := range elements {
		if want[e.ID] {
			e.ID = ""
			items = append(items, e)
		}
	}
	if len(items) > 0 {
		c.items = items
	}
	return len(items)
}

// Items returns a copy of the clipboard contents.
func (c *Clipboard) Items() []Element {
	return append([]Element(nil), c.items...)
}

// Empty reports whether there is nothing to paste.
func (c *Clipboard) Empty() bool {
	return len(c.items) == 0
}
