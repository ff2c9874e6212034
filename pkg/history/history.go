// Package history provides a bounded, linear undo store.
//
// # Overview
//
// A [Store] wraps a value of document state and keeps an ordered list of
// snapshots plus a cursor into that list. The snapshot at the cursor is the
// last recorded state; the live state returned by [Store.Current] is usually
// equal to it.
//
// Two kinds of updates exist:
//
//   - [Store.Commit] records a new snapshot (one undo step).
//   - [Store.SetTransient] replaces the live state without recording anything.
//     Continuous gestures (drag, resize) use it for every intermediate frame
//     and call [Store.CommitCurrent] once when the gesture ends, so a whole drag
//     is undone in a single step.
//
// # Bounds
//
// At most [MaxSnapshots] snapshots are retained. Committing past the cap
// evicts the oldest snapshot, so the most recent 50 states are always
// reachable by [Store.Undo]. There is no redo: committing after an undo
// discards the undone tail.
//
// # Immutability
//
// The store never copies T. Callers must treat committed values as immutable
// (functional updates that return new slices), which lets snapshots share
// structure with the live state.
//
// # Concurrency
//
// A Store is not safe for concurrent use. The editor drives it from a single
// logical thread.
package history

// MaxSnapshots is the number of retained snapshots.
const MaxSnapshots = 50

// Store is a bounded undo stack over values of type T.
type Store[T any] struct {
	snapshots []T
	cursor    int
	live      T
}

// New creates a store whose only snapshot (and live state) is initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		snapshots: []T{initial},
		live:      initial,
	}
}

// Current returns the live state.
func (s *Store[T]) Current() T {
	return s.live
}

// Len returns the number of retained snapshots.
func (s *Store[T]) Len() int {
	return len(s.snapshots)
}

// Cursor returns the index of the snapshot the live state was last synced to.
func (s *Store[T]) Cursor() int {
	return s.cursor
}

// Committed returns the snapshot at the cursor, ignoring transient state.
func (s *Store[T]) Committed() T {
	return s.snapshots[s.cursor]
}

// CanUndo reports whether Undo would change anything.
func (s *Store[T]) CanUndo() bool {
	return s.cursor > 0
}

// Commit truncates the redo tail, appends state and makes it live.
func (s *Store[T]) Commit(state T) {
	s.snapshots = append(s.snapshots[:s.cursor+1], state)
	s.cursor++
	if len(s.snapshots) > MaxSnapshots {
		// Shift instead of reslicing so the backing array does not grow forever.
		copy(s.snapshots, s.snapshots[1:])
		var zero T
		s.snapshots[len(s.snapshots)-1] = zero
		s.snapshots = s.snapshots[:MaxSnapshots]
		s.cursor = MaxSnapshots - 1
	}
	s.live = state
}

// SetTransient replaces the live state without recording a snapshot.
func (s *Store[T]) SetTransient(state T) {
	s.live = state
}

// CommitCurrent records the live state as a new snapshot.
func (s *Store[T]) CommitCurrent() {
	s.Commit(s.live)
}

// Rollback discards any transient state and restores the snapshot at the cursor.
func (s *Store[T]) Rollback() {
	s.live = s.snapshots[s.cursor]
}

// Undo moves the cursor back one snapshot and restores it as live state.
// It returns false (and does nothing) at the oldest retained snapshot.
func (s *Store[T]) Undo() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	s.live = s.snapshots[s.cursor]
	return true
}

// Reset drops all snapshots and starts over from state.
func (s *Store[T]) Reset(state T) {
	s.snapshots = []T{state}
	s.cursor = 0
	s.live = state
}
