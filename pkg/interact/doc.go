// Package interact is the pointer and keyboard controller of the editor.
//
// A [Machine] interprets front-end events against the active tool and the
// current selection and turns them into [editor.Session] mutations. It has
// one mode at a time:
//
//	Idle         nothing in progress; clicks select, drag or start a marquee
//	Placing      a palette tool is armed; the ghost preview follows the pointer
//	Dragging     selected elements follow the pointer
//	Resizing     a resize handle is held
//	DrawingZone  a pressure zone's centre is fixed and its radius follows the pointer
//	Marquee      a selection box is being drawn
//	ContextMenu  a context menu is open on an element or on empty stage
//
// # Gestures
//
// Dragging, Resizing, DrawingZone and Marquee are gestures. While one is
// active it consumes every pointer event until it ends, so a second gesture
// can never start on top of it. Gesture bookkeeping (the ids being dragged,
// the metrics recorded at the start of a resize, the zone being drawn) lives
// in a short-lived gesture value inside the machine and never in the
// document.
//
// Drags apply each pointer move as an incremental delta from the previous
// pointer position to the live, transient state. Resizes compute every frame
// from the metrics recorded at pointer-down so rounding never compounds.
// Both are committed to history once, at pointer-up, and only if the
// document differs from the last snapshot; a drag pinned at the stage edge
// or a resize pinned at its limit records nothing. Leaving the stage during a drag or resize rolls the transient
// state back to the last snapshot.
//
// # Keyboard
//
// Ctrl/Cmd+Z undoes, Delete and Backspace remove the selection (also while
// placing, so the last of several shift-placed icons can be dropped), Ctrl/Cmd+C
// copies, Ctrl/Cmd+V pastes with an offset and Escape cancels placement,
// zone drawing, a marquee or the context menu. While focus is in a text
// input only undo is handled.
//
// A right-click on empty stage opens a menu with a single paste action when
// the clipboard holds anything. The copies are centred on the pointer.
//
// The machine performs no I/O. Malformed event sequences, such as a
// pointer-up without a pointer-down, are ignored.
package interact
