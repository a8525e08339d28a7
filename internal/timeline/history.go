package timeline

// History is a generic linear undo/redo buffer over a tracked value T.
//
// Set replaces only the present value and is meant for high-frequency
// interim updates (live drag feedback). Snapshot marks the start of a
// logical edit: it pushes the present onto the past stack and clears the
// redo future. Callers must invoke Snapshot once before the first Set of
// an edit so the pre-edit state becomes the undo target.
//
// Tracked values must be treated as immutable between snapshots: editing
// operations produce new slices rather than mutating in place, otherwise
// undo would corrupt past entries.
type History[T any] struct {
	past    []T
	present T
	future  []T
	eq      func(a, b T) bool
}

// NewHistory creates a history around an initial present value. eq is used
// to skip Set calls whose value equals the current present; pass nil to
// always accept.
func NewHistory[T any](initial T, eq func(a, b T) bool) *History[T] {
	return &History[T]{present: initial, eq: eq}
}

// Present returns the current value
func (h *History[T]) Present() T {
	return h.present
}

// Set replaces the present value. The past stack is untouched, so
// consecutive Sets after one Snapshot coalesce into a single undo step.
// A Set after an Undo discards the redo future, matching linear undo.
func (h *History[T]) Set(value T) {
	if h.eq != nil && h.eq(h.present, value) {
		return
	}
	h.present = value
	h.future = nil
}

// SetFunc replaces the present value via an updater over the current one
func (h *History[T]) SetFunc(update func(T) T) {
	h.Set(update(h.present))
}

// Snapshot pushes the present onto the past stack and clears the future.
// A Snapshot (or Set) after an Undo discards the redo history.
func (h *History[T]) Snapshot() {
	h.past = append(h.past, h.present)
	h.future = nil
}

// Undo moves the last past entry into present. No-op if past is empty.
func (h *History[T]) Undo() bool {
	if len(h.past) == 0 {
		return false
	}
	last := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append([]T{h.present}, h.future...)
	h.present = last
	return true
}

// Redo moves the first future entry into present. No-op if future is empty.
func (h *History[T]) Redo() bool {
	if len(h.future) == 0 {
		return false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	h.present = next
	return true
}

// CanUndo reports whether an Undo would change state
func (h *History[T]) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether a Redo would change state
func (h *History[T]) CanRedo() bool {
	return len(h.future) > 0
}

// Clear discards past and future, keeping the present value
func (h *History[T]) Clear() {
	h.past = nil
	h.future = nil
}
