package overlay

// Value synchronization protocol: UI edits flow to the engine exactly
// once, and the snapshot echo updates in the same call so the rendering
// layer never waits a frame to see its own edit. External mutations
// (scripts, undo, remote sync) bypass this path entirely and surface
// through DetectDirty, which is what prevents feedback loops.

import "github.com/chazu/vitrine/pkg/scene"

// fieldBinding connects one widget to the protocol. It holds only the
// node id and widget index, never a node pointer, so a snapshot can never
// reach back into live engine state through its binding.
type fieldBinding struct {
	bridge *Bridge
	node   scene.NodeID
	widget int
	prev   func(any) // engine callback registered before wrapping, chained
}

// wireNode wraps every widget callback on the node. The original callback
// is preserved and invoked from the wrapped path.
func (b *Bridge) wireNode(n *scene.Node) {
	for i, w := range n.Widgets {
		bind := &fieldBinding{bridge: b, node: n.ID, widget: i, prev: w.Callback}
		w.Callback = bind.dispatch
		b.bindings[n.ID] = append(b.bindings[n.ID], bind)
	}
}

// unwireNode restores the original widget callbacks, if the node is still
// live, and drops the bindings.
func (b *Bridge) unwireNode(id scene.NodeID) {
	binds := b.bindings[id]
	delete(b.bindings, id)
	n := b.auth.Node(id)
	if n == nil {
		return
	}
	for _, bind := range binds {
		if bind.widget < len(n.Widgets) {
			n.Widgets[bind.widget].Callback = bind.prev
		}
	}
}

// dispatch is the wrapped widget callback. The three-step order is
// mandatory:
//
//  1. write the value into the authoritative widget; engines commonly
//     register no-op or partial callbacks, so trusting the chained
//     callback alone silently drops edits;
//  2. invoke the pre-existing engine callback;
//  3. refresh the snapshot so the UI echo is immediate.
//
// Step 3 also recomputes the cached fingerprint, so the next DetectDirty
// pass does not re-extract a node whose only change is this edit.
func (bind *fieldBinding) dispatch(value any) {
	b := bind.bridge
	if b.closed {
		return
	}
	n := b.auth.Node(bind.node)
	if n == nil || bind.widget >= len(n.Widgets) {
		return
	}
	w := n.Widgets[bind.widget]

	w.Value = value
	if bind.prev != nil {
		bind.prev(value)
	}
	b.refresh(n)
}

// ApplyEdit is the rendering layer's entry point for a field edit. The
// protocol performs the authoritative write itself before invoking any
// callback, so a callback that never writes back cannot drop the edit.
// The wrapped callback (idempotent for the same value) then chains the
// engine callback and refreshes the snapshot; a widget with no callback
// at all gets the refresh here.
func (b *Bridge) ApplyEdit(id scene.NodeID, field string, v Value) error {
	if b.closed {
		return ErrClosed
	}
	n := b.auth.Node(id)
	if n == nil {
		return statError(ErrNodeNotFound, id, "")
	}
	w := n.Widget(field)
	if w == nil {
		return statError(ErrFieldNotFound, id, field)
	}
	w.Value = v.Any()
	if w.Callback != nil {
		w.Callback(v.Any())
		return nil
	}
	b.refresh(n)
	return nil
}
