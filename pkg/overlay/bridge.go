package overlay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

// ErrClosed is returned by operations on a closed bridge.
var ErrClosed = errors.New("overlay: bridge closed")

// ErrNodeNotFound is returned when an edit targets an unknown node.
var ErrNodeNotFound = errors.New("overlay: node not found")

// ErrFieldNotFound is returned when an edit targets an unknown field.
var ErrFieldNotFound = errors.New("overlay: field not found")

// Authority is the face the authoritative scene engine presents to the
// overlay core. *scene.Engine satisfies it; tests may substitute fakes.
type Authority interface {
	Subscribe(l scene.Listener) func()
	Node(id scene.NodeID) *scene.Node
	Nodes() []*scene.Node
	Camera() scene.Camera
}

// Bridge subscribes to authoritative lifecycle events and maintains the
// core-owned stores derived from them: one snapshot, one index entry, one
// visibility state, and one fingerprint per live node. Teardown on removal
// goes through a single routine so no derived store can leak an entry.
type Bridge struct {
	auth  Authority
	index *spatial.Tree
	log   *slog.Logger

	snapshots map[scene.NodeID]*NodeSnapshot
	prints    map[scene.NodeID]fingerprint
	vis       map[scene.NodeID]*VisibilityState
	bindings  map[scene.NodeID][]*fieldBinding

	unsubscribe func()
	rev         uint64
	closed      bool
}

// NewBridge wires a bridge to the authority. Nodes already present are
// adopted immediately, then lifecycle events keep the stores current.
func NewBridge(auth Authority, index *spatial.Tree, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	b := &Bridge{
		auth:      auth,
		index:     index,
		log:       log,
		snapshots: make(map[scene.NodeID]*NodeSnapshot),
		prints:    make(map[scene.NodeID]fingerprint),
		vis:       make(map[scene.NodeID]*VisibilityState),
		bindings:  make(map[scene.NodeID][]*fieldBinding),
	}
	b.unsubscribe = auth.Subscribe(scene.Listener{
		NodeAdded:     b.onNodeAdded,
		NodeRemoved:   b.onNodeRemoved,
		NodeSelected:  b.onNodeFlagged,
		NodeExecuting: b.onNodeFlagged,
	})
	for _, n := range auth.Nodes() {
		b.onNodeAdded(n)
	}
	return b
}

// onNodeAdded extracts the node's snapshot (before any reactive wrapping
// can happen), indexes its bounds, initializes visibility to unclassified,
// and wires the value sync protocol into its widgets.
func (b *Bridge) onNodeAdded(n *scene.Node) {
	if b.closed || n == nil {
		return
	}
	if _, ok := b.snapshots[n.ID]; ok {
		return // already adopted
	}
	b.rev++
	snap := extractSnapshot(n, b.rev, b.log)
	b.snapshots[n.ID] = snap
	b.prints[n.ID] = fingerprintNode(n)
	b.vis[n.ID] = &VisibilityState{}
	b.index.Insert(string(n.ID), snap.Bounds())
	b.wireNode(n)
}

// onNodeRemoved tears down every derived store for the node. This is
// unconditional and complete: after it returns no map retains the id.
func (b *Bridge) onNodeRemoved(n *scene.Node) {
	if n == nil {
		return
	}
	b.teardown(n.ID)
}

// onNodeFlagged refreshes a node's snapshot immediately when its selected
// or executing flag changes, so highlights do not wait for dirty
// detection.
func (b *Bridge) onNodeFlagged(n *scene.Node) {
	if b.closed || n == nil {
		return
	}
	if _, ok := b.snapshots[n.ID]; !ok {
		return
	}
	b.refresh(n)
}

// teardown removes every trace of a node id from the core's stores.
func (b *Bridge) teardown(id scene.NodeID) {
	b.unwireNode(id)
	delete(b.snapshots, id)
	delete(b.prints, id)
	delete(b.vis, id)
	b.index.Remove(string(id))
}

// refresh re-extracts a node's snapshot and fingerprint in one step.
func (b *Bridge) refresh(n *scene.Node) *NodeSnapshot {
	b.rev++
	snap := extractSnapshot(n, b.rev, b.log)
	b.snapshots[n.ID] = snap
	b.prints[n.ID] = fingerprintNode(n)
	return snap
}

// DetectDirty compares fingerprints for every live node and re-extracts
// only the ones that changed. It returns the dirty ids; the scheduler
// updates the spatial index for them before visibility runs.
func (b *Bridge) DetectDirty() []scene.NodeID {
	if b.closed {
		return nil
	}
	var dirty []scene.NodeID
	for _, n := range b.auth.Nodes() {
		prev, ok := b.prints[n.ID]
		if !ok {
			// Added outside the event path; adopt it now.
			b.onNodeAdded(n)
			dirty = append(dirty, n.ID)
			continue
		}
		if next := fingerprintNode(n); next != prev {
			b.refresh(n)
			dirty = append(dirty, n.ID)
		}
	}
	return dirty
}

// Snapshot returns the current snapshot for a node, or nil.
func (b *Bridge) Snapshot(id scene.NodeID) *NodeSnapshot {
	return b.snapshots[id]
}

// Visibility returns the visibility state for a node, or nil.
func (b *Bridge) Visibility(id scene.NodeID) *VisibilityState {
	return b.vis[id]
}

// Len returns the number of nodes the bridge currently tracks.
func (b *Bridge) Len() int { return len(b.snapshots) }

// Close unsubscribes from the authority, unwinds all callback wiring, and
// clears every derived store. The bridge is unusable afterwards.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	for id := range b.snapshots {
		b.teardown(id)
	}
}

// statError builds the not-found errors with consistent context.
func statError(base error, id scene.NodeID, field string) error {
	if field == "" {
		return fmt.Errorf("%w: %s", base, id.Short())
	}
	return fmt.Errorf("%w: %s.%s", base, id.Short(), field)
}
