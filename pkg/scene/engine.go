package scene

import (
	"fmt"

	"github.com/google/uuid"
)

// Listener receives node lifecycle events. Nil fields are skipped.
// Handlers run synchronously on the mutating goroutine.
type Listener struct {
	NodeAdded     func(n *Node)
	NodeRemoved   func(n *Node)
	NodeSelected  func(n *Node)
	NodeExecuting func(n *Node)
}

// Engine is the reference authoritative scene engine. It owns all Node
// state and the camera, and fires events on every lifecycle change.
//
// The engine is not safe for concurrent use: Vitrine's frame model is
// single-threaded and cooperative, so all mutations must happen on the
// goroutine that drives the frame scheduler.
type Engine struct {
	nodes  map[NodeID]*Node
	order  []NodeID // insertion order, drives deterministic iteration
	camera Camera

	listeners    map[int]Listener
	nextListener int
	changeHooks  map[int]func()
	nextChange   int
}

// NewEngine creates an empty engine with an identity camera.
func NewEngine() *Engine {
	return &Engine{
		nodes:       make(map[NodeID]*Node),
		camera:      Camera{Scale: 1},
		listeners:   make(map[int]Listener),
		changeHooks: make(map[int]func()),
	}
}

// Subscribe registers a lifecycle listener and returns an unsubscribe func.
func (e *Engine) Subscribe(l Listener) func() {
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = l
	return func() { delete(e.listeners, id) }
}

// OnChange registers a hook fired after every mutation (lifecycle or not).
// Returns an unsubscribe func.
func (e *Engine) OnChange(fn func()) func() {
	id := e.nextChange
	e.nextChange++
	e.changeHooks[id] = fn
	return func() { delete(e.changeHooks, id) }
}

func (e *Engine) changed() {
	for _, fn := range e.changeHooks {
		fn()
	}
}

// Add inserts a node into the engine, assigning a fresh ID if the node has
// none, and fires NodeAdded. It returns the node's ID.
func (e *Engine) Add(n *Node) NodeID {
	if n.ID.IsZero() {
		n.ID = NodeID(uuid.NewString())
	}
	e.nodes[n.ID] = n
	e.order = append(e.order, n.ID)
	for _, l := range e.listeners {
		if l.NodeAdded != nil {
			l.NodeAdded(n)
		}
	}
	e.changed()
	return n.ID
}

// Remove deletes a node and fires NodeRemoved.
func (e *Engine) Remove(id NodeID) error {
	n, ok := e.nodes[id]
	if !ok {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	delete(e.nodes, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	for _, l := range e.listeners {
		if l.NodeRemoved != nil {
			l.NodeRemoved(n)
		}
	}
	e.changed()
	return nil
}

// Node returns the node with the given ID, or nil.
func (e *Engine) Node(id NodeID) *Node {
	return e.nodes[id]
}

// Nodes returns all live nodes in insertion order.
func (e *Engine) Nodes() []*Node {
	out := make([]*Node, 0, len(e.order))
	for _, id := range e.order {
		if n := e.nodes[id]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the number of live nodes.
func (e *Engine) NodeCount() int { return len(e.nodes) }

// Move sets a node's position.
func (e *Engine) Move(id NodeID, x, y float64) error {
	n := e.nodes[id]
	if n == nil {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	n.Pos = Vec2{X: x, Y: y}
	e.changed()
	return nil
}

// Resize sets a node's size.
func (e *Engine) Resize(id NodeID, w, h float64) error {
	n := e.nodes[id]
	if n == nil {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	n.Size = Vec2{X: w, Y: h}
	e.changed()
	return nil
}

// SetValue writes a widget value directly, without invoking the widget
// callback. This is the programmatic mutation path (scripts, undo/redo,
// remote sync); the overlay observes it through dirty detection only.
func (e *Engine) SetValue(id NodeID, widget string, value any) error {
	n := e.nodes[id]
	if n == nil {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	w := n.Widget(widget)
	if w == nil {
		return fmt.Errorf("scene: node %s has no widget %q", id.Short(), widget)
	}
	w.Value = value
	e.changed()
	return nil
}

// Select sets a node's selection state and fires NodeSelected.
func (e *Engine) Select(id NodeID, selected bool) error {
	n := e.nodes[id]
	if n == nil {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	n.Selected = selected
	for _, l := range e.listeners {
		if l.NodeSelected != nil {
			l.NodeSelected(n)
		}
	}
	e.changed()
	return nil
}

// SetExecuting sets a node's executing flag and fires NodeExecuting.
func (e *Engine) SetExecuting(id NodeID, executing bool) error {
	n := e.nodes[id]
	if n == nil {
		return fmt.Errorf("scene: node %s not found", id.Short())
	}
	n.Executing = executing
	for _, l := range e.listeners {
		if l.NodeExecuting != nil {
			l.NodeExecuting(n)
		}
	}
	e.changed()
	return nil
}

// Camera returns the current camera state.
func (e *Engine) Camera() Camera { return e.camera }

// SetCamera replaces the camera state.
func (e *Engine) SetCamera(c Camera) {
	e.camera = c
	e.changed()
}

// Pan shifts the camera offset by (dx, dy) in scene units.
func (e *Engine) Pan(dx, dy float64) {
	e.camera.Pan(dx, dy)
	e.changed()
}

// ZoomAt zooms the camera around the screen anchor (cx, cy).
func (e *Engine) ZoomAt(factor, cx, cy float64) {
	e.camera.ZoomAt(factor, cx, cy)
	e.changed()
}
