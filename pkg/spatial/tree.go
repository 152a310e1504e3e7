package spatial

import "sort"

// Defaults for tree construction. The leaf capacity sits in the middle of
// the 8-16 band that keeps subdivision productive for node-sized boxes.
const (
	DefaultMaxDepth       = 8
	DefaultLeafCapacity   = 12
	DefaultStaleThreshold = 256
)

// defaultWorld is the root extent used before the first rebuild. Entries
// outside it are held at the root and counted as staleness.
var defaultWorld = Rect{X: -4096, Y: -4096, W: 8192, H: 8192}

// Option configures a Tree.
type Option func(*Tree)

// WithMaxDepth sets the maximum subdivision depth.
func WithMaxDepth(d int) Option {
	return func(t *Tree) { t.maxDepth = d }
}

// WithLeafCapacity sets how many items a leaf holds before splitting.
func WithLeafCapacity(c int) Option {
	return func(t *Tree) { t.leafCap = c }
}

// WithStaleThreshold sets how much churn (removes, out-of-world inserts)
// the tree tolerates before the next mutation triggers a full rebuild.
// A threshold <= 0 disables automatic rebuilds.
func WithStaleThreshold(n int) Option {
	return func(t *Tree) { t.staleThreshold = n }
}

// WithWorldBounds sets the initial root extent.
func WithWorldBounds(r Rect) Option {
	return func(t *Tree) { t.world = r }
}

// Tree is a quad-tree over id-keyed bounding boxes. It is not safe for
// concurrent use; Vitrine mutates it only from the frame goroutine.
type Tree struct {
	root    *treeNode
	entries map[string]Rect // authoritative entry set, drives rebuilds

	world          Rect
	maxDepth       int
	leafCap        int
	staleThreshold int
	stale          int
	rebuilds       int
}

type treeNode struct {
	bounds   Rect
	depth    int
	items    []treeItem
	children []*treeNode // nil until split; always length 4 after
}

type treeItem struct {
	id     string
	bounds Rect
}

// NewTree creates an empty tree.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		entries:        make(map[string]Rect),
		world:          defaultWorld,
		maxDepth:       DefaultMaxDepth,
		leafCap:        DefaultLeafCapacity,
		staleThreshold: DefaultStaleThreshold,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.root = &treeNode{bounds: t.world}
	return t
}

// Len returns the number of live entries.
func (t *Tree) Len() int { return len(t.entries) }

// Rebuilds returns how many full rebuilds the tree has performed.
func (t *Tree) Rebuilds() int { return t.rebuilds }

// Insert adds an entry. Inserting an id that already exists replaces its
// bounds (equivalent to Update).
func (t *Tree) Insert(id string, bounds Rect) {
	if _, ok := t.entries[id]; ok {
		t.Remove(id)
	}
	t.maybeRebuild()
	t.entries[id] = bounds
	if !t.root.bounds.Contains(bounds) {
		// Held at the root until the next rebuild widens the world.
		t.stale++
	}
	t.root.insert(treeItem{id: id, bounds: bounds}, t.maxDepth, t.leafCap)
}

// Remove deletes an entry. Removing an unknown id is a no-op.
func (t *Tree) Remove(id string) {
	bounds, ok := t.entries[id]
	if !ok {
		return
	}
	delete(t.entries, id)
	t.root.remove(id, bounds)
	t.stale++
	t.maybeRebuild()
}

// Update moves an entry to new bounds, implemented as remove+insert.
func (t *Tree) Update(id string, bounds Rect) {
	old, ok := t.entries[id]
	if ok && old == bounds {
		return
	}
	t.Remove(id)
	t.Insert(id, bounds)
}

// Query returns the ids of every entry whose bounds intersect r, sorted
// for determinism. The result may include entries that only touch r;
// callers needing strict overlap re-check intersection themselves.
func (t *Tree) Query(r Rect) []string {
	var out []string
	t.root.query(r, &out)
	sort.Strings(out)
	return out
}

// Bounds returns the last-known bounds for an entry.
func (t *Tree) Bounds(id string) (Rect, bool) {
	r, ok := t.entries[id]
	return r, ok
}

// Rebuild reconstructs the tree from the live entry set, recomputing the
// world extent from the union of all entry bounds. It is the always-correct
// fallback for a degraded tree and resets the staleness counter.
func (t *Tree) Rebuild() {
	world := t.world
	var union Rect
	for _, r := range t.entries {
		union = union.Union(r)
	}
	if !union.Empty() {
		// Pad so steady drift does not immediately escape the new world.
		world = union.Expand(max(union.W, union.H) * 0.25)
	}
	t.root = &treeNode{bounds: world}
	for id, r := range t.entries {
		t.root.insert(treeItem{id: id, bounds: r}, t.maxDepth, t.leafCap)
	}
	t.stale = 0
	t.rebuilds++
}

func (t *Tree) maybeRebuild() {
	if t.staleThreshold > 0 && t.stale > t.staleThreshold {
		t.Rebuild()
	}
}

func (n *treeNode) insert(it treeItem, maxDepth, leafCap int) {
	if n.children != nil {
		if c := n.childContaining(it.bounds); c != nil {
			c.insert(it, maxDepth, leafCap)
			return
		}
		// Spans a quadrant boundary; stays at this interior node.
		n.items = append(n.items, it)
		return
	}
	n.items = append(n.items, it)
	if len(n.items) > leafCap && n.depth < maxDepth {
		n.split(maxDepth, leafCap)
	}
}

// split subdivides a leaf into four equal quadrants and pushes down every
// item that fits entirely inside one of them.
func (n *treeNode) split(maxDepth, leafCap int) {
	hw := n.bounds.W / 2
	hh := n.bounds.H / 2
	n.children = []*treeNode{
		{bounds: Rect{X: n.bounds.X, Y: n.bounds.Y, W: hw, H: hh}, depth: n.depth + 1},
		{bounds: Rect{X: n.bounds.X + hw, Y: n.bounds.Y, W: hw, H: hh}, depth: n.depth + 1},
		{bounds: Rect{X: n.bounds.X, Y: n.bounds.Y + hh, W: hw, H: hh}, depth: n.depth + 1},
		{bounds: Rect{X: n.bounds.X + hw, Y: n.bounds.Y + hh, W: hw, H: hh}, depth: n.depth + 1},
	}
	items := n.items
	n.items = nil
	for _, it := range items {
		if c := n.childContaining(it.bounds); c != nil {
			c.insert(it, maxDepth, leafCap)
		} else {
			n.items = append(n.items, it)
		}
	}
}

func (n *treeNode) childContaining(r Rect) *treeNode {
	for _, c := range n.children {
		if c.bounds.Contains(r) {
			return c
		}
	}
	return nil
}

func (n *treeNode) remove(id string, bounds Rect) bool {
	for i, it := range n.items {
		if it.id == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	if n.children != nil {
		if c := n.childContaining(bounds); c != nil {
			if c.remove(id, bounds) {
				return true
			}
		}
		// Bounds drifted since insertion; fall back to scanning all
		// quadrants rather than leaking the entry.
		for _, c := range n.children {
			if c.remove(id, bounds) {
				return true
			}
		}
	}
	return false
}

func (n *treeNode) query(r Rect, out *[]string) {
	for _, it := range n.items {
		if it.bounds.Intersects(r) {
			*out = append(*out, it.id)
		}
	}
	if n.children == nil {
		return
	}
	for _, c := range n.children {
		if c.bounds.Intersects(r) {
			c.query(r, out)
		}
	}
}
