package scene

// NodeID identifies a node for the lifetime of the engine.
type NodeID string

// ZeroID is the zero value of NodeID.
const ZeroID NodeID = ""

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }

// Short returns an abbreviated form of the ID for log and error messages.
func (id NodeID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Vec2 is a 2D point or extent in scene space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Port is a named input or output connector on a node.
type Port struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // connection type tag, e.g. "image", "latent"
}

// Node is a single node in the authoritative graph. The engine owns it;
// everything outside the engine holds a non-owning reference at most.
type Node struct {
	ID        NodeID
	Title     string
	Pos       Vec2
	Size      Vec2
	Selected  bool
	Executing bool
	Widgets   []*Widget
	Inputs    []Port
	Outputs   []Port
}

// NewNode creates a detached node with the given title. The node gets its
// ID when it is added to an Engine. Widgets must be attached before Add so
// the overlay can wire their callbacks exactly once.
func NewNode(title string) *Node {
	return &Node{Title: title}
}

// AddWidget appends a widget and returns it for further configuration.
func (n *Node) AddWidget(name string, typ WidgetType, value any) *Widget {
	w := &Widget{Name: name, Type: typ, Value: value}
	n.Widgets = append(n.Widgets, w)
	return w
}

// Widget returns the widget with the given name, or nil.
func (n *Node) Widget(name string) *Widget {
	for _, w := range n.Widgets {
		if w.Name == name {
			return w
		}
	}
	return nil
}

// AddInput appends an input port.
func (n *Node) AddInput(name, typ string) {
	n.Inputs = append(n.Inputs, Port{Name: name, Type: typ})
}

// AddOutput appends an output port.
func (n *Node) AddOutput(name, typ string) {
	n.Outputs = append(n.Outputs, Port{Name: name, Type: typ})
}
