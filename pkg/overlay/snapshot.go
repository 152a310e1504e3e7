package overlay

import (
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

// primaryFieldCount is how many leading fields are considered primary
// detail. Fields beyond it are tagged Secondary so reduced-LOD rendering
// can skip them. The data itself is always complete; the tag is a hint.
const primaryFieldCount = 2

// FieldSnapshot is the immutable copy of one widget.
type FieldSnapshot struct {
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	Value     Value               `json:"value"`
	Options   scene.WidgetOptions `json:"options"`
	Secondary bool                `json:"secondary,omitempty"`
}

// NodeSnapshot is the immutable, plain-data copy of a node handed to the
// rendering layer. Snapshots are replaced wholesale when a node goes
// dirty, never mutated in place; (ID, Rev) is a stable render cache key.
type NodeSnapshot struct {
	ID        string          `json:"id"`
	Rev       uint64          `json:"rev"`
	Title     string          `json:"title"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	W         float64         `json:"w"`
	H         float64         `json:"h"`
	Selected  bool            `json:"selected,omitempty"`
	Executing bool            `json:"executing,omitempty"`
	Fields    []FieldSnapshot `json:"fields"`
	Inputs    []scene.Port    `json:"inputs,omitempty"`
	Outputs   []scene.Port    `json:"outputs,omitempty"`
}

// Bounds returns the snapshot's scene-space bounding box.
func (s *NodeSnapshot) Bounds() spatial.Rect {
	return spatial.Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
}

// Field returns the field snapshot with the given name, or nil.
func (s *NodeSnapshot) Field(name string) *FieldSnapshot {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// extractSnapshot reads every widget value out of the node into plain
// data. This must happen before the rendering layer wraps anything in its
// reactivity mechanism; once wrapped, engine values may become unreadable.
//
// A widget whose value cannot be converted contributes a safe default
// (empty text) instead of aborting the node: one malformed field never
// costs the rest.
func extractSnapshot(n *scene.Node, rev uint64, log *slog.Logger) *NodeSnapshot {
	snap := &NodeSnapshot{
		ID:        string(n.ID),
		Rev:       rev,
		Title:     n.Title,
		X:         n.Pos.X,
		Y:         n.Pos.Y,
		W:         n.Size.X,
		H:         n.Size.Y,
		Selected:  n.Selected,
		Executing: n.Executing,
		Fields:    make([]FieldSnapshot, 0, len(n.Widgets)),
		Inputs:    clonePorts(n.Inputs),
		Outputs:   clonePorts(n.Outputs),
	}
	for i, w := range n.Widgets {
		fs := FieldSnapshot{
			Name:      w.Name,
			Type:      w.Type.String(),
			Options:   cloneOptions(w.Options),
			Secondary: i >= primaryFieldCount,
		}
		v, err := convertValue(w.Type, w.Value)
		if err != nil {
			log.Warn("overlay: widget extraction failed, substituting default",
				"node", n.ID.Short(), "widget", w.Name, "err", err)
			fs.Type = scene.WidgetText.String()
			fs.Value = TextValue("")
		} else {
			fs.Value = v
		}
		snap.Fields = append(snap.Fields, fs)
	}
	return snap
}

func clonePorts(ports []scene.Port) []scene.Port {
	if len(ports) == 0 {
		return nil
	}
	out := make([]scene.Port, len(ports))
	copy(out, ports)
	return out
}

// cloneOptions deep-copies widget options so the snapshot stays immutable
// when the engine later mutates constraint pointers or the choice list.
func cloneOptions(o scene.WidgetOptions) scene.WidgetOptions {
	out := o
	if o.Min != nil {
		v := *o.Min
		out.Min = &v
	}
	if o.Max != nil {
		v := *o.Max
		out.Max = &v
	}
	if o.Step != nil {
		v := *o.Step
		out.Step = &v
	}
	if len(o.Choices) > 0 {
		out.Choices = make([]string, len(o.Choices))
		copy(out.Choices, o.Choices)
	}
	return out
}

// fingerprint is the cheap per-node change signature compared every frame.
// Re-extraction only happens when it changes, keeping per-frame cost
// proportional to the dirty set rather than total field count.
type fingerprint struct {
	pos      scene.Vec2
	size     scene.Vec2
	widgets  int
	checksum uint64
}

// fingerprintNode computes the node's current signature. The checksum
// covers title, flags, and every widget value.
func fingerprintNode(n *scene.Node) fingerprint {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%t\x00%t\x00", n.Title, n.Selected, n.Executing)
	for _, w := range n.Widgets {
		fmt.Fprintf(h, "%s=%v\x00", w.Name, w.Value)
	}
	return fingerprint{
		pos:      n.Pos,
		size:     n.Size,
		widgets:  len(n.Widgets),
		checksum: h.Sum64(),
	}
}
