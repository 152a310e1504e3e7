package overlay

import (
	"encoding/json"
	"fmt"

	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

// LODTier grades how much optional detail the rendering layer should draw
// for a node. It is a hint only; snapshot data is always complete, so an
// in-flight edit survives a tier change.
type LODTier int

const (
	LODFull    LODTier = iota // all fields, previews, decorations
	LODReduced                // primary fields only
	LODMinimal                // title bar and connectors only
)

func (t LODTier) String() string {
	switch t {
	case LODFull:
		return "full"
	case LODReduced:
		return "reduced"
	case LODMinimal:
		return "minimal"
	default:
		return fmt.Sprintf("LODTier(%d)", int(t))
	}
}

// MarshalJSON encodes the tier as its string name.
func (t LODTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Scale bands for tier assignment.
const (
	lodFullMin    = 0.8
	lodReducedMin = 0.4
)

// TierForScale maps a camera scale to a detail tier.
func TierForScale(scale float64) LODTier {
	switch {
	case scale > lodFullMin:
		return LODFull
	case scale >= lodReducedMin:
		return LODReduced
	default:
		return LODMinimal
	}
}

// VisibilityState is the per-node classification recomputed every tick.
// It is never persisted across sessions.
type VisibilityState struct {
	Classified bool // false until the first selector pass after add
	Visible    bool
	Culled     bool
	LOD        LODTier
}

// Selector defaults.
const (
	DefaultMarginBase   = 0.15 // viewport fraction at scale 1
	DefaultMinPixelSize = 4.0  // below this on-screen size, always cull
)

// Selector computes the visible set and detail tier each tick by querying
// the spatial index against the margin-expanded viewport.
type Selector struct {
	viewportW  float64
	viewportH  float64
	marginBase float64
	minPixel   float64
}

// NewSelector creates a selector for the given pixel viewport.
func NewSelector(viewportW, viewportH float64) *Selector {
	return &Selector{
		viewportW:  viewportW,
		viewportH:  viewportH,
		marginBase: DefaultMarginBase,
		minPixel:   DefaultMinPixelSize,
	}
}

// SetViewport updates the pixel viewport size.
func (s *Selector) SetViewport(w, h float64) {
	s.viewportW, s.viewportH = w, h
}

// marginFraction grows the cull margin as the camera zooms out: at low
// zoom nodes cross the viewport quickly, so the prefetch band widens.
// Clamped to [base, 8*base].
func (s *Selector) marginFraction(scale float64) float64 {
	f := s.marginBase / scale
	if f < s.marginBase {
		f = s.marginBase
	}
	if f > 8*s.marginBase {
		f = 8 * s.marginBase
	}
	return f
}

// Select classifies every tracked node against the current transform.
// Nodes absent from the index query result, or smaller on screen than the
// minimum pixel size, are culled; the rest are visible with a tier from
// the scale bands. It returns the set of visible ids.
//
// The selector assumes the index already reflects this tick's bounds; the
// scheduler guarantees that ordering.
func (s *Selector) Select(t Transform, index *spatial.Tree, b *Bridge) map[scene.NodeID]bool {
	view := t.InvertRect(spatial.Rect{W: s.viewportW, H: s.viewportH})
	margin := max(view.W, view.H) * s.marginFraction(t.Scale)
	expanded := view.Expand(margin)

	// Everything starts culled; the query result promotes survivors.
	for _, v := range b.vis {
		v.Classified = true
		v.Visible = false
		v.Culled = true
	}

	tier := TierForScale(t.Scale)
	visible := make(map[scene.NodeID]bool)
	for _, idStr := range index.Query(expanded) {
		id := scene.NodeID(idStr)
		snap := b.snapshots[id]
		v := b.vis[id]
		if snap == nil || v == nil {
			continue
		}
		// The quad-tree may return false positives; re-check.
		if !snap.Bounds().Intersects(expanded) {
			continue
		}
		// Sub-pixel nodes are culled regardless of index membership.
		if max(snap.W, snap.H)*t.Scale < s.minPixel {
			continue
		}
		v.Visible = true
		v.Culled = false
		v.LOD = tier
		visible[id] = true
	}
	return visible
}
