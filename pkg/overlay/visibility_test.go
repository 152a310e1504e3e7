package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/vitrine/pkg/scene"
)

func TestTierForScale(t *testing.T) {
	tests := []struct {
		scale float64
		want  LODTier
	}{
		{10.0, LODFull},
		{1.0, LODFull},
		{0.81, LODFull},
		{0.8, LODReduced},
		{0.5, LODReduced},
		{0.4, LODReduced},
		{0.39, LODMinimal},
		{0.05, LODMinimal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForScale(tt.scale), "scale %v", tt.scale)
	}
}

func TestLODTierString(t *testing.T) {
	assert.Equal(t, "full", LODFull.String())
	assert.Equal(t, "reduced", LODReduced.String())
	assert.Equal(t, "minimal", LODMinimal.String())
}

// TestMarginFractionClamped: the prefetch band widens as the camera zooms
// out but never below the base or past eight times it.
func TestMarginFractionClamped(t *testing.T) {
	s := NewSelector(800, 600)

	assert.Equal(t, DefaultMarginBase, s.marginFraction(1.0))
	assert.Equal(t, DefaultMarginBase, s.marginFraction(4.0), "zooming in never shrinks the band below base")
	assert.InDelta(t, DefaultMarginBase/0.5, s.marginFraction(0.5), 1e-12)
	assert.Equal(t, 8*DefaultMarginBase, s.marginFraction(0.01), "deep zoom-out clamps at 8x base")
}

func addNodeAt(t *testing.T, e *scene.Engine, title string, x, y, w, h float64) scene.NodeID {
	t.Helper()
	n := scene.NewNode(title)
	n.Pos = scene.Vec2{X: x, Y: y}
	n.Size = scene.Vec2{X: w, Y: h}
	return e.Add(n)
}

func TestSelectVisibleAndCulled(t *testing.T) {
	engine, index, b := newTestBridge(t)
	inView := addNodeAt(t, engine, "in", 40, 40, 200, 120)
	farAway := addNodeAt(t, engine, "far", 50000, 50000, 200, 120)

	sel := NewSelector(800, 600)
	visible := sel.Select(Identity, index, b)

	assert.True(t, visible[inView])
	assert.False(t, visible[farAway])

	vi := b.Visibility(inView)
	require.NotNil(t, vi)
	assert.True(t, vi.Classified)
	assert.True(t, vi.Visible)
	assert.Equal(t, LODFull, vi.LOD)

	vf := b.Visibility(farAway)
	require.NotNil(t, vf)
	assert.True(t, vf.Classified)
	assert.True(t, vf.Culled)
}

// TestSelectMarginKeepsNearOffscreenNodes: a node just past the viewport
// edge stays in the working set so a small pan cannot pop it in late.
func TestSelectMarginKeepsNearOffscreenNodes(t *testing.T) {
	engine, index, b := newTestBridge(t)
	// Viewport is 800x600 at scale 1; margin is max(800,600)*0.15 = 120.
	near := addNodeAt(t, engine, "near", 850, 100, 100, 60)
	far := addNodeAt(t, engine, "far", 1000, 100, 100, 60)

	sel := NewSelector(800, 600)
	visible := sel.Select(Identity, index, b)

	assert.True(t, visible[near], "inside the 120px margin band")
	assert.False(t, visible[far], "outside the margin band")
}

// TestSelectMinPixelCull: a node small enough on screen is culled even
// when its bounds intersect the viewport.
func TestSelectMinPixelCull(t *testing.T) {
	engine, index, b := newTestBridge(t)
	tiny := addNodeAt(t, engine, "tiny", 10, 10, 20, 20)

	sel := NewSelector(800, 600)

	// 20 scene units at scale 0.1 is 2px, below the 4px floor.
	visible := sel.Select(Transform{Scale: 0.1}, index, b)
	assert.False(t, visible[tiny])

	visible = sel.Select(Identity, index, b)
	assert.True(t, visible[tiny], "same node is visible again at full scale")
}

// TestSelectOffsetMapping: panning the camera shifts which scene region
// the viewport covers.
func TestSelectOffsetMapping(t *testing.T) {
	engine, index, b := newTestBridge(t)
	id := addNodeAt(t, engine, "n", -2500, 100, 200, 120)

	sel := NewSelector(800, 600)

	visible := sel.Select(Identity, index, b)
	assert.False(t, visible[id])

	// Offset +2500 brings scene x=-2500 to screen x=0.
	visible = sel.Select(Transform{Scale: 1, OffsetX: 2500}, index, b)
	assert.True(t, visible[id])
}

func TestSelectAssignsTierFromScale(t *testing.T) {
	engine, index, b := newTestBridge(t)
	id := addNodeAt(t, engine, "n", 100, 100, 200, 120)

	sel := NewSelector(800, 600)

	sel.Select(Transform{Scale: 0.5}, index, b)
	assert.Equal(t, LODReduced, b.Visibility(id).LOD)

	// Node is 200x120 scene units; at 0.2 it is 40px, above the pixel
	// floor, so it stays visible at the minimal tier.
	visible := sel.Select(Transform{Scale: 0.2}, index, b)
	assert.True(t, visible[id])
	assert.Equal(t, LODMinimal, b.Visibility(id).LOD)
}
