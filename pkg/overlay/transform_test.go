package overlay

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

// TestOffsetBeforeScale pins down the composition order. The mapping is
// screen = (scene + offset) * scale; applying the offset after scaling is
// the classic overlay drift bug and must never regress.
func TestOffsetBeforeScale(t *testing.T) {
	tr := Transform{Scale: 2, OffsetX: 100, OffsetY: 50}

	x, y := tr.Apply(10, 20)
	assert.Equal(t, 220.0, x, "want (10+100)*2, not 10*2+100")
	assert.Equal(t, 140.0, y, "want (20+50)*2, not 20*2+50")
}

func TestRoundTrip(t *testing.T) {
	cases := []Transform{
		Identity,
		{Scale: 0.1, OffsetX: -300, OffsetY: 1200},
		{Scale: 2.5, OffsetX: 0.333, OffsetY: -0.125},
		{Scale: 7.75, OffsetX: 1e6, OffsetY: -1e6},
	}
	points := [][2]float64{{0, 0}, {40, 40}, {-123.25, 987.5}, {1e4, -1e4}}

	for _, tr := range cases {
		for _, p := range points {
			sx, sy := tr.Apply(p[0], p[1])
			x, y := tr.Invert(sx, sy)
			assert.InDelta(t, p[0], x, 1e-6, "x round trip through %+v", tr)
			assert.InDelta(t, p[1], y, 1e-6, "y round trip through %+v", tr)
		}
	}
}

func TestRectMapping(t *testing.T) {
	tr := Transform{Scale: 2, OffsetX: 10, OffsetY: 10}
	r := spatial.Rect{X: 5, Y: 5, W: 50, H: 25}

	mapped := tr.ApplyRect(r)
	assert.Equal(t, spatial.Rect{X: 30, Y: 30, W: 100, H: 50}, mapped)

	back := tr.InvertRect(mapped)
	assert.InDelta(t, r.X, back.X, 1e-9)
	assert.InDelta(t, r.W, back.W, 1e-9)
}

func TestCSSMatrix(t *testing.T) {
	tr := Transform{Scale: 2, OffsetX: 100, OffsetY: -50}
	assert.Equal(t, "matrix(2,0,0,2,200,-100)", tr.CSSMatrix())
	assert.Equal(t, "matrix(1,0,0,1,0,0)", Identity.CSSMatrix())
}

func TestValid(t *testing.T) {
	assert.True(t, Identity.Valid())
	assert.False(t, Transform{Scale: 0}.Valid())
	assert.False(t, Transform{Scale: -1}.Valid())
	assert.False(t, Transform{Scale: math.NaN()}.Valid())
	assert.False(t, Transform{Scale: 1, OffsetX: math.Inf(1)}.Valid())
}

func TestMirrorHoldsLastGoodTransform(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	m := NewMirror(log)

	good, changed := m.Update(scene.Camera{Scale: 2, Offset: scene.Vec2{X: 5, Y: 5}})
	require.True(t, changed)
	require.Equal(t, Transform{Scale: 2, OffsetX: 5, OffsetY: 5}, good)

	held, changed := m.Update(scene.Camera{Scale: math.NaN()})
	assert.False(t, changed)
	assert.Equal(t, good, held, "invalid camera must not replace the transform")
	assert.True(t, m.Degraded())
	assert.Contains(t, buf.String(), "invalid camera transform")

	// One warning per bad streak, not one per frame.
	warned := buf.Len()
	m.Update(scene.Camera{Scale: -3})
	assert.Equal(t, warned, buf.Len())

	// Recovery clears the degraded flag.
	_, changed = m.Update(scene.Camera{Scale: 1})
	assert.True(t, changed)
	assert.False(t, m.Degraded())
}
