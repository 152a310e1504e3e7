package overlay

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/vitrine/pkg/scene"
	"github.com/chazu/vitrine/pkg/spatial"
)

// Transform is the composed camera transform applied to the overlay
// surface. A scene point p maps to the screen as (p + offset) * scale;
// the offset is added before scaling.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Identity is the transform that maps scene space onto the screen 1:1.
var Identity = Transform{Scale: 1}

// Valid reports whether every component is finite and the scale positive.
func (t Transform) Valid() bool {
	for _, f := range [...]float64{t.Scale, t.OffsetX, t.OffsetY} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return t.Scale > 0
}

// Apply maps a scene point to overlay (screen) space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return (x + t.OffsetX) * t.Scale, (y + t.OffsetY) * t.Scale
}

// Invert maps an overlay point back to scene space.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return sx/t.Scale - t.OffsetX, sy/t.Scale - t.OffsetY
}

// ApplyRect maps a scene-space rectangle to overlay space.
func (t Transform) ApplyRect(r spatial.Rect) spatial.Rect {
	x, y := t.Apply(r.X, r.Y)
	return spatial.Rect{X: x, Y: y, W: r.W * t.Scale, H: r.H * t.Scale}
}

// InvertRect maps an overlay-space rectangle back to scene space.
func (t Transform) InvertRect(r spatial.Rect) spatial.Rect {
	x, y := t.Invert(r.X, r.Y)
	return spatial.Rect{X: x, Y: y, W: r.W / t.Scale, H: r.H / t.Scale}
}

// CSSMatrix renders the transform as a CSS matrix() function for the
// overlay container. matrix(a,b,c,d,e,f) applies x' = a*x + c*y + e, so
// the translation components carry the pre-scaled offset.
func (t Transform) CSSMatrix() string {
	return fmt.Sprintf("matrix(%g,0,0,%g,%g,%g)",
		t.Scale, t.Scale, t.OffsetX*t.Scale, t.OffsetY*t.Scale)
}

// Mirror republishes the authoritative camera as a Transform, holding the
// last valid transform whenever the camera reports a non-finite or
// non-positive state instead of propagating it.
type Mirror struct {
	current  Transform
	degraded bool // true while the camera is reporting invalid state
	log      *slog.Logger
}

// NewMirror creates a mirror starting at the identity transform.
func NewMirror(log *slog.Logger) *Mirror {
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{current: Identity, log: log}
}

// Update recomputes the transform from the camera. It returns the
// transform to use this frame and whether it changed. An invalid camera
// keeps the previous transform and logs one warning per bad streak.
func (m *Mirror) Update(c scene.Camera) (Transform, bool) {
	next := Transform{Scale: c.Scale, OffsetX: c.Offset.X, OffsetY: c.Offset.Y}
	if !next.Valid() {
		if !m.degraded {
			m.log.Warn("overlay: invalid camera transform, holding last good",
				"scale", c.Scale, "offsetX", c.Offset.X, "offsetY", c.Offset.Y)
			m.degraded = true
		}
		return m.current, false
	}
	m.degraded = false
	changed := next != m.current
	m.current = next
	return next, changed
}

// Current returns the last valid transform.
func (m *Mirror) Current() Transform { return m.current }

// Degraded reports whether the mirror is currently holding a stale
// transform because the camera is invalid.
func (m *Mirror) Degraded() bool { return m.degraded }
