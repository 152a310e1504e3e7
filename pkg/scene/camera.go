package scene

// Camera scale limits. Zoom operations clamp to this range.
const (
	MinScale = 0.05
	MaxScale = 10.0
)

// Camera is the authoritative view state. A scene point p maps to the
// screen as (p + Offset) * Scale.
type Camera struct {
	Scale  float64 `json:"scale"`
	Offset Vec2    `json:"offset"`
}

// Pan shifts the camera offset by (dx, dy) in scene units.
func (c *Camera) Pan(dx, dy float64) {
	c.Offset.X += dx
	c.Offset.Y += dy
}

// ZoomAt multiplies the scale by factor, keeping the screen point (cx, cy)
// anchored on the same scene point. The resulting scale is clamped to
// [MinScale, MaxScale].
func (c *Camera) ZoomAt(factor, cx, cy float64) {
	next := c.Scale * factor
	if next < MinScale {
		next = MinScale
	}
	if next > MaxScale {
		next = MaxScale
	}
	if next == c.Scale {
		return
	}
	// Scene point under the anchor before the zoom.
	sx := cx/c.Scale - c.Offset.X
	sy := cy/c.Scale - c.Offset.Y
	c.Scale = next
	// Re-solve the offset so the anchor still maps to (cx, cy).
	c.Offset.X = cx/c.Scale - sx
	c.Offset.Y = cy/c.Scale - sy
}
