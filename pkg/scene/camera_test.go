package scene

import (
	"math"
	"testing"
)

func TestCameraPan(t *testing.T) {
	c := Camera{Scale: 1}
	c.Pan(100, 50)
	if c.Offset != (Vec2{X: 100, Y: 50}) {
		t.Errorf("offset = %+v, want {100 50}", c.Offset)
	}
	c.Pan(-100, -50)
	if c.Offset != (Vec2{}) {
		t.Errorf("offset = %+v, want zero", c.Offset)
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	c := Camera{Scale: 1, Offset: Vec2{X: 30, Y: -10}}

	// Scene point under the anchor before zooming.
	const cx, cy = 400.0, 300.0
	sx := cx/c.Scale - c.Offset.X
	sy := cy/c.Scale - c.Offset.Y

	c.ZoomAt(1.5, cx, cy)

	gx := (sx + c.Offset.X) * c.Scale
	gy := (sy + c.Offset.Y) * c.Scale
	if math.Abs(gx-cx) > 1e-9 || math.Abs(gy-cy) > 1e-9 {
		t.Errorf("anchor moved to (%f, %f), want (%f, %f)", gx, gy, cx, cy)
	}
	if c.Scale != 1.5 {
		t.Errorf("scale = %f, want 1.5", c.Scale)
	}
}

func TestZoomAtClamps(t *testing.T) {
	c := Camera{Scale: 1}
	c.ZoomAt(1000, 0, 0)
	if c.Scale != MaxScale {
		t.Errorf("scale = %f, want clamped to %f", c.Scale, MaxScale)
	}
	c.ZoomAt(1e-9, 0, 0)
	if c.Scale != MinScale {
		t.Errorf("scale = %f, want clamped to %f", c.Scale, MinScale)
	}
}

func TestZoomAtNoOpAtLimit(t *testing.T) {
	c := Camera{Scale: MaxScale, Offset: Vec2{X: 7, Y: 7}}
	c.ZoomAt(2, 100, 100)
	if c.Scale != MaxScale || c.Offset != (Vec2{X: 7, Y: 7}) {
		t.Error("zooming past the limit should leave the camera untouched")
	}
}
