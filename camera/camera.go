// Package camera converts the render view's published Transform columns
// into screen coordinates for a viewer on a clamped (non-wrapping) world.
// It is external-collaborator code: the simulation core never imports it;
// rendercli uses it to project world positions before issuing draw calls,
// and to turn a mouse click back into world coordinates for input.
package camera

// Camera is a pan/zoom viewport over a fixed-size world. Unlike a
// scrolling or toroidal camera, its center is clamped so the viewport
// never shows space outside the world bounds.
type Camera struct {
	// Position is the camera center in world coordinates.
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification).
	Zoom float32

	// Viewport dimensions (screen size).
	ViewportW, ViewportH float32

	// World dimensions, used to clamp the camera center and to derive
	// MinZoom.
	WorldW, WorldH float32

	// Zoom constraints.
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
	c.MinZoom = minZoomFor(viewportW, viewportH, worldW, worldH)
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	return c
}

// minZoomFor returns the smallest zoom at which the viewport never shows
// space outside a worldW x worldH world.
func minZoomFor(viewportW, viewportH, worldW, worldH float32) float32 {
	z := viewportW / worldW
	if zy := viewportH / worldH; zy > z {
		z = zy
	}
	return z
}

// WorldToScreen converts world coordinates to screen coordinates relative
// to the current camera center and zoom.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates, clamped
// to the world bounds.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return clampf(wx, 0, c.WorldW), clampf(wy, 0, c.WorldH)
}

// IsVisible reports whether a circle at (wx, wy) with the given radius
// could be visible on screen. A conservative check for draw-loop culling.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = minZoomFor(viewportW, viewportH, c.WorldW, c.WorldH)
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampCenter()
}

// Pan moves the camera by the given delta in screen pixels, clamping the
// new center to the world bounds.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom], and
// re-clamps the center since the visible half-extent changes with zoom.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clampf(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible
// area: (minX, minY, maxX, maxY).
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the camera from showing space outside the world. When
// the visible area is wider or taller than the world itself, it centers
// on that axis instead of clamping to a degenerate range.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clampCenterAxis(c.X, halfW, c.WorldW)
	c.Y = clampCenterAxis(c.Y, halfH, c.WorldH)
}

func clampCenterAxis(center, half, size float32) float32 {
	if 2*half >= size {
		return size / 2
	}
	return clampf(center, half, size-half)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
