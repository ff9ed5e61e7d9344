package camera

import (
	"github.com/Faultbox/mibu/pkg/math"
)

// PreviewCamera is the orthographic camera over the flattened atlas. The
// atlas is a unit quad at the origin; Zoom is screen pixels per world unit.
type PreviewCamera struct {
	ViewportW, ViewportH float32
	TextureW, TextureH   int

	Zoom       float32
	PanX, PanY float32

	ZoomSensitivity float32
}

// NewPreviewCamera creates a preview camera fitted to the viewport.
func NewPreviewCamera(viewportW, viewportH float32, textureW, textureH int) *PreviewCamera {
	c := &PreviewCamera{
		ViewportW:       viewportW,
		ViewportH:       viewportH,
		TextureW:        textureW,
		TextureH:        textureH,
		ZoomSensitivity: 0.1,
	}
	c.Reset()
	return c
}

// MinZoom shows the atlas at half the short viewport side.
func (c *PreviewCamera) MinZoom() float32 {
	return float32(int(min(c.ViewportW, c.ViewportH))) / 2
}

// MaxZoom shows about eight atlas pixels across half the short side.
func (c *PreviewCamera) MaxZoom() float32 {
	return c.MinZoom() * float32(max(c.TextureW, c.TextureH)) / 8
}

// Reset zooms out fully and centres the atlas.
func (c *PreviewCamera) Reset() {
	c.Zoom = c.MinZoom()
	c.PanX, c.PanY = 0, 0
}

// Resize updates the viewport and re-applies the limits.
func (c *PreviewCamera) Resize(viewportW, viewportH float32) {
	c.ViewportW, c.ViewportH = viewportW, viewportH
	c.clamp()
}

// SetTexture updates the atlas size after a model load and resets the view.
func (c *PreviewCamera) SetTexture(w, h int) {
	c.TextureW, c.TextureH = w, h
	c.Reset()
}

// PanLimits returns how far the view centre may move from the origin on
// each axis at the current zoom.
func (c *PreviewCamera) PanLimits() (x, y float32) {
	limit := func(bound float32) float32 {
		return math.Abs((1-bound/c.Zoom)*0.5) + 0.25
	}
	return limit(c.ViewportW), limit(c.ViewportH)
}

func (c *PreviewCamera) clamp() {
	c.Zoom = min(max(c.Zoom, c.MinZoom()), c.MaxZoom())
	lx, ly := c.PanLimits()
	c.PanX = min(max(c.PanX, -lx), lx)
	c.PanY = min(max(c.PanY, -ly), ly)
}

// ScreenToWorld maps a viewport pixel (top-left origin) onto the Z = 0
// plane.
func (c *PreviewCamera) ScreenToWorld(sx, sy float32) (x, y float32) {
	x = c.PanX + (sx-c.ViewportW/2)/c.Zoom
	y = c.PanY - (sy-c.ViewportH/2)/c.Zoom
	return x, y
}

// HandlePan moves the view by a drag delta in screen pixels.
func (c *PreviewCamera) HandlePan(deltaX, deltaY float32) {
	c.PanX -= deltaX / c.Zoom
	c.PanY += deltaY / c.Zoom
	c.clamp()
}

// HandleZoom zooms by a scroll delta, keeping the world point under the
// cursor fixed.
func (c *PreviewCamera) HandleZoom(delta, cursorX, cursorY float32) {
	wx, wy := c.ScreenToWorld(cursorX, cursorY)

	c.Zoom += delta * c.Zoom * c.ZoomSensitivity
	c.Zoom = min(max(c.Zoom, c.MinZoom()), c.MaxZoom())

	c.PanX = wx - (cursorX-c.ViewportW/2)/c.Zoom
	c.PanY = wy + (cursorY-c.ViewportH/2)/c.Zoom
	c.clamp()
}

// ViewMatrix returns the view matrix looking down -Z at the pan centre.
func (c *PreviewCamera) ViewMatrix() math.Mat4 {
	return math.Translate(-c.PanX, -c.PanY, -1)
}

// ProjectionMatrix returns the orthographic projection for the viewport.
func (c *PreviewCamera) ProjectionMatrix() math.Mat4 {
	hw := c.ViewportW / 2 / c.Zoom
	hh := c.ViewportH / 2 / c.Zoom
	return math.Ortho(-hw, hw, -hh, hh, 0.1, 10)
}

// ViewProjection returns projection * view.
func (c *PreviewCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}
