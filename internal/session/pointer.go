package session

import (
	"github.com/Faultbox/mibu/internal/brush"
	"github.com/Faultbox/mibu/internal/engine/picking"
	"github.com/Faultbox/mibu/pkg/math"
)

// SetModelViewport sets the size of the 3D view in pixels.
func (s *Session) SetModelViewport(w, h float32) {
	if w > 0 && h > 0 {
		s.modelW, s.modelH = w, h
	}
}

// SetPreviewViewport sets the size of the preview in pixels.
func (s *Session) SetPreviewViewport(w, h float32) {
	if w > 0 && h > 0 {
		s.preview.Resize(w, h)
	}
}

// ModelViewport returns the size of the 3D view.
func (s *Session) ModelViewport() (w, h float32) { return s.modelW, s.modelH }

// ModelViewProjection returns the camera matrix of the 3D view.
func (s *Session) ModelViewProjection() math.Mat4 {
	return s.orbit.ViewProjection(s.modelW / s.modelH)
}

// ModelRay returns the pick ray under a 3D-view pixel in model space.
func (s *Session) ModelRay(x, y float32) picking.Ray {
	ray := picking.ScreenToRay(x, y, s.modelW, s.modelH, s.ModelViewProjection().Inverse())
	return ray.Transform(s.ModelMatrix().Inverse())
}

// PointerModel moves the model pointer to a 3D-view pixel. The brush
// follows the atlas pixel under it, or loses the model pointer on a miss.
func (s *Session) PointerModel(x, y float32) (brush.Pixel, bool) {
	tw, th := s.stack.Size()
	px, py, _, ok := s.picker.PickPixel(s.ModelRay(x, y), s.Mesh(), tw, th)
	if !ok {
		s.brush.ClearModel()
		return brush.Pixel{}, false
	}
	s.brush.SetModel(px, py)
	return brush.Pixel{X: px, Y: py}, true
}

// PointerPreview moves the preview pointer to a preview pixel.
func (s *Session) PointerPreview(x, y float32) (brush.Pixel, bool) {
	tw, th := s.stack.Size()
	vp := s.preview.ViewProjection()
	ray := picking.ScreenToRay(x, y, s.preview.ViewportW, s.preview.ViewportH, vp.Inverse())
	px, py, ok := picking.PickPreview(ray, tw, th)
	if !ok {
		s.brush.ClearPreview()
		return brush.Pixel{}, false
	}
	s.brush.SetPreview(px, py)
	return brush.Pixel{X: px, Y: py}, true
}

// LeaveModel drops the model pointer when it leaves the 3D view.
func (s *Session) LeaveModel() { s.brush.ClearModel() }

// LeavePreview drops the preview pointer when it leaves the preview.
func (s *Session) LeavePreview() { s.brush.ClearPreview() }

// PointerDown starts a stroke and paints the pixel under the brush.
// Returns false when nothing is under the brush.
func (s *Session) PointerDown() bool {
	if !s.brush.SetPainting(true) {
		return false
	}
	return s.brush.Draw()
}

// PointerUp ends the stroke.
func (s *Session) PointerUp() {
	s.brush.SetPainting(false)
}

// Painting reports whether a stroke is in progress. Hosts disable camera
// drags while painting.
func (s *Session) Painting() bool { return s.brush.Painting() }
