// Package layout splits the viewer window into the model and preview panes
// and turns session overlays into vertex arrays. It has no GL dependency.
package layout

// Pane identifies a region of the window.
type Pane int

const (
	PaneNone Pane = iota
	PaneModel
	PanePreview
)

func (p Pane) String() string {
	switch p {
	case PaneModel:
		return "model"
	case PanePreview:
		return "preview"
	}
	return "none"
}

// Rect is a pane in window coordinates with a top-left origin.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Scale maps r from window coordinates to a framebuffer sx by sy times
// larger.
func (r Rect) Scale(sx, sy float32) Rect {
	return Rect{
		X: int(float32(r.X) * sx),
		Y: int(float32(r.Y) * sy),
		W: int(float32(r.W) * sx),
		H: int(float32(r.H) * sy),
	}
}

// Layout puts the model on the left and the preview on the right. With
// the preview hidden the model takes the whole window.
type Layout struct {
	Width, Height int
	// Split is the model pane's share of the width.
	Split       float32
	ShowPreview bool
}

// New returns an even split of a width x height window.
func New(width, height int) Layout {
	return Layout{Width: width, Height: height, Split: 0.5, ShowPreview: true}
}

// Resize keeps the split and changes the window size.
func (l *Layout) Resize(width, height int) {
	l.Width, l.Height = width, height
}

func (l Layout) splitX() int {
	if !l.ShowPreview {
		return l.Width
	}
	s := l.Split
	if s <= 0 || s >= 1 {
		s = 0.5
	}
	return int(float32(l.Width) * s)
}

// Model returns the model pane.
func (l Layout) Model() Rect {
	return Rect{W: l.splitX(), H: l.Height}
}

// Preview returns the preview pane. It is empty while hidden.
func (l Layout) Preview() Rect {
	x := l.splitX()
	return Rect{X: x, W: l.Width - x, H: l.Height}
}

// PaneAt returns the pane under a window position.
func (l Layout) PaneAt(x, y int) Pane {
	switch {
	case l.Model().Contains(x, y):
		return PaneModel
	case l.Preview().Contains(x, y):
		return PanePreview
	}
	return PaneNone
}

// Local converts a window position into pane-relative coordinates.
func (l Layout) Local(p Pane, x, y int) (float32, float32) {
	var r Rect
	switch p {
	case PaneModel:
		r = l.Model()
	case PanePreview:
		r = l.Preview()
	}
	return float32(x - r.X), float32(y - r.Y)
}
