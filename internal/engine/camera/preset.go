package camera

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/Faultbox/mibu/pkg/math"
)

// ErrUnknownView is returned by ParseView for an unrecognised name.
var ErrUnknownView = errors.New("unknown view")

// View is a fixed orientation of the model towards the camera.
type View int

const (
	ViewFront View = iota
	ViewBack
	ViewLeft
	ViewRight
	ViewUp
	ViewDown
)

var viewNames = [...]string{"front", "back", "left", "right", "up", "down"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

// ParseView resolves a view by name, case-insensitively.
func ParseView(name string) (View, error) {
	for i, n := range viewNames {
		if strings.EqualFold(n, name) {
			return View(i), nil
		}
	}
	return ViewFront, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Euler returns the model rotation (radians, X Y Z) that shows the view.
func (v View) Euler() [3]float32 {
	const half = gomath.Pi / 2
	switch v {
	case ViewBack:
		return [3]float32{0, gomath.Pi, 0}
	case ViewLeft:
		return [3]float32{0, -half, 0}
	case ViewRight:
		return [3]float32{0, half, 0}
	case ViewUp:
		return [3]float32{half, 0, 0}
	case ViewDown:
		return [3]float32{-half, 0, 0}
	}
	return [3]float32{}
}

// Quat returns the view rotation as a quaternion.
func (v View) Quat() math.Quat {
	e := v.Euler()
	return math.QuatFromEuler(e[0], e[1], e[2])
}

// Rotator turns the model between view presets. Transitions are eased
// with a tween over Duration seconds; a zero Duration snaps.
type Rotator struct {
	Duration float32

	view     View
	from, to math.Quat
	current  math.Quat
	tween    *gween.Tween
}

// NewRotator creates a rotator showing the front view.
func NewRotator(duration float32) *Rotator {
	q := math.QuatIdentity()
	return &Rotator{Duration: duration, from: q, to: q, current: q}
}

// View returns the target view.
func (r *Rotator) View() View { return r.view }

// Animating reports whether a transition is in progress.
func (r *Rotator) Animating() bool { return r.tween != nil }

// SetView starts a transition to v from the current orientation.
func (r *Rotator) SetView(v View) {
	r.view = v
	r.from = r.current
	r.to = v.Quat()
	if r.Duration <= 0 {
		r.current = r.to
		r.tween = nil
		return
	}
	r.tween = gween.New(0, 1, r.Duration, ease.OutCubic)
}

// Update advances the transition by dt seconds. Returns true when the
// orientation changed.
func (r *Rotator) Update(dt float32) bool {
	if r.tween == nil {
		return false
	}
	t, done := r.tween.Update(dt)
	if done {
		r.current = r.to
		r.tween = nil
		return true
	}
	r.current = r.from.Slerp(r.to, t)
	return true
}

// Rotation returns the current orientation.
func (r *Rotator) Rotation() math.Quat { return r.current }

// Matrix returns the model matrix rotating the model about center.
func (r *Rotator) Matrix(center [3]float32) math.Mat4 {
	return math.RotateAround(math.V3(center), r.current.ToMat4())
}
