package math

import (
	"math"
	"testing"
)

func TestQuatSlerpEndpoints(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromEuler(0, float32(math.Pi/2), 0)

	if r := q1.Slerp(q2, 0); math.Abs(float64(r.W-q1.W)) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1, got %+v", r)
	}
	if r := q1.Slerp(q2, 1); math.Abs(float64(r.W-q2.W)) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2, got %+v", r)
	}

	half := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(half.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, half.W)
	}
}

func TestQuatFromEulerRotatesPoint(t *testing.T) {
	// Half turn about Y maps +Z to -Z.
	m := QuatFromEuler(0, float32(math.Pi), 0).ToMat4()
	got := V3(m.TransformPoint([3]float32{0, 0, 1}))
	if !got.ApproxEqual(Vec3{0, 0, -1}, 0.0001) {
		t.Errorf("got %v, want (0, 0, -1)", got)
	}
}
