package picking

import (
	"testing"

	"github.com/Faultbox/mibu/pkg/math"
)

func TestIntersectPlaneZ(t *testing.T) {
	tests := []struct {
		name   string
		ray    Ray
		wantOK bool
		wantX  float32
		wantY  float32
	}{
		{"straight down the axis", Ray{Origin: [3]float32{0.25, -0.1, 5}, Direction: [3]float32{0, 0, -1}}, true, 0.25, -0.1},
		{"parallel", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{1, 0, 0}}, false, 0, 0},
		{"pointing away", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{0, 0, 1}}, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := tt.ray.IntersectPlaneZ(0)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (x != tt.wantX || y != tt.wantY) {
				t.Errorf("got (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := [3]float32{0, 0, 0}
	b := [3]float32{1, 0, 0}
	c := [3]float32{0, 1, 0}

	front := Ray{Origin: [3]float32{0.25, 0.25, 2}, Direction: [3]float32{0, 0, -1}}
	dist, u, v, hit := front.IntersectTriangle(a, b, c)
	if !hit {
		t.Fatal("expected hit from the front")
	}
	if dist != 2 || u != 0.25 || v != 0.25 {
		t.Errorf("got t=%v u=%v v=%v", dist, u, v)
	}

	back := Ray{Origin: [3]float32{0.25, 0.25, -2}, Direction: [3]float32{0, 0, 1}}
	if _, _, _, hit := back.IntersectTriangle(a, b, c); !hit {
		t.Error("expected hit from the back")
	}

	miss := Ray{Origin: [3]float32{0.75, 0.75, 2}, Direction: [3]float32{0, 0, -1}}
	if _, _, _, hit := miss.IntersectTriangle(a, b, c); hit {
		t.Error("expected miss outside the hypotenuse")
	}

	behind := Ray{Origin: [3]float32{0.25, 0.25, 2}, Direction: [3]float32{0, 0, 1}}
	if _, _, _, hit := behind.IntersectTriangle(a, b, c); hit {
		t.Error("expected miss behind the origin")
	}
}

func TestRayTransform(t *testing.T) {
	r := Ray{Origin: [3]float32{0, 0, 0}, Direction: [3]float32{0, 0, -1}}
	moved := r.Transform(math.Translate(1, 2, 3))

	if moved.Origin != [3]float32{1, 2, 3} {
		t.Errorf("origin = %v", moved.Origin)
	}
	if moved.Direction != [3]float32{0, 0, -1} {
		t.Errorf("direction = %v", moved.Direction)
	}
	if got := moved.At(2); got != [3]float32{1, 2, 1} {
		t.Errorf("At(2) = %v", got)
	}
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(1, 1, 1, -1, -1, -1)

	tests := []struct {
		name    string
		ray     Ray
		wantHit bool
		wantT   float32
	}{
		{"outside", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{0, 0, -1}}, true, 4},
		{"inside", Ray{Origin: [3]float32{0, 0, 0}, Direction: [3]float32{0, 0, -1}}, true, 1},
		{"miss", Ray{Origin: [3]float32{3, 0, 5}, Direction: [3]float32{0, 0, -1}}, false, 0},
		{"behind", Ray{Origin: [3]float32{0, 0, 5}, Direction: [3]float32{0, 0, 1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && got != tt.wantT {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestScreenToRay_Ortho(t *testing.T) {
	proj := math.Ortho(-1, 1, -1, 1, 0.1, 100)
	view := math.LookAt(math.Vec3{Z: 10}, math.Vec3{}, math.Vec3{Y: 1})
	inv := proj.Mul(view).Inverse()

	r := ScreenToRay(200, 100, 400, 400, inv)
	x, y, ok := r.IntersectPlaneZ(0)
	if !ok {
		t.Fatal("expected plane hit")
	}
	if !approx(x, 0) || !approx(y, 0.5) {
		t.Errorf("got (%v, %v), want (0, 0.5)", x, y)
	}
}

func approx(a, b float32) bool {
	return math.Abs(a-b) < 1e-4
}
