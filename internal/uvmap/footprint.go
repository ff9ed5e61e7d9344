package uvmap

import "github.com/Faultbox/mibu/pkg/geometry"

// Rect is a half-open pixel rectangle [X, X+W) x [Y, Y+H) in atlas space.
type Rect struct {
	X, Y, W, H float32
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Footprint returns the two packed bands a cube's unwrap occupies: the
// top/bottom band and the right/front/left/back band below it.
func Footprint(c geometry.Cube) [2]Rect {
	w, h, d := c.Width(), c.Height(), c.Depth()
	u, v := c.UV[0], c.UV[1]
	return [2]Rect{
		{X: u + d, Y: v, W: 2 * w, H: d},
		{X: u, Y: v + d, W: 2*d + 2*w, H: h},
	}
}

// OverCube reports whether atlas pixel (x, y) lies in the cube's footprint.
func OverCube(c geometry.Cube, x, y int) bool {
	px, py := float32(x), float32(y)
	for _, r := range Footprint(c) {
		if r.Contains(px, py) {
			return true
		}
	}
	return false
}

// CubeRef locates a cube within a geometry.
type CubeRef struct {
	Bone *geometry.Bone
	Cube *geometry.Cube
	// Index is the cube's position within Bone.Cubes.
	Index int
}

// Cubes lists every cube of the geometry in bone order.
func Cubes(g *geometry.Geometry) []CubeRef {
	if g == nil {
		return nil
	}
	refs := make([]CubeRef, 0, g.CubeCount())
	for i := range g.Bones {
		b := &g.Bones[i]
		for j := range b.Cubes {
			refs = append(refs, CubeRef{Bone: b, Cube: &b.Cubes[j], Index: j})
		}
	}
	return refs
}

// FirstCubeAt returns the first cube, in bone order, whose footprint holds
// pixel (x, y). Overlapping footprints are not disambiguated further.
func FirstCubeAt(g *geometry.Geometry, x, y int) (CubeRef, bool) {
	for _, ref := range Cubes(g) {
		if OverCube(*ref.Cube, x, y) {
			return ref, true
		}
	}
	return CubeRef{}, false
}
