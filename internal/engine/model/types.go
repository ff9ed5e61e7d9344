// Package model builds renderable box meshes from a geometry's bone forest.
package model

import "github.com/Faultbox/mibu/pkg/math"

// Vertex represents a mesh vertex with position, normal, and texture coordinates.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns inverted bounds that any point will expand.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0]
}

// Center returns the middle of the box.
func (b Bounds) Center() math.Vec3 {
	return math.V3(b.Min).Add(math.V3(b.Max)).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return math.V3(b.Max).Sub(math.V3(b.Min))
}

// ApproxEqual reports whether both corners match o within eps.
func (b Bounds) ApproxEqual(o Bounds, eps float32) bool {
	return math.V3(b.Min).ApproxEqual(math.V3(o.Min), eps) &&
		math.V3(b.Max).ApproxEqual(math.V3(o.Max), eps)
}

// Union returns bounds covering both boxes.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	updateBounds(&b, o.Min)
	updateBounds(&b, o.Max)
	return b
}

// CubeMesh is the box of one cube, in model space.
type CubeMesh struct {
	// Name is the bone name, suffixed with " Layer" for inflated cubes.
	Name      string
	Bone      string
	CubeIndex int
	Mirror    bool
	Matrix    math.Mat4
	Vertices  [24]Vertex
	Bounds    Bounds
}

// Mesh holds every cube box of a model, ready for GPU upload or picking.
type Mesh struct {
	Cubes  []CubeMesh
	Bounds Bounds
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// SkipLayers leaves inflated overlay cubes out of the mesh.
	SkipLayers bool
}

func updateBounds(b *Bounds, p [3]float32) {
	b.Min = math.V3(b.Min).Min(math.V3(p)).Array()
	b.Max = math.V3(b.Max).Max(math.V3(p)).Array()
}
