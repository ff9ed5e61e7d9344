package model

import (
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/internal/uvmap"
	"github.com/Faultbox/mibu/pkg/geometry"
	"github.com/Faultbox/mibu/pkg/math"
)

// boxFace describes one side of a centred unit box: the first corner, the
// step to the second corner and the step to the third. Corners follow the
// uvmap face order (top-left, top-right, bottom-left, bottom-right).
type boxFace struct {
	origin, right, down, normal [3]float32
}

// boxFaces lists the sides as +X, -X, +Y, -Y, +Z, -Z, the order
// uvmap.BoxOrder fills them in.
var boxFaces = [6]boxFace{
	{origin: [3]float32{1, 1, 1}, right: [3]float32{0, 0, -2}, down: [3]float32{0, -2, 0}, normal: [3]float32{1, 0, 0}},
	{origin: [3]float32{-1, 1, -1}, right: [3]float32{0, 0, 2}, down: [3]float32{0, -2, 0}, normal: [3]float32{-1, 0, 0}},
	{origin: [3]float32{-1, 1, -1}, right: [3]float32{2, 0, 0}, down: [3]float32{0, 0, 2}, normal: [3]float32{0, 1, 0}},
	{origin: [3]float32{-1, -1, 1}, right: [3]float32{2, 0, 0}, down: [3]float32{0, 0, -2}, normal: [3]float32{0, -1, 0}},
	{origin: [3]float32{-1, 1, 1}, right: [3]float32{2, 0, 0}, down: [3]float32{0, -2, 0}, normal: [3]float32{0, 0, 1}},
	{origin: [3]float32{1, 1, -1}, right: [3]float32{-2, 0, 0}, down: [3]float32{0, -2, 0}, normal: [3]float32{0, 0, -1}},
}

// BoxIndices are the triangles of a box with 24 vertices, two per face,
// wound counter-clockwise when seen from outside.
var BoxIndices = func() [36]uint32 {
	var idx [36]uint32
	for f := uint32(0); f < 6; f++ {
		b := f * 4
		copy(idx[f*6:], []uint32{b, b + 2, b + 1, b + 2, b + 3, b + 1})
	}
	return idx
}()

// BoxVertices returns the local vertices of a centred box of the given
// dimensions with the cube's atlas UVs applied.
func BoxVertices(dims math.Vec3, uvs [24]math.Vec2) [24]Vertex {
	half := [3]float32{dims.X / 2, dims.Y / 2, dims.Z / 2}
	var verts [24]Vertex
	for f, face := range boxFaces {
		for k := 0; k < 4; k++ {
			rx := float32(k & 1)
			dy := float32(k >> 1)
			var p [3]float32
			for a := 0; a < 3; a++ {
				p[a] = (face.origin[a] + rx*face.right[a] + dy*face.down[a]) * half[a]
			}
			i := f*4 + k
			verts[i] = Vertex{
				Position: p,
				Normal:   face.normal,
				TexCoord: [2]float32{uvs[i].X, uvs[i].Y},
			}
		}
	}
	return verts
}

// BuildCube returns the model-space box of cube index i of node n.
func BuildCube(n *bones.Node, i int, textureWidth, textureHeight int) CubeMesh {
	c := n.Bone.Cubes[i]
	mirror := n.EffectiveMirror(c)
	m := BuildCubeMatrix(n, c)

	local := BoxVertices(uvmap.Dimensions(c), uvmap.BoxUVs(c, mirror, textureWidth, textureHeight))
	cm := CubeMesh{
		Name:      n.CubeName(i),
		Bone:      n.Name(),
		CubeIndex: i,
		Mirror:    mirror,
		Matrix:    m,
		Bounds:    EmptyBounds(),
	}
	for j, v := range local {
		pos := m.TransformPoint(v.Position)
		cm.Vertices[j] = Vertex{
			Position: pos,
			Normal:   m.TransformNormal(math.V3(v.Normal)).Normalize().Array(),
			TexCoord: v.TexCoord,
		}
		updateBounds(&cm.Bounds, pos)
	}
	return cm
}

// BuildMesh creates the boxes of every cube in the forest, walking bones in
// pre-order. Returns nil when the geometry has no cubes.
func BuildMesh(g *geometry.Geometry, forest *bones.Forest, opts BuildOptions) *Mesh {
	if g == nil || forest == nil {
		return nil
	}
	tw, th := g.Description.TextureWidth, g.Description.TextureHeight

	mesh := &Mesh{Bounds: EmptyBounds()}
	forest.Walk(func(n *bones.Node) bool {
		for i, c := range n.Bone.Cubes {
			if opts.SkipLayers && c.Inflate != 0 {
				continue
			}
			cm := BuildCube(n, i, tw, th)
			mesh.Bounds = mesh.Bounds.Union(cm.Bounds)
			mesh.Cubes = append(mesh.Cubes, cm)
		}
		return true
	})

	if len(mesh.Cubes) == 0 {
		return nil
	}
	return mesh
}

// Flatten returns the vertex and index buffers of all cubes.
func (m *Mesh) Flatten() ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, len(m.Cubes)*24)
	indices := make([]uint32, 0, len(m.Cubes)*36)
	for i := range m.Cubes {
		base := uint32(len(vertices))
		vertices = append(vertices, m.Cubes[i].Vertices[:]...)
		for _, idx := range BoxIndices {
			indices = append(indices, base+idx)
		}
	}
	return vertices, indices
}

// Find returns the cube mesh for a bone's cube index.
func (m *Mesh) Find(bone string, cubeIndex int) *CubeMesh {
	for i := range m.Cubes {
		if m.Cubes[i].Bone == bone && m.Cubes[i].CubeIndex == cubeIndex {
			return &m.Cubes[i]
		}
	}
	return nil
}
