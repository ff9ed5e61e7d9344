package session

import (
	"github.com/Faultbox/mibu/internal/engine/model"
	"github.com/Faultbox/mibu/internal/uvmap"
	"github.com/Faultbox/mibu/pkg/math"
)

// Outline is the preview overlay of every cube: footprint boundaries,
// footprint fills and the pixel grid, in preview-plane coordinates with y
// growing downwards.
type Outline struct {
	Points []math.Vec2
	Planes []uvmap.Plane
	Grid   []math.Vec2
}

// Hover describes a cube whose footprint holds the brush pixel.
type Hover struct {
	Ref uvmap.CubeRef
	// Mesh is the cube's scene box, nil when the scene skips it.
	Mesh    *model.CubeMesh
	Outline []math.Vec2
	Between []math.Vec2
	Planes  []uvmap.Plane
	// Edges and Inner are the cube wireframe, centred on the cube; place
	// them with Mesh.Matrix.
	Edges []math.Vec3
	Inner []math.Vec3
}

// Outline returns the preview overlay, rebuilding it after a model change.
func (s *Session) Outline() Outline {
	if !s.outlineDirty {
		return s.outline
	}
	s.outlineDirty = false
	s.outline = Outline{}

	g := s.model.Geometry()
	if g == nil {
		return s.outline
	}
	tw, th := s.stack.Size()
	for _, ref := range uvmap.Cubes(g) {
		s.outline.Points = append(s.outline.Points, uvmap.OutlinePoints(*ref.Cube, tw, th)...)
		s.outline.Planes = append(s.outline.Planes, uvmap.OutlinePlanes(*ref.Cube, tw, th)...)
	}
	s.outline.Grid = uvmap.PreviewGridPoints(tw, th)
	return s.outline
}

// Hovered returns every cube whose footprint holds the brush pixel, in
// bone order. Overlapping footprints all report.
func (s *Session) Hovered() []Hover {
	g := s.model.Geometry()
	if g == nil {
		return nil
	}
	if _, ok := s.brush.Active(); !ok {
		return nil
	}

	tw, th := s.stack.Size()
	mesh := s.Mesh()
	var out []Hover
	for _, ref := range uvmap.Cubes(g) {
		c := *ref.Cube
		if !s.brush.OverCube(c) {
			continue
		}
		h := Hover{
			Ref:     ref,
			Outline: uvmap.OutlinePoints(c, tw, th),
			Between: uvmap.BetweenPoints(c, tw, th),
			Planes:  uvmap.OutlinePlanes(c, tw, th),
		}
		h.Edges, h.Inner = uvmap.GridPoints(c)
		if mesh != nil {
			h.Mesh = mesh.Find(ref.Bone.Name, ref.Index)
		}
		out = append(out, h)
	}
	return out
}

// HoveredCube returns the first cube under the brush pixel.
func (s *Session) HoveredCube() (uvmap.CubeRef, bool) {
	p, ok := s.brush.Active()
	if !ok {
		return uvmap.CubeRef{}, false
	}
	return uvmap.FirstCubeAt(s.model.Geometry(), p.X, p.Y)
}
