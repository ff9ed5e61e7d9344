package picking

import (
	gomath "math"
	"slices"

	"github.com/Faultbox/mibu/internal/engine/model"
	"github.com/Faultbox/mibu/pkg/math"
)

// tieEpsilon is the distance under which two hits count as the same depth.
const tieEpsilon = 1e-4

// Hit is one ray/triangle intersection against a cube box.
type Hit struct {
	Cube        *model.CubeMesh
	Distance    float32
	Point       [3]float32
	UV          [2]float32
	Normal      [3]float32
	FrontFacing bool
}

// Picker casts rays against cube meshes. It keeps its hit list between
// calls to avoid reallocating, so a Picker must not be shared between
// goroutines.
type Picker struct {
	hits []Hit
}

// NewPicker creates a picker.
func NewPicker() *Picker {
	return &Picker{hits: make([]Hit, 0, 16)}
}

// Hits returns the intersections of the last Pick, nearest first. The
// slice is reused by the next call.
func (p *Picker) Hits() []Hit { return p.hits }

// Pick intersects ray with every cube of mesh. Among the hits at the
// nearest distance it prefers one whose face points towards the ray
// origin, so a visible surface beats a coincident back face. Otherwise the
// nearest hit wins.
func (p *Picker) Pick(ray Ray, mesh *model.Mesh) (Hit, bool) {
	p.hits = p.hits[:0]
	if mesh == nil {
		return Hit{}, false
	}

	dir := math.V3(ray.Direction)
	for i := range mesh.Cubes {
		c := &mesh.Cubes[i]
		box := NewAABB(c.Bounds.Min[0], c.Bounds.Min[1], c.Bounds.Min[2],
			c.Bounds.Max[0], c.Bounds.Max[1], c.Bounds.Max[2])
		if _, ok := ray.IntersectAABB(box); !ok {
			continue
		}

		for tri := 0; tri < len(model.BoxIndices); tri += 3 {
			v0 := c.Vertices[model.BoxIndices[tri]]
			v1 := c.Vertices[model.BoxIndices[tri+1]]
			v2 := c.Vertices[model.BoxIndices[tri+2]]

			t, u, v, ok := ray.IntersectTriangle(v0.Position, v1.Position, v2.Position)
			if !ok {
				continue
			}
			w := 1 - u - v
			p.hits = append(p.hits, Hit{
				Cube:     c,
				Distance: t,
				Point:    ray.At(t),
				UV: [2]float32{
					w*v0.TexCoord[0] + u*v1.TexCoord[0] + v*v2.TexCoord[0],
					w*v0.TexCoord[1] + u*v1.TexCoord[1] + v*v2.TexCoord[1],
				},
				Normal:      v0.Normal,
				FrontFacing: math.V3(v0.Normal).Dot(dir) < 0,
			})
		}
	}
	if len(p.hits) == 0 {
		return Hit{}, false
	}

	slices.SortStableFunc(p.hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	nearest := p.hits[0].Distance
	for _, h := range p.hits {
		if h.Distance-nearest > tieEpsilon {
			break
		}
		if h.FrontFacing {
			return h, true
		}
	}
	return p.hits[0], true
}

// AtlasPixel converts a texture coordinate with a bottom-left origin into
// an atlas pixel with a top-left origin.
func AtlasPixel(uv [2]float32, width, height int) (x, y int) {
	x = int(gomath.Floor(float64(uv[0] * float32(width))))
	y = height - int(gomath.Ceil(float64(uv[1]*float32(height))))
	return x, y
}

// InAtlas reports whether (x, y) is a pixel of a width x height atlas.
func InAtlas(x, y, width, height int) bool {
	return x >= 0 && y >= 0 && x < width && y < height
}

// PickPixel picks the atlas pixel under ray. ok is false when nothing is
// hit or the texture coordinate falls outside the atlas.
func (p *Picker) PickPixel(ray Ray, mesh *model.Mesh, width, height int) (x, y int, hit Hit, ok bool) {
	hit, ok = p.Pick(ray, mesh)
	if !ok {
		return 0, 0, Hit{}, false
	}
	x, y = AtlasPixel(hit.UV, width, height)
	if !InAtlas(x, y, width, height) {
		return 0, 0, hit, false
	}
	return x, y, hit, true
}

// PickPreview picks the atlas pixel under ray on the flat preview, a
// unit quad centred at the origin in the Z = 0 plane.
func PickPreview(ray Ray, width, height int) (x, y int, ok bool) {
	px, py, hit := ray.IntersectPlaneZ(0)
	if !hit || px < -0.5 || px > 0.5 || py < -0.5 || py > 0.5 {
		return 0, 0, false
	}
	x, y = AtlasPixel([2]float32{px + 0.5, py + 0.5}, width, height)
	if !InAtlas(x, y, width, height) {
		return 0, 0, false
	}
	return x, y, true
}
