package layout

import (
	"github.com/Faultbox/mibu/internal/uvmap"
	"github.com/Faultbox/mibu/pkg/math"
)

// PreviewVertices converts preview-plane points, whose y grows downwards,
// into xyz triples in preview world space at depth z.
func PreviewVertices(dst []float32, pts []math.Vec2, z float32) []float32 {
	for _, p := range pts {
		dst = append(dst, p.X, -p.Y, z)
	}
	return dst
}

// PlaneVertices converts preview rectangles into two triangles each.
func PlaneVertices(dst []float32, planes []uvmap.Plane, z float32) []float32 {
	for _, p := range planes {
		x0, x1 := p.CX-p.W/2, p.CX+p.W/2
		y0, y1 := -(p.CY - p.H/2), -(p.CY + p.H/2)
		dst = append(dst,
			x0, y0, z, x0, y1, z, x1, y0, z,
			x1, y0, z, x0, y1, z, x1, y1, z,
		)
	}
	return dst
}

// MeshVertices converts 3D points into xyz triples.
func MeshVertices(dst []float32, pts []math.Vec3) []float32 {
	for _, p := range pts {
		dst = append(dst, p.X, p.Y, p.Z)
	}
	return dst
}
