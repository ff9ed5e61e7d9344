// Package uvmap implements the fixed six-face box unwrap used by skin models.
//
// Two coordinate conventions appear here. Face corners (UVFace, Faces,
// BoxUVs) are in the bottom-left anchored unwrap space, where
// v = textureHeight - uv.y - height - depth. Footprints, hit tests and the
// flattened preview outlines work in atlas pixel space with a top-left
// origin, matching the cube's uv field directly.
package uvmap

import (
	"github.com/Faultbox/mibu/pkg/geometry"
	"github.com/Faultbox/mibu/pkg/math"
)

// Face holds the four corners of a face region in the order
// top-left, top-right, bottom-left, bottom-right.
type Face [4]math.Vec2

// Corner indices into a Face.
const (
	TopLeft = iota
	TopRight
	BottomLeft
	BottomRight
)

// UVFace returns the corners of the region anchored at (originX, originY)
// with extents (deltaX, deltaY). flipX swaps the left and right corners,
// flipY swaps the top and bottom corners.
func UVFace(originX, originY, deltaX, deltaY float32, flipX, flipY bool) Face {
	o := math.Vec2{X: originX, Y: originY}
	f := Face{
		o.Add(math.Vec2{Y: deltaY}),
		o.Add(math.Vec2{X: deltaX, Y: deltaY}),
		o,
		o.Add(math.Vec2{X: deltaX}),
	}
	if flipX {
		f = Face{f[TopRight], f[TopLeft], f[BottomRight], f[BottomLeft]}
	}
	if flipY {
		f = Face{f[BottomLeft], f[BottomRight], f[TopLeft], f[TopRight]}
	}
	return f
}

// FaceSet is the unwrap of one cube, keyed by face.
type FaceSet struct {
	Right, Front, Left, Back, Top, Bottom Face
}

// Faces unwraps a cube for an atlas of the given height.
func Faces(c geometry.Cube, mirror bool, textureHeight int) FaceSet {
	w, h, d := c.Width(), c.Height(), c.Depth()
	u := c.UV[0]
	v := float32(textureHeight) - c.UV[1] - h - d

	return FaceSet{
		Right:  UVFace(u, v, d, h, mirror, false),
		Front:  UVFace(u+d, v, w, h, mirror, false),
		Left:   UVFace(u+d+w, v, d, h, mirror, false),
		Back:   UVFace(u+2*d+w, v, w, h, mirror, false),
		Top:    UVFace(u+d, v+h, w, d, mirror, false),
		Bottom: UVFace(u+d+w, v+h, w, d, mirror, true),
	}
}

// BoxOrder arranges faces in the order a box mesh consumes them:
// left, right (swapped when mirrored), top, bottom, front, back.
func BoxOrder(fs FaceSet, mirror bool) [6]Face {
	first, second := fs.Left, fs.Right
	if mirror {
		first, second = second, first
	}
	return [6]Face{first, second, fs.Top, fs.Bottom, fs.Front, fs.Back}
}

// BoxUVs returns normalised texture coordinates for the 24 box vertices,
// four per face in BoxOrder.
func BoxUVs(c geometry.Cube, mirror bool, textureWidth, textureHeight int) [24]math.Vec2 {
	var uvs [24]math.Vec2
	tw, th := float32(textureWidth), float32(textureHeight)
	i := 0
	for _, face := range BoxOrder(Faces(c, mirror, textureHeight), mirror) {
		for _, p := range face {
			uvs[i] = math.Vec2{X: p.X / tw, Y: p.Y / th}
			i++
		}
	}
	return uvs
}

// Dimensions returns the rendered extents of a cube: size grown by the
// inflate amount on every side. The unwrap footprint ignores inflate.
func Dimensions(c geometry.Cube) math.Vec3 {
	grow := 2 * c.Inflate
	return math.Vec3{X: c.Size[0] + grow, Y: c.Size[1] + grow, Z: c.Size[2] + grow}
}
