package uvmap

import (
	"github.com/Faultbox/mibu/pkg/geometry"
	"github.com/Faultbox/mibu/pkg/math"
)

// GridPoints returns line segments (consecutive point pairs) for the
// wireframe of a cube centred on its own origin. edges holds the twelve box
// edges; inner holds one square per integer step along each axis, which is
// drawn as a sculpting grid.
func GridPoints(c geometry.Cube) (edges, inner []math.Vec3) {
	dims := Dimensions(c)
	cw, ch, cd := dims.X, dims.Y, dims.Z
	half := dims.Scale(0.5)

	line := func(dst []math.Vec3, a, b math.Vec3) []math.Vec3 {
		return append(dst, a.Sub(half), b.Sub(half))
	}
	corner := func(p math.Vec3) {
		edges = line(edges, p, math.Vec3{X: math.Abs(p.X - cw), Y: p.Y, Z: p.Z})
		edges = line(edges, p, math.Vec3{X: p.X, Y: math.Abs(p.Y - ch), Z: p.Z})
		edges = line(edges, p, math.Vec3{X: p.X, Y: p.Y, Z: math.Abs(p.Z - cd)})
	}
	square := func(p0, p1, p2, p3 math.Vec3) {
		inner = line(inner, p0, p1)
		inner = line(inner, p0, p2)
		inner = line(inner, p3, p1)
		inner = line(inner, p3, p2)
	}

	corner(math.Vec3{})
	corner(math.Vec3{X: cw, Z: cd})
	corner(math.Vec3{X: cw, Y: ch})
	corner(math.Vec3{Y: ch, Z: cd})

	xs, ys, zs := int(c.Size[0]), int(c.Size[1]), int(c.Size[2])
	for i := 1; i < xs; i++ {
		x := float32(i) * cw / float32(xs)
		square(math.Vec3{X: x}, math.Vec3{X: x, Y: ch}, math.Vec3{X: x, Z: cd}, math.Vec3{X: x, Y: ch, Z: cd})
	}
	for i := 1; i < ys; i++ {
		y := float32(i) * ch / float32(ys)
		square(math.Vec3{Y: y}, math.Vec3{X: cw, Y: y}, math.Vec3{Y: y, Z: cd}, math.Vec3{X: cw, Y: y, Z: cd})
	}
	for i := 1; i < zs; i++ {
		z := float32(i) * cd / float32(zs)
		square(math.Vec3{Z: z}, math.Vec3{X: cw, Z: z}, math.Vec3{Y: ch, Z: z}, math.Vec3{X: cw, Y: ch, Z: z})
	}
	return edges, inner
}

// normalize maps atlas pixel coordinates into the preview plane, where the
// atlas spans [-0.5, 0.5] on both axes and y still grows downwards.
func normalize(pts []math.Vec2, textureWidth, textureHeight int) []math.Vec2 {
	tw, th := float32(textureWidth), float32(textureHeight)
	centre := math.Vec2{X: 0.5, Y: 0.5}
	for i, p := range pts {
		pts[i] = math.Vec2{X: p.X / tw, Y: p.Y / th}.Sub(centre)
	}
	return pts
}

// OutlinePoints returns the closed boundary of a cube's footprint as line
// segments in preview-plane coordinates. Each corner is paired with the
// next, so the result has two entries per corner.
func OutlinePoints(c geometry.Cube, textureWidth, textureHeight int) []math.Vec2 {
	w, h, d := c.Width(), c.Height(), c.Depth()
	x, y := c.UV[0], c.UV[1]

	corners := make([]math.Vec2, 0, 8)
	if w != 0 && d != 0 {
		corners = append(corners,
			math.Vec2{X: x + d, Y: y + d},
			math.Vec2{X: x + d, Y: y},
			math.Vec2{X: x + 2*w + d, Y: y},
			math.Vec2{X: x + 2*w + d, Y: y + d},
		)
	}
	if h != 0 {
		corners = append(corners,
			math.Vec2{X: x + 2*w + 2*d, Y: y + d},
			math.Vec2{X: x + 2*w + 2*d, Y: y + d + h},
			math.Vec2{X: x, Y: y + d + h},
			math.Vec2{X: x, Y: y + d},
		)
	}

	segs := make([]math.Vec2, 0, 2*len(corners))
	for i, p := range corners {
		segs = append(segs, p, corners[(i+1)%len(corners)])
	}
	return normalize(segs, textureWidth, textureHeight)
}

// BetweenPoints returns the dividers between a footprint's sub-faces as
// line segments in preview-plane coordinates.
func BetweenPoints(c geometry.Cube, textureWidth, textureHeight int) []math.Vec2 {
	w, h, d := c.Width(), c.Height(), c.Depth()
	x, y := c.UV[0], c.UV[1]

	var pts []math.Vec2
	seg := func(x1, y1, x2, y2 float32) {
		pts = append(pts, math.Vec2{X: x1, Y: y1}, math.Vec2{X: x2, Y: y2})
	}

	if w != 0 && d != 0 {
		seg(x+d+w, y, x+d+w, y+d)
	}
	if h != 0 {
		if d != 0 {
			seg(x+d, y+d, x+d, y+d+h)
		}
		if w != 0 {
			seg(x+d+w, y+d, x+d+w, y+d+h)
		}
		if d != 0 && w != 0 {
			seg(x+2*d+w, y+d, x+2*d+w, y+d+h)
		}
	}
	if w != 0 && d != 0 && h != 0 {
		seg(x+d, y+d, x+d+2*w, y+d)
	}
	return normalize(pts, textureWidth, textureHeight)
}

// Plane is a preview-plane rectangle given by its centre and size.
type Plane struct {
	CX, CY, W, H float32
}

// OutlinePlanes returns the non-empty footprint bands of a cube as
// preview-plane rectangles, for translucent hover fills.
func OutlinePlanes(c geometry.Cube, textureWidth, textureHeight int) []Plane {
	tw, th := float32(textureWidth), float32(textureHeight)
	var planes []Plane
	for _, r := range Footprint(c) {
		if r.Empty() {
			continue
		}
		planes = append(planes, Plane{
			CX: (r.X+r.W/2)/tw - 0.5,
			CY: (r.Y+r.H/2)/th - 0.5,
			W:  r.W / tw,
			H:  r.H / th,
		})
	}
	return planes
}

// PreviewGridPoints returns the pixel grid of the preview plane as line
// segments: one vertical line per column boundary, then one horizontal
// line per row boundary.
func PreviewGridPoints(textureWidth, textureHeight int) []math.Vec2 {
	pts := make([]math.Vec2, 0, 2*(textureWidth+textureHeight+2))
	for i := 0; i <= textureWidth; i++ {
		x := float32(i)/float32(textureWidth) - 0.5
		pts = append(pts, math.Vec2{X: x, Y: -0.5}, math.Vec2{X: x, Y: 0.5})
	}
	for i := 0; i <= textureHeight; i++ {
		y := float32(i)/float32(textureHeight) - 0.5
		pts = append(pts, math.Vec2{X: -0.5, Y: y}, math.Vec2{X: 0.5, Y: y})
	}
	return pts
}
