package model

import (
	"github.com/Faultbox/mibu/internal/bones"
	"github.com/Faultbox/mibu/pkg/geometry"
	"github.com/Faultbox/mibu/pkg/math"
)

// toScene converts a model-file point to scene space. Model files use a
// left-handed Z, so Z is negated.
func toScene(p geometry.Vec3) math.Vec3 {
	return math.Vec3{X: p[0], Y: p[1], Z: -p[2]}
}

// rotationMatrix turns a model-file rotation (degrees) into a scene-space
// rotation applied Z, then Y, then X. Y and Z flip sign with the Z axis.
func rotationMatrix(r geometry.Vec3) math.Mat4 {
	return math.RotateEuler(
		math.Deg2Rad(r[0]),
		-math.Deg2Rad(r[1]),
		-math.Deg2Rad(r[2]),
	)
}

// BoneLocalMatrix returns the transform a bone applies to its children and
// cubes: a rotation about its pivot. Bones without rotation are identity.
func BoneLocalMatrix(b *geometry.Bone) math.Mat4 {
	if b.Rotation == nil {
		return math.Identity()
	}
	return math.RotateAround(toScene(b.Pivot), rotationMatrix(*b.Rotation))
}

// BuildBoneMatrix returns a bone's model-space transform, parents first.
func BuildBoneMatrix(n *bones.Node) math.Mat4 {
	local := BoneLocalMatrix(n.Bone)
	if n.Parent == nil {
		return local
	}
	return BuildBoneMatrix(n.Parent).Mul(local)
}

// BuildCubeMatrix returns the transform that places a unit-centred box for
// cube c of bone node n: the bone transform, the cube's own rotation, then
// a translation to the cube centre.
func BuildCubeMatrix(n *bones.Node, c geometry.Cube) math.Mat4 {
	m := BuildBoneMatrix(n)
	if c.Rotation != nil {
		pivot := c.Origin
		if c.Pivot != nil {
			pivot = *c.Pivot
		}
		m = m.Mul(math.RotateAround(toScene(pivot), rotationMatrix(*c.Rotation)))
	}
	center := math.Vec3{
		X: c.Origin[0] + c.Size[0]/2,
		Y: c.Origin[1] + c.Size[1]/2,
		Z: -(c.Origin[2] + c.Size[2]/2),
	}
	return m.Mul(math.Translate(center.X, center.Y, center.Z))
}
