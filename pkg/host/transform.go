package host

import "github.com/go-gl/mathgl/mgl64"

// Transform is a 4x4 homogeneous placement matrix addressed by row and
// column. The host keeps translation in the last column: At(0,3), At(1,3)
// and At(2,3) are the x, y and z offsets.
type Transform struct {
	m mgl64.Mat4
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mgl64.Ident4()}
}

// Translation returns a pure translation.
func Translation(x, y, z float64) Transform {
	return Transform{m: mgl64.Translate3D(x, y, z)}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Transform {
	return Transform{m: mgl64.Scale3D(s, s, s)}
}

// RotationZ returns a rotation of angle radians about the z axis.
func RotationZ(angle float64) Transform {
	return Transform{m: mgl64.HomogRotate3DZ(angle)}
}

// FromMat4 wraps an existing matrix.
func FromMat4(m mgl64.Mat4) Transform {
	return Transform{m: m}
}

// At returns the entry at row, col.
func (t Transform) At(row, col int) float64 {
	return t.m.At(row, col)
}

// Set stores v at row, col.
func (t *Transform) Set(row, col int, v float64) {
	t.m.Set(row, col, v)
}

// Mul returns t * o; o is applied first.
func (t Transform) Mul(o Transform) Transform {
	return Transform{m: t.m.Mul4(o.m)}
}

// Apply transforms a point.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, t.m)
}

// Origin returns where the transform places the world origin.
func (t Transform) Origin() mgl64.Vec3 {
	return mgl64.Vec3{t.At(0, 3), t.At(1, 3), t.At(2, 3)}
}

// Mat4 returns the underlying matrix.
func (t Transform) Mat4() mgl64.Mat4 {
	return t.m
}

// IsIdentity reports whether t is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t.m == mgl64.Ident4()
}
