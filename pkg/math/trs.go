package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TRS is an affine transform stored as translation, rotation and scale.
// Its matrix applies scale first, then rotation, then translation.
type TRS struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// IdentityTRS returns the transform that changes nothing.
func IdentityTRS() TRS {
	return TRS{Rotation: QuatIdentity(), Scale: Splat(1)}
}

// TRSFromTranslation returns a pure translation.
func TRSFromTranslation(v Vec3) TRS {
	t := IdentityTRS()
	t.Translation = v
	return t
}

// TRSFromRotation returns a pure rotation about the origin.
func TRSFromRotation(q Quat) TRS {
	t := IdentityTRS()
	t.Rotation = q
	return t
}

// TRSFromScale returns a pure scale about the origin.
func TRSFromScale(s Vec3) TRS {
	t := IdentityTRS()
	t.Scale = s
	return t
}

// FromRotationPivot returns a rotation around pivot.
func FromRotationPivot(pivot Vec3, q Quat) TRS {
	return TRS{
		Translation: pivot.Sub(q.Rotate(pivot)),
		Rotation:    q,
		Scale:       Splat(1),
	}
}

// FromScalePivot returns a scale around pivot.
func FromScalePivot(pivot, s Vec3) TRS {
	return TRS{
		Translation: pivot.Sub(pivot.Mul(s)),
		Rotation:    QuatIdentity(),
		Scale:       s,
	}
}

// Matrix returns T * R * S.
func (t TRS) Matrix() Mat4 {
	return Translate(t.Translation).Mul(t.Rotation.ToMat4()).Mul(Scale(t.Scale))
}

// Plus composes sequentially: the result applies t, then o.
func (t TRS) Plus(o TRS) TRS {
	return FromMatrix(o.Matrix().Mul(t.Matrix()))
}

// Times is the matrix-order product: the result's matrix is t.Matrix() * o.Matrix().
func (t TRS) Times(o TRS) TRS {
	return FromMatrix(t.Matrix().Mul(o.Matrix()))
}

// Invert returns the transform whose matrix is the inverse of t's.
func (t TRS) Invert() TRS {
	return FromMatrix(t.Matrix().Inverse())
}

// WithTranslation returns a copy with the translation replaced.
func (t TRS) WithTranslation(v Vec3) TRS {
	t.Translation = v
	return t
}

// WithRotation returns a copy with the rotation replaced.
func (t TRS) WithRotation(q Quat) TRS {
	t.Rotation = q
	return t
}

// WithScale returns a copy with the scale replaced.
func (t TRS) WithScale(s Vec3) TRS {
	t.Scale = s
	return t
}

// ApproxEqual compares the matrices of t and o.
func (t TRS) ApproxEqual(o TRS, eps float64) bool {
	return t.Matrix().ApproxEqual(o.Matrix(), eps)
}

const degenerateLength = 1e-12

// FromMatrix decomposes an affine matrix into a TRS. Scale components are
// non-negative except that X turns negative when the matrix mirrors. Shear
// cannot be represented and is lost.
func FromMatrix(m Mat4) TRS {
	c0, c1, c2 := m.Col(0), m.Col(1), m.Col(2)
	s := Vec3{c0.Length(), c1.Length(), c2.Length()}

	if c0.Cross(c1).Dot(c2) < 0 {
		s.X = -s.X
		c0 = c0.Negate()
	}

	x, y, z := rotationBasis(c0, c1, c2)
	r := mgl64.Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	}
	q := mgl64.Mat4ToQuat(r).Normalize()

	return TRS{
		Translation: Vec3{m[12], m[13], m[14]},
		Rotation:    Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W},
		Scale:       s,
	}
}

// rotationBasis builds a right-handed orthonormal basis from the column
// directions, rebuilding any column that collapsed to zero.
func rotationBasis(c0, c1, c2 Vec3) (Vec3, Vec3, Vec3) {
	x, y, z := unit(c0), unit(c1), unit(c2)
	zero := Vec3{}

	switch {
	case x != zero && y != zero:
		y = orthogonalize(y, x)
		z = x.Cross(y)
	case x != zero && z != zero:
		z = orthogonalize(z, x)
		y = z.Cross(x)
	case y != zero && z != zero:
		z = orthogonalize(z, y)
		x = y.Cross(z)
	case x != zero:
		y = perpendicular(x)
		z = x.Cross(y)
	case y != zero:
		z = perpendicular(y)
		x = y.Cross(z)
	case z != zero:
		x = perpendicular(z)
		y = z.Cross(x)
	default:
		return AxisX, AxisY, AxisZ
	}
	return x, y, z
}

func unit(v Vec3) Vec3 {
	l := v.Length()
	if l < degenerateLength {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// orthogonalize removes the component of v along the unit vector along.
func orthogonalize(v, along Vec3) Vec3 {
	o := unit(v.Sub(along.Scale(along.Dot(v))))
	if o == (Vec3{}) {
		return perpendicular(along)
	}
	return o
}

func perpendicular(v Vec3) Vec3 {
	if math.Abs(v.X) < 0.9 {
		return unit(AxisX.Cross(v))
	}
	return unit(AxisY.Cross(v))
}
