package types

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

var (
	ErrDegenerateGeometry = errors.New("types: degenerate camera geometry")
)

// The default camera of the host renderer looks down its local -Z axis with
// +Y up. Rotating it by this quaternion makes it look down world -X with +Z up.
var baseCamQuat = Quat{V: Vec3{0, math.Sqrt2 / 2, math.Sqrt2 / 2}, W: 0}

// A rotation quaternion with scalar part W and vector part V.
type Quat struct {
	V Vec3
	W float64
}

// 3x3 row-major matrix.
type Mat3 f64.Mat3

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from its (w, x, y, z) components.
func QuatWXYZ(w, x, y, z float64) Quat {
	return Quat{V: Vec3{x, y, z}, W: w}
}

// Create a quaternion from a unit axis vector and an angle in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	sin, cos := math.Sincos(angle * 0.5)
	return Quat{
		V: axis.Mul(sin),
		W: cos,
	}
}

// Convert yaw, pitch and roll angles (radians) into a quaternion. Roll rotates
// about X, pitch about Y and yaw about Z; the composition order is fixed.
func QuatFromYawPitchRoll(yaw, pitch, roll float64) Quat {
	s1, c1 := math.Sincos(yaw / 2.0)
	s2, c2 := math.Sincos(pitch / 2.0)
	s3, c3 := math.Sincos(roll / 2.0)
	return QuatWXYZ(
		c1*c2*c3+s1*s2*s3,
		c1*c2*s3-s1*s2*c3,
		c1*s2*c3+s1*c2*s3,
		s1*c2*c3-c1*s2*s3,
	)
}

// Calculate the yaw and roll angles that orient the renderer's default camera
// so it looks at the origin from pos. Pitch is always zero.
func YawRoll(pos Vec3) (yaw, roll float64, err error) {
	dist := pos.Len()
	if dist < floatCmpEpsilon || pos.IsInvalid() {
		return 0, 0, fmt.Errorf("%w: camera position %v has no direction", ErrDegenerateGeometry, pos)
	}
	c := pos.Mul(1.0 / dist)

	t := c.XY().Len()
	if t < floatCmpEpsilon {
		return 0, 0, fmt.Errorf("%w: camera position %v has no horizontal component", ErrDegenerateGeometry, pos)
	}
	tx, ty := c[0]/t, c[1]/t

	yaw = math.Acos(ty)
	if tx > 0 {
		yaw = 2*math.Pi - yaw
	}

	// Rounding can push the dot product just outside acos' domain.
	roll = math.Acos(math.Min(math.Max(XY(tx, ty).Dot(c.XY()), -1), 1))
	if c[2] < 0 {
		roll = -roll
	}
	return yaw, roll, nil
}

// Build the orientation of a camera placed at pos and looking at the origin
// with world +Z as its up direction.
func LookAtOriginQuat(pos Vec3) (Quat, error) {
	yaw, roll, err := YawRoll(pos)
	if err != nil {
		return Quat{}, err
	}
	return QuatFromYawPitchRoll(yaw, 0, roll).Mul(baseCamQuat), nil
}

// Build the in-plane rotation of a camera placed at pos. The camera is
// rotated by -thetaDeg degrees about its viewing direction (-pos).
func CameraRollQuat(pos Vec3, thetaDeg float64) (Quat, error) {
	dist := pos.Len()
	if dist < floatCmpEpsilon || pos.IsInvalid() {
		return Quat{}, fmt.Errorf("%w: camera position %v has no direction", ErrDegenerateGeometry, pos)
	}
	if math.IsNaN(thetaDeg) || math.IsInf(thetaDeg, 0) {
		return Quat{}, fmt.Errorf("%w: camera roll %v is not finite", ErrDegenerateGeometry, thetaDeg)
	}
	viewDir := pos.Mul(-1).Normalize()
	return QuatFromAxisAngle(viewDir, -thetaDeg*math.Pi/180.0), nil
}

func (q1 Quat) number() quat.Number {
	return quat.Number{Real: q1.W, Imag: q1.V[0], Jmag: q1.V[1], Kmag: q1.V[2]}
}

func quatFromNumber(n quat.Number) Quat {
	return Quat{V: Vec3{n.Imag, n.Jmag, n.Kmag}, W: n.Real}
}

// Multiplies two quaternions (Hamilton product). The result applies q2 first
// and then q1. Multiplication is NOT commutative.
func (q1 Quat) Mul(q2 Quat) Quat {
	return quatFromNumber(quat.Mul(q1.number(), q2.number()))
}

// Rotates a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Returns the length of the quaternion, also known as its norm.
func (q1 Quat) Len() float64 {
	return quat.Abs(q1.number())
}

// Normalizes the quaternion, returning its versor (unit quaternion).
func (q1 Quat) Normalize() Quat {
	length := q1.Len()
	if math.Abs(1-length) < floatCmpEpsilon {
		return q1
	}
	if length == 0 {
		return QuatIdent()
	}
	return Quat{q1.V.Mul(1 / length), q1.W / length}
}

// The conjugate equals the inverse for unit quaternions.
func (q1 Quat) Conjugate() Quat {
	return quatFromNumber(quat.Conj(q1.number()))
}

// Returns true if all components are within tol of the components of q2.
func (q1 Quat) ApproxEqual(q2 Quat, tol float64) bool {
	a, b := q1.WXYZ(), q2.WXYZ()
	return floats.EqualApprox(a[:], b[:], tol)
}

// Returns the (w, x, y, z) components.
func (q1 Quat) WXYZ() [4]float64 {
	return [4]float64{q1.W, q1.V[0], q1.V[1], q1.V[2]}
}

// Returns the row-major rotation matrix corresponding to the quaternion.
func (q1 Quat) Mat3() Mat3 {
	w, x, y, z := q1.W, q1.V[0], q1.V[1], q1.V[2]
	return Mat3{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*w*z, 2*x*z + 2*w*y,
		2*x*y + 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z - 2*w*x,
		2*x*z - 2*w*y, 2*y*z + 2*w*x, 1 - 2*x*x - 2*y*y,
	}
}

// Multiply a row-major matrix with a column vector.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func (q1 Quat) String() string {
	return fmt.Sprintf("(w %.6f, x %.6f, y %.6f, z %.6f)", q1.W, q1.V[0], q1.V[1], q1.V[2])
}
