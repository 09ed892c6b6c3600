package mathutil

import "math"

// Mat4 is a 4x4 matrix stored in column-major order (m[col*4+row]), matching
// the memory layout GPUs expect.
type Mat4 [16]float64

var Mat4Identity = Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

func (m Mat4) at(col, row int) float64   { return m[col*4+row] }
func (m *Mat4) set(col, row int, v float64) { m[col*4+row] = v }

// Mul returns m*o (apply o first, then m) following column-major convention.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m.at(k, row) * o.at(col, k)
			}
			r.set(col, row, sum)
		}
	}
	return r
}

func Translation(t Vec3) Mat4 {
	m := Mat4Identity
	m.set(3, 0, t.X)
	m.set(3, 1, t.Y)
	m.set(3, 2, t.Z)
	return m
}

func Scaling(s Vec3) Mat4 {
	m := Mat4Identity
	m.set(0, 0, s.X)
	m.set(1, 1, s.Y)
	m.set(2, 2, s.Z)
	return m
}

// TRS composes a transform as translate * rotate * scale, the standard
// order used when driving a hierarchy.
func TRS(translation Vec3, rotation Quat, scale Vec3) Mat4 {
	return Translation(translation).Mul(rotation.ToMat4()).Mul(Scaling(scale))
}

func (m Mat4) TransformPoint(v Vec3) Vec3 {
	x := m.at(0, 0)*v.X + m.at(1, 0)*v.Y + m.at(2, 0)*v.Z + m.at(3, 0)
	y := m.at(0, 1)*v.X + m.at(1, 1)*v.Y + m.at(2, 1)*v.Z + m.at(3, 1)
	z := m.at(0, 2)*v.X + m.at(1, 2)*v.Y + m.at(2, 2)*v.Z + m.at(3, 2)
	return Vec3{x, y, z}
}

func (m Mat4) TransformDirection(v Vec3) Vec3 {
	x := m.at(0, 0)*v.X + m.at(1, 0)*v.Y + m.at(2, 0)*v.Z
	y := m.at(0, 1)*v.X + m.at(1, 1)*v.Y + m.at(2, 1)*v.Z
	z := m.at(0, 2)*v.X + m.at(1, 2)*v.Y + m.at(2, 2)*v.Z
	return Vec3{x, y, z}
}

// Translation extracts the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m.at(3, 0), m.at(3, 1), m.at(3, 2)}
}

func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			r.set(row, col, m.at(col, row))
		}
	}
	return r
}

// Inverse computes the general 4x4 matrix inverse via cofactor expansion.
// Used for the inverse-transpose-model normal matrix, picking-ray
// unprojection, and shadow-cascade frustum corners.
func (m Mat4) Inverse() (Mat4, bool) {
	a := [16]float64(m)
	var inv [16]float64

	inv[0] = a[5]*a[10]*a[15] - a[5]*a[11]*a[14] - a[9]*a[6]*a[15] + a[9]*a[7]*a[14] + a[13]*a[6]*a[11] - a[13]*a[7]*a[10]
	inv[4] = -a[4]*a[10]*a[15] + a[4]*a[11]*a[14] + a[8]*a[6]*a[15] - a[8]*a[7]*a[14] - a[12]*a[6]*a[11] + a[12]*a[7]*a[10]
	inv[8] = a[4]*a[9]*a[15] - a[4]*a[11]*a[13] - a[8]*a[5]*a[15] + a[8]*a[7]*a[13] + a[12]*a[5]*a[11] - a[12]*a[7]*a[9]
	inv[12] = -a[4]*a[9]*a[14] + a[4]*a[10]*a[13] + a[8]*a[5]*a[14] - a[8]*a[6]*a[13] - a[12]*a[5]*a[10] + a[12]*a[6]*a[9]

	inv[1] = -a[1]*a[10]*a[15] + a[1]*a[11]*a[14] + a[9]*a[2]*a[15] - a[9]*a[3]*a[14] - a[13]*a[2]*a[11] + a[13]*a[3]*a[10]
	inv[5] = a[0]*a[10]*a[15] - a[0]*a[11]*a[14] - a[8]*a[2]*a[15] + a[8]*a[3]*a[14] + a[12]*a[2]*a[11] - a[12]*a[3]*a[10]
	inv[9] = -a[0]*a[9]*a[15] + a[0]*a[11]*a[13] + a[8]*a[1]*a[15] - a[8]*a[3]*a[13] - a[12]*a[1]*a[11] + a[12]*a[3]*a[9]
	inv[13] = a[0]*a[9]*a[14] - a[0]*a[10]*a[13] - a[8]*a[1]*a[14] + a[8]*a[2]*a[13] + a[12]*a[1]*a[10] - a[12]*a[2]*a[9]

	inv[2] = a[1]*a[6]*a[15] - a[1]*a[7]*a[14] - a[5]*a[2]*a[15] + a[5]*a[3]*a[14] + a[13]*a[2]*a[7] - a[13]*a[3]*a[6]
	inv[6] = -a[0]*a[6]*a[15] + a[0]*a[7]*a[14] + a[4]*a[2]*a[15] - a[4]*a[3]*a[14] - a[12]*a[2]*a[7] + a[12]*a[3]*a[6]
	inv[10] = a[0]*a[5]*a[15] - a[0]*a[7]*a[13] - a[4]*a[1]*a[15] + a[4]*a[3]*a[13] + a[12]*a[1]*a[7] - a[12]*a[3]*a[5]
	inv[14] = -a[0]*a[5]*a[14] + a[0]*a[6]*a[13] + a[4]*a[1]*a[14] - a[4]*a[2]*a[13] - a[12]*a[1]*a[6] + a[12]*a[2]*a[5]

	inv[3] = -a[1]*a[6]*a[11] + a[1]*a[7]*a[10] + a[5]*a[2]*a[11] - a[5]*a[3]*a[10] - a[9]*a[2]*a[7] + a[9]*a[3]*a[6]
	inv[7] = a[0]*a[6]*a[11] - a[0]*a[7]*a[10] - a[4]*a[2]*a[11] + a[4]*a[3]*a[10] + a[8]*a[2]*a[7] - a[8]*a[3]*a[6]
	inv[11] = -a[0]*a[5]*a[11] + a[0]*a[7]*a[9] + a[4]*a[1]*a[11] - a[4]*a[3]*a[9] - a[8]*a[1]*a[7] + a[8]*a[3]*a[5]
	inv[15] = a[0]*a[5]*a[10] - a[0]*a[6]*a[9] - a[4]*a[1]*a[10] + a[4]*a[2]*a[9] + a[8]*a[1]*a[6] - a[8]*a[2]*a[5]

	det := a[0]*inv[0] + a[1]*inv[4] + a[2]*inv[8] + a[3]*inv[12]
	if math.Abs(det) < 1e-15 {
		return Mat4Identity, false
	}
	det = 1.0 / det
	var r Mat4
	for i := range inv {
		r[i] = inv[i] * det
	}
	return r, true
}

// Perspective builds a right-handed perspective projection matrix, fovY in
// radians, matching the GPU depth range [0,1] ebiten/WebGPU-style pipelines
// expect.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovY/2)
	var m Mat4
	m.set(0, 0, f/aspect)
	m.set(1, 1, f)
	m.set(2, 2, far/(near-far))
	m.set(2, 3, -1)
	m.set(3, 2, (far*near)/(near-far))
	return m
}

// Orthographic builds a right-handed orthographic projection.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	m := Mat4Identity
	m.set(0, 0, 2/(right-left))
	m.set(1, 1, 2/(top-bottom))
	m.set(2, 2, -2/(far-near))
	m.set(3, 0, -(right+left)/(right-left))
	m.set(3, 1, -(top+bottom)/(top-bottom))
	m.set(3, 2, -(far+near)/(far-near))
	return m
}

// LookAt builds a right-handed view matrix.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	var m Mat4
	m.set(0, 0, s.X)
	m.set(1, 0, s.Y)
	m.set(2, 0, s.Z)
	m.set(0, 1, u.X)
	m.set(1, 1, u.Y)
	m.set(2, 1, u.Z)
	m.set(0, 2, -f.X)
	m.set(1, 2, -f.Y)
	m.set(2, 2, -f.Z)
	m.set(3, 0, -s.Dot(eye))
	m.set(3, 1, -u.Dot(eye))
	m.set(3, 2, f.Dot(eye))
	m.set(3, 3, 1)
	return m
}

// StripTranslation returns m with its translation column zeroed.
func (m Mat4) StripTranslation() Mat4 {
	r := m
	r.set(3, 0, 0)
	r.set(3, 1, 0)
	r.set(3, 2, 0)
	return r
}
