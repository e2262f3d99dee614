package math

import (
	"github.com/go-gl/mathgl/mgl64"
)

// FromRowMajor converts 16 row-major floats to a matrix.
func FromRowMajor(v []float32) mgl64.Mat4 {
	var m mgl64.Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			m[col*4+row] = float64(v[row*4+col])
		}
	}
	return m
}

// ToRowMajor flattens a matrix to 16 row-major floats.
func ToRowMajor(m mgl64.Mat4) []float32 {
	out := make([]float32, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row*4+col] = float32(m[col*4+row])
		}
	}
	return out
}

// TransformPoint transforms p as a homogeneous point with w=1.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 0 && v[3] != 1 {
		return mgl64.Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
	}
	return v.Vec3()
}

// TransformPositions transforms flat xyz positions by m.
func TransformPositions(m mgl64.Mat4, positions []float64) []float64 {
	out := make([]float64, len(positions))
	for i := 0; i+2 < len(positions); i += 3 {
		p := TransformPoint(m, mgl64.Vec3{positions[i], positions[i+1], positions[i+2]})
		copy(out[i:i+3], p[:])
	}
	return out
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of m.
func NormalMatrix(m mgl64.Mat4) mgl64.Mat3 {
	return m.Mat3().Inv().Transpose()
}

// Rebase returns m followed by a translation of -origin, so that
// origin + Rebase(m, origin)·p == m·p.
func Rebase(m mgl64.Mat4, origin mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(-origin[0], -origin[1], -origin[2]).Mul4(m)
}
