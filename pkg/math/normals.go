package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// OctEncode packs a unit normal into two signed bytes using the octahedral mapping.
func OctEncode(n [3]float32) [2]int8 {
	l1 := math32.Abs(n[0]) + math32.Abs(n[1]) + math32.Abs(n[2])
	if l1 == 0 {
		return [2]int8{0, 127}
	}
	x, y := n[0]/l1, n[1]/l1
	if n[2] < 0 {
		x, y = (1-math32.Abs(y))*signNotZero(x), (1-math32.Abs(x))*signNotZero(y)
	}
	return [2]int8{snorm8(x), snorm8(y)}
}

// OctDecode unpacks an octahedral normal.
func OctDecode(e [2]int8) [3]float32 {
	x := float32(e[0]) / 127
	y := float32(e[1]) / 127
	z := 1 - math32.Abs(x) - math32.Abs(y)
	if z < 0 {
		x, y = (1-math32.Abs(y))*signNotZero(x), (1-math32.Abs(x))*signNotZero(y)
	}
	return normalize32([3]float32{x, y, z})
}

// XYZEncode packs a unit normal into three signed bytes.
func XYZEncode(n [3]float32) [3]int8 {
	return [3]int8{snorm8(n[0]), snorm8(n[1]), snorm8(n[2])}
}

// XYZDecode unpacks a signed-byte normal.
func XYZDecode(e [3]int8) [3]float32 {
	return normalize32([3]float32{float32(e[0]) / 127, float32(e[1]) / 127, float32(e[2]) / 127})
}

// TransformNormal applies a normal matrix and renormalizes.
func TransformNormal(nm mgl64.Mat3, n [3]float32) [3]float32 {
	v := nm.Mul3x1(mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
	return normalize32([3]float32{float32(v[0]), float32(v[1]), float32(v[2])})
}

func signNotZero(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}

func snorm8(v float32) int8 {
	v = math32.Max(-1, math32.Min(1, v))
	return int8(math32.Floor(v*127 + 0.5))
}

func normalize32(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l < 1e-6 {
		return [3]float32{0, 0, 1}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
