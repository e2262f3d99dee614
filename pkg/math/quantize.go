package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// QuantizedMax is the largest 16-bit quantized coordinate; it decodes to AABB max.
const QuantizedMax = 65535

// DecodeMatrix returns the dequantization matrix of a box: code 0 decodes to Min and
// code QuantizedMax to Max on each axis, linear in between.
func DecodeMatrix(b AABB) mgl64.Mat4 {
	scale := b.Size().Mul(1.0 / QuantizedMax)
	return mgl64.Translate3D(b.Min[0], b.Min[1], b.Min[2]).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// QuantizationStep returns the decoded distance between adjacent codes per axis.
func QuantizationStep(b AABB) mgl64.Vec3 {
	return b.Size().Mul(1.0 / QuantizedMax)
}

// Quantize encodes p relative to b. Coordinates outside the box clamp to its faces;
// a zero-extent axis encodes to 0.
func Quantize(p mgl64.Vec3, b AABB) [3]uint16 {
	var q [3]uint16
	for i := 0; i < 3; i++ {
		size := b.Max[i] - b.Min[i]
		if size <= 0 {
			continue
		}
		v := gomath.Round((p[i] - b.Min[i]) * QuantizedMax / size)
		q[i] = uint16(gomath.Max(0, gomath.Min(QuantizedMax, v)))
	}
	return q
}

// Dequantize decodes q relative to b.
func Dequantize(q [3]uint16, b AABB) mgl64.Vec3 {
	return DequantizeWith(q, DecodeMatrix(b))
}

// DequantizeWith decodes q with an explicit decode matrix.
func DequantizeWith(q [3]uint16, decode mgl64.Mat4) mgl64.Vec3 {
	return TransformPoint(decode, mgl64.Vec3{float64(q[0]), float64(q[1]), float64(q[2])})
}

// QuantizePositions encodes flat xyz positions relative to b.
func QuantizePositions(positions []float64, b AABB) []uint16 {
	out := make([]uint16, len(positions))
	for i := 0; i+2 < len(positions); i += 3 {
		q := Quantize(mgl64.Vec3{positions[i], positions[i+1], positions[i+2]}, b)
		copy(out[i:i+3], q[:])
	}
	return out
}

// DecompressPositions decodes flat quantized xyz positions with a decode matrix.
func DecompressPositions(quantized []uint16, decode mgl64.Mat4) []float64 {
	out := make([]float64, len(quantized))
	for i := 0; i+2 < len(quantized); i += 3 {
		p := DequantizeWith([3]uint16{quantized[i], quantized[i+1], quantized[i+2]}, decode)
		copy(out[i:i+3], p[:])
	}
	return out
}

// PositionsAABB returns the bounds of flat xyz positions.
func PositionsAABB(positions []float64) AABB {
	b := EmptyAABB()
	for i := 0; i+2 < len(positions); i += 3 {
		b.Expand(mgl64.Vec3{positions[i], positions[i+1], positions[i+2]})
	}
	return b
}
