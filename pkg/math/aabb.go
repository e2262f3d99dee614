// Package math provides bounding boxes, decode matrices and vertex quantization for
// XKT geometry.
package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// EmptyAABB returns an inverted box that any Expand call will replace.
func EmptyAABB() AABB {
	inf := gomath.Inf(1)
	return AABB{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// AABBFromSlice builds a box from six values: min xyz, max xyz.
func AABBFromSlice(v []float64) AABB {
	return AABB{
		Min: mgl64.Vec3{v[0], v[1], v[2]},
		Max: mgl64.Vec3{v[3], v[4], v[5]},
	}
}

// Slice returns the box as six values: min xyz, max xyz.
func (b AABB) Slice() []float64 {
	return []float64{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]}
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b AABB) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Translate returns the box moved by d.
func (b AABB) Translate(d mgl64.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Expand grows the box to include p.
func (b *AABB) Expand(p mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = gomath.Min(b.Min[i], p[i])
		b.Max[i] = gomath.Max(b.Max[i], p[i])
	}
}

// Contains reports whether p lies inside the box, boundaries included.
func (b AABB) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the box is inverted on some axis, as EmptyAABB is.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}
