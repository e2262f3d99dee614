package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAABB_CenterAndTranslate(t *testing.T) {
	b := AABBFromSlice([]float64{-2, 0, 4, 2, 10, 8})

	center := b.Center()
	assert.Equal(t, mgl64.Vec3{0, 5, 6}, center)

	local := b.Translate(center.Mul(-1))
	assert.Equal(t, mgl64.Vec3{-2, -5, -2}, local.Min)
	assert.Equal(t, mgl64.Vec3{2, 5, 2}, local.Max)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, local.Center())
	assert.Equal(t, b.Slice(), []float64{-2, 0, 4, 2, 10, 8})
}

func TestAABB_Expand(t *testing.T) {
	b := EmptyAABB()
	assert.True(t, b.IsEmpty())

	b.Expand(mgl64.Vec3{1, -1, 0})
	b.Expand(mgl64.Vec3{-3, 2, 5})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl64.Vec3{-3, -1, 0}, b.Min)
	assert.Equal(t, mgl64.Vec3{1, 2, 5}, b.Max)
	assert.True(t, b.Contains(mgl64.Vec3{0, 0, 1}))
	assert.False(t, b.Contains(mgl64.Vec3{0, 3, 1}))
}
