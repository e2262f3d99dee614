package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestFromRowMajor_Translation(t *testing.T) {
	rowMajor := []float32{
		1, 0, 0, 10,
		0, 1, 0, 20,
		0, 0, 1, 30,
		0, 0, 0, 1,
	}
	m := FromRowMajor(rowMajor)

	assert.Equal(t, mgl64.Translate3D(10, 20, 30), m)
	assert.Equal(t, rowMajor, ToRowMajor(m))
}

func TestTransformPoint(t *testing.T) {
	m := mgl64.Translate3D(10, 20, 30).Mul4(mgl64.Scale3D(2, 2, 2))
	assert.Equal(t, mgl64.Vec3{12, 24, 36}, TransformPoint(m, mgl64.Vec3{1, 2, 3}))

	got := TransformPositions(m, []float64{0, 0, 0, 1, 1, 1})
	assert.Equal(t, []float64{10, 20, 30, 12, 22, 32}, got)
}

func TestRebase(t *testing.T) {
	m := mgl64.Translate3D(100, 200, 300).Mul4(mgl64.HomogRotate3DZ(0.5))
	origin := mgl64.Vec3{90, 210, 280}
	p := mgl64.Vec3{1, 2, 3}

	want := TransformPoint(m, p)
	got := origin.Add(TransformPoint(Rebase(m, origin), p))
	assert.InDelta(t, 0, want.Sub(got).Len(), 1e-9)
}

func TestNormalMatrix_NonUniformScale(t *testing.T) {
	nm := NormalMatrix(mgl64.Scale3D(2, 1, 1))
	n := TransformNormal(nm, [3]float32{1, 0, 0})
	assert.InDelta(t, 1, n[0], 1e-6)
}
