package loader

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/xktkit/pkg/math"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// tile is the relative-to-center frame of one tile. Positions are quantized against
// the tile's AABB translated to the origin and placed back by a mesh origin of center.
type tile struct {
	index  int
	aabb   math.AABB
	center mgl64.Vec3
	local  math.AABB
	decode mgl64.Mat4
}

func newTile(m *xkt.Model, t int) tile {
	aabb := math.AABBFromSlice(m.TileAABB(t))
	center := aabb.Center()
	local := aabb.Translate(center.Mul(-1))
	return tile{
		index:  t,
		aabb:   aabb,
		center: center,
		local:  local,
		decode: math.DecodeMatrix(local),
	}
}

// bakePositions transforms quantized instanced positions into the tile frame:
// dequantize with decode, place with placement, subtract the tile center and
// requantize against the local tile box.
func (t tile) bakePositions(q []uint16, decode, placement mgl64.Mat4) []uint16 {
	transform := math.Rebase(placement.Mul4(decode), t.center)
	out := make([]uint16, len(q))
	for i := 0; i+2 < len(q); i += 3 {
		p := math.TransformPoint(transform, mgl64.Vec3{float64(q[i]), float64(q[i+1]), float64(q[i+2])})
		code := math.Quantize(p, t.local)
		copy(out[i:i+3], code[:])
	}
	return out
}

// bakeNormals rotates encoded normals by the inverse-transpose of placement and
// re-encodes them in the same encoding.
func bakeNormals(normals []int8, enc xkt.NormalsEncoding, placement mgl64.Mat4) []int8 {
	nm := math.NormalMatrix(placement)
	out := make([]int8, len(normals))
	switch enc {
	case xkt.NormalsOct:
		for i := 0; i+1 < len(normals); i += 2 {
			n := math.TransformNormal(nm, math.OctDecode([2]int8{normals[i], normals[i+1]}))
			e := math.OctEncode(n)
			out[i], out[i+1] = e[0], e[1]
		}
	default:
		for i := 0; i+2 < len(normals); i += 3 {
			n := math.TransformNormal(nm, math.XYZDecode([3]int8{normals[i], normals[i+1], normals[i+2]}))
			e := math.XYZEncode(n)
			copy(out[i:i+3], e[:])
		}
	}
	return out
}
