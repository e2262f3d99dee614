package loader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xktkit/pkg/math"
	"github.com/Faultbox/xktkit/pkg/scene"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// testGeometry is one stored geometry of a synthetic container.
type testGeometry struct {
	primitive uint8
	positions []uint16
	normals   []int8
	indices   []uint32
}

// testMesh places a geometry; a nil matrix means identity.
type testMesh struct {
	geometry   uint32
	matrix     []float32
	material   [6]uint8
	textureSet int32
}

type testEntity struct {
	id     string
	meshes []testMesh
}

type testTile struct {
	aabb     []float64
	entities []testEntity
}

var identityRowMajor = math.ToRowMajor(mgl64.Ident4())

var triangle = testGeometry{
	primitive: primitiveSolid,
	positions: []uint16{0, 0, 0, 65535, 0, 0, 0, 65535, 0},
	normals:   []int8{0, 127, 0, 127, 0, 127},
	indices:   []uint32{0, 1, 2},
}

// buildModel assembles the flat arrays of a geometry-era model.
func buildModel(geometries []testGeometry, tiles []testTile, reusedDecode []float32) *xkt.Model {
	m := &xkt.Model{Normals: xkt.NormalsOct, ReusedGeometriesDecodeMatrix: reusedDecode}
	for _, g := range geometries {
		m.EachGeometryPrimitiveType = append(m.EachGeometryPrimitiveType, g.primitive)
		m.EachGeometryPositionsPortion = append(m.EachGeometryPositionsPortion, uint32(len(m.Positions)))
		m.EachGeometryNormalsPortion = append(m.EachGeometryNormalsPortion, uint32(len(m.NormalsData)))
		m.EachGeometryIndicesPortion = append(m.EachGeometryIndicesPortion, uint32(len(m.Indices)))
		m.EachGeometryEdgeIndicesPortion = append(m.EachGeometryEdgeIndicesPortion, 0)
		m.Positions = append(m.Positions, g.positions...)
		m.NormalsData = append(m.NormalsData, g.normals...)
		m.Indices = append(m.Indices, g.indices...)
	}
	for _, t := range tiles {
		m.EachTileAABB = append(m.EachTileAABB, t.aabb...)
		m.EachTileEntitiesPortion = append(m.EachTileEntitiesPortion, uint32(len(m.EachEntityID)))
		for _, e := range t.entities {
			m.EachEntityID = append(m.EachEntityID, e.id)
			m.EachEntityMeshesPortion = append(m.EachEntityMeshesPortion, uint32(len(m.EachMeshGeometriesPortion)))
			for _, mesh := range e.meshes {
				matrix := mesh.matrix
				if matrix == nil {
					matrix = identityRowMajor
				}
				m.EachMeshGeometriesPortion = append(m.EachMeshGeometriesPortion, mesh.geometry)
				m.EachMeshMatricesPortion = append(m.EachMeshMatricesPortion, uint32(len(m.Matrices)))
				m.Matrices = append(m.Matrices, matrix...)
				m.EachMeshMaterialAttributes = append(m.EachMeshMaterialAttributes, mesh.material[:]...)
				m.EachMeshTextureSet = append(m.EachMeshTextureSet, mesh.textureSet)
			}
		}
	}
	return m
}

func encodeModel(t *testing.T, m *xkt.Model, version int) []byte {
	t.Helper()
	buf, err := xkt.Encode(m, version, xkt.EncodeOptions{})
	require.NoError(t, err)
	return buf
}

func loadModel(t *testing.T, m *xkt.Model, opts Options) (*scene.Memory, *Result) {
	t.Helper()
	mem := scene.NewMemory()
	result, err := Load(t.Context(), encodeModel(t, m, xkt.LatestVersion), mem, opts)
	require.NoError(t, err)
	return mem, result
}

func mesh(g uint32) testMesh {
	return testMesh{geometry: g, material: [6]uint8{255, 128, 0, 255, 0, 255}, textureSet: -1}
}

func placed(g uint32, m mgl64.Mat4) testMesh {
	tm := mesh(g)
	tm.matrix = math.ToRowMajor(m)
	return tm
}

// countingModel counts creation calls.
type countingModel struct {
	calls int
}

func (c *countingModel) CreateGeometry(scene.GeometryParams) error     { c.calls++; return nil }
func (c *countingModel) CreateMesh(scene.MeshParams) error             { c.calls++; return nil }
func (c *countingModel) CreateEntity(scene.EntityParams) error         { c.calls++; return nil }
func (c *countingModel) CreateTexture(scene.TextureParams) error       { c.calls++; return nil }
func (c *countingModel) CreateTextureSet(scene.TextureSetParams) error { c.calls++; return nil }
