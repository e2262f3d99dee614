package xkt

import (
	"encoding/json"
)

// Model is the decoded section set of one container. All slices are owned by the
// decode step; consumers borrow sub-slices for the lifetime of one load.
type Model struct {
	Version int
	Normals NormalsEncoding

	Metadata json.RawMessage

	TextureData            []byte
	EachTextureDataPortion []uint32
	EachTextureAttributes  []uint16

	Positions   []uint16
	NormalsData []int8
	Colors      []uint8
	UVs         []float32
	Indices     []uint32
	EdgeIndices []uint32

	EachTextureSetTextures []int32

	// Matrices holds row-major 4x4 matrices, 16 floats each.
	Matrices                     []float32
	ReusedGeometriesDecodeMatrix []float32

	EachGeometryPrimitiveType      []uint8
	EachGeometryPositionsPortion   []uint32
	EachGeometryNormalsPortion     []uint32
	EachGeometryColorsPortion      []uint32
	EachGeometryUVsPortion         []uint32
	EachGeometryIndicesPortion     []uint32
	EachGeometryEdgeIndicesPortion []uint32

	EachMeshGeometriesPortion  []uint32
	EachMeshMatricesPortion    []uint32
	EachMeshTextureSet         []int32
	EachMeshMaterialAttributes []uint8

	EachEntityID            []string
	EachEntityMeshesPortion []uint32

	EachTileAABB            []float64
	EachTileEntitiesPortion []uint32
}

// Per-record strides of the packed attribute arrays.
const (
	MaterialStride          = 6
	TextureAttributesStride = 9
	TextureSetStride        = 5
	MatrixStride            = 16
	AABBStride              = 6
)

// Range returns the half-open slice [portion[i], next) of record i in a flat array of
// total elements, where next is portion[i+1] or total for the last record.
func Range(portion []uint32, i int, total int) (start, end int) {
	start = int(portion[i])
	if i+1 < len(portion) {
		end = int(portion[i+1])
	} else {
		end = total
	}
	return start, end
}

// GeometryRange returns the range of geometry g within a flat per-vertex array. An
// absent portion array yields an empty range.
func GeometryRange(portion []uint32, g int, total int) (start, end int) {
	if len(portion) == 0 {
		return 0, 0
	}
	return Range(portion, g, total)
}

// NumGeometries returns the number of geometries in the model.
func (m *Model) NumGeometries() int { return len(m.EachGeometryPositionsPortion) }

// NumMeshes returns the number of meshes in the model.
func (m *Model) NumMeshes() int { return len(m.EachMeshGeometriesPortion) }

// NumEntities returns the number of entities in the model.
func (m *Model) NumEntities() int { return len(m.EachEntityMeshesPortion) }

// NumTiles returns the number of tiles in the model.
func (m *Model) NumTiles() int { return len(m.EachTileEntitiesPortion) }

// NumTextures returns the number of textures in the model.
func (m *Model) NumTextures() int { return len(m.EachTextureDataPortion) }

// NumTextureSets returns the number of texture sets in the model.
func (m *Model) NumTextureSets() int { return len(m.EachTextureSetTextures) / TextureSetStride }

// MeshMatrix returns the row-major placement matrix of mesh i.
func (m *Model) MeshMatrix(i int) []float32 {
	start := int(m.EachMeshMatricesPortion[i])
	return m.Matrices[start : start+MatrixStride]
}

// MeshMaterial returns the six material bytes of mesh i.
func (m *Model) MeshMaterial(i int) []uint8 {
	return m.EachMeshMaterialAttributes[i*MaterialStride : (i+1)*MaterialStride]
}

// TileAABB returns the six AABB values (min xyz, max xyz) of tile i.
func (m *Model) TileAABB(i int) []float64 {
	return m.EachTileAABB[i*AABBStride : (i+1)*AABBStride]
}

// Validate checks the cross-array consistency a loader relies on: parallel arrays of
// equal length, non-decreasing in-bounds portions, and tile entity ranges that
// partition the entity list.
func (m *Model) Validate() error {
	numGeometries := m.NumGeometries()
	numMeshes := m.NumMeshes()
	numEntities := m.NumEntities()
	numTiles := m.NumTiles()

	if len(m.EachGeometryPrimitiveType) != numGeometries {
		return corruptf("%d primitive types for %d geometries", len(m.EachGeometryPrimitiveType), numGeometries)
	}
	per := []struct {
		name    string
		portion []uint32
		total   int
		stride  int
	}{
		{"geometry positions", m.EachGeometryPositionsPortion, len(m.Positions), 3},
		{"geometry normals", m.EachGeometryNormalsPortion, len(m.NormalsData), m.Normals.Components()},
		{"geometry colors", m.EachGeometryColorsPortion, len(m.Colors), 4},
		{"geometry uvs", m.EachGeometryUVsPortion, len(m.UVs), 2},
		{"geometry indices", m.EachGeometryIndicesPortion, len(m.Indices), 1},
		{"geometry edge indices", m.EachGeometryEdgeIndicesPortion, len(m.EdgeIndices), 1},
	}
	for _, p := range per {
		if len(p.portion) == 0 {
			continue
		}
		if len(p.portion) != numGeometries {
			return corruptf("%d %s portions for %d geometries", len(p.portion), p.name, numGeometries)
		}
		if err := checkPortion(p.name, p.portion, p.total); err != nil {
			return err
		}
		if p.total%p.stride != 0 {
			return corruptf("%s array of %d is not a multiple of %d", p.name, p.total, p.stride)
		}
	}

	if len(m.EachMeshMatricesPortion) != numMeshes {
		return corruptf("%d mesh matrix portions for %d meshes", len(m.EachMeshMatricesPortion), numMeshes)
	}
	if len(m.EachMeshMaterialAttributes) != numMeshes*MaterialStride {
		return corruptf("%d material bytes for %d meshes", len(m.EachMeshMaterialAttributes), numMeshes)
	}
	if len(m.EachMeshTextureSet) != 0 && len(m.EachMeshTextureSet) != numMeshes {
		return corruptf("%d mesh texture sets for %d meshes", len(m.EachMeshTextureSet), numMeshes)
	}
	for i, g := range m.EachMeshGeometriesPortion {
		if int(g) >= numGeometries {
			return corruptf("mesh %d references geometry %d of %d", i, g, numGeometries)
		}
		if int(m.EachMeshMatricesPortion[i])+MatrixStride > len(m.Matrices) {
			return corruptf("mesh %d matrix at %d outside %d matrix floats", i, m.EachMeshMatricesPortion[i], len(m.Matrices))
		}
		if len(m.EachMeshTextureSet) != 0 {
			if ts := m.EachMeshTextureSet[i]; ts >= int32(m.NumTextureSets()) {
				return corruptf("mesh %d references texture set %d of %d", i, ts, m.NumTextureSets())
			}
		}
	}

	if len(m.EachEntityID) != numEntities {
		return corruptf("%d entity ids for %d entities", len(m.EachEntityID), numEntities)
	}
	if err := checkPortion("entity meshes", m.EachEntityMeshesPortion, numMeshes); err != nil {
		return err
	}

	if len(m.EachTileAABB) != numTiles*AABBStride {
		return corruptf("%d AABB values for %d tiles", len(m.EachTileAABB), numTiles)
	}
	if numEntities > 0 && numTiles == 0 {
		return corruptf("%d entities but no tiles", numEntities)
	}
	if numTiles > 0 && m.EachTileEntitiesPortion[0] != 0 {
		return corruptf("first tile starts at entity %d", m.EachTileEntitiesPortion[0])
	}
	if err := checkPortion("tile entities", m.EachTileEntitiesPortion, numEntities); err != nil {
		return err
	}

	if n := len(m.ReusedGeometriesDecodeMatrix); n != 0 && n != MatrixStride {
		return corruptf("reused geometries decode matrix has %d values", n)
	}

	if len(m.EachTextureAttributes) != m.NumTextures()*TextureAttributesStride {
		return corruptf("%d texture attributes for %d textures", len(m.EachTextureAttributes), m.NumTextures())
	}
	if err := checkPortion("texture data", m.EachTextureDataPortion, len(m.TextureData)); err != nil {
		return err
	}
	for i, t := range m.EachTextureSetTextures {
		if t >= int32(m.NumTextures()) {
			return corruptf("texture set %d slot %d references texture %d of %d", i/TextureSetStride, i%TextureSetStride, t, m.NumTextures())
		}
	}
	return nil
}

func checkPortion(name string, portion []uint32, total int) error {
	prev := uint32(0)
	for i, p := range portion {
		if p < prev {
			return corruptf("%s portion %d (%d) precedes portion %d (%d)", name, i, p, i-1, prev)
		}
		if int(p) > total {
			return corruptf("%s portion %d (%d) exceeds %d elements", name, i, p, total)
		}
		prev = p
	}
	return nil
}
