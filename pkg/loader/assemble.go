package loader

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/xktkit/pkg/math"
	"github.com/Faultbox/xktkit/pkg/metadata"
	"github.com/Faultbox/xktkit/pkg/scene"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// Stored primitive types.
const (
	primitiveSolid     = 0
	primitiveSurface   = 1
	primitivePoints    = 2
	primitiveLines     = 3
	primitiveLineStrip = 4
	primitiveText      = 5
)

// meshSeq numbers meshes across every load in the process.
var meshSeq atomic.Uint64

func nextMeshID(modelID string) string {
	return fmt.Sprintf("%s.mesh%d", modelID, meshSeq.Add(1))
}

func geometryID(modelID string, t, g int) string {
	return fmt.Sprintf("%s.tile%d.geometry%d", modelID, t, g)
}

type geometryKey struct {
	tile     int
	geometry int
}

// assembler turns one decoded model into scene creation calls.
type assembler struct {
	model *xkt.Model
	opts  Options
	store metadata.ObjectStore
	out   scene.Model
	log   *zap.Logger
	stats *Stats

	uses          []int
	reusedDecode  mgl64.Mat4
	geometries    map[geometryKey]string
	textureSetIDs []string
	entityIDs     []string
	seen          map[string]struct{}
}

// geometrySlices are the per-vertex arrays of one stored geometry, borrowed from the
// model.
type geometrySlices struct {
	primitive   scene.Primitive
	positions   []uint16
	normals     []int8
	colors      []uint8
	uvs         []float32
	indices     []uint32
	edgeIndices []uint32
}

func (a *assembler) geometry(g int) (*geometrySlices, error) {
	m := a.model
	slice := func(portion []uint32, total int) (int, int) {
		return xkt.GeometryRange(portion, g, total)
	}

	s := &geometrySlices{}
	start, end := slice(m.EachGeometryPositionsPortion, len(m.Positions))
	s.positions = m.Positions[start:end]
	if len(s.positions)%3 != 0 {
		return nil, fmt.Errorf("%w: geometry %d has %d position values", xkt.ErrCorruptContainer, g, len(s.positions))
	}
	start, end = slice(m.EachGeometryNormalsPortion, len(m.NormalsData))
	s.normals = m.NormalsData[start:end]
	start, end = slice(m.EachGeometryColorsPortion, len(m.Colors))
	s.colors = m.Colors[start:end]
	start, end = slice(m.EachGeometryUVsPortion, len(m.UVs))
	s.uvs = m.UVs[start:end]
	start, end = slice(m.EachGeometryIndicesPortion, len(m.Indices))
	s.indices = m.Indices[start:end]
	start, end = slice(m.EachGeometryEdgeIndicesPortion, len(m.EdgeIndices))
	s.edgeIndices = m.EdgeIndices[start:end]

	numVertices := len(s.positions) / 3
	for _, idx := range [][]uint32{s.indices, s.edgeIndices} {
		for _, v := range idx {
			if int(v) >= numVertices {
				return nil, fmt.Errorf("%w: geometry %d index %d exceeds %d vertices",
					xkt.ErrCorruptContainer, g, v, numVertices)
			}
		}
	}

	requiresIndices := true
	switch m.EachGeometryPrimitiveType[g] {
	case primitiveSolid:
		s.primitive = scene.PrimitiveSolid
	case primitiveSurface:
		s.primitive = scene.PrimitiveSurface
	case primitivePoints:
		s.primitive = scene.PrimitivePoints
		requiresIndices = false
	case primitiveLines, primitiveText:
		s.primitive = scene.PrimitiveLines
	case primitiveLineStrip:
		s.primitive = scene.PrimitiveLines
		s.indices = LineStripToLines(s.indices, numVertices)
	default:
		return nil, fmt.Errorf("%w: geometry %d has type %d", xkt.ErrUnknownPrimitiveType, g, m.EachGeometryPrimitiveType[g])
	}

	if numVertices == 0 {
		return nil, fmt.Errorf("%w: geometry %d has no positions", xkt.ErrDegenerateGeometry, g)
	}
	if requiresIndices && len(s.indices) == 0 {
		return nil, fmt.Errorf("%w: %s geometry %d has no indices", xkt.ErrDegenerateGeometry, s.primitive, g)
	}
	return s, nil
}

func (s *geometrySlices) data(decode mgl64.Mat4, normalsOct bool) scene.GeometryData {
	return scene.GeometryData{
		Primitive:             s.primitive,
		PositionsCompressed:   s.positions,
		PositionsDecodeMatrix: decode,
		NormalsCompressed:     s.normals,
		NormalsOct:            normalsOct,
		Colors:                s.colors,
		UVs:                   s.uvs,
		Indices:               s.indices,
		EdgeIndices:           s.edgeIndices,
	}
}

// assembleTile emits the entities of one tile.
func (a *assembler) assembleTile(t tile) error {
	m := a.model
	start, end := xkt.Range(m.EachTileEntitiesPortion, t.index, m.NumEntities())
	for e := start; e < end; e++ {
		if err := a.assembleEntity(t, e); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) assembleEntity(t tile, e int) error {
	m := a.model
	id := a.opts.EntityID(m.EachEntityID[e])
	if _, dup := a.seen[id]; dup {
		return fmt.Errorf("%w: entity id %q appears more than once", xkt.ErrCorruptContainer, id)
	}
	a.seen[id] = struct{}{}

	skip, obj := a.opts.Filter.Skip(id, a.store)
	if skip {
		a.stats.EntitiesFiltered++
		return nil
	}

	objectType := metadata.DefaultType
	if obj != nil {
		objectType = obj.Type
	}
	defaults, _ := metadata.Lookup(a.opts.Defaults, objectType)

	start, end := xkt.Range(m.EachEntityMeshesPortion, e, m.NumMeshes())
	meshIDs := make([]string, 0, end-start)
	for mesh := start; mesh < end; mesh++ {
		meshID, err := a.createMesh(t, mesh, defaults)
		if err != nil {
			if a.countSkipped(err) {
				a.log.Debug("skipping mesh",
					zap.String("entity", id),
					zap.Int("mesh", mesh),
					zap.Error(err))
				continue
			}
			return err
		}
		meshIDs = append(meshIDs, meshID)
	}

	if len(meshIDs) == 0 {
		a.stats.EntitiesEmpty++
		return nil
	}

	p := scene.EntityParams{
		ID:       id,
		IsObject: a.store == nil || obj != nil,
		MeshIDs:  meshIDs,
	}
	if defaults != nil {
		p.Visible = defaults.Visible
		p.Pickable = defaults.Pickable
	}
	if err := a.out.CreateEntity(p); err != nil {
		return fmt.Errorf("creating entity %q: %w", id, err)
	}
	a.stats.Entities++
	a.entityIDs = append(a.entityIDs, id)
	return nil
}

func (a *assembler) countSkipped(err error) bool {
	switch {
	case errors.Is(err, xkt.ErrUnknownPrimitiveType):
		a.stats.UnknownPrimitives++
	case errors.Is(err, xkt.ErrDegenerateGeometry):
		a.stats.DegenerateMeshes++
	default:
		return false
	}
	return true
}

func (a *assembler) createMesh(t tile, mesh int, defaults *metadata.Defaults) (string, error) {
	m := a.model
	g := int(m.EachMeshGeometriesPortion[mesh])

	p := a.meshMaterial(mesh, defaults)
	normalsOct := m.Normals == xkt.NormalsOct

	start, end := xkt.GeometryRange(m.EachGeometryPositionsPortion, g, len(m.Positions))
	numPositions := (end - start) / 3

	switch {
	case Classify(a.uses[g]) == Unique:
		geom, err := a.geometry(g)
		if err != nil {
			return "", err
		}
		data := geom.data(t.decode, normalsOct)
		p.Geometry = &data

	case a.opts.BatchPolicy.ForceBatch(numPositions, a.uses[g]):
		geom, err := a.geometry(g)
		if err != nil {
			return "", err
		}
		placement := math.FromRowMajor(m.MeshMatrix(mesh))
		baked := *geom
		baked.positions = t.bakePositions(geom.positions, a.reusedDecode, placement)
		baked.normals = bakeNormals(geom.normals, m.Normals, placement)
		data := baked.data(t.decode, normalsOct)
		p.Geometry = &data
		a.stats.ForceBatched++

	default:
		key := geometryKey{tile: t.index, geometry: g}
		id, ok := a.geometries[key]
		if !ok {
			geom, err := a.geometry(g)
			if err != nil {
				return "", err
			}
			id = geometryID(a.opts.ModelID, t.index, g)
			gp := scene.GeometryParams{ID: id, GeometryData: geom.data(a.reusedDecode, normalsOct)}
			if err := a.out.CreateGeometry(gp); err != nil {
				return "", fmt.Errorf("creating geometry %q: %w", id, err)
			}
			a.geometries[key] = id
			a.stats.Geometries++
		}
		matrix := math.Rebase(math.FromRowMajor(m.MeshMatrix(mesh)), t.center)
		p.GeometryID = id
		p.Matrix = &matrix
		a.stats.Instanced++
	}

	p.ID = nextMeshID(a.opts.ModelID)
	p.Origin = t.center
	if err := a.out.CreateMesh(p); err != nil {
		return "", fmt.Errorf("creating mesh %q: %w", p.ID, err)
	}
	a.stats.Meshes++
	return p.ID, nil
}

// meshMaterial fills the material of a mesh from its stored attributes and then the
// object-type defaults.
func (a *assembler) meshMaterial(mesh int, defaults *metadata.Defaults) scene.MeshParams {
	attrs := a.model.MeshMaterial(mesh)
	p := scene.MeshParams{
		Color:     [3]float32{float32(attrs[0]) / 255, float32(attrs[1]) / 255, float32(attrs[2]) / 255},
		Opacity:   float32(attrs[3]) / 255,
		Metallic:  float32(attrs[4]) / 255,
		Roughness: float32(attrs[5]) / 255,
	}
	if len(a.model.EachMeshTextureSet) != 0 {
		if ts := a.model.EachMeshTextureSet[mesh]; ts >= 0 {
			p.TextureSetID = a.textureSetIDs[ts]
		}
	}

	if defaults == nil {
		return p
	}
	if defaults.Colorize != nil {
		p.Color = *defaults.Colorize
	}
	if defaults.Opacity != nil {
		p.Opacity = *defaults.Opacity
	}
	if defaults.Metallic != nil {
		p.Metallic = *defaults.Metallic
	}
	if defaults.Roughness != nil {
		p.Roughness = *defaults.Roughness
	}
	return p
}
