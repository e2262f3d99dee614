package xkt

import (
	"encoding/json"
	"fmt"
)

// DecodeOptions controls how element data is inflated.
type DecodeOptions struct {
	// Codec inflates compressed elements. Nil means ZlibCodec.
	Codec Codec
	// Workers > 1 inflates elements concurrently.
	Workers int
}

// Decoder turns a container of one version into a Model.
type Decoder interface {
	Version() int
	Layout() Layout
	Decode(buf []byte, opts DecodeOptions) (*Model, error)
}

// NewDecoder returns the decoder for a version.
func NewDecoder(version int) (Decoder, error) {
	layout, ok := LookupLayout(version)
	if !ok {
		return nil, &UnsupportedVersionError{Version: version, Supported: Versions()}
	}
	if layout.Primitives {
		return primitiveDecoder{layout: layout}, nil
	}
	return geometryDecoder{layout: layout}, nil
}

// Decoders returns one decoder per supported version, ascending.
func Decoders() []Decoder {
	versions := Versions()
	decoders := make([]Decoder, 0, len(versions))
	for _, v := range versions {
		d, _ := NewDecoder(v)
		decoders = append(decoders, d)
	}
	return decoders
}

// Decode reads the version word, frames and decodes a container.
func Decode(buf []byte, opts DecodeOptions) (*Model, error) {
	header, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	d, err := NewDecoder(header.Version)
	if err != nil {
		return nil, err
	}
	return d.Decode(buf, opts)
}

// sections holds the inflated elements of one container by field name and records
// the first reinterpretation error.
type sections struct {
	data map[FieldName][]byte
	err  error
}

func readSections(buf []byte, layout Layout, opts DecodeOptions) (*sections, error) {
	elements, err := Frame(buf, layout)
	if err != nil {
		return nil, err
	}
	codec := opts.Codec
	if codec == nil {
		codec = ZlibCodec{}
	}
	if err := InflateElements(elements, codec, opts.Workers); err != nil {
		return nil, err
	}

	s := &sections{data: make(map[FieldName][]byte, len(elements))}
	for _, e := range elements {
		s.data[e.Field.Name] = e.Data
	}
	return s, nil
}

func (s *sections) fail(name FieldName, err error) {
	if s.err == nil {
		s.err = fmt.Errorf("decoding %s: %w", name, err)
	}
}

func (s *sections) uint8s(name FieldName) []uint8 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	return append([]uint8{}, data...)
}

func (s *sections) int8s(name FieldName) []int8 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	return Int8s(data)
}

func (s *sections) uint16s(name FieldName) []uint16 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	v, err := Uint16s(data)
	if err != nil {
		s.fail(name, err)
	}
	return v
}

func (s *sections) uint32s(name FieldName) []uint32 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	v, err := Uint32s(data)
	if err != nil {
		s.fail(name, err)
	}
	return v
}

func (s *sections) int32s(name FieldName) []int32 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	v, err := Int32s(data)
	if err != nil {
		s.fail(name, err)
	}
	return v
}

func (s *sections) float32s(name FieldName) []float32 {
	data, ok := s.data[name]
	if !ok {
		return nil
	}
	v, err := Float32s(data)
	if err != nil {
		s.fail(name, err)
	}
	return v
}

// aabbs reads tile AABBs stored as either float32 or float64.
func (s *sections) aabbs(layout Layout) []float64 {
	idx := layout.index(FieldEachTileAABB)
	if idx < 0 {
		return nil
	}
	data := s.data[FieldEachTileAABB]
	if layout.Fields[idx].Type == TypeFloat64 {
		v, err := Float64s(data)
		if err != nil {
			s.fail(FieldEachTileAABB, err)
		}
		return v
	}
	v, err := Float32s(data)
	if err != nil {
		s.fail(FieldEachTileAABB, err)
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func (s *sections) json(name FieldName, dst any) {
	data, ok := s.data[name]
	if !ok || len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.fail(name, fmt.Errorf("%w: %v", ErrDecode, err))
	}
}

func (s *sections) rawJSON(name FieldName) json.RawMessage {
	data, ok := s.data[name]
	if !ok || len(data) == 0 {
		return nil
	}
	if !json.Valid(data) {
		s.fail(name, fmt.Errorf("%w: invalid JSON", ErrDecode))
		return nil
	}
	return append(json.RawMessage{}, data...)
}

// geometryDecoder reads layouts 6 and newer, where geometries, meshes and entities
// are stored as separate record arrays.
type geometryDecoder struct {
	layout Layout
}

func (d geometryDecoder) Version() int   { return d.layout.Version }
func (d geometryDecoder) Layout() Layout { return d.layout }

func (d geometryDecoder) Decode(buf []byte, opts DecodeOptions) (*Model, error) {
	s, err := readSections(buf, d.layout, opts)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Version:                        d.layout.Version,
		Normals:                        d.layout.Normals,
		Metadata:                       s.rawJSON(FieldMetadata),
		TextureData:                    s.uint8s(FieldTextureData),
		EachTextureDataPortion:         s.uint32s(FieldEachTextureDataPortion),
		EachTextureAttributes:          s.uint16s(FieldEachTextureAttributes),
		Positions:                      s.uint16s(FieldPositions),
		NormalsData:                    s.int8s(FieldNormals),
		Colors:                         s.uint8s(FieldColors),
		UVs:                            s.float32s(FieldUVs),
		Indices:                        s.uint32s(FieldIndices),
		EdgeIndices:                    s.uint32s(FieldEdgeIndices),
		EachTextureSetTextures:         s.int32s(FieldEachTextureSetTextures),
		Matrices:                       s.float32s(FieldMatrices),
		ReusedGeometriesDecodeMatrix:   s.float32s(FieldReusedGeometriesDecodeMatrix),
		EachGeometryPrimitiveType:      s.uint8s(FieldEachGeometryPrimitiveType),
		EachGeometryPositionsPortion:   s.uint32s(FieldEachGeometryPositionsPortion),
		EachGeometryNormalsPortion:     s.uint32s(FieldEachGeometryNormalsPortion),
		EachGeometryColorsPortion:      s.uint32s(FieldEachGeometryColorsPortion),
		EachGeometryUVsPortion:         s.uint32s(FieldEachGeometryUVsPortion),
		EachGeometryIndicesPortion:     s.uint32s(FieldEachGeometryIndicesPortion),
		EachGeometryEdgeIndicesPortion: s.uint32s(FieldEachGeometryEdgeIndicesPortion),
		EachMeshGeometriesPortion:      s.uint32s(FieldEachMeshGeometriesPortion),
		EachMeshMatricesPortion:        s.uint32s(FieldEachMeshMatricesPortion),
		EachMeshTextureSet:             s.int32s(FieldEachMeshTextureSet),
		EachMeshMaterialAttributes:     s.uint8s(FieldEachMeshMaterialAttributes),
		EachEntityMeshesPortion:        s.uint32s(FieldEachEntityMeshesPortion),
		EachTileAABB:                   s.aabbs(d.layout),
		EachTileEntitiesPortion:        s.uint32s(FieldEachTileEntitiesPortion),
	}
	s.json(FieldEachEntityID, &m.EachEntityID)
	if s.err != nil {
		return nil, s.err
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// primitiveDecoder reads layouts 4 and 5. Primitives become geometries of the solid
// type, primitive instances become meshes, and each mesh inherits the color of its
// primitive and the matrix of its entity.
type primitiveDecoder struct {
	layout Layout
}

func (d primitiveDecoder) Version() int   { return d.layout.Version }
func (d primitiveDecoder) Layout() Layout { return d.layout }

func (d primitiveDecoder) Decode(buf []byte, opts DecodeOptions) (*Model, error) {
	s, err := readSections(buf, d.layout, opts)
	if err != nil {
		return nil, err
	}

	positionsAndNormals := s.uint32s(FieldEachPrimitivePositionsAndNormalsPortion)
	colors := s.uint8s(FieldEachPrimitiveColorAndOpacity)
	instances := s.uint32s(FieldPrimitiveInstances)
	entityInstances := s.uint32s(FieldEachEntityPrimitiveInstancesPortion)
	entityMatrices := s.uint32s(FieldEachEntityMatricesPortion)

	m := &Model{
		Version:                        d.layout.Version,
		Normals:                        d.layout.Normals,
		Positions:                      s.uint16s(FieldPositions),
		NormalsData:                    s.int8s(FieldNormals),
		Indices:                        s.uint32s(FieldIndices),
		EdgeIndices:                    s.uint32s(FieldEdgeIndices),
		Matrices:                       s.float32s(FieldMatrices),
		ReusedGeometriesDecodeMatrix:   s.float32s(FieldReusedPrimitivesDecodeMatrix),
		EachGeometryIndicesPortion:     s.uint32s(FieldEachPrimitiveIndicesPortion),
		EachGeometryEdgeIndicesPortion: s.uint32s(FieldEachPrimitiveEdgeIndicesPortion),
		EachEntityMeshesPortion:        entityInstances,
		EachTileAABB:                   s.aabbs(d.layout),
		EachTileEntitiesPortion:        s.uint32s(FieldEachTileEntitiesPortion),
	}
	s.json(FieldEachEntityID, &m.EachEntityID)
	if s.err != nil {
		return nil, s.err
	}

	numPrimitives := len(positionsAndNormals)
	if len(colors) != numPrimitives*4 {
		return nil, corruptf("%d color bytes for %d primitives", len(colors), numPrimitives)
	}
	if len(entityMatrices) != len(entityInstances) {
		return nil, corruptf("%d entity matrix portions for %d entities", len(entityMatrices), len(entityInstances))
	}

	// Positions and normals share one per-vertex portion.
	m.EachGeometryPositionsPortion = positionsAndNormals
	m.EachGeometryNormalsPortion = make([]uint32, numPrimitives)
	for i, p := range positionsAndNormals {
		m.EachGeometryNormalsPortion[i] = p / 3 * uint32(m.Normals.Components())
	}
	m.EachGeometryPrimitiveType = make([]uint8, numPrimitives)

	numMeshes := len(instances)
	m.EachMeshGeometriesPortion = instances
	m.EachMeshMatricesPortion = make([]uint32, numMeshes)
	m.EachMeshMaterialAttributes = make([]uint8, numMeshes*MaterialStride)
	for e := range entityInstances {
		start, end := Range(entityInstances, e, numMeshes)
		if start > end || end > numMeshes {
			return nil, corruptf("entity %d primitive instances [%d, %d) outside %d", e, start, end, numMeshes)
		}
		for mesh := start; mesh < end; mesh++ {
			m.EachMeshMatricesPortion[mesh] = entityMatrices[e]
		}
	}
	for mesh, prim := range instances {
		if int(prim) >= numPrimitives {
			return nil, corruptf("primitive instance %d references primitive %d of %d", mesh, prim, numPrimitives)
		}
		c := colors[prim*4 : prim*4+4]
		copy(m.EachMeshMaterialAttributes[mesh*MaterialStride:], []uint8{c[0], c[1], c[2], c[3], 0, 255})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
