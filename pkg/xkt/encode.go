package xkt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrPrimitiveLayout is returned when encoding a Model into a primitive-era layout.
var ErrPrimitiveLayout = errors.New("encoding primitive-era layouts from a Model is not supported")

// EncodeOptions controls container writing.
type EncodeOptions struct {
	// Compressor deflates elements. Nil means ZlibCodec.
	Compressor Compressor
	// Uncompressed writes raw elements for layouts with optional compression.
	Uncompressed bool
}

// EncodeElements frames element bytes, keyed by field name, into a container of the
// given layout. Missing fields are written as empty elements.
func EncodeElements(layout Layout, data map[FieldName][]byte, opts EncodeOptions) ([]byte, error) {
	compressor := opts.Compressor
	if compressor == nil {
		compressor = ZlibCodec{}
	}
	compress := layout.Compressed || (layout.OptionalCompression && !opts.Uncompressed)

	for name := range data {
		if !layout.Has(name) {
			return nil, fmt.Errorf("version %d has no field %s", layout.Version, name)
		}
	}

	payloads := make([][]byte, len(layout.Fields))
	for i, f := range layout.Fields {
		raw := data[f.Name]
		if compress {
			var err error
			if raw, err = compressor.Deflate(raw); err != nil {
				return nil, fmt.Errorf("deflating %s: %w", f.Name, err)
			}
		}
		payloads[i] = raw
	}

	word := uint32(layout.Version)
	if layout.OptionalCompression && compress {
		word |= compressedFlag
	}
	out := binary.LittleEndian.AppendUint32(nil, word)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payloads)))

	switch layout.Framing {
	case FramingSequential:
		for _, p := range payloads {
			out = binary.LittleEndian.AppendUint32(out, uint32(len(p)))
		}
	case FramingOffsetTable:
		offset := 8 + len(payloads)*8
		for _, p := range payloads {
			out = binary.LittleEndian.AppendUint32(out, uint32(offset))
			out = binary.LittleEndian.AppendUint32(out, uint32(len(p)))
			offset += len(p)
		}
	default:
		return nil, fmt.Errorf("unknown framing %s", layout.Framing)
	}
	for _, p := range payloads {
		out = append(out, p...)
	}
	return out, nil
}

// Encode writes a Model as a container of the given version.
func Encode(m *Model, version int, opts EncodeOptions) ([]byte, error) {
	layout, ok := LookupLayout(version)
	if !ok {
		return nil, &UnsupportedVersionError{Version: version, Supported: Versions()}
	}
	if layout.Primitives {
		return nil, ErrPrimitiveLayout
	}
	if layout.Normals != m.Normals && len(m.NormalsData) > 0 {
		return nil, fmt.Errorf("version %d stores %d-byte normals, model has %d-byte normals",
			version, layout.Normals.Components(), m.Normals.Components())
	}

	data := make(map[FieldName][]byte, len(layout.Fields))
	for _, f := range layout.Fields {
		b, err := modelField(m, f)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.Name, err)
		}
		data[f.Name] = b
	}
	return EncodeElements(layout, data, opts)
}

func modelField(m *Model, f Field) ([]byte, error) {
	switch f.Name {
	case FieldMetadata:
		return m.Metadata, nil
	case FieldTextureData:
		return m.TextureData, nil
	case FieldEachTextureDataPortion:
		return BytesOf(m.EachTextureDataPortion)
	case FieldEachTextureAttributes:
		return BytesOf(m.EachTextureAttributes)
	case FieldPositions:
		return BytesOf(m.Positions)
	case FieldNormals:
		return BytesOf(m.NormalsData)
	case FieldColors:
		return m.Colors, nil
	case FieldUVs:
		return BytesOf(m.UVs)
	case FieldIndices:
		return BytesOf(m.Indices)
	case FieldEdgeIndices:
		return BytesOf(m.EdgeIndices)
	case FieldEachTextureSetTextures:
		return BytesOf(m.EachTextureSetTextures)
	case FieldMatrices:
		return BytesOf(m.Matrices)
	case FieldReusedGeometriesDecodeMatrix:
		return BytesOf(m.ReusedGeometriesDecodeMatrix)
	case FieldEachGeometryPrimitiveType:
		return m.EachGeometryPrimitiveType, nil
	case FieldEachGeometryPositionsPortion:
		return BytesOf(m.EachGeometryPositionsPortion)
	case FieldEachGeometryNormalsPortion:
		return BytesOf(m.EachGeometryNormalsPortion)
	case FieldEachGeometryColorsPortion:
		return BytesOf(m.EachGeometryColorsPortion)
	case FieldEachGeometryUVsPortion:
		return BytesOf(m.EachGeometryUVsPortion)
	case FieldEachGeometryIndicesPortion:
		return BytesOf(m.EachGeometryIndicesPortion)
	case FieldEachGeometryEdgeIndicesPortion:
		return BytesOf(m.EachGeometryEdgeIndicesPortion)
	case FieldEachMeshGeometriesPortion:
		return BytesOf(m.EachMeshGeometriesPortion)
	case FieldEachMeshMatricesPortion:
		return BytesOf(m.EachMeshMatricesPortion)
	case FieldEachMeshTextureSet:
		return BytesOf(m.EachMeshTextureSet)
	case FieldEachMeshMaterialAttributes:
		return m.EachMeshMaterialAttributes, nil
	case FieldEachEntityID:
		ids := m.EachEntityID
		if ids == nil {
			ids = []string{}
		}
		return json.Marshal(ids)
	case FieldEachEntityMeshesPortion:
		return BytesOf(m.EachEntityMeshesPortion)
	case FieldEachTileAABB:
		if f.Type == TypeFloat64 {
			return BytesOf(m.EachTileAABB)
		}
		narrow := make([]float32, len(m.EachTileAABB))
		for i, v := range m.EachTileAABB {
			if math.Abs(v) > math.MaxFloat32 {
				return nil, fmt.Errorf("AABB value %g overflows float32", v)
			}
			narrow[i] = float32(v)
		}
		return BytesOf(narrow)
	case FieldEachTileEntitiesPortion:
		return BytesOf(m.EachTileEntitiesPortion)
	default:
		return nil, fmt.Errorf("field %s has no model mapping", f.Name)
	}
}
