// Package xkt provides reading and writing of XKT model containers.
//
// An XKT container is one little-endian buffer holding a version word followed by a
// table of sub-arrays ("elements"). Each supported version declares a fixed, ordered list
// of fields; the framer slices the buffer into elements, the codec inflates them and the
// decoder turns them into a Model.
package xkt

import (
	"fmt"
	"sort"
)

// FieldName identifies one element of a container.
type FieldName string

// Container fields across all supported versions.
const (
	FieldMetadata                       FieldName = "metadata"
	FieldTextureData                    FieldName = "textureData"
	FieldEachTextureDataPortion         FieldName = "eachTextureDataPortion"
	FieldEachTextureAttributes          FieldName = "eachTextureAttributes"
	FieldPositions                      FieldName = "positions"
	FieldNormals                        FieldName = "normals"
	FieldColors                         FieldName = "colors"
	FieldUVs                            FieldName = "uvs"
	FieldIndices                        FieldName = "indices"
	FieldEdgeIndices                    FieldName = "edgeIndices"
	FieldEachTextureSetTextures         FieldName = "eachTextureSetTextures"
	FieldMatrices                       FieldName = "matrices"
	FieldReusedGeometriesDecodeMatrix   FieldName = "reusedGeometriesDecodeMatrix"
	FieldEachGeometryPrimitiveType      FieldName = "eachGeometryPrimitiveType"
	FieldEachGeometryPositionsPortion   FieldName = "eachGeometryPositionsPortion"
	FieldEachGeometryNormalsPortion     FieldName = "eachGeometryNormalsPortion"
	FieldEachGeometryColorsPortion      FieldName = "eachGeometryColorsPortion"
	FieldEachGeometryUVsPortion         FieldName = "eachGeometryUVsPortion"
	FieldEachGeometryIndicesPortion     FieldName = "eachGeometryIndicesPortion"
	FieldEachGeometryEdgeIndicesPortion FieldName = "eachGeometryEdgeIndicesPortion"
	FieldEachMeshGeometriesPortion      FieldName = "eachMeshGeometriesPortion"
	FieldEachMeshMatricesPortion        FieldName = "eachMeshMatricesPortion"
	FieldEachMeshTextureSet             FieldName = "eachMeshTextureSet"
	FieldEachMeshMaterialAttributes     FieldName = "eachMeshMaterialAttributes"
	FieldEachEntityID                   FieldName = "eachEntityId"
	FieldEachEntityMeshesPortion        FieldName = "eachEntityMeshesPortion"
	FieldEachTileAABB                   FieldName = "eachTileAABB"
	FieldEachTileEntitiesPortion        FieldName = "eachTileEntitiesPortion"

	// Primitive-era fields (versions 4 and 5).
	FieldReusedPrimitivesDecodeMatrix            FieldName = "reusedPrimitivesDecodeMatrix"
	FieldEachPrimitivePositionsAndNormalsPortion FieldName = "eachPrimitivePositionsAndNormalsPortion"
	FieldEachPrimitiveIndicesPortion             FieldName = "eachPrimitiveIndicesPortion"
	FieldEachPrimitiveEdgeIndicesPortion         FieldName = "eachPrimitiveEdgeIndicesPortion"
	FieldEachPrimitiveColorAndOpacity            FieldName = "eachPrimitiveColorAndOpacity"
	FieldPrimitiveInstances                      FieldName = "primitiveInstances"
	FieldEachEntityPrimitiveInstancesPortion     FieldName = "eachEntityPrimitiveInstancesPortion"
	FieldEachEntityMatricesPortion               FieldName = "eachEntityMatricesPortion"
)

// ElementType is the numeric type an element's bytes are reinterpreted as.
type ElementType uint8

const (
	TypeUint8 ElementType = iota
	TypeInt8
	TypeUint16
	TypeUint32
	TypeInt32
	TypeFloat32
	TypeFloat64
	TypeJSON
)

// Size returns the byte size of one element of this type (1 for JSON text).
func (t ElementType) Size() int {
	switch t {
	case TypeUint16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat32:
		return 4
	case TypeFloat64:
		return 8
	default:
		return 1
	}
}

// String returns a human-readable type name.
func (t ElementType) String() string {
	switch t {
	case TypeUint8:
		return "uint8"
	case TypeInt8:
		return "int8"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeInt32:
		return "int32"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeJSON:
		return "json"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Field is one entry of a version layout.
type Field struct {
	Name FieldName
	Type ElementType
}

// Framing is the physical element table style of a container.
type Framing uint8

const (
	// FramingSequential stores N byte lengths followed by N back-to-back deflated elements.
	FramingSequential Framing = iota
	// FramingOffsetTable stores N (offset, length) pairs indexing into the buffer.
	FramingOffsetTable
)

// String returns the framing name.
func (f Framing) String() string {
	switch f {
	case FramingSequential:
		return "sequential"
	case FramingOffsetTable:
		return "offset-table"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// NormalsEncoding describes how per-vertex normals are packed into signed bytes.
type NormalsEncoding uint8

const (
	// NormalsXYZ stores three signed bytes per normal.
	NormalsXYZ NormalsEncoding = iota
	// NormalsOct stores two signed bytes per normal (octahedral mapping).
	NormalsOct
)

// Components returns the number of bytes per encoded normal.
func (e NormalsEncoding) Components() int {
	if e == NormalsOct {
		return 2
	}
	return 3
}

// Layout is the version-pinned description of a container.
type Layout struct {
	Version int
	Framing Framing
	Fields  []Field

	// Primitives is set for the primitive-era layouts (4, 5), where geometry colors
	// are stored per primitive and placement matrices per entity.
	Primitives bool
	Normals    NormalsEncoding

	// Compressed reports whether elements are always deflated. Offset-table layouts
	// that allow either signal it with the high bit of the version word.
	Compressed          bool
	OptionalCompression bool
}

// Has reports whether the layout declares the named field.
func (l Layout) Has(name FieldName) bool {
	return l.index(name) >= 0
}

func (l Layout) index(name FieldName) int {
	for i, f := range l.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

var primitiveFields = []Field{
	{FieldPositions, TypeUint16},
	{FieldNormals, TypeInt8},
	{FieldIndices, TypeUint32},
	{FieldEdgeIndices, TypeUint32},
	{FieldMatrices, TypeFloat32},
	{FieldReusedPrimitivesDecodeMatrix, TypeFloat32},
	{FieldEachPrimitivePositionsAndNormalsPortion, TypeUint32},
	{FieldEachPrimitiveIndicesPortion, TypeUint32},
	{FieldEachPrimitiveEdgeIndicesPortion, TypeUint32},
	{FieldEachPrimitiveColorAndOpacity, TypeUint8},
	{FieldPrimitiveInstances, TypeUint32},
	{FieldEachEntityID, TypeJSON},
	{FieldEachEntityPrimitiveInstancesPortion, TypeUint32},
	{FieldEachEntityMatricesPortion, TypeUint32},
	{FieldEachTileAABB, TypeFloat32},
	{FieldEachTileEntitiesPortion, TypeUint32},
}

func geometryFields(colors, metadata bool, aabb ElementType) []Field {
	var fields []Field
	if metadata {
		fields = append(fields, Field{FieldMetadata, TypeJSON})
	}
	fields = append(fields, Field{FieldPositions, TypeUint16}, Field{FieldNormals, TypeInt8})
	if colors {
		fields = append(fields, Field{FieldColors, TypeUint8})
	}
	fields = append(fields,
		Field{FieldIndices, TypeUint32},
		Field{FieldEdgeIndices, TypeUint32},
		Field{FieldMatrices, TypeFloat32},
		Field{FieldReusedGeometriesDecodeMatrix, TypeFloat32},
		Field{FieldEachGeometryPrimitiveType, TypeUint8},
		Field{FieldEachGeometryPositionsPortion, TypeUint32},
		Field{FieldEachGeometryNormalsPortion, TypeUint32},
	)
	if colors {
		fields = append(fields, Field{FieldEachGeometryColorsPortion, TypeUint32})
	}
	fields = append(fields,
		Field{FieldEachGeometryIndicesPortion, TypeUint32},
		Field{FieldEachGeometryEdgeIndicesPortion, TypeUint32},
		Field{FieldEachMeshGeometriesPortion, TypeUint32},
		Field{FieldEachMeshMatricesPortion, TypeUint32},
		Field{FieldEachMeshMaterialAttributes, TypeUint8},
		Field{FieldEachEntityID, TypeJSON},
		Field{FieldEachEntityMeshesPortion, TypeUint32},
		Field{FieldEachTileAABB, aabb},
		Field{FieldEachTileEntitiesPortion, TypeUint32},
	)
	return fields
}

var texturedFields = []Field{
	{FieldMetadata, TypeJSON},
	{FieldTextureData, TypeUint8},
	{FieldEachTextureDataPortion, TypeUint32},
	{FieldEachTextureAttributes, TypeUint16},
	{FieldPositions, TypeUint16},
	{FieldNormals, TypeInt8},
	{FieldColors, TypeUint8},
	{FieldUVs, TypeFloat32},
	{FieldIndices, TypeUint32},
	{FieldEdgeIndices, TypeUint32},
	{FieldEachTextureSetTextures, TypeInt32},
	{FieldMatrices, TypeFloat32},
	{FieldReusedGeometriesDecodeMatrix, TypeFloat32},
	{FieldEachGeometryPrimitiveType, TypeUint8},
	{FieldEachGeometryPositionsPortion, TypeUint32},
	{FieldEachGeometryNormalsPortion, TypeUint32},
	{FieldEachGeometryColorsPortion, TypeUint32},
	{FieldEachGeometryUVsPortion, TypeUint32},
	{FieldEachGeometryIndicesPortion, TypeUint32},
	{FieldEachGeometryEdgeIndicesPortion, TypeUint32},
	{FieldEachMeshGeometriesPortion, TypeUint32},
	{FieldEachMeshMatricesPortion, TypeUint32},
	{FieldEachMeshTextureSet, TypeInt32},
	{FieldEachMeshMaterialAttributes, TypeUint8},
	{FieldEachEntityID, TypeJSON},
	{FieldEachEntityMeshesPortion, TypeUint32},
	{FieldEachTileAABB, TypeFloat64},
	{FieldEachTileEntitiesPortion, TypeUint32},
}

var layouts = map[int]Layout{
	4:  {Version: 4, Framing: FramingSequential, Fields: primitiveFields, Primitives: true, Normals: NormalsXYZ, Compressed: true},
	5:  {Version: 5, Framing: FramingSequential, Fields: primitiveFields, Primitives: true, Normals: NormalsOct, Compressed: true},
	6:  {Version: 6, Framing: FramingSequential, Fields: geometryFields(false, false, TypeFloat32), Normals: NormalsOct, Compressed: true},
	7:  {Version: 7, Framing: FramingSequential, Fields: geometryFields(true, false, TypeFloat32), Normals: NormalsOct, Compressed: true},
	8:  {Version: 8, Framing: FramingSequential, Fields: geometryFields(true, true, TypeFloat32), Normals: NormalsOct, Compressed: true},
	9:  {Version: 9, Framing: FramingSequential, Fields: geometryFields(true, true, TypeFloat64), Normals: NormalsOct, Compressed: true},
	10: {Version: 10, Framing: FramingSequential, Fields: texturedFields, Normals: NormalsOct, Compressed: true},
	11: {Version: 11, Framing: FramingOffsetTable, Fields: texturedFields, Normals: NormalsOct, Compressed: true},
	12: {Version: 12, Framing: FramingOffsetTable, Fields: texturedFields, Normals: NormalsOct, OptionalCompression: true},
}

// LookupLayout returns the layout for a version.
func LookupLayout(version int) (Layout, bool) {
	l, ok := layouts[version]
	return l, ok
}

// Versions returns all versions with a known layout, ascending.
func Versions() []int {
	versions := make([]int, 0, len(layouts))
	for v := range layouts {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// LatestVersion is the newest layout this package reads and writes.
const LatestVersion = 12
