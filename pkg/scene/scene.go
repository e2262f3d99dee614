// Package scene defines the scene-model creation contract the XKT loader writes to,
// a recorder that buffers creation calls until a load commits, and an in-memory
// scene model.
package scene

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl64"
)

// Scene model errors.
var (
	ErrDuplicateID = errors.New("duplicate scene object id")
	ErrUnknownID   = errors.New("unknown scene object id")
	ErrInvalid     = errors.New("invalid scene object")
)

// Primitive is the render primitive of a geometry.
type Primitive uint8

const (
	PrimitiveSolid   Primitive = iota // Closed triangle mesh
	PrimitiveSurface                  // Open triangle mesh
	PrimitivePoints                   // Point cloud
	PrimitiveLines                    // Line segment list
)

// String returns a human-readable primitive name.
func (p Primitive) String() string {
	switch p {
	case PrimitiveSolid:
		return "solid"
	case PrimitiveSurface:
		return "surface"
	case PrimitivePoints:
		return "points"
	case PrimitiveLines:
		return "lines"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// GeometryData is the vertex data of a geometry, either shared through a geometry id
// or inlined into a mesh.
type GeometryData struct {
	Primitive Primitive

	// PositionsCompressed holds quantized xyz positions decoded by PositionsDecodeMatrix.
	PositionsCompressed   []uint16
	PositionsDecodeMatrix mgl64.Mat4

	// NormalsCompressed holds signed-byte normals: two per vertex when NormalsOct is
	// set, three otherwise.
	NormalsCompressed []int8
	NormalsOct        bool

	Colors      []uint8 // RGBA per vertex
	UVs         []float32
	Indices     []uint32
	EdgeIndices []uint32
}

// NumVertices returns the number of vertices.
func (g *GeometryData) NumVertices() int {
	return len(g.PositionsCompressed) / 3
}

// GeometryParams creates a reusable geometry.
type GeometryParams struct {
	ID string
	GeometryData
}

// MeshParams creates a mesh. Exactly one of GeometryID and Geometry is set.
type MeshParams struct {
	ID         string
	GeometryID string
	Geometry   *GeometryData

	// Origin is the relative-to-center offset added after Matrix.
	Origin mgl64.Vec3
	// Matrix places instanced geometry; nil for inline geometry.
	Matrix *mgl64.Mat4

	Color        [3]float32
	Opacity      float32
	Metallic     float32
	Roughness    float32
	TextureSetID string
}

// EntityParams creates an entity from previously created meshes.
type EntityParams struct {
	ID       string
	IsObject bool
	MeshIDs  []string

	// Nil leaves the scene model's default.
	Visible  *bool
	Pickable *bool
}

// TextureParams creates a texture from either encoded bytes or a decoded image.
type TextureParams struct {
	ID        string
	Data      []byte
	Image     image.Image
	MediaType string
	Width     int
	Height    int

	MinFilter uint16
	MagFilter uint16
	WrapS     uint16
	WrapT     uint16
	WrapR     uint16
}

// TextureSetParams creates a texture set; empty ids leave a slot unset.
type TextureSetParams struct {
	ID                         string
	ColorTextureID             string
	MetallicRoughnessTextureID string
	NormalsTextureID           string
	EmissiveTextureID          string
	OcclusionTextureID         string
}

// Model is the scene-model creation API consumed by the loader.
type Model interface {
	CreateGeometry(p GeometryParams) error
	CreateMesh(p MeshParams) error
	CreateEntity(p EntityParams) error
	CreateTexture(p TextureParams) error
	CreateTextureSet(p TextureSetParams) error
}

// Tx is an open creation transaction on a model.
type Tx interface {
	// Commit keeps everything created since Begin.
	Commit()
	// Rollback removes everything created since Begin.
	Rollback()
}

// Transactional is implemented by models that can undo a partially applied commit.
type Transactional interface {
	Begin() Tx
}
