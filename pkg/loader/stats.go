package loader

import (
	"time"

	"github.com/Faultbox/xktkit/pkg/metadata"
)

// Stats counts what a load created and skipped.
type Stats struct {
	Version int
	Tiles   int

	Entities         int
	EntitiesFiltered int
	EntitiesEmpty    int

	Meshes            int
	UnknownPrimitives int
	DegenerateMeshes  int

	Geometries   int
	Instanced    int
	ForceBatched int

	Textures          int
	TexturesUndecoded int
	TextureSets       int

	Duration time.Duration
}

// MeshesSkipped returns the number of meshes dropped without failing the load.
func (s Stats) MeshesSkipped() int {
	return s.UnknownPrimitives + s.DegenerateMeshes
}

// Result is the outcome of a successful load.
type Result struct {
	Stats Stats
	// EntityIDs lists the emitted entities in creation order.
	EntityIDs []string
	// MetaStore is the store built from embedded metadata, if one was built.
	MetaStore *metadata.Store
}
