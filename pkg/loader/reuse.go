package loader

import (
	"fmt"

	"github.com/Faultbox/xktkit/pkg/xkt"
)

// Reuse classifies a geometry by how many meshes reference it.
type Reuse uint8

const (
	// Unique geometries are referenced by at most one mesh and are stored
	// pre-transformed, quantized against their tile.
	Unique Reuse = iota
	// Reused geometries are instanced with a per-mesh placement matrix.
	Reused
)

// String returns the classification name.
func (r Reuse) String() string {
	if r == Reused {
		return "reused"
	}
	return "unique"
}

// CountGeometryUses returns the number of meshes referencing each geometry.
func CountGeometryUses(eachMeshGeometriesPortion []uint32, numGeometries int) ([]int, error) {
	uses := make([]int, numGeometries)
	for mesh, g := range eachMeshGeometriesPortion {
		if int(g) >= numGeometries {
			return nil, fmt.Errorf("%w: mesh %d references geometry %d of %d",
				xkt.ErrCorruptContainer, mesh, g, numGeometries)
		}
		uses[g]++
	}
	return uses, nil
}

// Classify returns the classification of a geometry used count times.
func Classify(count int) Reuse {
	if count > 1 {
		return Reused
	}
	return Unique
}

// BatchPolicy decides whether the occurrences of a reused geometry are baked into
// their tile instead of instanced.
type BatchPolicy interface {
	ForceBatch(numPositions, uses int) bool
}

// NeverForceBatch instances every reused geometry.
type NeverForceBatch struct{}

// ForceBatch always returns false.
func (NeverForceBatch) ForceBatch(int, int) bool { return false }

// AlwaysForceBatch bakes every reused geometry.
type AlwaysForceBatch struct{}

// ForceBatch always returns true.
func (AlwaysForceBatch) ForceBatch(int, int) bool { return true }

// ThresholdPolicy bakes reused geometries of at most MaxPositions vertices, unless
// they are used at least MinUses times. MinUses 0 disables the use limit.
type ThresholdPolicy struct {
	MaxPositions int
	MinUses      int
}

// ForceBatch applies the thresholds.
func (p ThresholdPolicy) ForceBatch(numPositions, uses int) bool {
	if numPositions > p.MaxPositions {
		return false
	}
	return p.MinUses == 0 || uses < p.MinUses
}
