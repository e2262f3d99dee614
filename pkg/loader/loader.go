// Package loader assembles decoded XKT containers into a scene model: it dispatches
// on the container version, decides per geometry between instancing and batching,
// rebases positions onto per-tile origins, and emits entities filtered and styled
// by their object metadata.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/xktkit/pkg/math"
	"github.com/Faultbox/xktkit/pkg/metadata"
	"github.com/Faultbox/xktkit/pkg/scene"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// Loader loads containers into scene models.
type Loader struct {
	registry *Registry
	opts     Options
}

// New creates a loader with the default registry.
func New(opts Options) *Loader {
	return &Loader{registry: DefaultRegistry(), opts: opts.withDefaults()}
}

// WithRegistry returns a copy of the loader that dispatches through r.
func (l *Loader) WithRegistry(r *Registry) *Loader {
	c := *l
	c.registry = r
	return &c
}

// Options returns the effective options.
func (l *Loader) Options() Options {
	return l.opts
}

// Parse decodes buf without assembling it.
func (l *Loader) Parse(buf []byte) (*xkt.Model, error) {
	return l.registry.Parse(buf, xkt.DecodeOptions{Codec: l.opts.Codec, Workers: l.opts.Workers})
}

// Load decodes buf and creates its textures, geometries, meshes and entities in
// target. Creation calls are buffered and replayed into target only when the whole
// container assembled without error; a failed or cancelled load creates nothing.
func (l *Loader) Load(ctx context.Context, buf []byte, target scene.Model) (*Result, error) {
	started := time.Now()
	log := l.opts.Logger.With(zap.String("model", l.opts.ModelID))

	m, err := l.Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("parsing container: %w", err)
	}
	log.Info("container decoded",
		zap.Int("version", m.Version),
		zap.Int("tiles", m.NumTiles()),
		zap.Int("entities", m.NumEntities()),
		zap.Int("meshes", m.NumMeshes()),
		zap.Int("geometries", m.NumGeometries()))

	result := &Result{}
	store := l.opts.MetaStore
	if store == nil && l.opts.UseEmbeddedMetadata && len(m.Metadata) > 0 {
		prefix := ""
		if l.opts.GlobalizeIDs {
			prefix = l.opts.ModelID + "#"
		}
		built, err := metadata.NewStoreFromJSON(m.Metadata, prefix)
		if err != nil {
			return nil, fmt.Errorf("reading embedded metadata: %w", err)
		}
		result.MetaStore = built
		store = built
	}

	uses, err := CountGeometryUses(m.EachMeshGeometriesPortion, m.NumGeometries())
	if err != nil {
		return nil, err
	}

	rec := scene.NewRecorder()
	a := &assembler{
		model:        m,
		opts:         l.opts,
		store:        store,
		out:          rec,
		log:          log,
		stats:        &result.Stats,
		uses:         uses,
		reusedDecode: mgl64.Ident4(),
		geometries:   make(map[geometryKey]string),
		seen:         make(map[string]struct{}),
	}
	if len(m.ReusedGeometriesDecodeMatrix) == xkt.MatrixStride {
		a.reusedDecode = math.FromRowMajor(m.ReusedGeometriesDecodeMatrix)
	}
	result.Stats.Version = m.Version
	result.Stats.Tiles = m.NumTiles()

	if a.textureSetIDs, err = a.createTextures(); err != nil {
		return nil, err
	}
	for t := 0; t < m.NumTiles(); t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.assembleTile(newTile(m, t)); err != nil {
			return nil, fmt.Errorf("tile %d: %w", t, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := rec.Commit(target); err != nil {
		return nil, fmt.Errorf("committing scene: %w", err)
	}
	result.EntityIDs = a.entityIDs
	result.Stats.Duration = time.Since(started)

	log.Info("model loaded",
		zap.Int("entities", result.Stats.Entities),
		zap.Int("meshes", result.Stats.Meshes),
		zap.Int("geometries", result.Stats.Geometries),
		zap.Int("meshesSkipped", result.Stats.MeshesSkipped()),
		zap.Int("entitiesFiltered", result.Stats.EntitiesFiltered),
		zap.Duration("duration", result.Stats.Duration))
	return result, nil
}

// Load loads buf into target with a one-off loader.
func Load(ctx context.Context, buf []byte, target scene.Model, opts Options) (*Result, error) {
	return New(opts).Load(ctx, buf, target)
}
