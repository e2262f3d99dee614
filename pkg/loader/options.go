package loader

import (
	"go.uber.org/zap"

	"github.com/Faultbox/xktkit/pkg/metadata"
	"github.com/Faultbox/xktkit/pkg/xkt"
)

// DefaultModelID prefixes generated ids when Options.ModelID is empty.
const DefaultModelID = "model"

// Options configures a load.
type Options struct {
	// ModelID prefixes every generated geometry, mesh and texture id.
	ModelID string
	// GlobalizeIDs rewrites entity ids to "<ModelID>#<id>".
	GlobalizeIDs bool

	Filter   Filter
	Defaults metadata.DefaultsTable

	// MetaStore resolves entity metadata. When nil and UseEmbeddedMetadata is set,
	// a store is built from the container's metadata section.
	MetaStore           metadata.ObjectStore
	UseEmbeddedMetadata bool

	// BatchPolicy selects reused geometries to bake instead of instance. Nil means
	// NeverForceBatch.
	BatchPolicy BatchPolicy

	// DecodeTextures decodes encoded texture bytes into images.
	DecodeTextures bool

	// Workers > 1 inflates container elements concurrently.
	Workers int
	Codec   xkt.Codec

	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ModelID == "" {
		o.ModelID = DefaultModelID
	}
	if o.BatchPolicy == nil {
		o.BatchPolicy = NeverForceBatch{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// EntityID returns the scene id of a stored entity id.
func (o Options) EntityID(rawID string) string {
	if !o.GlobalizeIDs {
		return rawID
	}
	modelID := o.ModelID
	if modelID == "" {
		modelID = DefaultModelID
	}
	return modelID + "#" + rawID
}
