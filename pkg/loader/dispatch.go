package loader

import (
	"sort"

	"github.com/Faultbox/xktkit/pkg/xkt"
)

// Registry maps container versions to decoders. There is no fallback between
// versions: a version without a registered decoder is rejected.
type Registry struct {
	decoders map[int]xkt.Decoder
}

// NewRegistry creates a registry holding the given decoders.
func NewRegistry(decoders ...xkt.Decoder) *Registry {
	r := &Registry{decoders: make(map[int]xkt.Decoder, len(decoders))}
	for _, d := range decoders {
		r.Register(d)
	}
	return r
}

// DefaultRegistry returns a registry with every version the xkt package reads.
func DefaultRegistry() *Registry {
	return NewRegistry(xkt.Decoders()...)
}

// Register adds or replaces the decoder for its version.
func (r *Registry) Register(d xkt.Decoder) {
	r.decoders[d.Version()] = d
}

// Versions returns the registered versions, ascending.
func (r *Registry) Versions() []int {
	versions := make([]int, 0, len(r.decoders))
	for v := range r.decoders {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// Lookup returns the decoder for a version.
func (r *Registry) Lookup(version int) (xkt.Decoder, error) {
	d, ok := r.decoders[version]
	if !ok {
		return nil, &xkt.UnsupportedVersionError{Version: version, Supported: r.Versions()}
	}
	return d, nil
}

// Parse reads the version word of buf and decodes it with the matching decoder.
func (r *Registry) Parse(buf []byte, opts xkt.DecodeOptions) (*xkt.Model, error) {
	header, err := xkt.ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	d, err := r.Lookup(header.Version)
	if err != nil {
		return nil, err
	}
	return d.Decode(buf, opts)
}
