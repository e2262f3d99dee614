package loader

import (
	"slices"

	"github.com/Faultbox/xktkit/pkg/metadata"
)

// Filter selects which entities a load emits. Type masks need a metadata record;
// entities without one are kept unless ExcludeUnclassified is set.
type Filter struct {
	IncludeTypes        []string
	ExcludeTypes        []string
	IncludeIDs          []string
	ExcludeUnclassified bool
}

// Skip reports whether the entity id is filtered out and returns its metadata record,
// if any. Precedence: excluded type, then the include-type list, then the id list.
func (f Filter) Skip(id string, store metadata.ObjectStore) (bool, *metadata.Object) {
	var obj *metadata.Object
	if store != nil {
		obj, _ = store.MetaObject(id)
	}
	if obj == nil {
		return f.ExcludeUnclassified, nil
	}

	if slices.Contains(f.ExcludeTypes, obj.Type) {
		return true, obj
	}
	if len(f.IncludeTypes) > 0 && !slices.Contains(f.IncludeTypes, obj.Type) {
		return true, obj
	}
	if len(f.IncludeIDs) > 0 && !slices.Contains(f.IncludeIDs, id) {
		return true, obj
	}
	return false, obj
}
