// Package metadata provides the object metadata collaborators of an XKT load: a
// meta-object store keyed by entity id and a per-type table of visual defaults.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidMetamodel is returned for metamodel JSON that cannot be read.
var ErrInvalidMetamodel = errors.New("invalid metamodel")

// Object is one metadata record.
type Object struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type           string   `json:"type" yaml:"type"`
	Parent         string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	PropertySetIDs []string `json:"propertySetIds,omitempty" yaml:"propertySetIds,omitempty"`
}

// ObjectStore looks up metadata records by (possibly globalized) entity id.
type ObjectStore interface {
	MetaObject(id string) (*Object, bool)
}

// Store is an in-memory ObjectStore with a parent/child index.
type Store struct {
	objects  map[string]*Object
	children map[string][]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		objects:  make(map[string]*Object),
		children: make(map[string][]string),
	}
}

type metamodel struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	MetaObjects []*Object `json:"metaObjects"`
}

// NewStoreFromJSON reads a metamodel document ({"metaObjects": [...]}). A non-empty
// idPrefix is prepended to every object and parent id, matching globalized entity ids.
func NewStoreFromJSON(data []byte, idPrefix string) (*Store, error) {
	var doc metamodel
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetamodel, err)
	}

	s := NewStore()
	for i, obj := range doc.MetaObjects {
		if obj == nil || obj.ID == "" {
			return nil, fmt.Errorf("%w: meta object %d has no id", ErrInvalidMetamodel, i)
		}
		o := *obj
		o.ID = idPrefix + o.ID
		if o.Parent != "" {
			o.Parent = idPrefix + o.Parent
		}
		if err := s.Add(&o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts an object. Ids must be unique.
func (s *Store) Add(obj *Object) error {
	if _, ok := s.objects[obj.ID]; ok {
		return fmt.Errorf("%w: duplicate meta object %q", ErrInvalidMetamodel, obj.ID)
	}
	s.objects[obj.ID] = obj
	if obj.Parent != "" {
		s.children[obj.Parent] = append(s.children[obj.Parent], obj.ID)
	}
	return nil
}

// MetaObject returns the record for id.
func (s *Store) MetaObject(id string) (*Object, bool) {
	obj, ok := s.objects[id]
	return obj, ok
}

// Children returns the ids of the direct children of id, in insertion order.
func (s *Store) Children(id string) []string {
	return s.children[id]
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.objects)
}

// Types returns the distinct object types with their record counts.
func (s *Store) Types() map[string]int {
	types := make(map[string]int)
	for _, obj := range s.objects {
		types[obj.Type]++
	}
	return types
}

// IDs returns all record ids, sorted.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
