package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/xktkit/pkg/metadata"
)

func TestFilterSkip(t *testing.T) {
	store := metadata.NewStore()
	store.Add(&metadata.Object{ID: "w", Type: "IfcWall"})
	store.Add(&metadata.Object{ID: "s", Type: "IfcSpace"})

	tests := []struct {
		name   string
		filter Filter
		id     string
		store  metadata.ObjectStore
		skip   bool
	}{
		{"empty filter", Filter{}, "w", store, false},
		{"excluded type", Filter{ExcludeTypes: []string{"IfcWall"}}, "w", store, true},
		{"exclude beats include", Filter{IncludeTypes: []string{"IfcWall"}, ExcludeTypes: []string{"IfcWall"}}, "w", store, true},
		{"not included", Filter{IncludeTypes: []string{"IfcSpace"}}, "w", store, true},
		{"included", Filter{IncludeTypes: []string{"IfcSpace"}}, "s", store, false},
		{"include beats id list", Filter{IncludeTypes: []string{"IfcSpace"}, IncludeIDs: []string{"w"}}, "w", store, true},
		{"id not listed", Filter{IncludeIDs: []string{"s"}}, "w", store, true},
		{"id listed", Filter{IncludeIDs: []string{"w"}}, "w", store, false},
		{"unclassified kept", Filter{ExcludeTypes: []string{"IfcWall"}}, "x", store, false},
		{"unclassified excluded", Filter{ExcludeUnclassified: true}, "x", store, true},
		{"no store", Filter{IncludeTypes: []string{"IfcWall"}}, "w", nil, false},
		{"no store excluded", Filter{ExcludeUnclassified: true}, "w", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, obj := tt.filter.Skip(tt.id, tt.store)
			assert.Equal(t, tt.skip, skip)
			if tt.store != nil && tt.id != "x" {
				if assert.NotNil(t, obj) {
					assert.Equal(t, tt.id, obj.ID)
				}
			} else {
				assert.Nil(t, obj)
			}
		})
	}
}
