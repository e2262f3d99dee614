package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetamodel = `{
  "id": "house",
  "projectId": "p1",
  "metaObjects": [
    {"id": "site", "name": "Site", "type": "IfcSite"},
    {"id": "wall1", "name": "Wall", "type": "IfcWall", "parent": "site"},
    {"id": "win1", "name": "Window", "type": "IfcWindow", "parent": "site"}
  ]
}`

func TestNewStoreFromJSON(t *testing.T) {
	s, err := NewStoreFromJSON([]byte(testMetamodel), "")
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	wall, ok := s.MetaObject("wall1")
	require.True(t, ok)
	assert.Equal(t, "IfcWall", wall.Type)
	assert.Equal(t, "site", wall.Parent)
	assert.Equal(t, []string{"wall1", "win1"}, s.Children("site"))
	assert.Equal(t, map[string]int{"IfcSite": 1, "IfcWall": 1, "IfcWindow": 1}, s.Types())

	_, ok = s.MetaObject("missing")
	assert.False(t, ok)
}

func TestNewStoreFromJSON_Prefix(t *testing.T) {
	s, err := NewStoreFromJSON([]byte(testMetamodel), "house#")
	require.NoError(t, err)

	wall, ok := s.MetaObject("house#wall1")
	require.True(t, ok)
	assert.Equal(t, "house#site", wall.Parent)
	assert.Equal(t, []string{"house#site", "house#wall1", "house#win1"}, s.IDs())
}

func TestNewStoreFromJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing id", `{"metaObjects":[{"type":"IfcWall"}]}`},
		{"duplicate id", `{"metaObjects":[{"id":"a","type":"X"},{"id":"a","type":"Y"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStoreFromJSON([]byte(tt.data), "")
			assert.ErrorIs(t, err, ErrInvalidMetamodel)
		})
	}
}

func TestLookup_FallsBackToDefault(t *testing.T) {
	table := Table{
		"IfcSpace":  {Visible: boolp(false)},
		DefaultType: {Opacity: floatp(0.9)},
	}

	d, ok := Lookup(table, "IfcSpace")
	require.True(t, ok)
	require.NotNil(t, d.Visible)
	assert.False(t, *d.Visible)

	d, ok = Lookup(table, "IfcWall")
	require.True(t, ok)
	require.NotNil(t, d.Opacity)
	assert.InDelta(t, 0.9, *d.Opacity, 1e-6)

	_, ok = Lookup(Table{}, "IfcWall")
	assert.False(t, ok)

	_, ok = Lookup(nil, "IfcWall")
	assert.False(t, ok)
}

func TestParseTable(t *testing.T) {
	data := []byte(`
IfcSpace:
  visible: false
  pickable: false
IfcWindow:
  colorize: [0.1, 0.2, 0.3]
  opacity: 0.4
DEFAULT:
`)
	table, err := ParseTable(data)
	require.NoError(t, err)
	require.Len(t, table, 3)

	space := table["IfcSpace"]
	require.NotNil(t, space.Visible)
	assert.False(t, *space.Visible)
	assert.Nil(t, space.Colorize)

	window := table["IfcWindow"]
	require.NotNil(t, window.Colorize)
	assert.InDelta(t, 0.2, window.Colorize[1], 1e-6)
	assert.InDelta(t, 0.4, *window.Opacity, 1e-6)

	assert.NotNil(t, table[DefaultType])

	_, err = ParseTable([]byte("IfcWall: [1, 2"))
	assert.Error(t, err)
}

func TestLoadTableAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, os.WriteFile(path, []byte("IfcWall:\n  opacity: 0.5\n"), 0644))

	custom, err := LoadTable(path)
	require.NoError(t, err)

	merged := IFCDefaults().Merge(custom)
	wall, ok := merged.ObjectDefaults("IfcWall")
	require.True(t, ok)
	assert.Nil(t, wall.Colorize)
	assert.InDelta(t, 0.5, *wall.Opacity, 1e-6)

	space, ok := merged.ObjectDefaults("IfcSpace")
	require.True(t, ok)
	assert.False(t, *space.Pickable)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
