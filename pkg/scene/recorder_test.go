package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_CommitReplaysInOrder(t *testing.T) {
	r := NewRecorder()
	r.CreateGeometry(testGeometry("g"))
	r.CreateMesh(MeshParams{ID: "m", GeometryID: "g"})
	r.CreateEntity(EntityParams{ID: "e", MeshIDs: []string{"m"}})

	require.Equal(t, 3, r.Len())
	assert.Equal(t, 1, r.Geometries)
	assert.Equal(t, 1, r.Meshes)
	assert.Equal(t, 1, r.Entities)

	m := NewMemory()
	require.NoError(t, r.Commit(m))
	_, ok := m.Entity("e")
	assert.True(t, ok, "entity e not committed")
	assert.Zero(t, r.Len(), "recorder should be empty after commit")
}

func TestRecorder_NothingReachesTargetBeforeCommit(t *testing.T) {
	r := NewRecorder()
	r.CreateGeometry(testGeometry("g"))

	m := NewMemory()
	r.Reset()
	require.NoError(t, r.Commit(m))
	g, _, _, _, _ := m.Counts()
	assert.Zero(t, g)
}

func TestRecorder_FailedCommitRollsBack(t *testing.T) {
	r := NewRecorder()
	r.CreateGeometry(testGeometry("g"))
	r.CreateMesh(MeshParams{ID: "m", GeometryID: "g"})
	r.CreateEntity(EntityParams{ID: "e", MeshIDs: []string{"m"}})
	r.CreateMesh(MeshParams{ID: "m2", GeometryID: "missing"})

	m := NewMemory()
	err := r.Commit(m)
	require.ErrorIs(t, err, ErrUnknownID)

	geometries, meshes, entities, textures, sets := m.Counts()
	assert.Zero(t, geometries+meshes+entities+textures+sets, "failed commit must leave the target empty")
	assert.Empty(t, m.EntityIDs())
}

func TestRecorder_FailedCommitKeepsEarlierContent(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.CreateGeometry(testGeometry("g")))
	require.NoError(t, m.CreateMesh(MeshParams{ID: "m", GeometryID: "g"}))
	require.NoError(t, m.CreateEntity(EntityParams{ID: "e", MeshIDs: []string{"m"}}))

	r := NewRecorder()
	r.CreateMesh(MeshParams{ID: "m2", GeometryID: "g"})
	r.CreateEntity(EntityParams{ID: "e2", MeshIDs: []string{"m2"}})
	r.CreateEntity(EntityParams{ID: "e", MeshIDs: []string{"m2"}})

	require.ErrorIs(t, r.Commit(m), ErrDuplicateID)

	_, meshes, entities, _, _ := m.Counts()
	assert.Equal(t, 1, meshes)
	assert.Equal(t, 1, entities)
	assert.Equal(t, []string{"e"}, m.EntityIDs())
	_, ok := m.Mesh("m2")
	assert.False(t, ok)
}

func TestRecorder_NonTransactionalTargetKeepsPrefix(t *testing.T) {
	r := NewRecorder()
	r.CreateGeometry(testGeometry("g"))
	r.CreateMesh(MeshParams{ID: "m", GeometryID: "missing"})

	// Embedding only the interface hides Begin
	mem := NewMemory()
	var target Model = struct{ Model }{mem}
	_, transactional := target.(Transactional)
	require.False(t, transactional)

	require.ErrorIs(t, r.Commit(target), ErrUnknownID)
	g, _, _, _, _ := mem.Counts()
	assert.Equal(t, 1, g, "calls before the failure stay in a plain target")
}
