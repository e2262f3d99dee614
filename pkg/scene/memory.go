package scene

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/xktkit/pkg/math"
)

// Memory is an in-memory scene model. It rejects duplicate ids and references to
// objects that were not created first.
type Memory struct {
	mu sync.RWMutex

	geometries  map[string]*GeometryParams
	meshes      map[string]*MeshParams
	entities    map[string]*EntityParams
	textures    map[string]*TextureParams
	textureSets map[string]*TextureSetParams

	entityOrder []string

	txs map[*memoryTx]struct{}
}

type objectKind uint8

const (
	kindGeometry objectKind = iota
	kindMesh
	kindEntity
	kindTexture
	kindTextureSet
)

type created struct {
	kind objectKind
	id   string
}

// NewMemory creates an empty in-memory scene model.
func NewMemory() *Memory {
	return &Memory{
		geometries:  make(map[string]*GeometryParams),
		meshes:      make(map[string]*MeshParams),
		entities:    make(map[string]*EntityParams),
		textures:    make(map[string]*TextureParams),
		textureSets: make(map[string]*TextureSetParams),
		txs:         make(map[*memoryTx]struct{}),
	}
}

// memoryTx journals the ids created while it is open.
type memoryTx struct {
	m       *Memory
	created []created
}

// Begin opens a transaction. Rollback removes every object created through the
// model while the transaction is open.
func (m *Memory) Begin() Tx {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{m: m}
	m.txs[tx] = struct{}{}
	return tx
}

// record journals a creation; the caller holds the write lock.
func (m *Memory) record(kind objectKind, id string) {
	for tx := range m.txs {
		tx.created = append(tx.created, created{kind: kind, id: id})
	}
}

func (tx *memoryTx) Commit() {
	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()
	delete(tx.m.txs, tx)
	tx.created = nil
}

func (tx *memoryTx) Rollback() {
	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[tx]; !ok {
		return
	}
	delete(m.txs, tx)

	entities := make(map[string]bool)
	for _, c := range tx.created {
		switch c.kind {
		case kindGeometry:
			delete(m.geometries, c.id)
		case kindMesh:
			delete(m.meshes, c.id)
		case kindEntity:
			delete(m.entities, c.id)
			entities[c.id] = true
		case kindTexture:
			delete(m.textures, c.id)
		case kindTextureSet:
			delete(m.textureSets, c.id)
		}
	}
	if len(entities) > 0 {
		order := m.entityOrder[:0]
		for _, id := range m.entityOrder {
			if !entities[id] {
				order = append(order, id)
			}
		}
		m.entityOrder = order
	}
	tx.created = nil
}

// CreateGeometry stores a geometry.
func (m *Memory) CreateGeometry(p GeometryParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.geometries[p.ID]; ok {
		return fmt.Errorf("%w: geometry %q", ErrDuplicateID, p.ID)
	}
	if p.NumVertices() == 0 {
		return fmt.Errorf("%w: geometry %q has no positions", ErrInvalid, p.ID)
	}
	m.geometries[p.ID] = &p
	m.record(kindGeometry, p.ID)
	return nil
}

// CreateMesh stores a mesh.
func (m *Memory) CreateMesh(p MeshParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.meshes[p.ID]; ok {
		return fmt.Errorf("%w: mesh %q", ErrDuplicateID, p.ID)
	}
	switch {
	case p.GeometryID != "" && p.Geometry != nil:
		return fmt.Errorf("%w: mesh %q has both geometry id and inline geometry", ErrInvalid, p.ID)
	case p.GeometryID != "":
		if _, ok := m.geometries[p.GeometryID]; !ok {
			return fmt.Errorf("%w: mesh %q geometry %q", ErrUnknownID, p.ID, p.GeometryID)
		}
	case p.Geometry == nil:
		return fmt.Errorf("%w: mesh %q has no geometry", ErrInvalid, p.ID)
	}
	if p.TextureSetID != "" {
		if _, ok := m.textureSets[p.TextureSetID]; !ok {
			return fmt.Errorf("%w: mesh %q texture set %q", ErrUnknownID, p.ID, p.TextureSetID)
		}
	}
	m.meshes[p.ID] = &p
	m.record(kindMesh, p.ID)
	return nil
}

// CreateEntity stores an entity.
func (m *Memory) CreateEntity(p EntityParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[p.ID]; ok {
		return fmt.Errorf("%w: entity %q", ErrDuplicateID, p.ID)
	}
	if len(p.MeshIDs) == 0 {
		return fmt.Errorf("%w: entity %q has no meshes", ErrInvalid, p.ID)
	}
	for _, id := range p.MeshIDs {
		if _, ok := m.meshes[id]; !ok {
			return fmt.Errorf("%w: entity %q mesh %q", ErrUnknownID, p.ID, id)
		}
	}
	m.entities[p.ID] = &p
	m.entityOrder = append(m.entityOrder, p.ID)
	m.record(kindEntity, p.ID)
	return nil
}

// CreateTexture stores a texture.
func (m *Memory) CreateTexture(p TextureParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.textures[p.ID]; ok {
		return fmt.Errorf("%w: texture %q", ErrDuplicateID, p.ID)
	}
	m.textures[p.ID] = &p
	m.record(kindTexture, p.ID)
	return nil
}

// CreateTextureSet stores a texture set.
func (m *Memory) CreateTextureSet(p TextureSetParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.textureSets[p.ID]; ok {
		return fmt.Errorf("%w: texture set %q", ErrDuplicateID, p.ID)
	}
	for _, id := range []string{p.ColorTextureID, p.MetallicRoughnessTextureID, p.NormalsTextureID, p.EmissiveTextureID, p.OcclusionTextureID} {
		if id == "" {
			continue
		}
		if _, ok := m.textures[id]; !ok {
			return fmt.Errorf("%w: texture set %q texture %q", ErrUnknownID, p.ID, id)
		}
	}
	m.textureSets[p.ID] = &p
	m.record(kindTextureSet, p.ID)
	return nil
}

// Geometry returns a geometry by id.
func (m *Memory) Geometry(id string) (*GeometryParams, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.geometries[id]
	return g, ok
}

// Mesh returns a mesh by id.
func (m *Memory) Mesh(id string) (*MeshParams, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mesh, ok := m.meshes[id]
	return mesh, ok
}

// Entity returns an entity by id.
func (m *Memory) Entity(id string) (*EntityParams, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	return e, ok
}

// Texture returns a texture by id.
func (m *Memory) Texture(id string) (*TextureParams, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.textures[id]
	return t, ok
}

// TextureSet returns a texture set by id.
func (m *Memory) TextureSet(id string) (*TextureSetParams, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.textureSets[id]
	return ts, ok
}

// EntityIDs returns entity ids in creation order.
func (m *Memory) EntityIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.entityOrder...)
}

// Counts returns the number of stored objects of each kind.
func (m *Memory) Counts() (geometries, meshes, entities, textures, textureSets int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.geometries), len(m.meshes), len(m.entities), len(m.textures), len(m.textureSets)
}

// MeshGeometry returns the vertex data a mesh draws, shared or inline.
func (m *Memory) MeshGeometry(meshID string) (*GeometryData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mesh, ok := m.meshes[meshID]
	if !ok {
		return nil, fmt.Errorf("%w: mesh %q", ErrUnknownID, meshID)
	}
	if mesh.Geometry != nil {
		return mesh.Geometry, nil
	}
	g, ok := m.geometries[mesh.GeometryID]
	if !ok {
		return nil, fmt.Errorf("%w: geometry %q", ErrUnknownID, mesh.GeometryID)
	}
	return &g.GeometryData, nil
}

// MeshWorldPositions returns the world-space vertex positions of a mesh:
// origin + matrix · decode · quantized.
func (m *Memory) MeshWorldPositions(meshID string) ([]mgl64.Vec3, error) {
	g, err := m.MeshGeometry(meshID)
	if err != nil {
		return nil, err
	}
	mesh, _ := m.Mesh(meshID)

	transform := g.PositionsDecodeMatrix
	if mesh.Matrix != nil {
		transform = mesh.Matrix.Mul4(transform)
	}
	transform = mgl64.Translate3D(mesh.Origin[0], mesh.Origin[1], mesh.Origin[2]).Mul4(transform)

	q := g.PositionsCompressed
	out := make([]mgl64.Vec3, 0, len(q)/3)
	for i := 0; i+2 < len(q); i += 3 {
		out = append(out, math.TransformPoint(transform, mgl64.Vec3{float64(q[i]), float64(q[i+1]), float64(q[i+2])}))
	}
	return out, nil
}
