package scene

// Recorder buffers creation calls and replays them into a target model on Commit.
// A load that fails before Commit leaves the target untouched.
type Recorder struct {
	calls []func(Model) error

	Geometries  int
	Meshes      int
	Entities    int
	Textures    int
	TextureSets int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// CreateGeometry records a geometry creation.
func (r *Recorder) CreateGeometry(p GeometryParams) error {
	r.Geometries++
	r.calls = append(r.calls, func(m Model) error { return m.CreateGeometry(p) })
	return nil
}

// CreateMesh records a mesh creation.
func (r *Recorder) CreateMesh(p MeshParams) error {
	r.Meshes++
	r.calls = append(r.calls, func(m Model) error { return m.CreateMesh(p) })
	return nil
}

// CreateEntity records an entity creation.
func (r *Recorder) CreateEntity(p EntityParams) error {
	r.Entities++
	r.calls = append(r.calls, func(m Model) error { return m.CreateEntity(p) })
	return nil
}

// CreateTexture records a texture creation.
func (r *Recorder) CreateTexture(p TextureParams) error {
	r.Textures++
	r.calls = append(r.calls, func(m Model) error { return m.CreateTexture(p) })
	return nil
}

// CreateTextureSet records a texture set creation.
func (r *Recorder) CreateTextureSet(p TextureSetParams) error {
	r.TextureSets++
	r.calls = append(r.calls, func(m Model) error { return m.CreateTextureSet(p) })
	return nil
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	return len(r.calls)
}

// Commit replays the recorded calls into target in order and clears the recorder.
// It stops at the first error the target returns. A Transactional target is rolled
// back to its state before Commit; other targets keep the calls that succeeded.
func (r *Recorder) Commit(target Model) error {
	calls := r.calls
	r.Reset()

	var tx Tx
	if t, ok := target.(Transactional); ok {
		tx = t.Begin()
	}
	for _, call := range calls {
		if err := call(target); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return err
		}
	}
	if tx != nil {
		tx.Commit()
	}
	return nil
}

// Reset discards all recorded calls.
func (r *Recorder) Reset() {
	*r = Recorder{}
}
