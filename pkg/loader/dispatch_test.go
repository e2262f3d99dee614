package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/xktkit/pkg/xkt"
)

// fixedDecoder returns the same model for any buffer.
type fixedDecoder struct {
	version int
	model   *xkt.Model
}

func (d fixedDecoder) Version() int       { return d.version }
func (d fixedDecoder) Layout() xkt.Layout { return xkt.Layout{Version: d.version} }
func (d fixedDecoder) Decode([]byte, xkt.DecodeOptions) (*xkt.Model, error) {
	return d.model, nil
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []int{4, 5, 6, 7, 8, 9, 10, 11, 12}, r.Versions())

	for _, v := range r.Versions() {
		d, err := r.Lookup(v)
		require.NoError(t, err)
		assert.Equal(t, v, d.Version())
		assert.Equal(t, v, d.Layout().Version)
	}

	_, err := r.Lookup(3)
	var uv *xkt.UnsupportedVersionError
	require.True(t, errors.As(err, &uv))
	assert.Equal(t, 3, uv.Version)
}

func TestRegistry_CustomDecoder(t *testing.T) {
	want := &xkt.Model{Version: 13}
	r := NewRegistry(fixedDecoder{version: 13, model: want})

	buf := []byte{13, 0, 0, 0}
	got, err := r.Parse(buf, xkt.DecodeOptions{})
	require.NoError(t, err)
	assert.Same(t, want, got)

	_, err = r.Parse([]byte{12, 0, 0, 0}, xkt.DecodeOptions{})
	assert.ErrorIs(t, err, xkt.ErrUnsupportedVersion)

	_, err = r.Parse([]byte{1}, xkt.DecodeOptions{})
	assert.ErrorIs(t, err, xkt.ErrCorruptContainer)
}

func TestLoader_WithRegistry(t *testing.T) {
	l := New(Options{}).WithRegistry(NewRegistry())
	_, err := l.Parse(encodeModel(t, reuseModel(), xkt.LatestVersion))
	assert.ErrorIs(t, err, xkt.ErrUnsupportedVersion)

	assert.Equal(t, DefaultModelID, l.Options().ModelID)
	assert.IsType(t, NeverForceBatch{}, l.Options().BatchPolicy)
}
