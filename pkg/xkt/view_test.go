package xkt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedViews(t *testing.T) {
	u16, err := BytesOf([]uint16{1, 0xBEEF, 65535})
	require.NoError(t, err)
	got16, err := Uint16s(u16)
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 0xBEEF, 65535}, got16)

	i32, _ := BytesOf([]int32{-1, 7})
	gotI32, err := Int32s(i32)
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 7}, gotI32)

	f32, _ := BytesOf([]float32{1.5, -2})
	gotF32, err := Float32s(f32)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2}, gotF32)

	f64, _ := BytesOf([]float64{1e300})
	gotF64, err := Float64s(f64)
	require.NoError(t, err)
	assert.Equal(t, []float64{1e300}, gotF64)

	assert.Equal(t, []int8{-1, 127}, Int8s([]byte{0xFF, 0x7F}))
}

func TestTypedViews_EmptyAndMisaligned(t *testing.T) {
	empty, err := Uint32s(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = Uint32s([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptContainer)
	_, err = Float64s(make([]byte, 12))
	assert.ErrorIs(t, err, ErrCorruptContainer)
}

func TestSwapBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	assert.Equal(t, []byte{2, 1, 4, 3, 6, 5, 8, 7}, swapBytes(data, 2), "2-byte swap")
	assert.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, swapBytes(data, 4), "4-byte swap")
	assert.Equal(t, data, swapBytes(data, 1), "1-byte swap")
	assert.Equal(t, byte(1), data[0], "swapBytes modified its input")
}

func TestNormalizeByteOrder_SingleByte(t *testing.T) {
	data := []byte{1, 2, 3}
	assert.Equal(t, data, NormalizeByteOrder(data, 1))
}

func TestBytesOf_Unsupported(t *testing.T) {
	_, err := BytesOf([]string{"x"})
	assert.Error(t, err)
}
