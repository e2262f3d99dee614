package xkt

import (
	"encoding/binary"
	"fmt"
	"math"
)

// hostLittleEndian is true when the native byte order matches the stored order.
var hostLittleEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}()

// NormalizeByteOrder converts little-endian stored elements of elemSize bytes to the
// host byte order. The input is returned unchanged on little-endian hosts and for
// single-byte elements; otherwise a swapped copy is returned.
func NormalizeByteOrder(data []byte, elemSize int) []byte {
	if hostLittleEndian || elemSize <= 1 {
		return data
	}
	return swapBytes(data, elemSize)
}

// swapBytes reverses the byte order of every elemSize-wide element in a copy of data.
func swapBytes(data []byte, elemSize int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	if elemSize <= 1 {
		return out
	}
	for off := 0; off+elemSize <= len(out); off += elemSize {
		elem := out[off : off+elemSize]
		for i, j := 0, elemSize-1; i < j; i, j = i+1, j-1 {
			elem[i], elem[j] = elem[j], elem[i]
		}
	}
	return out
}

// view reinterprets little-endian stored bytes as a slice of T.
func view[T any](data []byte, size int, get func([]byte) T) ([]T, error) {
	if len(data)%size != 0 {
		return nil, corruptf("%d bytes is not a multiple of element size %d", len(data), size)
	}
	data = NormalizeByteOrder(data, size)
	out := make([]T, len(data)/size)
	for i := range out {
		out[i] = get(data[i*size:])
	}
	return out, nil
}

// Int8s reinterprets bytes as signed bytes.
func Int8s(data []byte) []int8 {
	out := make([]int8, len(data))
	for i, b := range data {
		out[i] = int8(b)
	}
	return out
}

// Uint16s reinterprets little-endian bytes as uint16 values.
func Uint16s(data []byte) ([]uint16, error) {
	return view(data, 2, binary.NativeEndian.Uint16)
}

// Uint32s reinterprets little-endian bytes as uint32 values.
func Uint32s(data []byte) ([]uint32, error) {
	return view(data, 4, binary.NativeEndian.Uint32)
}

// Int32s reinterprets little-endian bytes as int32 values.
func Int32s(data []byte) ([]int32, error) {
	return view(data, 4, func(b []byte) int32 {
		return int32(binary.NativeEndian.Uint32(b))
	})
}

// Float32s reinterprets little-endian bytes as float32 values.
func Float32s(data []byte) ([]float32, error) {
	return view(data, 4, func(b []byte) float32 {
		return math.Float32frombits(binary.NativeEndian.Uint32(b))
	})
}

// Float64s reinterprets little-endian bytes as float64 values.
func Float64s(data []byte) ([]float64, error) {
	return view(data, 8, func(b []byte) float64 {
		return math.Float64frombits(binary.NativeEndian.Uint64(b))
	})
}

// BytesOf encodes a typed slice as little-endian bytes.
func BytesOf(values any) ([]byte, error) {
	switch v := values.(type) {
	case []byte:
		return v, nil
	case []int8:
		out := make([]byte, len(v))
		for i, x := range v {
			out[i] = byte(x)
		}
		return out, nil
	case []uint16:
		out := make([]byte, 0, len(v)*2)
		for _, x := range v {
			out = binary.LittleEndian.AppendUint16(out, x)
		}
		return out, nil
	case []uint32:
		out := make([]byte, 0, len(v)*4)
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, x)
		}
		return out, nil
	case []int32:
		out := make([]byte, 0, len(v)*4)
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, uint32(x))
		}
		return out, nil
	case []float32:
		out := make([]byte, 0, len(v)*4)
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(x))
		}
		return out, nil
	case []float64:
		out := make([]byte, 0, len(v)*8)
		for _, x := range v {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(x))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported element slice %T", values)
	}
}
