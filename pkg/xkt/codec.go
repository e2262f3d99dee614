package xkt

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/alitto/pond/v2"
)

// Codec inflates one compressed element.
type Codec interface {
	Inflate(data []byte) ([]byte, error)
}

// Compressor deflates one element when writing a container.
type Compressor interface {
	Deflate(data []byte) ([]byte, error)
}

// ZlibCodec reads and writes zlib-wrapped deflate streams.
type ZlibCodec struct {
	// Level is the zlib compression level used by Deflate; zero means default.
	Level int
}

// Inflate decompresses a zlib stream. Empty input inflates to an empty slice.
func (c ZlibCodec) Inflate(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer reader.Close()

	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// Deflate compresses data into a zlib stream.
func (c ZlibCodec) Deflate(data []byte) ([]byte, error) {
	level := c.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RawCodec passes element bytes through unchanged.
type RawCodec struct{}

// Inflate returns data unchanged.
func (RawCodec) Inflate(data []byte) ([]byte, error) { return data, nil }

// Deflate returns data unchanged.
func (RawCodec) Deflate(data []byte) ([]byte, error) { return data, nil }

// InflateElements inflates every compressed element in place. With workers > 1 the
// elements are inflated concurrently on a worker pool; each task owns one slot.
func InflateElements(elements []Element, codec Codec, workers int) error {
	inflate := func(i int) error {
		if !elements[i].Compressed {
			return nil
		}
		data, err := codec.Inflate(elements[i].Data)
		if err != nil {
			return fmt.Errorf("inflating %s: %w", elements[i].Field.Name, err)
		}
		elements[i].Data = data
		elements[i].Compressed = false
		return nil
	}

	if workers <= 1 || len(elements) < 2 {
		for i := range elements {
			if err := inflate(i); err != nil {
				return err
			}
		}
		return nil
	}

	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i := range elements {
		group.SubmitErr(func() error {
			return inflate(i)
		})
	}
	return group.Wait()
}
