package xkt

import (
	"encoding/binary"
)

// compressedFlag marks deflated elements in offset-table containers.
const compressedFlag = 0x80000000

// Header is the decoded version word of a container.
type Header struct {
	Version int
	// Compressed is the high bit of the version word (offset-table framing only).
	Compressed bool
}

// Element is one framed sub-array of a container.
type Element struct {
	Field      Field
	Data       []byte
	Compressed bool
}

// ReadHeader reads the version word at the start of a container.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < 4 {
		return Header{}, corruptf("buffer of %d bytes has no version word", len(buf))
	}
	word := binary.LittleEndian.Uint32(buf)
	return Header{
		Version:    int(word &^ compressedFlag),
		Compressed: word&compressedFlag != 0,
	}, nil
}

// Frame slices a container into the elements its layout declares, without inflating
// them. The returned element data aliases buf.
func Frame(buf []byte, layout Layout) ([]Element, error) {
	header, err := ReadHeader(buf)
	if err != nil {
		return nil, err
	}
	if header.Version != layout.Version {
		return nil, corruptf("container version %d framed with layout %d", header.Version, layout.Version)
	}
	if len(buf) < 8 {
		return nil, corruptf("buffer of %d bytes has no element count", len(buf))
	}

	count := binary.LittleEndian.Uint32(buf[4:])
	if int(count) != len(layout.Fields) {
		return nil, corruptf("version %d declares %d elements, container has %d", layout.Version, len(layout.Fields), count)
	}

	switch layout.Framing {
	case FramingSequential:
		return frameSequential(buf, layout, int(count))
	case FramingOffsetTable:
		compressed := layout.Compressed || (layout.OptionalCompression && header.Compressed)
		return frameOffsetTable(buf, layout, int(count), compressed)
	default:
		return nil, corruptf("unknown framing %s", layout.Framing)
	}
}

func frameSequential(buf []byte, layout Layout, count int) ([]Element, error) {
	tableEnd := 8 + count*4
	if len(buf) < tableEnd {
		return nil, corruptf("element length table needs %d bytes, buffer has %d", tableEnd, len(buf))
	}

	elements := make([]Element, count)
	offset := tableEnd
	for i := 0; i < count; i++ {
		length := int(binary.LittleEndian.Uint32(buf[8+i*4:]))
		if length > len(buf)-offset {
			return nil, corruptf("element %s (%d bytes at %d) exceeds buffer of %d bytes",
				layout.Fields[i].Name, length, offset, len(buf))
		}
		elements[i] = Element{
			Field:      layout.Fields[i],
			Data:       buf[offset : offset+length],
			Compressed: layout.Compressed,
		}
		offset += length
	}
	return elements, nil
}

func frameOffsetTable(buf []byte, layout Layout, count int, compressed bool) ([]Element, error) {
	tableEnd := 8 + count*8
	if len(buf) < tableEnd {
		return nil, corruptf("element offset table needs %d bytes, buffer has %d", tableEnd, len(buf))
	}

	elements := make([]Element, count)
	for i := 0; i < count; i++ {
		offset := int(binary.LittleEndian.Uint32(buf[8+i*8:]))
		length := int(binary.LittleEndian.Uint32(buf[12+i*8:]))
		if offset < tableEnd || offset > len(buf) || length > len(buf)-offset {
			return nil, corruptf("element %s (%d bytes at %d) outside buffer of %d bytes",
				layout.Fields[i].Name, length, offset, len(buf))
		}
		elements[i] = Element{
			Field:      layout.Fields[i],
			Data:       buf[offset : offset+length],
			Compressed: compressed,
		}
	}
	return elements, nil
}
