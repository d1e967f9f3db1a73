package icon

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EncodeICO wraps PNG images into an ICO container. Every entry must be a
// square PNG no larger than 256 pixels.
func EncodeICO(pngs ...[]byte) ([]byte, error) {
	if len(pngs) == 0 {
		return nil, fmt.Errorf("no images")
	}

	const headerSize, entrySize = 6, 16

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, uint16(len(pngs))})

	offset := uint32(headerSize + entrySize*len(pngs))
	for _, data := range pngs {
		img, err := Decode(data)
		if err != nil {
			return nil, err
		}
		size := img.Bounds().Dx()
		if size != img.Bounds().Dy() || size > 256 {
			return nil, fmt.Errorf("ico entries must be square and at most 256px, got %v", img.Bounds().Size())
		}

		// A width/height byte of 0 means 256.
		dim := uint8(size % 256)
		entry := struct {
			Width, Height, Colors, Reserved uint8
			Planes, BitCount                uint16
			Size, Offset                    uint32
		}{dim, dim, 0, 0, 1, 32, uint32(len(data)), offset}
		_ = binary.Write(&buf, binary.LittleEndian, entry)
		offset += uint32(len(data))
	}

	for _, data := range pngs {
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
