package patch

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var fatzMagic = []byte("FATZ")

// animationHeader is the leading part of an animation blob: an optional FATZ marker, the frame
// speed and the NUL-terminated path of the palette the frames are drawn with.
type animationHeader struct {
	fatz    bool
	speed   uint32
	palette string
	rest    []byte
}

func parseAnimationHeader(data []byte) (animationHeader, error) {
	var h animationHeader
	if bytes.HasPrefix(data, fatzMagic) {
		h.fatz = true
		data = data[len(fatzMagic):]
	}
	if len(data) < 8 {
		return h, fmt.Errorf("%w: animation header truncated", ErrSerialization)
	}
	h.speed = binary.LittleEndian.Uint32(data[0:4])
	n := binary.LittleEndian.Uint32(data[4:8])
	data = data[8:]
	if n == 0 || uint64(n) > uint64(len(data)) {
		return h, fmt.Errorf("%w: palette name length %d out of range", ErrSerialization, n)
	}
	name := data[:n]
	if name[n-1] != 0 {
		return h, fmt.Errorf("%w: palette name not NUL-terminated", ErrSerialization)
	}
	h.palette = string(name[:n-1])
	h.rest = data[n:]
	return h, nil
}

func (h animationHeader) encode() []byte {
	var buf bytes.Buffer
	if h.fatz {
		buf.Write(fatzMagic)
	}
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], h.speed)
	buf.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], uint32(len(h.palette)+1))
	buf.Write(word[:])
	buf.WriteString(h.palette)
	buf.WriteByte(0)
	buf.Write(h.rest)
	return buf.Bytes()
}
