package chunk

import (
	"encoding/binary"
	"errors"

	"github.com/zeebo/xxh3"
)

// HeaderSize is the fixed frame header length.
const HeaderSize = 8 + 1 + 4 + 8

var errShortFrame = errors.New("frame shorter than header")

type header struct {
	Seq      uint64
	Codec    Codec
	RawLen   uint32
	Checksum uint64
}

func (h header) put(b []byte) {
	binary.LittleEndian.PutUint64(b[0:], h.Seq)
	b[8] = byte(h.Codec)
	binary.LittleEndian.PutUint32(b[9:], h.RawLen)
	binary.LittleEndian.PutUint64(b[13:], h.Checksum)
}

func parseHeader(b []byte) (header, error) {
	if len(b) < HeaderSize {
		return header{}, errShortFrame
	}
	return header{
		Seq:      binary.LittleEndian.Uint64(b[0:]),
		Codec:    Codec(b[8]),
		RawLen:   binary.LittleEndian.Uint32(b[9:]),
		Checksum: binary.LittleEndian.Uint64(b[13:]),
	}, nil
}

func checksum(raw []byte) uint64 {
	return xxh3.Hash(raw)
}
