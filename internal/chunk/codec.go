package chunk

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec identifies the payload encoding of a frame.
type Codec uint8

const (
	// CodecRaw sends the chunk bytes as they are.
	CodecRaw Codec = 0
	// CodecLZ4 uses LZ4 block compression (fast).
	CodecLZ4 Codec = 1
	// CodecZSTD uses ZSTD compression (better ratio).
	CodecZSTD Codec = 2
	// CodecRoaring sends the positions of set flags as a serialized roaring
	// bitmap. Only chunks made of 0/1 bytes qualify.
	CodecRoaring Codec = 3
)

var errUnknownCodec = errors.New("unknown codec")

// ParseCodec parses a codec name as accepted on the command line.
func ParseCodec(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "raw", "none":
		return CodecRaw, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	case "roaring":
		return CodecRoaring, nil
	default:
		return CodecRaw, fmt.Errorf("%w: %q", errUnknownCodec, name)
	}
}

func (c Codec) String() string {
	switch c {
	case CodecRaw:
		return "raw"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	case CodecRoaring:
		return "roaring"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ZSTD encoder/decoder pools shared by all ranks.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	// Flag chunks are highly repetitive; the fastest level already compresses well.
	// Single-segment frames always carry their content size.
	enc, _ := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
		zstd.WithSingleSegment(true),
	)
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxSize),
		zstd.WithDecodeAllCapLimit(true),
	)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// encoder holds the scratch space of one sending rank.
type encoder struct {
	codec Codec
	buf   []byte
}

func newEncoder(codec Codec, chunkSize int) *encoder {
	return &encoder{codec: codec, buf: make([]byte, scratchSize(codec, chunkSize))}
}

// scratchSize returns the bytes an encoder for codec keeps alive.
func scratchSize(codec Codec, chunkSize int) int64 {
	switch codec {
	case CodecLZ4:
		return int64(lz4.CompressBlockBound(chunkSize))
	case CodecZSTD:
		return int64(chunkSize)
	default:
		return 0
	}
}

// encode returns the payload for src and the codec actually used.
// The result is never longer than src; Raw aliases src.
func (e *encoder) encode(src []byte) (Codec, []byte, error) {
	if len(src) == 0 {
		return CodecRaw, src, nil
	}

	var out []byte
	switch e.codec {
	case CodecLZ4:
		n, err := lz4.CompressBlock(src, e.buf, nil)
		if err != nil {
			return CodecRaw, nil, fmt.Errorf("lz4 compress: %w", err)
		}
		out = e.buf[:n] // n == 0: incompressible
	case CodecZSTD:
		enc := getZstdEncoder()
		// Output that outgrows buf is discarded below in favour of raw.
		out = enc.EncodeAll(src, e.buf[:0])
		putZstdEncoder(enc)
	case CodecRoaring:
		rb := roaring.New()
		for i, v := range src {
			switch v {
			case 0:
			case 1:
				rb.Add(uint32(i))
			default:
				return CodecRaw, src, nil
			}
		}
		rb.RunOptimize()
		b, err := rb.ToBytes()
		if err != nil {
			return CodecRaw, nil, fmt.Errorf("roaring serialize: %w", err)
		}
		out = b
	default:
		return CodecRaw, src, nil
	}

	if len(out) == 0 || len(out) >= len(src) {
		return CodecRaw, src, nil
	}
	return e.codec, out, nil
}

// decode expands payload into dst, which has exactly the chunk's raw length.
func decode(codec Codec, payload, dst []byte) error {
	switch codec {
	case CodecRaw:
		if len(payload) != len(dst) {
			return fmt.Errorf("raw payload of %d bytes, want %d", len(payload), len(dst))
		}
		copy(dst, payload)
		return nil

	case CodecLZ4:
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return fmt.Errorf("lz4 uncompress: %w", err)
		}
		if n != len(dst) {
			return fmt.Errorf("lz4 decoded %d bytes, want %d", n, len(dst))
		}
		return nil

	case CodecZSTD:
		// A frame must be single-segment and declare the chunk length, so its
		// window never exceeds the chunk. Output is capped at cap(dst).
		var h zstd.Header
		if err := h.Decode(payload); err != nil {
			return fmt.Errorf("zstd header: %w", err)
		}
		if !h.SingleSegment || !h.HasFCS {
			return errors.New("zstd frame without single-segment content size")
		}
		if h.FrameContentSize != uint64(len(dst)) {
			return fmt.Errorf("zstd frame declares %d bytes, want %d", h.FrameContentSize, len(dst))
		}

		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(payload, dst[:0:len(dst)])
		if err != nil {
			return fmt.Errorf("zstd decode: %w", err)
		}
		if len(out) != len(dst) {
			return fmt.Errorf("zstd decoded %d bytes, want %d", len(out), len(dst))
		}
		if len(out) > 0 && &out[0] != &dst[0] {
			copy(dst, out)
		}
		return nil

	case CodecRoaring:
		rb := roaring.New()
		if err := rb.UnmarshalBinary(payload); err != nil {
			return fmt.Errorf("roaring deserialize: %w", err)
		}
		clear(dst)
		it := rb.Iterator()
		for it.HasNext() {
			x := it.Next()
			if uint64(x) >= uint64(len(dst)) {
				return fmt.Errorf("roaring position %d beyond chunk of %d bytes", x, len(dst))
			}
			dst[x] = 1
		}
		return nil

	default:
		return fmt.Errorf("%w: %d", errUnknownCodec, uint8(codec))
	}
}
