package zstd

import (
	"errors"
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/klauspost/compress/zstd"
)

const (
	defaultCompressionLevel = 3

	// MaxCompressionLevel denotes the highest level supported by the encoder
	MaxCompressionLevel = 22
)

// Encoder compresses data with the ZStandard algorithm
type Encoder struct {

	// compression context
	encoder *zstd.Encoder

	// decompression context, bound to the output size it was created for
	decoder      *zstd.Decoder
	decoderLimit int

	// compression level
	level int
}

// New creates a new ZStandard Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{level: defaultCompressionLevel}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeZSTD
}

// SetLevel sets the compression level of the encoder
func (e *Encoder) SetLevel(level int) {
	if level <= 0 || level > MaxCompressionLevel {
		level = defaultCompressionLevel
	}
	if level != e.level && e.encoder != nil {
		_ = e.encoder.Close()
		e.encoder = nil
	}
	e.level = level
}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	if e.decoder != nil {
		e.decoder.Close()
		e.decoder = nil
	}
	if e.encoder != nil {
		if err := e.encoder.Close(); err != nil {
			return fmt.Errorf("zstd: compressor release failed: %w", err)
		}
		e.encoder = nil
	}
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (n int, err error) {

	// If no compression context exists, create one
	if e.encoder == nil {
		if e.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(e.level)),
			zstd.WithEncoderCRC(true),
			zstd.WithEncoderConcurrency(1),
		); err != nil {
			return 0, fmt.Errorf("zstd: compression context init failed: %w", err)
		}
	}

	encData := e.encoder.EncodeAll(data, dst[:0])
	if len(encData) > len(dst) {
		return 0, fmt.Errorf("zstd: compression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	return len(encData), nil
}

// Decompress runs ZStandard decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (n int, err error) {

	// If no decompression context exists for the size of out, create one. The memory
	// limit makes frames declaring more content than out can hold fail before allocating
	limit := max(len(out), 1)
	if e.decoder == nil || e.decoderLimit != limit {
		if e.decoder != nil {
			e.decoder.Close()
			e.decoder = nil
		}
		if e.decoder, err = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(uint64(limit)),
		); err != nil {
			return 0, fmt.Errorf("zstd: decompression context init failed: %w", err)
		}
		e.decoderLimit = limit
	}

	decData, err := e.decoder.DecodeAll(in, out[:0])
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return 0, fmt.Errorf("zstd: decompression failed: %w", encoders.ErrBufferSizeMismatch)
		}
		return 0, fmt.Errorf("zstd: %w: %w", encoders.ErrCorrupt, err)
	}
	if len(decData) > len(out) {
		return 0, fmt.Errorf("zstd: decompression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	return len(decData), nil
}
