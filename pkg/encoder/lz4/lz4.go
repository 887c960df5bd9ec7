package lz4

import (
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/pierrec/lz4/v4"
)

const (
	defaultCompressionLevel = 6

	// MaxCompressionLevel denotes the highest search depth considered meaningful
	MaxCompressionLevel = 12
)

// Encoder compresses data with the LZ4 algorithm (high compression block mode)
type Encoder struct {
	level int
}

// New creates a new LZ4 Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{level: defaultCompressionLevel}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeLZ4
}

// SetLevel sets the compression level of the encoder
func (e *Encoder) SetLevel(level int) {
	if level <= 0 {
		level = defaultCompressionLevel
	}
	e.level = level
}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, nil
	}

	n, err = lz4.CompressBlockHC(data, dst, lz4.CompressionLevel(e.level), nil, nil)
	if err != nil {
		return 0, fmt.Errorf("lz4: compression failed: %w", err)
	}

	// the block API signals an insufficient destination by writing nothing
	if n == 0 {
		return 0, fmt.Errorf("lz4: compression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	return n, nil
}

// Decompress runs LZ4 decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}

	// the block API does not distinguish a short destination from malformed input
	n, err := lz4.UncompressBlock(in, out)
	if err != nil {
		return 0, fmt.Errorf("lz4: %w: %w", encoders.ErrCorrupt, err)
	}

	return n, nil
}
