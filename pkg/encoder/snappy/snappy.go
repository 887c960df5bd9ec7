// Package snappy implements a block encoder using the Snappy block format
package snappy

import (
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/golang/snappy"
)

// Encoder compresses data with the Snappy algorithm
type Encoder struct{}

// New creates a new Snappy Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeSnappy
}

// SetLevel is a no-op, Snappy has no notion of compression levels
func (e *Encoder) SetLevel(_ int) {}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (int, error) {
	maxLen := snappy.MaxEncodedLen(len(data))
	if maxLen < 0 || maxLen > len(dst) {
		return 0, fmt.Errorf("snappy: compression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	return len(snappy.Encode(dst, data)), nil
}

// Decompress runs Snappy decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (int, error) {
	decLen, err := snappy.DecodedLen(in)
	if err != nil {
		return 0, fmt.Errorf("snappy: %w: %w", encoders.ErrCorrupt, err)
	}
	if decLen > len(out) {
		return 0, fmt.Errorf("snappy: decompression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	decData, err := snappy.Decode(out, in)
	if err != nil {
		return 0, fmt.Errorf("snappy: %w: %w", encoders.ErrCorrupt, err)
	}

	return len(decData), nil
}
