// Package s2 implements a block encoder based on the S2 extension of Snappy
package s2

import (
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/klauspost/compress/s2"
)

// Compression levels map onto the encoding modes offered by S2
const (
	LevelFastest = 1
	LevelBetter  = 2
	LevelBest    = 3

	// MaxCompressionLevel denotes the highest level supported by the encoder
	MaxCompressionLevel = LevelBest
)

// Encoder compresses data with the S2 algorithm
type Encoder struct {
	level int
}

// New creates a new S2 Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{level: LevelFastest}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeS2
}

// SetLevel selects the encoding mode
func (e *Encoder) SetLevel(level int) {
	e.level = min(max(level, LevelFastest), LevelBest)
}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (n int, err error) {

	// s2 allocates if dst is too small, which would detach the result from dst
	maxLen := s2.MaxEncodedLen(len(data))
	if maxLen < 0 || maxLen > len(dst) {
		return 0, fmt.Errorf("s2: compression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	var encData []byte
	switch e.level {
	case LevelBest:
		encData = s2.EncodeBest(dst, data)
	case LevelBetter:
		encData = s2.EncodeBetter(dst, data)
	default:
		encData = s2.Encode(dst, data)
	}

	return len(encData), nil
}

// Decompress runs S2 decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (int, error) {
	decLen, err := s2.DecodedLen(in)
	if err != nil {
		return 0, fmt.Errorf("s2: %w: %w", encoders.ErrCorrupt, err)
	}
	if decLen > len(out) {
		return 0, fmt.Errorf("s2: decompression failed: %w", encoders.ErrBufferSizeMismatch)
	}

	decData, err := s2.Decode(out, in)
	if err != nil {
		return 0, fmt.Errorf("s2: %w: %w", encoders.ErrCorrupt, err)
	}

	return len(decData), nil
}
