// Package encoder provides the block codecs used to compress and decompress the
// payload of an archive frame
package encoder

import (
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/brotli"
	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/els0r/parzip/pkg/encoder/gzip"
	"github.com/els0r/parzip/pkg/encoder/lz4"
	"github.com/els0r/parzip/pkg/encoder/null"
	"github.com/els0r/parzip/pkg/encoder/s2"
	"github.com/els0r/parzip/pkg/encoder/snappy"
	"github.com/els0r/parzip/pkg/encoder/zstd"
)

var (
	// ErrBufferSizeMismatch denotes that a destination buffer cannot hold the result
	ErrBufferSizeMismatch = encoders.ErrBufferSizeMismatch

	// ErrCorrupt denotes that compressed input could not be decoded
	ErrCorrupt = encoders.ErrCorrupt
)

// Encoder compresses and decompresses self-contained blocks of data. Encoders keep
// internal state and must not be shared between goroutines
type Encoder interface {

	// Type will return the type of encoder
	Type() encoders.Type

	// Compress compresses data into dst and returns the number of bytes written. The
	// full length of dst is considered available. If the compressed representation does
	// not fit, ErrBufferSizeMismatch is returned
	Compress(data, dst []byte) (n int, err error)

	// Decompress decompresses in into out and returns the number of bytes written. If the
	// decompressed data exceeds len(out), ErrBufferSizeMismatch is returned, malformed
	// input yields ErrCorrupt
	Decompress(in, out []byte) (n int, err error)

	// SetLevel sets the compression level of the encoder (where supported)
	SetLevel(level int)

	// Close will close the encoder and release potentially allocated resources
	Close() error
}

// New creates a new encoder based on an encoder type
func New(t encoders.Type) (Encoder, error) {
	switch t {
	case encoders.EncoderTypeGZIP:
		return gzip.New(), nil
	case encoders.EncoderTypeLZ4:
		return lz4.New(), nil
	case encoders.EncoderTypeZSTD:
		return zstd.New(), nil
	case encoders.EncoderTypeS2:
		return s2.New(), nil
	case encoders.EncoderTypeSnappy:
		return snappy.New(), nil
	case encoders.EncoderTypeBrotli:
		return brotli.New(), nil
	case encoders.EncoderTypeNull:
		return null.New(), nil
	default:
		return nil, fmt.Errorf("unsupported encoder: %v", t)
	}
}
