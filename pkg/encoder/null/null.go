package null

import (
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
)

// Encoder compresses data without any algorithm
type Encoder struct{}

// New creates a new Null encoder which does not manipulate the original data
// in any way. It's meant to be used where no compression is desired
func New() *Encoder {
	return &Encoder{}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeNull
}

// SetLevel is a no-op
func (e *Encoder) SetLevel(_ int) {}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	return nil
}

// Compress directly copies "data" to "dst" without any further manipulation
func (e *Encoder) Compress(data, dst []byte) (int, error) {
	if len(data) > len(dst) {
		return 0, fmt.Errorf("null: %w", encoders.ErrBufferSizeMismatch)
	}
	return copy(dst, data), nil
}

// Decompress directly copies "in" to "out"
func (e *Encoder) Decompress(in, out []byte) (int, error) {
	if len(in) > len(out) {
		return 0, fmt.Errorf("null: %w", encoders.ErrBufferSizeMismatch)
	}
	return copy(out, in), nil
}
