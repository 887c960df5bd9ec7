// Package brotli implements a block encoder based on the Brotli format
package brotli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/els0r/parzip/pkg/encoder/internal/membuf"
)

const (
	defaultCompressionLevel = brotli.DefaultCompression

	// MaxCompressionLevel denotes the highest level supported by the encoder
	MaxCompressionLevel = brotli.BestCompression
)

// Encoder compresses data with the Brotli algorithm
type Encoder struct {
	writer *brotli.Writer
	reader *brotli.Reader

	out membuf.Writer
	in  bytes.Reader

	level int
}

// New creates a new Brotli Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{level: defaultCompressionLevel}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeBrotli
}

// SetLevel sets the compression level of the encoder
func (e *Encoder) SetLevel(level int) {
	if level <= 0 || level > MaxCompressionLevel {
		level = defaultCompressionLevel
	}
	if level != e.level {
		e.writer = nil
	}
	e.level = level
}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	e.writer, e.reader = nil, nil
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (int, error) {
	e.out.Reset(dst)

	if e.writer == nil {
		e.writer = brotli.NewWriterLevel(&e.out, e.level)
	} else {
		e.writer.Reset(&e.out)
	}

	if _, err := e.writer.Write(data); err != nil {
		return 0, fmt.Errorf("brotli: compression failed: %w", err)
	}
	if err := e.writer.Close(); err != nil {
		return 0, fmt.Errorf("brotli: compression failed: %w", err)
	}

	return e.out.Len(), nil
}

// Decompress runs Brotli decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (int, error) {
	e.in.Reset(in)

	if e.reader == nil {
		e.reader = brotli.NewReader(&e.in)
	} else if err := e.reader.Reset(&e.in); err != nil {
		return 0, fmt.Errorf("brotli: %w: %w", encoders.ErrCorrupt, err)
	}

	n, err := membuf.ReadAll(e.reader, out)
	if err != nil {
		if errors.Is(err, encoders.ErrBufferSizeMismatch) {
			return 0, fmt.Errorf("brotli: decompression failed: %w", err)
		}
		return 0, fmt.Errorf("brotli: %w: %w", encoders.ErrCorrupt, err)
	}

	return n, nil
}
