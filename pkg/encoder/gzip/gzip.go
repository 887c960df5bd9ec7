// Package gzip implements a block encoder producing self-contained gzip members
package gzip

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/els0r/parzip/pkg/encoder/internal/membuf"
	"github.com/klauspost/compress/gzip"
)

const (
	defaultCompressionLevel = gzip.DefaultCompression

	// MaxCompressionLevel denotes the highest level supported by the encoder
	MaxCompressionLevel = gzip.BestCompression
)

// Encoder compresses data into a single gzip member per block
type Encoder struct {

	// compression context, bound to the level it was created with
	writer *gzip.Writer

	// decompression context
	reader *gzip.Reader

	out membuf.Writer
	in  bytes.Reader

	level int
}

// New creates a new gzip Encoder that can be used to compress/decompress data
func New() *Encoder {
	return &Encoder{
		level: defaultCompressionLevel,
	}
}

// Type will return the type of encoder
func (e *Encoder) Type() encoders.Type {
	return encoders.EncoderTypeGZIP
}

// SetLevel sets the compression level. Values outside the supported range select the default level
func (e *Encoder) SetLevel(level int) {
	if level < gzip.HuffmanOnly || level > MaxCompressionLevel {
		level = defaultCompressionLevel
	}
	if level != e.level {
		e.writer = nil
	}
	e.level = level
}

// Close will close the encoder and release potentially allocated resources
func (e *Encoder) Close() error {
	e.writer = nil
	if e.reader != nil {
		if err := e.reader.Close(); err != nil {
			return fmt.Errorf("gzip: decompressor release failed: %w", err)
		}
		e.reader = nil
	}
	return nil
}

// Compress compresses the input data and writes it to dst
func (e *Encoder) Compress(data, dst []byte) (n int, err error) {
	e.out.Reset(dst)

	// If no compression context exists, create one
	if e.writer == nil {
		if e.writer, err = gzip.NewWriterLevel(&e.out, e.level); err != nil {
			return 0, fmt.Errorf("gzip: compression context init failed: %w", err)
		}
	} else {
		e.writer.Reset(&e.out)
	}

	if _, err = e.writer.Write(data); err != nil {
		return 0, fmt.Errorf("gzip: compression failed: %w", err)
	}
	if err = e.writer.Close(); err != nil {
		return 0, fmt.Errorf("gzip: compression failed: %w", err)
	}

	return e.out.Len(), nil
}

// Decompress runs gzip decompression on "in" and writes it to "out"
func (e *Encoder) Decompress(in, out []byte) (n int, err error) {
	e.in.Reset(in)

	// If no decompression context exists, create one
	if e.reader == nil {
		e.reader, err = gzip.NewReader(&e.in)
	} else {
		err = e.reader.Reset(&e.in)
	}
	if err != nil {
		return 0, fmt.Errorf("gzip: %w: %w", encoders.ErrCorrupt, err)
	}

	// each block is exactly one member, trailing members are not consumed
	e.reader.Multistream(false)

	n, err = membuf.ReadAll(e.reader, out)
	if err != nil {
		if errors.Is(err, encoders.ErrBufferSizeMismatch) {
			return 0, fmt.Errorf("gzip: decompression failed: %w", err)
		}
		return 0, fmt.Errorf("gzip: %w: %w", encoders.ErrCorrupt, err)
	}

	// bytes.Reader is consumed without read-ahead, anything left belongs to no member
	if e.in.Len() != 0 {
		return 0, fmt.Errorf("gzip: %w: %d trailing bytes after member", encoders.ErrCorrupt, e.in.Len())
	}

	return n, nil
}
