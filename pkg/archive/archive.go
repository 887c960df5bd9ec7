// Package archive implements the parzip archive format: a sequence of independently
// compressed blocks, each prefixed by its length as a little-endian int32. Blocks are
// compressed and decompressed in parallel while preserving their order
package archive

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/els0r/parzip/pkg/encoder"
	"github.com/els0r/parzip/pkg/encoder/encoders"
)

const (
	// BlockSize denotes the default amount of raw data compressed into a single frame
	BlockSize = 4 * 1024 * 1024

	// MinBlockSize denotes the smallest supported raw block size
	MinBlockSize = 4 * 1024

	// MaxBlockSize denotes the largest raw block size whose compressed capacity still fits
	// the int32 length prefix
	MaxBlockSize = 512 * 1024 * 1024
)

var (
	// ErrFormat denotes a malformed archive (truncated or invalid frames)
	ErrFormat = errors.New("invalid archive format")

	// ErrCodec denotes a frame payload that could not be compressed or decompressed
	ErrCodec = errors.New("codec error")
)

// MaxCompressedBlockSize returns the capacity reserved for a compressed frame payload
// of a raw block of blockSize bytes (2.1 times the raw size, rounded up)
func MaxCompressedBlockSize(blockSize int) int {
	return (blockSize*21 + 9) / 10
}

// DefaultCompressWorkers returns the default number of compression workers
func DefaultCompressWorkers() int {
	return (3*runtime.NumCPU() + 1) / 2
}

// DefaultDecompressWorkers returns the default number of decompression workers
func DefaultDecompressWorkers() int {
	return 2 * runtime.NumCPU()
}

type options struct {
	workers   int
	encoder   encoders.Type
	level     int
	blockSize int
}

// Option configures a Compressor or Decompressor
type Option func(*options)

// WithWorkers sets the number of parallel workers (0 selects the default for the mode)
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithEncoder selects the block encoder. Archives carry no header, so decompression has
// to use the encoder that was used for compression
func WithEncoder(t encoders.Type) Option {
	return func(o *options) {
		o.encoder = t
	}
}

// WithLevel sets the compression level of the encoder (0 selects the encoder's default)
func WithLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithBlockSize sets the raw block size
func WithBlockSize(size int) Option {
	return func(o *options) {
		o.blockSize = size
	}
}

func newOptions(defaultWorkers int, opts []Option) (*options, error) {
	o := &options{
		workers:   defaultWorkers,
		encoder:   encoders.EncoderTypeGZIP,
		blockSize: BlockSize,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.workers <= 0 {
		o.workers = defaultWorkers
	}
	if o.blockSize < MinBlockSize || o.blockSize > MaxBlockSize {
		return nil, fmt.Errorf("block size %d out of range [%d, %d]", o.blockSize, MinBlockSize, MaxBlockSize)
	}

	// make sure the encoder can be instantiated before any worker depends on it
	enc, err := o.newEncoder()
	if err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *options) newEncoder() (encoder.Encoder, error) {
	enc, err := encoder.New(o.encoder)
	if err != nil {
		return nil, err
	}
	if o.level != 0 {
		enc.SetLevel(o.level)
	}
	return enc, nil
}
