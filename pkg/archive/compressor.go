package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/els0r/parzip/pkg/encoder"
	"github.com/els0r/parzip/pkg/pipeline"
)

// Compressor turns arbitrary input into an archive
type Compressor struct {
	proc *pipeline.Processor
}

// NewCompressor creates a new Compressor
func NewCompressor(opts ...Option) (*Compressor, error) {
	o, err := newOptions(DefaultCompressWorkers(), opts)
	if err != nil {
		return nil, err
	}

	proc, err := pipeline.New(&compressCodec{o}, pipeline.WithWorkers(o.workers))
	if err != nil {
		return nil, err
	}
	return &Compressor{proc: proc}, nil
}

// Compress reads src until EOF and writes the archive to dst
func (c *Compressor) Compress(ctx context.Context, src io.Reader, dst io.Writer) (pipeline.Stats, error) {
	return c.proc.Run(ctx, src, dst)
}

// CompressFile compresses the file at srcPath into an archive at dstPath
func (c *Compressor) CompressFile(ctx context.Context, srcPath, dstPath string) (pipeline.Stats, error) {
	return c.proc.RunFiles(ctx, srcPath, dstPath)
}

// Workers returns the number of parallel workers
func (c *Compressor) Workers() int {
	return c.proc.Workers()
}

type compressCodec struct {
	*options
}

func (c *compressCodec) Name() string {
	return "compress"
}

func (c *compressCodec) InputBlockSize() int {
	return c.blockSize
}

func (c *compressCodec) OutputBlockSize() int {
	return MaxCompressedBlockSize(c.blockSize)
}

// ReadFrame fills the block with raw data, only the last block may be shorter
func (c *compressCodec) ReadFrame(src io.Reader, blk *pipeline.Block) (int, error) {
	n, err := io.ReadFull(src, blk.Buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return n, nil
	}
	return n, err
}

func (c *compressCodec) NewTransformer() (pipeline.Transformer, error) {
	enc, err := c.newEncoder()
	if err != nil {
		return nil, err
	}
	return &compressTransformer{enc}, nil
}

func (c *compressCodec) WriteFrame(dst io.Writer, blk *pipeline.Block) error {
	return writeFrame(dst, blk.Bytes())
}

type compressTransformer struct {
	encoder.Encoder
}

func (t *compressTransformer) Transform(in, out *pipeline.Block) error {
	n, err := t.Compress(in.Bytes(), out.Buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodec, err)
	}
	out.Len = n
	return nil
}
