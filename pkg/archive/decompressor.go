package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/els0r/parzip/pkg/encoder"
	"github.com/els0r/parzip/pkg/pipeline"
)

// Decompressor restores the original data from an archive
type Decompressor struct {
	proc *pipeline.Processor
}

// NewDecompressor creates a new Decompressor. Encoder and block size must match the
// settings used to create the archive
func NewDecompressor(opts ...Option) (*Decompressor, error) {
	o, err := newOptions(DefaultDecompressWorkers(), opts)
	if err != nil {
		return nil, err
	}

	proc, err := pipeline.New(&decompressCodec{o}, pipeline.WithWorkers(o.workers))
	if err != nil {
		return nil, err
	}
	return &Decompressor{proc: proc}, nil
}

// Decompress reads an archive from src and writes the restored data to dst
func (d *Decompressor) Decompress(ctx context.Context, src io.Reader, dst io.Writer) (pipeline.Stats, error) {
	return d.proc.Run(ctx, src, dst)
}

// DecompressFile restores the archive at srcPath into dstPath
func (d *Decompressor) DecompressFile(ctx context.Context, srcPath, dstPath string) (pipeline.Stats, error) {
	return d.proc.RunFiles(ctx, srcPath, dstPath)
}

// Workers returns the number of parallel workers
func (d *Decompressor) Workers() int {
	return d.proc.Workers()
}

type decompressCodec struct {
	*options
}

func (c *decompressCodec) Name() string {
	return "decompress"
}

func (c *decompressCodec) InputBlockSize() int {
	return MaxCompressedBlockSize(c.blockSize)
}

func (c *decompressCodec) OutputBlockSize() int {
	return c.blockSize
}

func (c *decompressCodec) ReadFrame(src io.Reader, blk *pipeline.Block) (int, error) {
	return readFrame(src, blk.Buf)
}

func (c *decompressCodec) NewTransformer() (pipeline.Transformer, error) {
	enc, err := c.newEncoder()
	if err != nil {
		return nil, err
	}
	return &decompressTransformer{enc}, nil
}

func (c *decompressCodec) WriteFrame(dst io.Writer, blk *pipeline.Block) error {
	_, err := dst.Write(blk.Bytes())
	return err
}

type decompressTransformer struct {
	encoder.Encoder
}

func (t *decompressTransformer) Transform(in, out *pipeline.Block) error {
	n, err := t.Decompress(in.Bytes(), out.Buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCodec, err)
	}
	out.Len = n
	return nil
}
