package pipeline

import "io"

// Codec defines how frames are read from the source, transformed and written to the
// destination of a run
type Codec interface {

	// Name identifies the codec in logs, traces and metrics (e.g. "compress")
	Name() string

	// InputBlockSize returns the capacity of blocks read from the source
	InputBlockSize() int

	// OutputBlockSize returns the capacity of blocks produced by a Transformer
	OutputBlockSize() int

	// ReadFrame reads the next frame from src into blk.Buf and returns the number of bytes
	// stored. Zero bytes and a nil error signal the end of the input
	ReadFrame(src io.Reader, blk *Block) (int, error)

	// NewTransformer creates a Transformer for exclusive use by a single worker
	NewTransformer() (Transformer, error)

	// WriteFrame writes the valid bytes of blk to dst
	WriteFrame(dst io.Writer, blk *Block) error
}

// Transformer converts an input block into an output block
type Transformer interface {

	// Transform processes in and stores the result in out, setting out.Len
	Transform(in, out *Block) error

	// Close releases resources held by the Transformer
	Close() error
}
