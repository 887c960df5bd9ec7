package encoders

import "errors"

var (
	// ErrBufferSizeMismatch denotes that the allocated buffer is insufficient in size
	ErrBufferSizeMismatch = errors.New("buffer size mismatch for (de-)compressed data")

	// ErrCorrupt denotes that compressed input data could not be decoded
	ErrCorrupt = errors.New("corrupt compressed data")
)
