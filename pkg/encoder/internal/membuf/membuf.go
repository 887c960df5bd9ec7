// Package membuf provides fixed capacity in-memory buffers used by streaming encoders
// to operate on pre-allocated block memory
package membuf

import (
	"errors"
	"io"

	"github.com/els0r/parzip/pkg/encoder/encoders"
)

// Writer writes into a fixed slice of memory without ever growing it
type Writer struct {
	data []byte
	pos  int
}

// Reset re-targets the writer to data, discarding its current position
func (w *Writer) Reset(data []byte) {
	w.data = data
	w.pos = 0
}

// Len returns the number of bytes written since the last Reset
func (w *Writer) Len() int {
	return w.pos
}

// Write fulfils the io.Writer interface (writing len(p) bytes to the buffer)
func (w *Writer) Write(p []byte) (n int, err error) {
	n = copy(w.data[w.pos:], p)
	w.pos += n
	if n != len(p) {
		return n, encoders.ErrBufferSizeMismatch
	}
	return n, nil
}

// ReadAll reads from r until EOF, storing the data in out. If r provides more than
// len(out) bytes, encoders.ErrBufferSizeMismatch is returned
func ReadAll(r io.Reader, out []byte) (n int, err error) {
	var probe [1]byte
	for {
		buf := out[n:]
		full := len(buf) == 0
		if full {
			buf = probe[:]
		}

		m, err := r.Read(buf)
		if full && m > 0 {
			return n, encoders.ErrBufferSizeMismatch
		}
		n += m

		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}
