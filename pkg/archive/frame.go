package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// prefixSize denotes the length of the little-endian int32 preceding each payload
const prefixSize = 4

// writeFrame writes a single length-prefixed frame
func writeFrame(dst io.Writer, payload []byte) error {
	var prefix [prefixSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))

	if _, err := dst.Write(prefix[:]); err != nil {
		return err
	}
	_, err := dst.Write(payload)
	return err
}

// readFrame reads the payload of the next frame into buf and returns its length. A clean
// end of input (no further bytes) yields zero
func readFrame(src io.Reader, buf []byte) (int, error) {
	var prefix [prefixSize]byte

	n, err := io.ReadFull(src, prefix[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: truncated length prefix (%d of %d bytes)", ErrFormat, n, prefixSize)
		}
		return 0, err
	}

	length := int32(binary.LittleEndian.Uint32(prefix[:]))
	if length <= 0 {
		return 0, fmt.Errorf("%w: invalid frame length %d", ErrFormat, length)
	}
	if int(length) > len(buf) {
		return 0, fmt.Errorf("%w: frame length %d exceeds maximum of %d", ErrFormat, length, len(buf))
	}

	n, err = io.ReadFull(src, buf[:length])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: truncated frame payload (%d of %d bytes)", ErrFormat, n, length)
		}
		return 0, err
	}

	return n, nil
}
