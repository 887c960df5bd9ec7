package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/els0r/parzip/pkg/encoder"
	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/els0r/telemetry/logging"
	"github.com/stretchr/testify/require"
)

const testBlockSize = 64 * 1024

func randomData(n int) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(data)
	return data
}

func textData(n int) []byte {
	line := []byte("the quick brown fox jumps over the lazy dog 0123456789\n")
	data := bytes.Repeat(line, n/len(line)+1)
	return data[:n]
}

func compress(t *testing.T, input []byte, opts ...Option) []byte {
	t.Helper()

	c, err := NewCompressor(opts...)
	require.NoError(t, err)

	out := new(bytes.Buffer)
	_, err = c.Compress(context.Background(), bytes.NewReader(input), out)
	require.NoError(t, err)

	return out.Bytes()
}

func decompress(archive []byte, opts ...Option) ([]byte, error) {
	d, err := NewDecompressor(opts...)
	if err != nil {
		return nil, err
	}

	out := new(bytes.Buffer)
	_, err = d.Decompress(context.Background(), bytes.NewReader(archive), out)
	return out.Bytes(), err
}

// frameLengths parses the length prefixes of a well-formed archive
func frameLengths(t *testing.T, archive []byte) []int {
	t.Helper()

	var lengths []int
	for len(archive) > 0 {
		require.GreaterOrEqual(t, len(archive), prefixSize)
		length := int(int32(binary.LittleEndian.Uint32(archive)))
		require.Positive(t, length)
		require.GreaterOrEqual(t, len(archive)-prefixSize, length)

		lengths = append(lengths, length)
		archive = archive[prefixSize+length:]
	}
	return lengths
}

func TestMain(m *testing.M) {
	if err := logging.Init(logging.LevelError, logging.EncodingLogfmt,
		logging.WithOutput(os.Stderr),
	); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func TestMaxCompressedBlockSize(t *testing.T) {
	require.Equal(t, 8808039, MaxCompressedBlockSize(BlockSize))
	require.Equal(t, 21, MaxCompressedBlockSize(10))
	require.Equal(t, 3, MaxCompressedBlockSize(1))
}

func TestDefaultWorkers(t *testing.T) {
	require.Positive(t, DefaultCompressWorkers())
	require.Positive(t, DefaultDecompressWorkers())

	c, err := NewCompressor(WithWorkers(0), WithBlockSize(MinBlockSize))
	require.NoError(t, err)
	require.Equal(t, DefaultCompressWorkers(), c.Workers())

	d, err := NewDecompressor(WithWorkers(3))
	require.NoError(t, err)
	require.Equal(t, 3, d.Workers())
}

func TestInvalidOptions(t *testing.T) {
	_, err := NewCompressor(WithBlockSize(MinBlockSize - 1))
	require.Error(t, err)

	_, err = NewDecompressor(WithBlockSize(MaxBlockSize + 1))
	require.Error(t, err)

	_, err = NewCompressor(WithEncoder(encoders.MaxEncoderType + 1))
	require.Error(t, err)
}

func TestRoundTripDefaultBlockSize(t *testing.T) {
	var tests = []struct {
		name   string
		input  []byte
		frames int
	}{
		{"empty", nil, 0},
		{"single byte", []byte{0x2a}, 1},
		{"exactly one block", randomData(BlockSize), 1},
		{"one block plus one byte", randomData(BlockSize + 1), 2},
		{"ten mebibytes", randomData(10 * 1024 * 1024), 3},
		{"text", textData(5 * 1024 * 1024), 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			archive := compress(t, test.input, WithWorkers(4))

			lengths := frameLengths(t, archive)
			require.Len(t, lengths, test.frames)
			for _, length := range lengths {
				require.LessOrEqual(t, length, MaxCompressedBlockSize(BlockSize))
			}

			restored, err := decompress(archive, WithWorkers(4))
			require.NoError(t, err)
			require.Equal(t, len(test.input), len(restored))
			require.True(t, bytes.Equal(test.input, restored), "restored data differs from input")
		})
	}
}

func TestRoundTripEncoders(t *testing.T) {
	input := append(textData(5*testBlockSize), randomData(3*testBlockSize+17)...)

	for _, name := range encoders.Names() {
		t.Run(name, func(t *testing.T) {
			typ, err := encoders.GetTypeByString(name)
			require.NoError(t, err)

			opts := []Option{WithEncoder(typ), WithBlockSize(testBlockSize), WithWorkers(4)}

			archive := compress(t, input, opts...)
			require.Len(t, frameLengths(t, archive), 9)

			restored, err := decompress(archive, opts...)
			require.NoError(t, err)
			require.True(t, bytes.Equal(input, restored), "restored data differs from input")
		})
	}
}

func TestRoundTripLevels(t *testing.T) {
	input := textData(3 * testBlockSize)

	for _, level := range []int{1, 5, 9} {
		t.Run(fmt.Sprintf("level_%d", level), func(t *testing.T) {
			opts := []Option{WithLevel(level), WithBlockSize(testBlockSize)}

			restored, err := decompress(compress(t, input, opts...), opts...)
			require.NoError(t, err)
			require.Equal(t, input, restored)
		})
	}
}

func TestDigests(t *testing.T) {
	input := randomData(2*testBlockSize + 100)

	c, err := NewCompressor(WithBlockSize(testBlockSize))
	require.NoError(t, err)
	d, err := NewDecompressor(WithBlockSize(testBlockSize))
	require.NoError(t, err)

	archive := new(bytes.Buffer)
	cStats, err := c.Compress(context.Background(), bytes.NewReader(input), archive)
	require.NoError(t, err)
	require.Equal(t, 3, cStats.Blocks)
	require.Equal(t, int64(len(input)), cStats.BytesRead)
	require.Equal(t, int64(archive.Len()), cStats.BytesWritten)

	restored := new(bytes.Buffer)
	dStats, err := d.Decompress(context.Background(), bytes.NewReader(archive.Bytes()), restored)
	require.NoError(t, err)
	require.Equal(t, 3, dStats.Blocks)

	require.Equal(t, cStats.SourceDigest, dStats.DestinationDigest)
	require.Equal(t, cStats.DestinationDigest, dStats.SourceDigest)
}

func TestDecompressMalformed(t *testing.T) {
	opts := []Option{WithBlockSize(testBlockSize)}
	valid := compress(t, randomData(2*testBlockSize+5), opts...)

	prefix := func(length int32) []byte {
		var b [prefixSize]byte
		binary.LittleEndian.PutUint32(b[:], uint32(length))
		return b[:]
	}

	var tests = []struct {
		name    string
		archive []byte
		err     error
	}{
		{"truncated payload", valid[:len(valid)-1], ErrFormat},
		{"truncated prefix", append(bytes.Clone(valid), 0x01, 0x00), ErrFormat},
		{"single prefix byte", []byte{0x10}, ErrFormat},
		{"zero length", append(bytes.Clone(valid), prefix(0)...), ErrFormat},
		{"negative length", prefix(-5), ErrFormat},
		{"oversized length", append(prefix(int32(MaxCompressedBlockSize(testBlockSize)+1)), make([]byte, 16)...), ErrFormat},
		{"length beyond input", append(prefix(1000), make([]byte, 10)...), ErrFormat},
		{"garbage payload", append(prefix(8), bytes.Repeat([]byte{0xff}, 8)...), ErrCodec},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := decompress(test.archive, opts...)
			require.ErrorIs(t, err, test.err)
		})
	}
}

func TestDecompressCorruptPayload(t *testing.T) {
	opts := []Option{WithBlockSize(testBlockSize)}
	archive := compress(t, textData(2*testBlockSize), opts...)

	// flip the gzip magic of the second frame
	first := frameLengths(t, archive)[0]
	corrupt := bytes.Clone(archive)
	corrupt[prefixSize+first+prefixSize] ^= 0xff

	restored, err := decompress(corrupt, opts...)
	require.ErrorIs(t, err, ErrCodec)
	require.ErrorIs(t, err, encoder.ErrCorrupt)
	require.ErrorContains(t, err, "block 1")

	// only data preceding the broken frame may have been written
	require.LessOrEqual(t, len(restored), testBlockSize)
}

func TestDecompressEncoderMismatch(t *testing.T) {
	input := textData(testBlockSize)
	archive := compress(t, input, WithBlockSize(testBlockSize), WithEncoder(encoders.EncoderTypeZSTD))

	_, err := decompress(archive, WithBlockSize(testBlockSize), WithEncoder(encoders.EncoderTypeGZIP))
	require.ErrorIs(t, err, ErrCodec)
}

func TestDecompressBlockSizeMismatch(t *testing.T) {
	input := textData(4 * testBlockSize)
	archive := compress(t, input, WithBlockSize(4*testBlockSize))

	// the restored block exceeds the configured raw block size
	_, err := decompress(archive, WithBlockSize(testBlockSize))
	require.ErrorIs(t, err, ErrCodec)
	require.ErrorIs(t, err, encoder.ErrBufferSizeMismatch)
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	input := textData(3*testBlockSize + 11)
	srcPath := filepath.Join(dir, "input.txt")
	archivePath := filepath.Join(dir, "input.txt.pz")
	restoredPath := filepath.Join(dir, "restored.txt")
	require.NoError(t, os.WriteFile(srcPath, input, 0600))

	c, err := NewCompressor(WithBlockSize(testBlockSize))
	require.NoError(t, err)
	stats, err := c.CompressFile(context.Background(), srcPath, archivePath)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Blocks)

	d, err := NewDecompressor(WithBlockSize(testBlockSize))
	require.NoError(t, err)
	_, err = d.DecompressFile(context.Background(), archivePath, restoredPath)
	require.NoError(t, err)

	restored, err := os.ReadFile(restoredPath)
	require.NoError(t, err)
	require.Equal(t, input, restored)

	// a truncated archive on disk fails with a format error
	archive, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(archivePath, archive[:len(archive)-3], 0600))

	_, err = d.DecompressFile(context.Background(), archivePath, restoredPath)
	require.ErrorIs(t, err, ErrFormat)
}
