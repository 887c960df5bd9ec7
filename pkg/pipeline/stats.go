package pipeline

import (
	"time"

	"github.com/zeebo/xxh3"
)

// Stats summarizes a run
type Stats struct {
	Mode    string `json:"mode" yaml:"mode"`
	Workers int    `json:"workers" yaml:"workers"`

	// Blocks denotes the number of frames written to the destination
	Blocks       int   `json:"blocks" yaml:"blocks"`
	BytesRead    int64 `json:"bytes_read" yaml:"bytes_read"`
	BytesWritten int64 `json:"bytes_written" yaml:"bytes_written"`

	Duration time.Duration `json:"duration" yaml:"duration"`

	// SourceDigest and DestinationDigest are XXH3 hashes of the full streams. The source
	// digest of a compression run equals the destination digest of the matching
	// decompression run
	SourceDigest      Digest `json:"source_digest" yaml:"source_digest"`
	DestinationDigest Digest `json:"destination_digest" yaml:"destination_digest"`
}

// Ratio returns the ratio of written to read bytes
func (s Stats) Ratio() float64 {
	if s.BytesRead == 0 {
		return 0
	}
	return float64(s.BytesWritten) / float64(s.BytesRead)
}

// Digest is a 64 bit stream checksum
type Digest uint64

// meter counts and hashes everything written to it
type meter struct {
	n int64
	h *xxh3.Hasher
}

func newMeter() *meter {
	return &meter{h: xxh3.New()}
}

func (m *meter) Write(p []byte) (int, error) {
	m.n += int64(len(p))
	return m.h.Write(p)
}

func (m *meter) digest() Digest {
	return Digest(m.h.Sum64())
}
