package pipeline

import (
	"fmt"
	"strconv"
)

// String returns the hex representation of the digest
func (d Digest) String() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// MarshalText encodes the digest as hex string, used by JSON and YAML encoders
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses a hex encoded digest
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 16, 64)
	if err != nil {
		return fmt.Errorf("invalid digest %q: %w", text, err)
	}
	*d = Digest(v)
	return nil
}
