// Package encoders enumerates the block encoders available to parzip
package encoders

import (
	"fmt"
	"strings"
)

// Type denotes the type of encoder
type Type int

// Enumeration of supported encoders
const (
	EncoderTypeGZIP   Type = iota // GZIP encoder / compressor (default, hence allocated the value 0)
	EncoderTypeLZ4                // LZ4 encoder
	EncoderTypeZSTD               // ZStandard encoder
	EncoderTypeS2                 // S2 encoder (snappy extension)
	EncoderTypeSnappy             // Snappy encoder
	EncoderTypeBrotli             // Brotli encoder
	EncoderTypeNull               // Null encoder

	MaxEncoderType = EncoderTypeNull
)

var typeNames = [...]string{
	EncoderTypeGZIP:   "gzip",
	EncoderTypeLZ4:    "lz4",
	EncoderTypeZSTD:   "zstd",
	EncoderTypeS2:     "s2",
	EncoderTypeSnappy: "snappy",
	EncoderTypeBrotli: "brotli",
	EncoderTypeNull:   "null",
}

// String returns a human-readable name of the encoder type
func (t Type) String() string {
	if t < 0 || t > MaxEncoderType {
		return fmt.Sprintf("unknown(%d)", int(t))
	}
	return typeNames[t]
}

// GetTypeByString returns the encoder type matching the (case-insensitive) name.
// An empty string yields the default encoder
func GetTypeByString(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EncoderTypeGZIP, nil
	}
	for t, name := range typeNames {
		if name == s {
			return Type(t), nil
		}
	}
	return EncoderTypeGZIP, fmt.Errorf("unsupported encoder type %q", s)
}

// Names returns the names of all supported encoders
func Names() []string {
	names := make([]string, len(typeNames))
	copy(names, typeNames[:])
	return names
}
