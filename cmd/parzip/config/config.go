// Package config holds the runtime configuration of parzip
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/els0r/parzip/pkg/encoder/encoders"
)

// ServiceName is the name of the application, used e.g. as metrics namespace
const ServiceName = "parzip"

// Block size bounds, the compressed capacity (2.1x) of the largest block has to fit the
// int32 length prefix of an archive frame
const (
	DefaultBlockSize = 4 * 1024 * 1024
	MinBlockSize     = 64 * 1024
	MaxBlockSize     = 512 * 1024 * 1024
)

// StatsFormats lists the supported formats for run statistics
var StatsFormats = []string{"none", "text", "json", "yaml"}

var (
	errorUnknownEncoder     = errors.New("unknown encoder type")
	errorNegativeWorkers    = errors.New("number of workers must not be negative")
	errorInvalidBlockSize   = errors.New("block size out of range")
	errorUnknownStatsFormat = errors.New("unknown stats format")
)

// Config stores parzip's configuration
type Config struct {
	Encoder  EncoderConfig  `mapstructure:"encoder"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// EncoderConfig selects the block encoder
type EncoderConfig struct {
	Type  string `mapstructure:"type"`
	Level int    `mapstructure:"level"`
}

// PipelineConfig sizes the processing pipeline. Zero worker counts select the defaults
// for the respective mode
type PipelineConfig struct {
	CompressWorkers   int `mapstructure:"compress_workers"`
	DecompressWorkers int `mapstructure:"decompress_workers"`
	BlockSize         int `mapstructure:"block_size"`
}

// StatsConfig controls the output of run statistics
type StatsConfig struct {
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the export of Prometheus metrics
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// New returns a configuration with all defaults applied
func New() *Config {
	return &Config{
		Encoder: EncoderConfig{
			Type: encoders.EncoderTypeGZIP.String(),
		},
		Pipeline: PipelineConfig{
			BlockSize: DefaultBlockSize,
		},
		Stats: StatsConfig{
			Format: "none",
		},
	}
}

// EncoderType returns the configured encoder type
func (c *Config) EncoderType() (encoders.Type, error) {
	t, err := encoders.GetTypeByString(c.Encoder.Type)
	if err != nil {
		return t, fmt.Errorf("%w: %q (supported: %s)", errorUnknownEncoder, c.Encoder.Type, strings.Join(encoders.Names(), ", "))
	}
	return t, nil
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if _, err := c.EncoderType(); err != nil {
		return err
	}
	if c.Pipeline.CompressWorkers < 0 || c.Pipeline.DecompressWorkers < 0 {
		return fmt.Errorf("%w: compress=%d, decompress=%d", errorNegativeWorkers,
			c.Pipeline.CompressWorkers, c.Pipeline.DecompressWorkers)
	}
	if c.Pipeline.BlockSize < MinBlockSize || c.Pipeline.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: %d not in [%d, %d]", errorInvalidBlockSize,
			c.Pipeline.BlockSize, MinBlockSize, MaxBlockSize)
	}
	if c.Stats.Format != "" && !slices.Contains(StatsFormats, strings.ToLower(c.Stats.Format)) {
		return fmt.Errorf("%w: %q (supported: %s)", errorUnknownStatsFormat, c.Stats.Format, strings.Join(StatsFormats, ", "))
	}
	return nil
}
