package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/els0r/parzip/cmd/parzip/config"
	"github.com/els0r/parzip/pkg/pipeline"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		env           map[string]string
		configContent string
		expectedJob   job
		expectedCfg   *config.Config
		expectError   bool
		expectUsage   bool
	}{
		{
			name:        "compress with defaults",
			args:        []string{"compress", "in.txt", "out.pz"},
			expectedJob: job{mode: modeCompress, source: "in.txt", destination: "out.pz"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "gzip"},
				Pipeline: config.PipelineConfig{BlockSize: config.DefaultBlockSize},
				Stats:    config.StatsConfig{Format: "none"},
			},
		},
		{
			name: "decompress with all flags set",
			args: []string{
				"decompress", "in.pz", "out.txt",
				"--encoder.type=zstd",
				"--encoder.level=7",
				"--pipeline.compress_workers=3",
				"--pipeline.decompress_workers=5",
				"--pipeline.block_size=1048576",
				"--stats.format=json",
				"--metrics.textfile=/tmp/parzip.prom",
			},
			expectedJob: job{mode: modeDecompress, source: "in.pz", destination: "out.txt"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "zstd", Level: 7},
				Pipeline: config.PipelineConfig{CompressWorkers: 3, DecompressWorkers: 5, BlockSize: 1048576},
				Stats:    config.StatsConfig{Format: "json"},
				Metrics:  config.MetricsConfig{Textfile: "/tmp/parzip.prom"},
			},
		},
		{
			name:        "case insensitive command",
			args:        []string{"COMPRESS", "-e", "lz4", "a", "b"},
			expectedJob: job{mode: modeCompress, source: "a", destination: "b"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "lz4"},
				Pipeline: config.PipelineConfig{BlockSize: config.DefaultBlockSize},
				Stats:    config.StatsConfig{Format: "none"},
			},
		},
		{
			name: "config file",
			args: []string{"compress", "a", "b"},
			configContent: `---
encoder:
  type: brotli
  level: 4
pipeline:
  compress_workers: 2
  block_size: 131072
stats:
  format: yaml
`,
			expectedJob: job{mode: modeCompress, source: "a", destination: "b"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "brotli", Level: 4},
				Pipeline: config.PipelineConfig{CompressWorkers: 2, BlockSize: 131072},
				Stats:    config.StatsConfig{Format: "yaml"},
			},
		},
		{
			name: "environment",
			args: []string{"compress", "a", "b"},
			env: map[string]string{
				"PARZIP_ENCODER_TYPE":       "s2",
				"PARZIP_PIPELINE_BLOCK_SIZE": "262144",
			},
			expectedJob: job{mode: modeCompress, source: "a", destination: "b"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "s2"},
				Pipeline: config.PipelineConfig{BlockSize: 262144},
				Stats:    config.StatsConfig{Format: "none"},
			},
		},
		{
			name:        "flag takes precedence over environment",
			args:        []string{"compress", "--encoder.type=null", "a", "b"},
			env:         map[string]string{"PARZIP_ENCODER_TYPE": "s2"},
			expectedJob: job{mode: modeCompress, source: "a", destination: "b"},
			expectedCfg: &config.Config{
				Encoder:  config.EncoderConfig{Type: "null"},
				Pipeline: config.PipelineConfig{BlockSize: config.DefaultBlockSize},
				Stats:    config.StatsConfig{Format: "none"},
			},
		},
		{
			name:        "missing destination",
			args:        []string{"compress", "a"},
			expectError: true,
		},
		{
			name:        "too many arguments",
			args:        []string{"decompress", "a", "b", "c"},
			expectError: true,
		},
		{
			name:        "unknown command",
			args:        []string{"extract", "a", "b"},
			expectError: true,
			expectUsage: true,
		},
		{
			name:        "misspelled command",
			args:        []string{"--encoder.type=lz4", "compres", "a", "b"},
			expectError: true,
			expectUsage: true,
		},
		{
			name:        "no command",
			args:        []string{},
			expectError: true,
			expectUsage: true,
		},
		{
			name:        "invalid encoder",
			args:        []string{"compress", "--encoder.type=rar", "a", "b"},
			expectError: true,
		},
		{
			name:        "invalid block size",
			args:        []string{"compress", "--pipeline.block_size=1", "a", "b"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			args := tt.args
			if tt.configContent != "" {
				configPath := filepath.Join(t.TempDir(), "parzip.yaml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))

				args = append([]string{"--config=" + configPath}, args...)
			}

			// Track if runFunc was called and capture its arguments
			var (
				capturedJob   job
				capturedCfg   *config.Config
				runFuncCalled bool
			)
			testRunFunc := func(_ context.Context, j job, cfg *config.Config) error {
				runFuncCalled = true
				capturedJob = j
				capturedCfg = cfg
				return nil
			}

			rootCmd, err := newRootCmd(testRunFunc)
			require.NoError(t, err)
			require.NotNil(t, rootCmd)

			out := new(bytes.Buffer)
			rootCmd.SetOut(out)
			rootCmd.SetErr(out)
			rootCmd.SetArgs(args)
			err = rootCmd.Execute()

			if tt.expectError {
				assert.Error(t, err)
				assert.False(t, runFuncCalled, "runFunc should not have been called")
				if tt.expectUsage {
					assert.Contains(t, out.String(), "Usage:")
				}
				return
			}

			require.NoError(t, err)
			require.True(t, runFuncCalled, "runFunc should have been called")

			assert.Equal(t, tt.expectedJob.mode, capturedJob.mode)
			assert.Equal(t, tt.expectedJob.source, capturedJob.source)
			assert.Equal(t, tt.expectedJob.destination, capturedJob.destination)
			assert.NotNil(t, capturedJob.out)

			require.NotNil(t, capturedCfg)
			assert.Equal(t, *tt.expectedCfg, *capturedCfg)
		})
	}
}

func TestNoCommandPrintsUsage(t *testing.T) {
	viper.Reset()

	rootCmd, err := newRootCmd(func(context.Context, job, *config.Config) error { return nil })
	require.NoError(t, err)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs([]string{})

	require.ErrorIs(t, rootCmd.Execute(), errNoCommand)
	require.Equal(t, 1, strings.Count(out.String(), "Usage:"))
}

func TestUnknownCommand(t *testing.T) {
	viper.Reset()

	rootCmd, err := newRootCmd(func(context.Context, job, *config.Config) error { return nil })
	require.NoError(t, err)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs([]string{"extract", "a", "b"})

	err = rootCmd.Execute()
	require.ErrorIs(t, err, errUnknownCommand)
	require.ErrorContains(t, err, `"extract"`)
	require.Equal(t, 1, strings.Count(out.String(), "Usage:"))
}

func TestVersionCmd(t *testing.T) {
	viper.Reset()

	rootCmd, err := newRootCmd(run)
	require.NoError(t, err)
	rootCmd.AddCommand(newVersionCmd())

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "parzip "))
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	input := bytes.Repeat([]byte("parallel block compression\n"), 50000)
	srcPath := filepath.Join(dir, "input.txt")
	archivePath := filepath.Join(dir, "input.txt.pz")
	restoredPath := filepath.Join(dir, "restored.txt")
	metricsPath := filepath.Join(dir, "metrics.prom")
	require.NoError(t, os.WriteFile(srcPath, input, 0600))

	execute := func(args ...string) (pipeline.Stats, error) {
		viper.Reset()

		rootCmd, err := newRootCmd(run)
		require.NoError(t, err)

		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetArgs(append(args,
			"--pipeline.block_size=65536",
			"--pipeline.compress_workers=3",
			"--pipeline.decompress_workers=2",
			"--stats.format=json",
			"--metrics.textfile="+metricsPath,
		))

		var stats pipeline.Stats
		if err := rootCmd.Execute(); err != nil {
			return stats, err
		}
		require.NoError(t, jsoniter.Unmarshal(out.Bytes(), &stats))
		return stats, nil
	}

	cStats, err := execute("compress", srcPath, archivePath)
	require.NoError(t, err)
	assert.Equal(t, "compress", cStats.Mode)
	assert.Equal(t, 3, cStats.Workers)
	assert.Equal(t, int64(len(input)), cStats.BytesRead)

	dStats, err := execute("decompress", archivePath, restoredPath)
	require.NoError(t, err)
	assert.Equal(t, "decompress", dStats.Mode)
	assert.Equal(t, cStats.SourceDigest, dStats.DestinationDigest)

	restored, err := os.ReadFile(restoredPath)
	require.NoError(t, err)
	require.Equal(t, input, restored)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `parzip_pipeline_blocks_processed_total{mode="decompress"}`)

	// missing source files are reported as errors
	_, err = execute("compress", filepath.Join(dir, "nonexistent"), archivePath)
	require.ErrorIs(t, err, os.ErrNotExist)

	// decompressing with a different encoder fails
	_, err = execute("decompress", "--encoder.type=zstd", archivePath, restoredPath)
	require.Error(t, err)
}
