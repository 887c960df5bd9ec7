// Package cmd contains the parzip command line interface implementation
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/els0r/parzip/cmd/parzip/config"
	"github.com/els0r/parzip/pkg/archive"
	"github.com/els0r/parzip/pkg/conf"
	"github.com/els0r/parzip/pkg/encoder/encoders"
	"github.com/els0r/parzip/pkg/pipeline"
	"github.com/els0r/parzip/pkg/report"
	"github.com/els0r/parzip/pkg/version"
	"github.com/els0r/telemetry/logging"
	"github.com/els0r/telemetry/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	modeCompress   = "compress"
	modeDecompress = "decompress"
)

var (
	errNoCommand      = errors.New("no command specified")
	errUnknownCommand = errors.New("unknown command")
)

// Execute is the main entrypoint and runs the CLI tool
func Execute() error {
	rootCmd, err := newRootCmd(run)
	if err != nil {
		return err
	}

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.Execute()
}

// job describes a single invocation of compress or decompress
type job struct {
	mode        string
	source      string
	destination string

	// out receives the run statistics
	out io.Writer
}

// runFunc is the type of the function that is called when compress or decompress is executed.
// It's defined mainly for testing purposes
type runFunc func(ctx context.Context, j job, cfg *config.Config) error

func newRootCmd(run runFunc) (*cobra.Command, error) {
	cfg := config.New()

	// the original command set was matched regardless of case (e.g. "Compress")
	cobra.EnableCaseInsensitive = true

	rootCmd := &cobra.Command{
		Use:   "parzip [flags] [" + modeCompress + "|" + modeDecompress + "] <source> <destination>",
		Short: "parzip compresses and decompresses files in parallel",
		Long: `parzip compresses and decompresses files in parallel

The source is split into blocks which are compressed independently by a set of
workers. The archive consists of the compressed blocks in their original order,
each prefixed by its length (little-endian int32). Archives do not record the
encoder, so decompression must use the encoder chosen for compression.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := conf.Load(cfg); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			return initLogging()
		},
		// any positional argument reaching the root command is an unknown command, returning
		// the error from here (instead of cobra's lookup) has cobra print the usage
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w %q", errUnknownCommand, args[0])
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return errNoCommand
		},
		SilenceErrors: true,
	}

	for _, mode := range []string{modeCompress, modeDecompress} {
		rootCmd.AddCommand(newModeCmd(mode, cfg, run))
	}

	err := registerFlags(rootCmd)
	if err != nil {
		return nil, fmt.Errorf("failed to register flags: %w", err)
	}

	return rootCmd, nil
}

func newModeCmd(mode string, cfg *config.Config, run runFunc) *cobra.Command {
	return &cobra.Command{
		Use:   mode + " <source> <destination>",
		Short: strings.ToUpper(mode[:1]) + mode[1:] + " source into destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// usage is only printed for invocation errors, not for failed runs
			cmd.SilenceUsage = true

			return run(cmd.Context(), job{
				mode:        mode,
				source:      args[0],
				destination: args[1],
				out:         cmd.OutOrStdout(),
			}, cfg)
		},
	}
}

const (
	encoderKey       = "encoder"
	flagEncoderType  = encoderKey + ".type"
	flagEncoderLevel = encoderKey + ".level"

	pipelineKey                 = "pipeline"
	flagPipelineCompressWorkers = pipelineKey + ".compress_workers"
	flagPipelineDecompWorkers   = pipelineKey + ".decompress_workers"
	flagPipelineBlockSize       = pipelineKey + ".block_size"

	flagStatsFormat     = "stats.format"
	flagMetricsTextfile = "metrics.textfile"
)

func registerFlags(cmd *cobra.Command) error {
	pflags := cmd.PersistentFlags()

	if err := conf.RegisterFlags(cmd); err != nil {
		return err
	}

	pflags.StringP(flagEncoderType, "e", encoders.EncoderTypeGZIP.String(),
		"block encoder ("+strings.Join(encoders.Names(), ", ")+")")
	pflags.Int(flagEncoderLevel, 0, "compression level of the encoder (0 selects the encoder's default)")

	pflags.Int(flagPipelineCompressWorkers, 0, "number of compression workers (0 selects 1.5 x CPUs)")
	pflags.Int(flagPipelineDecompWorkers, 0, "number of decompression workers (0 selects 2 x CPUs)")
	pflags.Int(flagPipelineBlockSize, config.DefaultBlockSize, "size of raw data blocks in bytes")

	pflags.String(flagStatsFormat, "none", "print run statistics ("+strings.Join(config.StatsFormats, ", ")+")")
	pflags.String(flagMetricsTextfile, "", "write Prometheus metrics to this file after the run")

	return viper.BindPFlags(pflags)
}

func initLogging() error {
	loggerOpts := []logging.Option{
		logging.WithVersion(version.Short()),
		logging.WithOutput(os.Stderr),
	}

	dst := viper.GetString(conf.LogDestination)
	if dst != "" {
		loggerOpts = append(loggerOpts, logging.WithFileOutput(dst))
	}

	err := logging.Init(
		logging.LevelFromString(viper.GetString(conf.LogLevel)),
		logging.Encoding(viper.GetString(conf.LogEncoding)),
		loggerOpts...,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

func run(ctx context.Context, j job, cfg *config.Config) (err error) {
	logger := logging.FromContext(ctx)

	shutdownTracing, terr := tracing.InitFromFlags(ctx)
	if terr != nil {
		logger.With("error", terr).Error("failed to set up tracing")
	} else {
		defer func() {
			if serr := shutdownTracing(context.Background()); serr != nil {
				logger.With("error", serr).Error("forced shut down of tracing")
			}
		}()
	}

	if path := cfg.Metrics.Textfile; path != "" {
		defer func() {
			if merr := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); merr != nil {
				logger.With("error", merr, "path", path).Error("failed to write metrics")
			}
		}()
	}

	encType, err := cfg.EncoderType()
	if err != nil {
		return err
	}
	opts := []archive.Option{
		archive.WithEncoder(encType),
		archive.WithLevel(cfg.Encoder.Level),
		archive.WithBlockSize(cfg.Pipeline.BlockSize),
	}

	var stats pipeline.Stats
	switch j.mode {
	case modeCompress:
		c, err := archive.NewCompressor(append(opts, archive.WithWorkers(cfg.Pipeline.CompressWorkers))...)
		if err != nil {
			return fmt.Errorf("failed to set up compressor: %w", err)
		}
		stats, err = c.CompressFile(ctx, j.source, j.destination)
		if err != nil {
			return fmt.Errorf("failed to compress %s: %w", j.source, err)
		}
	case modeDecompress:
		d, err := archive.NewDecompressor(append(opts, archive.WithWorkers(cfg.Pipeline.DecompressWorkers))...)
		if err != nil {
			return fmt.Errorf("failed to set up decompressor: %w", err)
		}
		stats, err = d.DecompressFile(ctx, j.source, j.destination)
		if err != nil {
			return fmt.Errorf("failed to decompress %s: %w", j.source, err)
		}
	default:
		return fmt.Errorf("unsupported mode %q", j.mode)
	}

	format, err := report.ParseFormat(cfg.Stats.Format)
	if err != nil {
		return err
	}
	return report.Write(j.out, format, stats)
}
