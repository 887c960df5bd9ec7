// Package conf provides shared configuration handling utilities (command line flags,
// configuration file, environment) for the parzip command line tool
package conf

import (
	"fmt"
	"strings"

	"github.com/els0r/telemetry/tracing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFile = "config"

	// EnvPrefix is prepended to all environment variables, e.g. PARZIP_ENCODER_TYPE
	EnvPrefix = "PARZIP"

	loggingKey = "logging"

	LogDestination = loggingKey + ".destination"
	LogEncoding    = loggingKey + ".encoding"
	LogLevel       = loggingKey + ".level"
)

// Global defaults for command line parameters / arguments
const (
	DefaultLogEncoding = "logfmt"

	// parzip is a command line tool, so only warnings and errors are printed by default
	DefaultLogLevel = "warn"
)

// RegisterFlags registers all command line flags for the configuration
func RegisterFlags(cmd *cobra.Command) error {
	pflags := cmd.PersistentFlags()

	pflags.StringP(ConfigFile, "c", "", "path to configuration file (YAML)")

	tracing.RegisterFlags(pflags)

	pflags.String(LogLevel, DefaultLogLevel, "log level for logger")
	pflags.String(LogEncoding, DefaultLogEncoding, "message encoding format for logger")
	pflags.String(LogDestination, "", "logging destination file path (empty for stderr)")

	return viper.BindPFlags(pflags)
}

// Load populates cfg from the configuration file (if set), environment variables and
// command line flags, in increasing order of precedence
func Load(cfg any) error {
	if cfg == nil {
		return fmt.Errorf("configuration must not be nil")
	}

	path := viper.GetString(ConfigFile)
	if path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("yaml")

		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	// allow e.g. PARZIP_PIPELINE_BLOCK_SIZE to set pipeline.block_size
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "__"))
	viper.AutomaticEnv()

	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	return nil
}
