// Package report renders run statistics for human or machine consumption
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/els0r/parzip/pkg/formatting"
	"github.com/els0r/parzip/pkg/pipeline"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

// Format denotes the output format of a report
type Format string

// Supported report formats
const (
	FormatNone Format = "none"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists all supported report formats
var Formats = []Format{FormatNone, FormatText, FormatJSON, FormatYAML}

// ParseFormat returns the format matching s (case-insensitive). An empty string selects
// FormatNone
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatNone, nil
	}
	f := Format(strings.ToLower(s))
	for _, supported := range Formats {
		if f == supported {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("unsupported report format %q", s)
}

// Write renders stats to w in the requested format
func Write(w io.Writer, f Format, stats pipeline.Stats) error {
	switch f {
	case FormatNone, "":
		return nil
	case FormatText:
		return writeText(w, stats)
	case FormatJSON:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", f)
	}
}

func writeText(w io.Writer, stats pipeline.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Mode:\t%s\n", stats.Mode)
	fmt.Fprintf(tw, "Workers:\t%d\n", stats.Workers)
	fmt.Fprintf(tw, "Blocks:\t%d\n", stats.Blocks)
	fmt.Fprintf(tw, "Read:\t%s\n", formatting.Size(uint64(stats.BytesRead)))
	fmt.Fprintf(tw, "Written:\t%s (ratio %.3f)\n", formatting.Size(uint64(stats.BytesWritten)), stats.Ratio())
	fmt.Fprintf(tw, "Duration:\t%s (%s)\n", formatting.Duration(stats.Duration), formatting.Throughput(stats.BytesRead, stats.Duration))
	fmt.Fprintf(tw, "Source XXH3:\t%s\n", stats.SourceDigest)
	fmt.Fprintf(tw, "Destination XXH3:\t%s\n", stats.DestinationDigest)

	return tw.Flush()
}
