package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/els0r/telemetry/logging"
)

// RunFiles processes the file at srcPath and writes the result to dstPath. The destination
// is created if it does not exist and truncated otherwise
func (p *Processor) RunFiles(ctx context.Context, srcPath, dstPath string) (stats Stats, err error) {
	if srcPath == "" {
		return stats, fmt.Errorf("%w: empty source path", ErrInvalidArgument)
	}
	if dstPath == "" {
		return stats, fmt.Errorf("%w: empty destination path", ErrInvalidArgument)
	}

	ctx = logging.WithFields(ctx, slog.String("source", srcPath), slog.String("destination", dstPath))
	logger := logging.FromContext(ctx)

	src, err := os.Open(srcPath)
	if err != nil {
		return stats, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logger.Warnf("failed to close source: %v", cerr)
		}
	}()

	// the source is consumed strictly front to back
	if aerr := adviseSequential(src); aerr != nil {
		logger.Debugf("failed to set sequential access hint: %v", aerr)
	}

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return stats, fmt.Errorf("failed to open destination: %w", err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close destination: %w", cerr)
		}
	}()

	return p.Run(ctx, src, dst)
}
