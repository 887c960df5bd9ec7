// Package pipeline implements a parallel, order-preserving block processing pipeline. A
// single reader splits the source into indexed blocks, a set of workers transforms them
// concurrently and a single writer emits the results in their original order
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/els0r/telemetry/logging"
	"github.com/els0r/telemetry/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Processor runs a Codec over a source stream. Its block pools are allocated once and
// reused by every run. Runs on the same Processor are serialized
type Processor struct {
	codec   Codec
	workers int

	input  *Pool
	output *Pool

	mu sync.Mutex
}

// Option configures a Processor
type Option func(*Processor)

// WithWorkers sets the number of concurrent workers. Values below one select the
// number of CPUs
func WithWorkers(n int) Option {
	return func(p *Processor) {
		p.workers = n
	}
}

// New creates a new Processor for the given codec
func New(codec Codec, opts ...Option) (*Processor, error) {
	if codec == nil {
		return nil, fmt.Errorf("%w: no codec provided", ErrInvalidArgument)
	}
	if codec.InputBlockSize() <= 0 || codec.OutputBlockSize() <= 0 {
		return nil, fmt.Errorf("%w: block sizes must be positive (in=%d, out=%d)",
			ErrInvalidArgument, codec.InputBlockSize(), codec.OutputBlockSize())
	}

	p := &Processor{
		codec:   codec,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.NumCPU()
	}

	// one block per worker in each pool keeps every worker busy while bounding memory
	p.input = NewPool(p.workers, codec.InputBlockSize())
	p.output = NewPool(p.workers, codec.OutputBlockSize())

	return p, nil
}

// Workers returns the number of workers used per run
func (p *Processor) Workers() int {
	return p.workers
}

// run holds the state of a single pass over a source
type run struct {
	codec Codec

	src io.Reader
	dst io.Writer

	input   *Pool
	output  *Pool
	work    *Queue[*Block]
	results *Queue[*Block]

	err runError

	// written by the writer goroutine only
	blocks int
}

// Run reads src until EOF, transforms all frames and writes them to dst in their
// original order. It returns the first error encountered by any stage, in which case
// dst may contain partial output
func (p *Processor) Run(ctx context.Context, src io.Reader, dst io.Writer) (stats Stats, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mode := p.codec.Name()

	ctx, span := tracing.Start(ctx, "(*pipeline.Processor).Run",
		trace.WithAttributes(
			attribute.String("mode", mode),
			attribute.Int("workers", p.workers),
		),
	)
	defer span.End()

	ctx = logging.WithFields(ctx, slog.String("mode", mode))
	logger := logging.FromContext(ctx)

	stats = Stats{
		Mode:    mode,
		Workers: p.workers,
	}

	if src == nil || dst == nil {
		return stats, fmt.Errorf("%w: source and destination must be set", ErrInvalidArgument)
	}

	srcMeter, dstMeter := newMeter(), newMeter()

	r := &run{
		codec:  p.codec,
		src:    io.TeeReader(src, srcMeter),
		dst:    io.MultiWriter(dst, dstMeter),
		input:  p.input,
		output: p.output,

		// producers: the reader feeds the work queue, the workers feed the results queue
		work:    NewQueue[*Block](1),
		results: NewQueue[*Block](p.workers),
	}

	// raw blocks are returned by the workers, processed blocks by the writer
	r.input.reset(p.workers)
	r.output.reset(1)

	transformers := make([]Transformer, 0, p.workers)
	defer func() {
		for _, t := range transformers {
			if cerr := t.Close(); cerr != nil {
				logger.Warnf("failed to release transformer: %v", cerr)
			}
		}
	}()
	for i := 0; i < p.workers; i++ {
		t, terr := p.codec.NewTransformer()
		if terr != nil {
			return stats, fmt.Errorf("failed to create transformer: %w", terr)
		}
		transformers = append(transformers, t)
	}

	logger.Debugf("starting run with %d workers", p.workers)
	start := time.Now()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		r.read(ctx)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		r.write(ctx)
	}()

	var workers errgroup.Group
	for id, t := range transformers {
		workers.Go(func() error {
			return r.transform(ctx, id, t)
		})
	}

	<-readerDone
	_ = workers.Wait() // worker errors are recorded in r.err as they occur
	<-writerDone

	// all stages have stopped, blocks left behind by a failed run go back to their pools
	r.reclaim()

	stats.Duration = time.Since(start)
	stats.Blocks = r.blocks
	stats.BytesRead = srcMeter.n
	stats.BytesWritten = dstMeter.n
	stats.SourceDigest = srcMeter.digest()
	stats.DestinationDigest = dstMeter.digest()

	runDuration.WithLabelValues(mode).Observe(stats.Duration.Seconds())
	bytesRead.WithLabelValues(mode).Add(float64(stats.BytesRead))
	bytesWritten.WithLabelValues(mode).Add(float64(stats.BytesWritten))

	if err = r.err.Err(); err != nil {
		runErrors.WithLabelValues(mode).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}

	logger.With(
		"blocks", stats.Blocks,
		"bytes_read", stats.BytesRead,
		"bytes_written", stats.BytesWritten,
		"duration", stats.Duration.String(),
	).Info("run completed")

	return stats, nil
}

// reclaim returns blocks stranded in the work and results queues to their pools. Both
// queues are stopped once all stages have returned, so draining them never blocks
func (r *run) reclaim() {
	for blk, ok := r.work.Dequeue(); ok; blk, ok = r.work.Dequeue() {
		r.input.Put(blk)
	}
	for blk, ok := r.results.Dequeue(); ok; blk, ok = r.results.Dequeue() {
		r.output.Put(blk)
	}
}

// fail records err as the run error if it is the first one and wakes up all stages
// blocked on a queue or pool
func (r *run) fail(ctx context.Context, err error) error {
	if !r.err.set(err) {
		logging.FromContext(ctx).Debugf("dropping subsequent error: %v", err)
		return err
	}
	logging.FromContext(ctx).Errorf("run failed: %v", err)

	r.work.Close()
	r.results.Close()
	r.input.close()
	r.output.close()

	return err
}
