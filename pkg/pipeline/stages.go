package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/els0r/telemetry/logging"
	"golang.org/x/time/rate"
)

// read splits the source into frames and hands them to the workers in index order
func (r *run) read(ctx context.Context) {
	logger := logging.FromContext(ctx)

	// the unused block of the final iteration is returned before the work queue is
	// stopped, so that the input pool is complete once the workers have drained it
	defer r.work.StopProducer()

	for index := 0; ; index++ {
		if r.err.Failed() {
			logger.Debug("reader stopped due to failed run")
			return
		}

		blk, ok := r.input.Get()
		if !ok {
			logger.Debug("reader stopped, no more input blocks available")
			return
		}
		if r.err.Failed() {
			r.input.Put(blk)
			return
		}

		n, err := r.codec.ReadFrame(r.src, blk)
		if err != nil {
			r.input.Put(blk)
			r.fail(ctx, fmt.Errorf("failed to read block %d: %w", index, err))
			return
		}
		if n == 0 {
			r.input.Put(blk)
			logger.Debugf("reader reached end of input after %d blocks", index)
			return
		}

		blk.Index = index
		blk.Len = n
		if !r.work.Enqueue(blk) {
			r.input.Put(blk)
			return
		}
	}
}

// transform runs a single worker, processing blocks until the work queue is drained
func (r *run) transform(ctx context.Context, id int, t Transformer) error {
	logger := logging.FromContext(ctx)

	var out *Block
	defer func() {
		if out != nil {
			r.output.Put(out)
		}
		r.results.StopProducer()
		r.input.StopProducer()

		logger.Debugf("worker %d stopped", id)
	}()

	for {
		if r.err.Failed() {
			return nil
		}

		// the output block is acquired first to apply backpressure from the writer
		if out == nil {
			var ok bool
			if out, ok = r.output.Get(); !ok {
				return nil
			}
			if r.err.Failed() {
				return nil
			}
		}

		in, ok := r.work.Dequeue()
		if !ok {
			return nil
		}
		if r.err.Failed() {
			r.input.Put(in)
			return nil
		}

		out.Index = in.Index
		err := t.Transform(in, out)
		r.input.Put(in)
		if err != nil {
			return r.fail(ctx, fmt.Errorf("failed to process block %d: %w", out.Index, err))
		}

		if !r.results.Enqueue(out) {
			return nil
		}
		out = nil
	}
}

// write emits processed blocks in index order, buffering those that arrive early
func (r *run) write(ctx context.Context) {
	var (
		logger   = logging.FromContext(ctx)
		mode     = r.codec.Name()
		progress = rate.Sometimes{Interval: 5 * time.Second}

		pending  = make(map[int]*Block)
		expected = 0
		written  int64
	)

	defer func() {
		for _, blk := range pending {
			r.output.Put(blk)
		}
		pendingBlocks.WithLabelValues(mode).Set(0)

		r.blocks = expected
		r.output.StopProducer()
	}()

	for {
		blk, ok := r.results.Dequeue()
		if !ok {
			if len(pending) > 0 && !r.err.Failed() {
				r.fail(ctx, fmt.Errorf("%w: expected block %d, %d blocks pending", ErrMissingBlock, expected, len(pending)))
			}
			return
		}
		if r.err.Failed() {
			r.output.Put(blk)
			return
		}

		pending[blk.Index] = blk
		for {
			next, found := pending[expected]
			if !found {
				break
			}
			delete(pending, expected)

			n := next.Len
			err := r.codec.WriteFrame(r.dst, next)
			r.output.Put(next)
			if err != nil {
				r.fail(ctx, fmt.Errorf("failed to write block %d: %w", expected, err))
				return
			}

			written += int64(n)
			expected++

			blocksProcessed.WithLabelValues(mode).Inc()
			progress.Do(func() {
				logger.Debugf("written %d blocks (%d bytes of payload)", expected, written)
			})
		}
		pendingBlocks.WithLabelValues(mode).Set(float64(len(pending)))
	}
}
