package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrInvalidArgument denotes that a run was started with an unusable source or destination
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMissingBlock denotes that the stream of processed blocks ended with a gap, i.e. a
	// block with a lower index than those already processed never arrived
	ErrMissingBlock = errors.New("missing block in result stream")
)

// runError holds the first error of a run. All later errors are dropped
type runError struct {
	mu     sync.Mutex
	err    error
	failed atomic.Bool
}

// set records err if no error has been recorded yet and reports whether it did
func (r *runError) set(err error) bool {
	if err == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return false
	}
	r.err = err
	r.failed.Store(true)
	return true
}

// Failed allows lock-free polling from the pipeline stages
func (r *runError) Failed() bool {
	return r.failed.Load()
}

func (r *runError) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
