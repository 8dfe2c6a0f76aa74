// Package parallel runs independent evaluations over a bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Items below 2*MinChunkSize run on the calling goroutine.
}

// DefaultConfig returns defaults based on CPU count.
//
// Each item is a full function evaluation with its own tape, so the
// threshold is small compared to elementwise kernels.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4,
	}
}

// workers returns how many goroutines For starts for n items, or 0 when the
// items should run sequentially.
func (c Config) workers(n int) int {
	if !c.Enabled || c.NumWorkers < 2 || n < 2*max(c.MinChunkSize, 1) {
		return 0
	}
	return min(c.NumWorkers, n)
}

// For executes f(i) for i in [0, n), each index exactly once.
//
// Workers claim the next unclaimed index as they finish, so evaluations of
// uneven cost still spread across all workers.
func For(n int, f func(i int), cfg Config) {
	w := cfg.workers(n)
	if w == 0 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(w)
	for range w {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= n {
					return
				}
				f(i)
			}
		}()
	}
	wg.Wait()
}

// ForErr executes f(i) for i in [0, n) like For and returns the error of the
// lowest index that failed. All items run even when one fails.
func ForErr(n int, f func(i int) error, cfg Config) error {
	errs := make([]error, n)
	For(n, func(i int) {
		errs[i] = f(i)
	}, cfg)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
