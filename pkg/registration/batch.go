package registration

import (
	"runtime"

	"tractreg/internal/models"
	"tractreg/pkg/metric"
)

// Pair is one independent registration task: align Moving onto Static
type Pair struct {
	Static models.Bundle
	Moving models.Bundle
}

// PairResult carries the outcome of one batch task back to the caller
type PairResult struct {
	// Index is the position of the pair in the input slice
	Index int

	// Result is the fitted transform, nil when Err is set
	Result *Result

	// Err is the per-pair failure, if any
	Err error
}

// RegisterAll fits every pair on a pool of numWorkers goroutines and returns
// the results ordered like the input. Each registration is independent and
// touches only its own bundles, so the workers need no coordination beyond
// the task and result channels. numWorkers <= 0 means one worker per CPU.
func RegisterAll(pairs []Pair, m metric.Metric, opts Options, numWorkers int) []PairResult {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(pairs) {
		numWorkers = len(pairs)
	}

	jobs := make(chan int)
	results := make(chan PairResult)

	for w := 0; w < numWorkers; w++ {
		go func() {
			for i := range jobs {
				res, err := Optimize(pairs[i].Static, pairs[i].Moving, m, opts)
				results <- PairResult{Index: i, Result: res, Err: err}
			}
		}()
	}

	go func() {
		for i := range pairs {
			jobs <- i
		}
		close(jobs)
	}()

	out := make([]PairResult, len(pairs))
	for completed := 0; completed < len(pairs); completed++ {
		res := <-results
		out[res.Index] = res
	}
	return out
}
