// Package parallel splits row ranges across goroutines for the numeric
// kernels of the autoencoder. Control flow above the kernels stays
// sequential.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items into contiguous ranges and runs fn on each range
// concurrently. workers <= 0 means runtime.NumCPU().
func Parallelize(items, workers int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > items {
		numWorkers = items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when items <= threshold.
func ParallelizeWithThreshold(items, threshold, workers int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, workers, fn)
}
