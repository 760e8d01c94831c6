package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 64} {
		seen := make([]int32, 101)
		Parallelize(len(seen), workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
		})
		for i, n := range seen {
			assert.Equal(t, int32(1), n, "workers=%d item=%d", workers, i)
		}
	}
}

func TestParallelizeEmpty(t *testing.T) {
	called := false
	Parallelize(0, 4, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(10, 100, 8, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int32(1), calls)
}
