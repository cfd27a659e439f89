package reconcile

import (
	"context"
	"sync"
)

// Partition splits items into n contiguous non-overlapping blocks of
// floor(len/n), with the last block absorbing the remainder. When
// len(items) < n the leading blocks are empty. Blocks alias the input slice;
// workers own their block and never touch a sibling's range.
func Partition[T any](items []T, n int) [][]T {
	if n <= 0 {
		n = 1
	}
	blocks := make([][]T, n)
	blockSize := len(items) / n
	for i := 0; i < n; i++ {
		start := i * blockSize
		end := start + blockSize
		if i == n-1 {
			end = len(items)
		}
		blocks[i] = items[start:end]
	}
	return blocks
}

// RunPartitioned fans one worker out per block and waits for all of them.
// Workers always run to completion: an error in one block does not cancel
// the others. The first error in block order is returned after the join.
func RunPartitioned[T any](ctx context.Context, items []T, workers int, work func(ctx context.Context, block []T) error) error {
	blocks := Partition(items, workers)
	errs := make([]error, len(blocks))

	var wg sync.WaitGroup
	for i, block := range blocks {
		wg.Add(1)
		go func(i int, block []T) {
			defer wg.Done()
			errs[i] = work(ctx, block)
		}(i, block)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
