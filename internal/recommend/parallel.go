// Reelmatch - LSH Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import "sync"

// forChunks splits [0, n) into at most workers contiguous chunks and runs fn
// on each chunk in its own goroutine. The worker index passed to fn is
// unique per chunk, so callers may index worker-private state with it.
func forChunks(n, workers int, fn func(worker, start, end int)) int {
	if n == 0 {
		return 0
	}
	if workers > n {
		workers = n
	}
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	used := 0
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		used++
		wg.Add(1)
		go func(worker, start, end int) {
			defer wg.Done()
			fn(worker, start, end)
		}(w, start, end)
	}

	wg.Wait()
	return used
}
