package workers

import (
	"runtime"
	"sync"
)

// minRowsPerStrip keeps small images on a single goroutine
const minRowsPerStrip = 32

// Rows splits [0, height) into contiguous horizontal strips and calls fn for each
// strip concurrently. It returns when every strip is done.
// fn must only write to rows inside its own strip.
func Rows(height int, fn func(startY, endY int)) {
	if height <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if maxWorkers := height / minRowsPerStrip; numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}
	if numWorkers <= 1 {
		fn(0, height)
		return
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	var wg sync.WaitGroup
	for startY := 0; startY < height; startY += rowsPerWorker {
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			fn(startY, endY)
		}(startY, endY)
	}
	wg.Wait()
}

// SumRows evaluates rowFn for every row in parallel and adds the results in row
// order, so the total does not depend on how rows were split across CPUs.
func SumRows(height int, rowFn func(y int) float64) float64 {
	if height <= 0 {
		return 0
	}
	partial := make([]float64, height)
	Rows(height, func(startY, endY int) {
		for y := startY; y < endY; y++ {
			partial[y] = rowFn(y)
		}
	})

	var total float64
	for _, v := range partial {
		total += v
	}
	return total
}
