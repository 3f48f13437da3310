package workers

import (
	"sync"
	"testing"
)

func TestRows_CoversEveryRowOnce(t *testing.T) {
	for _, height := range []int{0, 1, 31, 32, 100, 1000, 1031} {
		seen := make([]int, height)
		var mu sync.Mutex
		Rows(height, func(startY, endY int) {
			mu.Lock()
			defer mu.Unlock()
			for y := startY; y < endY; y++ {
				seen[y]++
			}
		})
		for y, n := range seen {
			if n != 1 {
				t.Fatalf("height %d: row %d visited %d times", height, y, n)
			}
		}
	}
}

func TestSumRows(t *testing.T) {
	got := SumRows(500, func(y int) float64 { return float64(y) })
	want := float64(499*500) / 2
	if got != want {
		t.Errorf("Expected %f, got %f", want, got)
	}
	if SumRows(0, func(int) float64 { return 1 }) != 0 {
		t.Error("Expected 0 for empty range")
	}
}
