package analyzer

import (
	"math"

	"go-doc-enhancer/internal/workers"
	"go-doc-enhancer/pkg/models"

	"gonum.org/v1/gonum/stat"
)

// noiseBlockSize is the edge of the non-overlapping blocks used for noise estimation
const noiseBlockSize = 3

// metricsCalculator implements MetricsCalculator with Gonum statistics
type metricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator using Gonum
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{}
}

// AverageLuminance returns the mean luminance over all pixels
func (mc *metricsCalculator) AverageLuminance(plane *LumaPlane) float64 {
	if len(plane.Values) == 0 {
		return 0
	}
	return stat.Mean(plane.Values, nil)
}

// LuminanceStdDev returns the population standard deviation of luminance
func (mc *metricsCalculator) LuminanceStdDev(plane *LumaPlane) float64 {
	if len(plane.Values) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(plane.Values, nil)
	return std
}

// MeanAbsLaplacian averages |4·c − up − down − left − right| over interior pixels
func (mc *metricsCalculator) MeanAbsLaplacian(plane *LumaPlane) float64 {
	width, height := plane.Width, plane.Height
	if width < 3 || height < 3 {
		return 0
	}

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	total := workers.SumRows(height-2, func(i int) float64 {
		y := i + 1
		up, row, down := plane.Row(y-1), plane.Row(y), plane.Row(y+1)
		var sum float64
		for x := 1; x < width-1; x++ {
			laplacian := up[x] + down[x] + row[x-1] + row[x+1] - 4*row[x]
			sum += math.Abs(laplacian)
		}
		return sum
	})

	return total / float64((width-2)*(height-2))
}

// BlockNoiseVariance partitions the image into 3×3 blocks, sums the population
// variance of R, G and B inside each block and averages those sums over all blocks.
func (mc *metricsCalculator) BlockNoiseVariance(img *models.RasterImage) float64 {
	blocksX := img.Width / noiseBlockSize
	blocksY := img.Height / noiseBlockSize
	if blocksX == 0 || blocksY == 0 {
		return 0
	}

	total := workers.SumRows(blocksY, func(by int) float64 {
		var samples [noiseBlockSize * noiseBlockSize]float64
		var sum float64
		for bx := 0; bx < blocksX; bx++ {
			for c := 0; c < 3; c++ {
				n := 0
				for dy := 0; dy < noiseBlockSize; dy++ {
					for dx := 0; dx < noiseBlockSize; dx++ {
						p := img.Offset(bx*noiseBlockSize+dx, by*noiseBlockSize+dy)
						samples[n] = float64(img.Pix[p+c])
						n++
					}
				}
				sum += stat.PopVariance(samples[:], nil)
			}
		}
		return sum
	})

	return total / float64(blocksX*blocksY)
}
