package analyzer

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MaxSkewAngle bounds every skew estimate, in degrees
const MaxSkewAngle = 15.0

// Run-vote estimator parameters
const (
	skewRowStep          = 5
	skewInkThreshold     = 180.0
	skewMinRunLength     = 20
	skewProbeOffset      = 5
	skewProbeSpacing     = 10
	skewMaxProbeDistance = 600
)

// Estimator names accepted by NewSkewEstimator
const (
	RunVoteEstimatorName           = "run_vote"
	ProjectionProfileEstimatorName = "projection_profile"
)

// RunVoteEstimator follows ink runs to the row five pixels below and votes on the
// slope implied by where the stroke continues. It is a lightweight heuristic
// tuned for printed text lines; it can misjudge sparse or handwritten pages.
type RunVoteEstimator struct{}

// NewRunVoteEstimator creates the default skew estimator
func NewRunVoteEstimator() SkewEstimator {
	return &RunVoteEstimator{}
}

// Name returns the estimator name
func (e *RunVoteEstimator) Name() string {
	return RunVoteEstimatorName
}

// EstimateSkew returns the modal vote rounded to 0.5° and clamped to ±15°, or 0 without votes
func (e *RunVoteEstimator) EstimateSkew(plane *LumaPlane) float64 {
	width := plane.Width
	var votes []float64

	for y := 0; y+skewProbeOffset < plane.Height; y += skewRowStep {
		row := plane.Row(y)
		below := plane.Row(y + skewProbeOffset)

		for x := 0; x < width; {
			if row[x] >= skewInkThreshold {
				x++
				continue
			}
			start := x
			for x < width && row[x] < skewInkThreshold {
				x++
			}
			if x-start <= skewMinRunLength {
				continue
			}
			if angle, ok := probeContinuation(below, start, x); ok {
				votes = append(votes, angle)
			}
		}
	}

	return clampAngle(modalAngle(votes))
}

// probeContinuation looks for the stroke of run [start, end) in the row below.
// Down-sloping strokes reappear to the right of the run start, up-sloping ones to
// the left of the run end; ink under both ends means the stroke runs straight.
func probeContinuation(below []float64, start, end int) (float64, bool) {
	inkUnderStart := below[start] < skewInkThreshold
	inkUnderEnd := below[end-1] < skewInkThreshold
	if inkUnderStart && inkUnderEnd {
		return 0, true
	}

	right, left := 0, 0
	if !inkUnderStart {
		for dx := skewProbeSpacing; dx <= skewMaxProbeDistance && start+dx < len(below); dx += skewProbeSpacing {
			if below[start+dx] < skewInkThreshold {
				right = dx
				break
			}
		}
	}
	if !inkUnderEnd {
		for dx := skewProbeSpacing; dx <= skewMaxProbeDistance && end-1-dx >= 0; dx += skewProbeSpacing {
			if below[end-1-dx] < skewInkThreshold {
				left = dx
				break
			}
		}
	}

	var dx int
	switch {
	case right > 0 && (left == 0 || right <= left):
		dx = right
	case left > 0:
		dx = -left
	default:
		return 0, false
	}

	angle := math.Atan2(skewProbeOffset, math.Abs(float64(dx))) * 180 / math.Pi
	if dx < 0 {
		angle = -angle
	}
	return roundToHalfDegree(angle), true
}

// modalAngle returns the most frequent vote; ties go to the smaller magnitude,
// then to the negative angle.
func modalAngle(votes []float64) float64 {
	if len(votes) == 0 {
		return 0
	}
	counts := make(map[float64]int, 16)
	for _, v := range votes {
		counts[v]++
	}
	angles := make([]float64, 0, len(counts))
	for a := range counts {
		angles = append(angles, a)
	}
	sort.Slice(angles, func(i, j int) bool {
		ai, aj := math.Abs(angles[i]), math.Abs(angles[j])
		if ai != aj {
			return ai < aj
		}
		return angles[i] < angles[j]
	})

	best := angles[0]
	for _, a := range angles[1:] {
		if counts[a] > counts[best] {
			best = a
		}
	}
	return best
}

// ProjectionProfileEstimator shears the ink pixels at candidate angles and keeps
// the angle whose row histogram is most peaked (largest sum of squared counts).
type ProjectionProfileEstimator struct {
	Step         float64
	SampleStride int
	MinInkPixels int
}

// NewProjectionProfileEstimator creates an estimator searching ±15° in 0.5° steps
func NewProjectionProfileEstimator() SkewEstimator {
	return &ProjectionProfileEstimator{
		Step:         0.5,
		SampleStride: 2,
		MinInkPixels: 50,
	}
}

// Name returns the estimator name
func (e *ProjectionProfileEstimator) Name() string {
	return ProjectionProfileEstimatorName
}

// EstimateSkew returns the best candidate angle, or 0 when there is too little ink
func (e *ProjectionProfileEstimator) EstimateSkew(plane *LumaPlane) float64 {
	stride := e.SampleStride
	if stride < 1 {
		stride = 1
	}
	var xs, ys []float64
	for y := 0; y < plane.Height; y += stride {
		row := plane.Row(y)
		for x := 0; x < plane.Width; x += stride {
			if row[x] < skewInkThreshold {
				xs = append(xs, float64(x))
				ys = append(ys, float64(y))
			}
		}
	}
	if len(xs) < e.MinInkPixels || e.Step <= 0 {
		return 0
	}

	maxShift := float64(plane.Width) * math.Tan(MaxSkewAngle*math.Pi/180)
	offset := int(math.Ceil(maxShift)) + 1
	bins := make([]float64, plane.Height+2*offset+1)

	steps := int(math.Floor(MaxSkewAngle / e.Step))
	best, bestScore := 0.0, -1.0
	// 0, +step, -step, +2step ... so equal scores keep the smaller magnitude
	for i := 0; i <= 2*steps; i++ {
		k := (i + 1) / 2
		if i%2 == 0 {
			k = -k
		}
		angle := float64(k) * e.Step
		slope := math.Tan(angle * math.Pi / 180)

		for j := range bins {
			bins[j] = 0
		}
		for n := range xs {
			bins[int(math.Round(ys[n]-xs[n]*slope))+offset]++
		}
		if score := floats.Dot(bins, bins); score > bestScore {
			best, bestScore = angle, score
		}
	}
	return best
}

func roundToHalfDegree(angle float64) float64 {
	return math.Round(angle*2) / 2
}

func clampAngle(angle float64) float64 {
	return math.Max(-MaxSkewAngle, math.Min(MaxSkewAngle, angle))
}
